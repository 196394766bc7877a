// Copyright (c) 2026 Komira. All rights reserved.

/*
Package manga provides the PostgreSQL implementation for the catalogue's data access.

It follows the platform conventions for storage code:
  - Schema Constants: Queries are assembled from [schema] definitions, never raw strings.
  - Window Functions: Total result counts are computed without a separate 'COUNT' query.
  - Error Mapping: pgx.ErrNoRows becomes [apperr.NotFound] so handlers stay storage-agnostic.
*/
package manga

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/database/schema"
)

// # PostgreSQL Repository

// mangaRepository implements the [Repository] interface using pgx.
type mangaRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed manga store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &mangaRepository{pool: pool}
}

// selectColumns is the shared projection for single-row manga queries.
func selectColumns() string {
	t := schema.CoreManga
	return strings.Join([]string{
		t.ID, t.Title, t.Slug, t.Status, t.ApprovalStatus, t.ChapterCount,
		t.CoverURL, t.Description, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}, ", ")
}

// scanManga hydrates a [Manga] from a single pgx row.
func scanManga(row pgx.Row) (*Manga, error) {
	var m Manga
	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Slug,
		&m.Status,
		&m.ApprovalStatus,
		&m.ChapterCount,
		&m.CoverURL,
		&m.Description,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Manga")
		}
		return nil, fmt.Errorf("postgres: failed to scan manga: %w", err)
	}
	return &m, nil
}

/*
FindBySlug returns the title identified by its unique URL slug.

Description: Slugs are the public identifier used by reader deep links
(/read/{mangaSlug}/{chapterNumber}), so this is the hottest lookup path
in the catalogue.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Manga: A complete mapping of the requested title.
  - error: apperr.NotFound on absent rows.
*/
func (repository *mangaRepository) FindBySlug(context context.Context, slug string) (*Manga, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`, selectColumns(), schema.CoreManga.Table, schema.CoreManga.Slug, schema.CoreManga.DeletedAt)

	return scanManga(repository.pool.QueryRow(context, query, slug))
}

/*
FindByID returns the title identified by its primary key.
*/
func (repository *mangaRepository) FindByID(context context.Context, id string) (*Manga, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`, selectColumns(), schema.CoreManga.Table, schema.CoreManga.ID, schema.CoreManga.DeletedAt)

	return scanManga(repository.pool.QueryRow(context, query, id))
}

/*
List retrieves approved catalogue titles with filtering and pagination.

Description: Returns only approved titles; pending and rejected submissions
never appear in browse results. A window function delivers the total match
count in the same round-trip.

Parameters:
  - context: context.Context
  - filter: Filter (Status and title search)
  - limit: int
  - offset: int

Returns:
  - []*Manga: Slice of titles, newest first
  - int: Total matching titles
*/
func (repository *mangaRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error) {
	t := schema.CoreManga

	// Query construction
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE %s = $%d AND %s IS NULL
	`, selectColumns(), t.Table, t.ApprovalStatus, argID, t.DeletedAt))
	args = append(args, ApprovalApproved)
	argID++

	// Publication status filter injection
	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", t.Status, argID))
		args = append(args, filter.Status)
		argID++
	}

	// Title search (case-insensitive substring)
	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", t.Title, argID))
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC", t.CreatedAt))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list manga: %w", err)
	}
	defer rows.Close()

	// Row iteration and entity hydration
	var results []*Manga
	var totalCount int

	for rows.Next() {
		var m Manga
		err := rows.Scan(
			&m.ID,
			&m.Title,
			&m.Slug,
			&m.Status,
			&m.ApprovalStatus,
			&m.ChapterCount,
			&m.CoverURL,
			&m.Description,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan manga: %w", err)
		}
		results = append(results, &m)
	}

	return results, totalCount, nil
}

/*
Create inserts a new title record.
*/
func (repository *mangaRepository) Create(context context.Context, manga *Manga) error {
	t := schema.CoreManga
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		t.Table,
		t.ID, t.Title, t.Slug, t.Status, t.ApprovalStatus, t.ChapterCount, t.CoverURL, t.Description,
	)

	_, err := repository.pool.Exec(context, query,
		manga.ID,
		manga.Title,
		manga.Slug,
		manga.Status,
		manga.ApprovalStatus,
		manga.ChapterCount,
		manga.CoverURL,
		manga.Description,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create manga: %w", err)
	}

	return nil
}

/*
SetApprovalStatus updates the moderation state of a title.
*/
func (repository *mangaRepository) SetApprovalStatus(context context.Context, id string, status ApprovalStatus) error {
	t := schema.CoreManga
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2 AND %s IS NULL`,
		t.Table, t.ApprovalStatus, t.UpdatedAt, t.ID, t.DeletedAt)

	result, err := repository.pool.Exec(context, query, status, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to update manga approval: %w", err)
	}

	// Affected row verification
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Manga")
	}

	return nil
}

/*
IncrementChapterCount atomically adjusts the denormalized chapter counter.
*/
func (repository *mangaRepository) IncrementChapterCount(context context.Context, id string, delta int) error {
	t := schema.CoreManga

	// Direct atomic increment to prevent race conditions during concurrent approvals
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $1, %s = NOW() WHERE %s = $2`,
		t.Table, t.ChapterCount, t.ChapterCount, t.UpdatedAt, t.ID)

	_, err := repository.pool.Exec(context, query, delta, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to increment chapter count: %w", err)
	}

	return nil
}
