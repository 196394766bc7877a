// Copyright (c) 2026 Komira. All rights reserved.

package bookmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/database/schema"
)

// # PostgreSQL Repository

// bookmarkRepository implements the [Repository] interface using pgx.
type bookmarkRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed bookmark store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &bookmarkRepository{pool: pool}
}

/*
Upsert writes the user's reading position for a title.

Description: Uses an 'ON CONFLICT DO UPDATE' clause keyed on (user, manga)
so the write is idempotent. The chapter and page fields are replaced in
place. A bookmark is a watermark, not a history.

Parameters:
  - context: context.Context
  - record: *Bookmark

Returns:
  - error: Persistence failures
*/
func (repository *bookmarkRepository) Upsert(context context.Context, record *Bookmark) error {
	t := schema.LibraryBookmark
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
	`,
		t.Table,
		t.UserID, t.MangaID, t.ChapterID, t.ChapterNumber, t.PageNumber, t.UpdatedAt,
		t.UserID, t.MangaID,
		t.ChapterID, t.ChapterID,
		t.ChapterNumber, t.ChapterNumber,
		t.PageNumber, t.PageNumber,
		t.UpdatedAt,
	)

	_, err := repository.pool.Exec(context, query,
		record.UserID,
		record.MangaID,
		record.ChapterID,
		record.ChapterNumber,
		record.PageNumber,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to upsert bookmark: %w", err)
	}

	return nil
}

/*
Find returns the bookmark for a (user, manga) pair.
*/
func (repository *bookmarkRepository) Find(context context.Context, userID, mangaID string) (*Bookmark, error) {
	t := schema.LibraryBookmark
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`,
		t.UserID, t.MangaID, t.ChapterID, t.ChapterNumber, t.PageNumber, t.UpdatedAt,
		t.Table,
		t.UserID, t.MangaID,
	)

	var record Bookmark
	err := repository.pool.QueryRow(context, query, userID, mangaID).Scan(
		&record.UserID,
		&record.MangaID,
		&record.ChapterID,
		&record.ChapterNumber,
		&record.PageNumber,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Bookmark")
		}
		return nil, fmt.Errorf("postgres: failed to find bookmark: %w", err)
	}

	return &record, nil
}
