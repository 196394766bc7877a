// Copyright (c) 2026 Komira. All rights reserved.

package chapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/database/schema"
	"github.com/komira-app/komira/internal/platform/dberr"
)

// # Approved Chapter Repository

// chapterRepository implements the [Repository] interface using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &chapterRepository{pool: pool}
}

// selectColumns is the shared projection for approved chapter queries.
func selectColumns() string {
	t := schema.CoreChapter
	return strings.Join([]string{
		t.ID, t.MangaID, t.ChapterNumber, t.Title, t.PageURLs,
		t.ApprovalStatus, t.PublishedAt, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}, ", ")
}

// scanChapter hydrates a [Chapter] from a single pgx row.
func scanChapter(row pgx.Row) (*Chapter, error) {
	var c Chapter
	err := row.Scan(
		&c.ID,
		&c.MangaID,
		&c.Number,
		&c.Title,
		&c.PageURLs,
		&c.ApprovalStatus,
		&c.PublishedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Chapter")
		}
		return nil, fmt.Errorf("postgres: failed to scan chapter: %w", err)
	}
	return &c, nil
}

func (repository *chapterRepository) FindByNumber(ctx context.Context, mangaID string, number int) (*Chapter, error) {
	t := schema.CoreChapter
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
		selectColumns(), t.Table, t.MangaID, t.ChapterNumber, t.DeletedAt,
	)
	return scanChapter(repository.pool.QueryRow(ctx, query, mangaID, number))
}

func (repository *chapterRepository) ListByManga(ctx context.Context, mangaID string, limit, offset int) ([]*Chapter, int, error) {
	t := schema.CoreChapter
	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) OVER() AS total
		 FROM %s
		 WHERE %s = $1 AND %s IS NULL
		 ORDER BY %s ASC
		 LIMIT $2 OFFSET $3`,
		selectColumns(), t.Table, t.MangaID, t.DeletedAt, t.ChapterNumber,
	)

	rows, err := repository.pool.Query(ctx, query, mangaID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	var (
		chapters []*Chapter
		total    int
	)
	for rows.Next() {
		var c Chapter
		err := rows.Scan(
			&c.ID,
			&c.MangaID,
			&c.Number,
			&c.Title,
			&c.PageURLs,
			&c.ApprovalStatus,
			&c.PublishedAt,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.DeletedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan chapter row: %w", err)
		}
		chapters = append(chapters, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate chapters: %w", err)
	}
	return chapters, total, nil
}

func (repository *chapterRepository) ListPages(ctx context.Context, chapterID string) ([]*Page, error) {
	t := schema.CoreChapterPage
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		t.ID, t.ChapterID, t.PageNumber, t.PageURL, t.Table, t.ChapterID, t.PageNumber,
	)

	rows, err := repository.pool.Query(ctx, query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list chapter pages: %w", err)
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.ChapterID, &p.PageNumber, &p.PageURL); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan chapter page: %w", err)
		}
		pages = append(pages, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate chapter pages: %w", err)
	}
	return pages, nil
}

func (repository *chapterRepository) MergedNumbers(ctx context.Context, mangaID string) ([]int, error) {
	approved := schema.CoreChapter
	pending := schema.ModerationPendingChapter

	// UNION deduplicates, so a number carried by both an approved chapter and
	// a stale pending submission appears exactly once.
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL
		 UNION
		 SELECT %s FROM %s WHERE %s = $1 AND %s = $2
		 ORDER BY 1 ASC`,
		approved.ChapterNumber, approved.Table, approved.MangaID, approved.DeletedAt,
		pending.ChapterNumber, pending.Table, pending.MangaID, pending.Status,
	)

	rows, err := repository.pool.Query(ctx, query, mangaID, ReviewPending)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list chapter numbers: %w", err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan chapter number: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate chapter numbers: %w", err)
	}
	return numbers, nil
}

func (repository *chapterRepository) Promote(ctx context.Context, pendingID string, published *Chapter, pages []*Page) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin promote transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	t := schema.CoreChapter
	insertChapter := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.Table,
		t.ID, t.MangaID, t.ChapterNumber, t.Title, t.PageURLs,
		t.ApprovalStatus, t.PublishedAt, t.CreatedAt, t.UpdatedAt,
	)
	_, err = tx.Exec(ctx, insertChapter,
		published.ID,
		published.MangaID,
		published.Number,
		published.Title,
		published.PageURLs,
		published.ApprovalStatus,
		published.PublishedAt,
		published.CreatedAt,
		published.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert promoted chapter: %w", err)
	}

	if len(pages) > 0 {
		pt := schema.CoreChapterPage
		insertPage := fmt.Sprintf(
			`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
			pt.Table, pt.ID, pt.ChapterID, pt.PageNumber, pt.PageURL,
		)
		batch := &pgx.Batch{}
		for _, page := range pages {
			batch.Queue(insertPage, page.ID, page.ChapterID, page.PageNumber, page.PageURL)
		}
		results := tx.SendBatch(ctx, batch)
		for range pages {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("postgres: failed to insert chapter page: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("postgres: failed to close page batch: %w", err)
		}
	}

	mt := schema.ModerationPendingChapter
	markApproved := fmt.Sprintf(
		`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2`,
		mt.Table, mt.Status, mt.UpdatedAt, mt.ID,
	)
	if _, err := tx.Exec(ctx, markApproved, ReviewApproved, pendingID); err != nil {
		return fmt.Errorf("postgres: failed to mark submission approved: %w", err)
	}

	gt := schema.CoreManga
	bumpCount := fmt.Sprintf(
		`UPDATE %s SET %s = %s + 1, %s = NOW() WHERE %s = $1`,
		gt.Table, gt.ChapterCount, gt.ChapterCount, gt.UpdatedAt, gt.ID,
	)
	if _, err := tx.Exec(ctx, bumpCount, published.MangaID); err != nil {
		return fmt.Errorf("postgres: failed to bump chapter count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit promote transaction: %w", err)
	}
	return nil
}

// # Pending Chapter Repository

// pendingRepository implements the [PendingRepository] interface using pgx.
type pendingRepository struct {
	pool *pgxpool.Pool
}

// NewPendingRepository constructs a PostgreSQL backed moderation store.
func NewPendingRepository(pool *pgxpool.Pool) PendingRepository {
	return &pendingRepository{pool: pool}
}

// scanPending hydrates a [PendingChapter] from a single pgx row.
func scanPending(row pgx.Row) (*PendingChapter, error) {
	var (
		p       PendingChapter
		content []byte
	)
	err := row.Scan(
		&p.ID,
		&p.MangaID,
		&p.Number,
		&p.Title,
		&p.Status,
		&content,
		&p.SubmittedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Chapter")
		}
		return nil, fmt.Errorf("postgres: failed to scan pending chapter: %w", err)
	}
	p.Content = decodeContent(content)
	return &p, nil
}

func (repository *pendingRepository) FindByNumber(ctx context.Context, mangaID string, number int) (*PendingChapter, error) {
	t := schema.ModerationPendingChapter
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		strings.Join(t.Columns(), ", "), t.Table, t.MangaID, t.ChapterNumber, t.Status,
	)
	return scanPending(repository.pool.QueryRow(ctx, query, mangaID, number, ReviewPending))
}

func (repository *pendingRepository) FindByID(ctx context.Context, id string) (*PendingChapter, error) {
	t := schema.ModerationPendingChapter
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(t.Columns(), ", "), t.Table, t.ID,
	)
	return scanPending(repository.pool.QueryRow(ctx, query, id))
}

func (repository *pendingRepository) Create(ctx context.Context, pending *PendingChapter) error {
	content, err := json.Marshal(pending.Content)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode submission content: %w", err)
	}

	t := schema.ModerationPendingChapter
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.Table,
		t.ID, t.MangaID, t.ChapterNumber, t.Title, t.Status,
		t.Content, t.SubmittedBy, t.CreatedAt, t.UpdatedAt,
	)
	_, err = repository.pool.Exec(ctx, query,
		pending.ID,
		pending.MangaID,
		pending.Number,
		pending.Title,
		pending.Status,
		content,
		pending.SubmittedBy,
		pending.CreatedAt,
		pending.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A submission for this chapter is already under review")
		}
		return fmt.Errorf("postgres: failed to create submission: %w", err)
	}
	return nil
}

func (repository *pendingRepository) SetStatus(ctx context.Context, id string, status ReviewStatus) error {
	t := schema.ModerationPendingChapter
	query := fmt.Sprintf(
		`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2`,
		t.Table, t.Status, t.UpdatedAt, t.ID,
	)
	tag, err := repository.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to set submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}
	return nil
}
