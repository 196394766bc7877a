// Copyright (c) 2026 Komira. All rights reserved.

package preference

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

// preferenceRepository implements the [Repository] interface using pgx.
type preferenceRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed preference store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &preferenceRepository{pool: pool}
}

func (repository *preferenceRepository) Find(ctx context.Context, userID string) (*Preferences, error) {
	t := schema.UserPreferences
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(t.Columns(), ", "), t.Table, t.UserID,
	)

	var prefs Preferences
	err := repository.pool.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.ReadingMode,
		&prefs.PageFit,
		&prefs.PreloadPages,
		&prefs.DataSaver,
		&prefs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Preferences")
		}
		return nil, fmt.Errorf("postgres: failed to find preferences: %w", err)
	}
	return &prefs, nil
}

func (repository *preferenceRepository) Upsert(ctx context.Context, prefs *Preferences) error {
	t := schema.UserPreferences
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()`,
		t.Table,
		t.UserID, t.ReadingMode, t.PageFit, t.PreloadPages, t.DataSaver, t.UpdatedAt,
		t.UserID,
		t.ReadingMode, t.ReadingMode,
		t.PageFit, t.PageFit,
		t.PreloadPages, t.PreloadPages,
		t.DataSaver, t.DataSaver,
		t.UpdatedAt,
	)

	_, err := repository.pool.Exec(ctx, query,
		prefs.UserID,
		prefs.ReadingMode,
		prefs.PageFit,
		prefs.PreloadPages,
		prefs.DataSaver,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to upsert preferences: %w", err)
	}
	return nil
}
