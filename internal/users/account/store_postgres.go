// Copyright (c) 2026 Komira. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/database/schema"
	"github.com/komira-app/komira/internal/users/auth"
)

// # Profile Store

// accountRepository implements [AccountRepository] on users.account.
type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository constructs a PostgreSQL backed profile store.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

/*
FindByID returns the full account record for profile display.

Description: Unlike the auth package's lookup, this projection includes the
avatar and bio columns the profile endpoints render.

Parameters:
  - ctx: context.Context
  - id: string

Returns:
  - *auth.User: The complete profile.
  - error: apperr.NotFound on absent or soft-deleted rows.
*/
func (repository *accountRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`, t.ID, t.Username, t.Email, t.Password, t.DisplayName,
		t.AvatarURL, t.Bio, t.Role, t.IsVerified, t.CreatedAt, t.UpdatedAt,
		t.Table, t.ID, t.DeletedAt)

	var user auth.User
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Bio,
		&user.Role,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres: failed to scan profile: %w", err)
	}
	return &user, nil
}

// Update persists the profile fields a user may edit about themselves.
func (repository *accountRepository) Update(ctx context.Context, user *auth.User) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $1 AND %s IS NULL
	`, t.Table,
		t.DisplayName, t.AvatarURL, t.Bio, t.UpdatedAt,
		t.ID, t.DeletedAt)

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.DisplayName,
		user.AvatarURL,
		user.Bio,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update profile: %w", err)
	}
	return nil
}

// SoftDelete stamps DeletedAt, hiding the account from every lookup.
func (repository *accountRepository) SoftDelete(ctx context.Context, id string) error {
	t := schema.UserAccount
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1", t.Table, t.DeletedAt, t.ID)

	_, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to soft delete account: %w", err)
	}
	return nil
}

// # Session Audit Store

// sessionAuditRepository implements [SessionRepository] on users.session.
type sessionAuditRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL backed session audit store.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionAuditRepository{pool: pool}
}

/*
FindActiveByUserID lists the user's live device sessions, newest first.

Description: The current-session flag is computed in SQL by comparing each
row's token hash against the hash of the caller's refresh token, so the
hash itself never crosses into the transport layer.

Parameters:
  - ctx: context.Context
  - userID: string
  - currentTokenHash: string (empty marks nothing)

Returns:
  - []SessionInfo: Live sessions for the account.
  - error: Retrieval failures.
*/
func (repository *sessionAuditRepository) FindActiveByUserID(ctx context.Context, userID, currentTokenHash string) ([]SessionInfo, error) {
	t := schema.UserSession
	query := fmt.Sprintf(`
		SELECT %s, %s, COALESCE(host(%s), ''), %s, %s, (%s = $2)
		FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()
		ORDER BY %s DESC
	`, t.ID, t.UserAgent, t.IPAddress, t.CreatedAt, t.ExpiresAt, t.TokenHash,
		t.Table,
		t.UserID, t.IsRevoked, t.ExpiresAt,
		t.CreatedAt)

	rows, err := repository.pool.Query(ctx, query, userID, currentTokenHash)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var session SessionInfo
		err := rows.Scan(
			&session.ID,
			&session.UserAgent,
			&session.IPAddress,
			&session.CreatedAt,
			&session.ExpiresAt,
			&session.IsCurrent,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// Revoke invalidates one session. The userID predicate enforces ownership;
// revoking someone else's session ID is a silent no-op.
func (repository *sessionAuditRepository) Revoke(ctx context.Context, userID, sessionID string) error {
	t := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = $2",
		t.Table, t.IsRevoked, t.ID, t.UserID)

	_, err := repository.pool.Exec(ctx, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke session: %w", err)
	}
	return nil
}

// RevokeOthers invalidates every live session except the one matching the
// caller's token hash.
func (repository *sessionAuditRepository) RevokeOthers(ctx context.Context, userID, currentTokenHash string) error {
	t := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s != $2 AND %s = FALSE",
		t.Table, t.IsRevoked, t.UserID, t.TokenHash, t.IsRevoked)

	_, err := repository.pool.Exec(ctx, query, userID, currentTokenHash)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke other sessions: %w", err)
	}
	return nil
}

// RevokeAll invalidates every live session owned by the user.
func (repository *sessionAuditRepository) RevokeAll(ctx context.Context, userID string) error {
	t := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE",
		t.Table, t.IsRevoked, t.UserID, t.IsRevoked)

	_, err := repository.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke sessions: %w", err)
	}
	return nil
}
