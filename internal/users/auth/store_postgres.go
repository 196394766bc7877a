// Copyright (c) 2026 Komira. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/database/schema"
)

// # Account Store

// userRepository implements [UserRepository] on users.account.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a PostgreSQL backed account store.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// userColumns is the shared projection for account lookups.
func userColumns() string {
	t := schema.UserAccount
	return strings.Join([]string{
		t.ID, t.Username, t.Email, t.Password, t.DisplayName,
		t.Role, t.IsVerified, t.CreatedAt, t.UpdatedAt,
	}, ", ")
}

// scanUser hydrates a [User] from a single pgx row, mapping absent rows to
// the given not-found message.
func scanUser(row pgx.Row, notFound string) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Role,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(notFound)
		}
		return nil, fmt.Errorf("postgres: failed to scan account: %w", err)
	}
	return &user, nil
}

// findUserBy runs the shared account lookup keyed on one column.
func (repository *userRepository) findUserBy(ctx context.Context, column, value, notFound string) (*User, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`, userColumns(), t.Table, column, t.DeletedAt)

	return scanUser(repository.pool.QueryRow(ctx, query, value), notFound)
}

// FindByID returns the account with the given primary key.
func (repository *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return repository.findUserBy(ctx, schema.UserAccount.ID, id, "User not found")
}

// FindByEmail returns the account registered under the given email address.
func (repository *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findUserBy(ctx, schema.UserAccount.Email, email, "User not found with this email")
}

// FindByUsername returns the account registered under the given username.
func (repository *userRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return repository.findUserBy(ctx, schema.UserAccount.Username, username, "User not found with this username")
}

/*
Create inserts a freshly registered account.

Description: Initializes CreatedAt when the caller left it zero and always
stamps UpdatedAt. Uniqueness of username and email is enforced by the table
constraints.

Parameters:
  - ctx: context.Context
  - user: *User

Returns:
  - error: Constraint violations or connectivity errors.
*/
func (repository *userRepository) Create(ctx context.Context, user *User) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.Table,
		t.ID, t.Username, t.Email, t.Password, t.DisplayName,
		t.Role, t.IsVerified, t.CreatedAt, t.UpdatedAt)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.Role,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert account: %w", err)
	}
	return nil
}

// Update persists the mutable profile fields and refreshes UpdatedAt.
func (repository *userRepository) Update(ctx context.Context, user *User) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6
		WHERE %s = $1 AND %s IS NULL
	`, t.Table,
		t.Username, t.DisplayName, t.AvatarURL, t.Bio, t.UpdatedAt,
		t.ID, t.DeletedAt)

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.DisplayName,
		user.AvatarURL,
		user.Bio,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update account: %w", err)
	}
	return nil
}

// UpdatePassword replaces only the stored password hash.
func (repository *userRepository) UpdatePassword(ctx context.Context, userID, newHash string) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3
		WHERE %s = $1 AND %s IS NULL
	`, t.Table, t.Password, t.UpdatedAt, t.ID, t.DeletedAt)

	_, err := repository.pool.Exec(ctx, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to update password: %w", err)
	}
	return nil
}

// SoftDelete stamps DeletedAt so the row drops out of every lookup while the
// data stays available for retention.
func (repository *userRepository) SoftDelete(ctx context.Context, id string) error {
	t := schema.UserAccount
	query := fmt.Sprintf("UPDATE %s SET %s = $2 WHERE %s = $1", t.Table, t.DeletedAt, t.ID)

	_, err := repository.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to soft delete account: %w", err)
	}
	return nil
}

// MarkVerified flips the account to verified after an email confirmation.
func (repository *userRepository) MarkVerified(ctx context.Context, userID string) error {
	t := schema.UserAccount
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE, %s = $2 WHERE %s = $1",
		t.Table, t.IsVerified, t.UpdatedAt, t.ID)

	_, err := repository.pool.Exec(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to mark account verified: %w", err)
	}
	return nil
}

// # Session Store

// sessionRepository implements [SessionRepository] on users.session.
type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL backed session store.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

// Create records a freshly issued refresh-token session.
func (repository *sessionRepository) Create(ctx context.Context, session *Session) error {
	t := schema.UserSession
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.Table,
		t.ID, t.UserID, t.TokenHash, t.UserAgent,
		t.IPAddress, t.ExpiresAt, t.IsRevoked, t.CreatedAt)

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	// The ipaddress column is INET; an empty string is not a valid inet
	// literal, so it has to go in as NULL.
	var ipAddress any
	if session.IPAddress != "" {
		ipAddress = session.IPAddress
	}

	_, err := repository.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.UserAgent,
		ipAddress,
		session.ExpiresAt,
		session.IsRevoked,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert session: %w", err)
	}
	return nil
}

/*
FindByTokenHash resolves a refresh-token hash into its live session.

Description: Revoked and expired sessions are filtered in the query itself,
so a hit here is always a usable session.

Parameters:
  - ctx: context.Context
  - tokenHash: string

Returns:
  - *Session: The matching live session.
  - error: apperr.NotFound when no live session matches.
*/
func (repository *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	t := schema.UserSession
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, COALESCE(host(%s), ''), %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()
	`, t.ID, t.UserID, t.TokenHash, t.UserAgent,
		t.IPAddress, t.ExpiresAt, t.IsRevoked, t.CreatedAt,
		t.Table,
		t.TokenHash, t.IsRevoked, t.ExpiresAt)

	var session Session
	err := repository.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.IsRevoked,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session not found or expired")
		}
		return nil, fmt.Errorf("postgres: failed to scan session: %w", err)
	}
	return &session, nil
}

// Revoke invalidates one session by primary key.
func (repository *sessionRepository) Revoke(ctx context.Context, sessionID string) error {
	t := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1", t.Table, t.IsRevoked, t.ID)

	_, err := repository.pool.Exec(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAll invalidates every live session owned by the user.
func (repository *sessionRepository) RevokeAll(ctx context.Context, userID string) error {
	t := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE",
		t.Table, t.IsRevoked, t.UserID, t.IsRevoked)

	_, err := repository.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke sessions: %w", err)
	}
	return nil
}

// RevokeOthers invalidates every live session owned by the user except the
// one the caller is on. Used after a password change.
func (repository *sessionRepository) RevokeOthers(ctx context.Context, userID, currentSessionID string) error {
	t := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s != $2 AND %s = FALSE",
		t.Table, t.IsRevoked, t.UserID, t.ID, t.IsRevoked)

	_, err := repository.pool.Exec(ctx, query, userID, currentSessionID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke other sessions: %w", err)
	}
	return nil
}

// DeleteExpired physically removes sessions past their expiry. Run from the
// maintenance path, not the request path.
func (repository *sessionRepository) DeleteExpired(ctx context.Context) error {
	t := schema.UserSession
	query := fmt.Sprintf("DELETE FROM %s WHERE %s <= NOW()", t.Table, t.ExpiresAt)

	_, err := repository.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete expired sessions: %w", err)
	}
	return nil
}
