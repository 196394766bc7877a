// Copyright (c) 2026 Komira. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # Storage Contracts

// UserRepository is the persistence contract for account records.
//
// Lookups exclude soft-deleted accounts. Absent rows surface as
// apperr.NotFound rather than a nil entity.
type UserRepository interface {
	// FindByID returns the account with the given primary key.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account registered under the email address.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account registered under the username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create inserts a freshly registered account.
	Create(ctx context.Context, user *User) error

	// Update persists the mutable profile fields.
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces only the stored password hash.
	UpdatePassword(ctx context.Context, userID, newHash string) error

	// SoftDelete marks the account deleted without removing the row.
	SoftDelete(ctx context.Context, id string) error

	// MarkVerified flips the account to verified.
	MarkVerified(ctx context.Context, userID string) error
}

// SessionRepository is the persistence contract for refresh-token sessions.
//
// FindByTokenHash only ever returns live sessions; revocation and expiry
// filtering is the store's responsibility.
type SessionRepository interface {
	// Create records a freshly issued session.
	Create(ctx context.Context, session *Session) error

	// FindByTokenHash resolves a refresh-token hash into its live session.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke invalidates one session by primary key.
	Revoke(ctx context.Context, sessionID string) error

	// RevokeAll invalidates every live session owned by the user.
	RevokeAll(ctx context.Context, userID string) error

	// RevokeOthers invalidates the user's live sessions except the given one.
	RevokeOthers(ctx context.Context, userID, currentSessionID string) error

	// DeleteExpired physically removes sessions past their expiry.
	DeleteExpired(ctx context.Context) error
}

// TokenStore is the persistence contract for single-use recovery tokens.
// Implementations expire entries on their own after the TTL; Get on an
// absent or expired token returns apperr.NotFound.
type TokenStore interface {
	// Set stores the token-to-user association for the given lifetime.
	Set(ctx context.Context, token string, userID string, ttl time.Duration) error

	// Get returns the user the token was issued for.
	Get(ctx context.Context, token string) (string, error)

	// Delete burns the token after use.
	Delete(ctx context.Context, token string) error
}

// ResetTokenRepository stores volatile password reset tokens.
type ResetTokenRepository interface {
	TokenStore
}

// VerificationTokenRepository stores volatile email verification tokens.
type VerificationTokenRepository interface {
	TokenStore
}
