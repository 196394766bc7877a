// Copyright (c) 2026 Komira. All rights reserved.

/*
Package account handles user profile management and security settings.

It lets a signed-in user read and update their private identity data,
audit the devices signed into their account, and force sign-outs. Reading
preferences live in the preference package, next to the reader that
consumes them.

The package reuses the [auth.User] entity rather than defining its own;
profile management is a view over the same account rows the auth package
creates.
*/
package account

import (
	"context"
	"time"

	"github.com/komira-app/komira/internal/users/auth"
)

// # Domain Entities

// SessionInfo is the transport view of an active device session. Token
// hashes never leave the storage layer; IsCurrent tells the client which
// entry belongs to the device making the request.
type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current"`
}

// # Storage Contracts

// AccountRepository is the persistence contract for profile management.
type AccountRepository interface {
	// FindByID returns the account with the given primary key.
	FindByID(ctx context.Context, id string) (*auth.User, error)

	// Update persists the mutable profile fields.
	Update(ctx context.Context, user *auth.User) error

	// SoftDelete marks the account deleted without removing the row.
	SoftDelete(ctx context.Context, id string) error
}

// SessionRepository is the audit and revocation contract for device
// sessions. Every method scopes by userID so one user can never touch
// another's sessions.
type SessionRepository interface {
	// FindActiveByUserID lists the user's live sessions, newest first,
	// marking the one whose token hash matches currentTokenHash.
	FindActiveByUserID(ctx context.Context, userID, currentTokenHash string) ([]SessionInfo, error)

	// Revoke invalidates one of the user's sessions by its ID.
	Revoke(ctx context.Context, userID, sessionID string) error

	// RevokeOthers invalidates the user's live sessions except the one
	// matching currentTokenHash.
	RevokeOthers(ctx context.Context, userID, currentTokenHash string) error

	// RevokeAll invalidates every live session owned by the user.
	RevokeAll(ctx context.Context, userID string) error
}
