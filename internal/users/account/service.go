// Copyright (c) 2026 Komira. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/komira-app/komira/internal/users/auth"
	"github.com/komira-app/komira/pkg/pointer"
)

// # Service Layer

// Service implements the profile and session-security use cases.
type Service struct {
	accountRepository AccountRepository
	sessionRepository SessionRepository
	logger            *slog.Logger
}

// NewService constructs the account [Service].
func NewService(
	accountRepo AccountRepository,
	sessionRepo SessionRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRepository: sessionRepo,
		logger:            logger,
	}
}

// # Profile Management

// GetProfile returns the full private profile of a user.
func (service *Service) GetProfile(ctx context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account: failed to load profile: %w", err)
	}
	return user, nil
}

// UpdateProfileInput carries a partial profile update. Nil fields keep
// their stored value.
type UpdateProfileInput struct {
	DisplayName *string
	AvatarURL   *string
	Bio         *string
}

/*
UpdateProfile applies a partial update to the user's profile.

Description: Loads the stored profile, overlays the provided fields, and
writes the result back, so absent fields survive untouched.

Parameters:
  - ctx: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The profile after the update.
  - error: Lookup or persistence failures.
*/
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account: failed to load profile for update: %w", err)
	}

	user.DisplayName = pointer.Fallback(input.DisplayName, user.DisplayName)
	user.AvatarURL = pointer.Fallback(input.AvatarURL, user.AvatarURL)
	user.Bio = pointer.Fallback(input.Bio, user.Bio)

	if err := service.accountRepository.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("account: failed to persist profile: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
DeleteAccount soft-deletes the account and signs the user out everywhere.

Description: Session revocation after the delete is best effort; the
account is already unreachable and expired sessions cannot resolve it.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - error: Deletion failures.
*/
func (service *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := service.accountRepository.SoftDelete(ctx, userID); err != nil {
		return fmt.Errorf("account: failed to delete account: %w", err)
	}

	_ = service.sessionRepository.RevokeAll(ctx, userID)

	service.logger.Warn("user_account_deleted", slog.String("user_id", userID))

	return nil
}

// # Session Security

// ListSessions returns the user's live device sessions. The session whose
// token hash matches currentTokenHash is flagged as current.
func (service *Service) ListSessions(ctx context.Context, userID, currentTokenHash string) ([]SessionInfo, error) {
	sessions, err := service.sessionRepository.FindActiveByUserID(ctx, userID, currentTokenHash)
	if err != nil {
		return nil, fmt.Errorf("account: failed to list sessions: %w", err)
	}
	return sessions, nil
}

// RevokeSession forces a sign-out on one device.
func (service *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	if err := service.sessionRepository.Revoke(ctx, userID, sessionID); err != nil {
		return fmt.Errorf("account: failed to revoke session: %w", err)
	}

	service.logger.Info("user_session_revoked",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	return nil
}

// RevokeOtherSessions forces a sign-out on every device except the one
// holding the given refresh-token hash.
func (service *Service) RevokeOtherSessions(ctx context.Context, userID, currentTokenHash string) error {
	if err := service.sessionRepository.RevokeOthers(ctx, userID, currentTokenHash); err != nil {
		return fmt.Errorf("account: failed to revoke other sessions: %w", err)
	}

	service.logger.Info("user_other_sessions_revoked", slog.String("user_id", userID))

	return nil
}
