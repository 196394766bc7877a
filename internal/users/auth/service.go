// Copyright (c) 2026 Komira. All rights reserved.

/*
Package auth implements identity and access management for Komira.

It covers account enrollment, credential verification, refresh-token
rotation, and the two token-driven recovery flows (password reset and email
verification). Accounts and sessions live in Postgres; short-lived recovery
tokens live in Redis with a TTL.

New accounts always start as members; role elevation is an administrative
action outside this package.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/sec"
	"github.com/komira-app/komira/pkg/uuid"
)

// # Contracts

// AccessTokenSigner signs access tokens. Satisfied by the platform JWT
// service.
type AccessTokenSigner interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements the authentication use cases.
type Service struct {
	users        UserRepository
	sessions     SessionRepository
	resetTokens  ResetTokenRepository
	verifyTokens VerificationTokenRepository
	signer       AccessTokenSigner
}

// NewService wires the authentication service to its collaborators.
func NewService(users UserRepository, sessions SessionRepository, resetTokens ResetTokenRepository, verifyTokens VerificationTokenRepository, signer AccessTokenSigner) *Service {
	return &Service{
		users:        users,
		sessions:     sessions,
		resetTokens:  resetTokens,
		verifyTokens: verifyTokens,
		signer:       signer,
	}
}

// # Registration

// RegisterInput holds the data needed to enroll a member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Register enrolls a new member account.

Description: Rejects identities already in use, hashes the password, and
stages an email verification token. The account starts unverified with the
member role.

Returns:
  - *User: The created account
  - error: apperr.Conflict when the email or username is taken
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}
	if _, err := service.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		DisplayName:  input.DisplayName,
		Role:         sec.RoleMember,
	}
	if err := service.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth: failed to create user: %w", err)
	}

	// Verification is best-effort at this point; the token can be re-issued.
	if token, err := sec.GenerateSecureToken(VerificationTokenLength); err == nil {
		_ = service.verifyTokens.Set(ctx, token, user.ID, VerificationTokenTTL)
	}

	return user, nil
}

// # Login & Sessions

// LoginInput is one authentication attempt. Login carries either the
// username or the email address.
type LoginInput struct {
	Login     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession is an established session ready for transport to the client.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login verifies credentials and establishes a session.

Description: The account may be addressed by email or username. Lookup and
password failures share one message so the response never reveals whether
the identity exists.

Returns:
  - *LoginSession: Access token, refresh token, and the account
  - error: apperr.Unauthorized on any credential failure
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.users.FindByEmail(ctx, input.Login)
	if err != nil {
		user, err = service.users.FindByUsername(ctx, input.Login)
	}
	if err != nil || !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.issueSession(ctx, user, input.UserAgent, input.IPAddress)
}

// issueSession mints the access/refresh token pair and records the tracking
// session. Only the refresh token's hash is stored.
func (service *Service) issueSession(ctx context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.signer.GenerateAccessToken(user.ID, user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to sign access token: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	record := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
	}
	if err := service.sessions.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("auth: failed to create session: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout revokes the session behind a refresh token.

Description: Idempotent: an unknown or already-revoked token logs out
successfully.
*/
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	record, err := service.sessions.FindByTokenHash(ctx, sec.HashToken(refreshToken))
	if err != nil {
		return nil
	}
	if err := service.sessions.Revoke(ctx, record.ID); err != nil {
		return fmt.Errorf("auth: failed to revoke session: %w", err)
	}
	return nil
}

/*
RefreshSession rotates a refresh token.

Description: The presented token's session is revoked before a replacement
pair is issued, so a replayed token dies on first reuse.

Returns:
  - *LoginSession: The rotated credentials
  - error: apperr.Unauthorized when the token is unknown, expired, or revoked
*/
func (service *Service) RefreshSession(ctx context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	record, err := service.sessions.FindByTokenHash(ctx, sec.HashToken(refreshToken))
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}
	if err := service.sessions.Revoke(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("auth: failed to revoke rotated session: %w", err)
	}

	user, err := service.users.FindByID(ctx, record.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	return service.issueSession(ctx, user, userAgent, ipAddress)
}

// # Password Recovery

/*
RequestPasswordReset starts the forgot-password flow.

Description: An unknown email returns an empty token and no error, so the
endpoint's response is identical whether or not the account exists.

Returns:
  - string: The reset token to deliver out of band; empty for unknown emails
  - error: Token generation or storage failures
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth: failed to generate reset token: %w", err)
	}
	if err := service.resetTokens.Set(ctx, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth: failed to store reset token: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Exchanges the token for its account, stores the new password
hash, revokes every active session, and burns the token.
*/
func (service *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := service.resetTokens.Get(ctx, token)
	if err != nil {
		return err
	}

	if err := service.storePassword(ctx, userID, newPassword); err != nil {
		return err
	}

	_ = service.sessions.RevokeAll(ctx, userID)
	_ = service.resetTokens.Delete(ctx, token)
	return nil
}

/*
ChangePassword updates the credentials of an authenticated user.

Description: Requires the current password. Every session except the one
making the change is revoked, forcing re-login on other devices.

Returns:
  - error: apperr.Unauthorized when the current password does not match
*/
func (service *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, currentRefreshToken string) error {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	if err := service.storePassword(ctx, userID, newPassword); err != nil {
		return err
	}

	if record, err := service.sessions.FindByTokenHash(ctx, sec.HashToken(currentRefreshToken)); err == nil {
		_ = service.sessions.RevokeOthers(ctx, userID, record.ID)
	}
	return nil
}

func (service *Service) storePassword(ctx context.Context, userID, password string) error {
	hash, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("auth: failed to hash password: %w", err)
	}
	if err := service.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("auth: failed to update password: %w", err)
	}
	return nil
}

/*
VerifyEmail confirms an account's email address.

Description: Exchanges the verification token for its account, marks the
account verified, and burns the token.
*/
func (service *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := service.verifyTokens.Get(ctx, token)
	if err != nil {
		return err
	}
	if err := service.users.MarkVerified(ctx, userID); err != nil {
		return fmt.Errorf("auth: failed to mark user verified: %w", err)
	}
	_ = service.verifyTokens.Delete(ctx, token)
	return nil
}
