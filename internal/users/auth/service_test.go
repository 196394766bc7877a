// Copyright (c) 2026 Komira. All rights reserved.

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/sec"
	"github.com/komira-app/komira/internal/users/auth"
)

// # Fakes

type fakeUserRepository struct {
	byID       map[string]*auth.User
	byEmail    map[string]*auth.User
	byUsername map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		byID:       map[string]*auth.User{},
		byEmail:    map[string]*auth.User{},
		byUsername: map[string]*auth.User{},
	}
}

func (f *fakeUserRepository) add(user *auth.User) {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	f.byUsername[user.Username] = user
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	if user, ok := f.byUsername[username]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	f.add(user)
	return nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	f.add(user)
	return nil
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	if user, ok := f.byID[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

func (f *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeUserRepository) MarkVerified(_ context.Context, userID string) error {
	if user, ok := f.byID[userID]; ok {
		user.IsVerified = true
	}
	return nil
}

type fakeSessionRepository struct {
	sessions map[string]*auth.Session
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: map[string]*auth.Session{}}
}

func (f *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range f.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked {
			return session, nil
		}
	}
	return nil, apperr.NotFound("Session not found or expired")
}

func (f *fakeSessionRepository) Revoke(_ context.Context, sessionID string) error {
	if session, ok := f.sessions[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (f *fakeSessionRepository) RevokeAll(_ context.Context, userID string) error {
	for _, session := range f.sessions {
		if session.UserID == userID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeSessionRepository) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	for _, session := range f.sessions {
		if session.UserID == userID && session.ID != currentSessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeSessionRepository) DeleteExpired(_ context.Context) error { return nil }

func (f *fakeSessionRepository) live(userID string) int {
	count := 0
	for _, session := range f.sessions {
		if session.UserID == userID && !session.IsRevoked {
			count++
		}
	}
	return count
}

type fakeTokenStore struct {
	entries map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{entries: map[string]string{}}
}

func (f *fakeTokenStore) Set(_ context.Context, token, userID string, _ time.Duration) error {
	f.entries[token] = userID
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context, token string) (string, error) {
	if userID, ok := f.entries[token]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Token")
}

func (f *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(f.entries, token)
	return nil
}

type fakeSigner struct{}

func (fakeSigner) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	return "signed-for-" + userID, nil
}

type harness struct {
	users        *fakeUserRepository
	sessions     *fakeSessionRepository
	resetTokens  *fakeTokenStore
	verifyTokens *fakeTokenStore
	service      *auth.Service
}

func newHarness() *harness {
	h := &harness{
		users:        newFakeUserRepository(),
		sessions:     newFakeSessionRepository(),
		resetTokens:  newFakeTokenStore(),
		verifyTokens: newFakeTokenStore(),
	}
	h.service = auth.NewService(h.users, h.sessions, h.resetTokens, h.verifyTokens, fakeSigner{})
	return h
}

// seedUser registers an account directly in the fake store with the given
// plaintext password.
func (h *harness) seedUser(t *testing.T, id, username, email, password string) *auth.User {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	user := &auth.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         sec.RoleMember,
	}
	h.users.add(user)
	return user
}

// # Registration

func TestRegister_StagesVerificationToken(t *testing.T) {
	h := newHarness()

	user, err := h.service.Register(context.Background(), auth.RegisterInput{
		Username: "rika",
		Email:    "rika@example.com",
		Password: "correct horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.Len(t, h.verifyTokens.entries, 1)
}

func TestRegister_RejectsTakenIdentity(t *testing.T) {
	h := newHarness()
	h.seedUser(t, "u1", "rika", "rika@example.com", "pw-original")

	_, err := h.service.Register(context.Background(), auth.RegisterInput{
		Username: "other", Email: "rika@example.com", Password: "irrelevant1",
	})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 409, ae.HTTPStatus)

	_, err = h.service.Register(context.Background(), auth.RegisterInput{
		Username: "rika", Email: "new@example.com", Password: "irrelevant1",
	})
	ae = apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 409, ae.HTTPStatus)
}

// # Login & Rotation

func TestLogin_ByEmailOrUsername(t *testing.T) {
	h := newHarness()
	h.seedUser(t, "u1", "rika", "rika@example.com", "correct horse")

	for _, login := range []string{"rika@example.com", "rika"} {
		session, err := h.service.Login(context.Background(), auth.LoginInput{
			Login: login, Password: "correct horse",
		})
		require.NoError(t, err)
		assert.Equal(t, "signed-for-u1", session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
	}
	assert.Equal(t, 2, h.sessions.live("u1"))
}

func TestLogin_WrongPasswordSharesOneMessage(t *testing.T) {
	h := newHarness()
	h.seedUser(t, "u1", "rika", "rika@example.com", "correct horse")

	_, errWrongPassword := h.service.Login(context.Background(), auth.LoginInput{
		Login: "rika", Password: "wrong",
	})
	_, errUnknownUser := h.service.Login(context.Background(), auth.LoginInput{
		Login: "nobody", Password: "wrong",
	})

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownUser)
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
}

func TestRefreshSession_RotatesToken(t *testing.T) {
	h := newHarness()
	h.seedUser(t, "u1", "rika", "rika@example.com", "correct horse")
	ctx := context.Background()

	first, err := h.service.Login(ctx, auth.LoginInput{Login: "rika", Password: "correct horse"})
	require.NoError(t, err)

	second, err := h.service.RefreshSession(ctx, first.RefreshToken, "ua", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, 1, h.sessions.live("u1"))

	// The rotated-out token must be dead on replay.
	_, err = h.service.RefreshSession(ctx, first.RefreshToken, "ua", "10.0.0.1")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 401, ae.HTTPStatus)
}

func TestLogout_IsIdempotent(t *testing.T) {
	h := newHarness()
	h.seedUser(t, "u1", "rika", "rika@example.com", "correct horse")
	ctx := context.Background()

	session, err := h.service.Login(ctx, auth.LoginInput{Login: "rika", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, h.service.Logout(ctx, session.RefreshToken))
	assert.Equal(t, 0, h.sessions.live("u1"))
	require.NoError(t, h.service.Logout(ctx, session.RefreshToken))
	require.NoError(t, h.service.Logout(ctx, "never-issued"))
}

// # Recovery Flows

func TestPasswordReset_RoundTrip(t *testing.T) {
	h := newHarness()
	h.seedUser(t, "u1", "rika", "rika@example.com", "old password")
	ctx := context.Background()

	_, err := h.service.Login(ctx, auth.LoginInput{Login: "rika", Password: "old password"})
	require.NoError(t, err)

	token, err := h.service.RequestPasswordReset(ctx, "rika@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, h.service.ResetPassword(ctx, token, "new password"))

	// Every session dies with the reset, the token burns, and only the new
	// password works.
	assert.Equal(t, 0, h.sessions.live("u1"))
	assert.Empty(t, h.resetTokens.entries)
	_, err = h.service.Login(ctx, auth.LoginInput{Login: "rika", Password: "old password"})
	require.Error(t, err)
	_, err = h.service.Login(ctx, auth.LoginInput{Login: "rika", Password: "new password"})
	require.NoError(t, err)
}

func TestPasswordReset_UnknownEmailStaysSilent(t *testing.T) {
	h := newHarness()

	token, err := h.service.RequestPasswordReset(context.Background(), "ghost@example.com")

	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, h.resetTokens.entries)
}

func TestChangePassword_RequiresCurrentPassword(t *testing.T) {
	h := newHarness()
	h.seedUser(t, "u1", "rika", "rika@example.com", "old password")

	err := h.service.ChangePassword(context.Background(), "u1", "wrong", "new password", "")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 401, ae.HTTPStatus)
}

func TestChangePassword_KeepsCurrentSession(t *testing.T) {
	h := newHarness()
	h.seedUser(t, "u1", "rika", "rika@example.com", "old password")
	ctx := context.Background()

	other, err := h.service.Login(ctx, auth.LoginInput{Login: "rika", Password: "old password"})
	require.NoError(t, err)
	current, err := h.service.Login(ctx, auth.LoginInput{Login: "rika", Password: "old password"})
	require.NoError(t, err)

	require.NoError(t, h.service.ChangePassword(ctx, "u1", "old password", "new password", current.RefreshToken))

	assert.Equal(t, 1, h.sessions.live("u1"))
	_, err = h.service.RefreshSession(ctx, other.RefreshToken, "ua", "")
	require.Error(t, err)
	_, err = h.service.RefreshSession(ctx, current.RefreshToken, "ua", "")
	require.NoError(t, err)
}

func TestVerifyEmail_MarksAccountAndBurnsToken(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	user, err := h.service.Register(ctx, auth.RegisterInput{
		Username: "rika", Email: "rika@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	var token string
	for stored := range h.verifyTokens.entries {
		token = stored
	}
	require.NotEmpty(t, token)

	require.NoError(t, h.service.VerifyEmail(ctx, token))
	assert.True(t, h.users.byID[user.ID].IsVerified)
	assert.Empty(t, h.verifyTokens.entries)

	err = h.service.VerifyEmail(ctx, token)
	require.Error(t, err)
}
