// Copyright (c) 2026 Komira. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/constants"
	"github.com/komira-app/komira/internal/platform/middleware"
	requestutil "github.com/komira-app/komira/internal/platform/request"
	"github.com/komira-app/komira/internal/platform/respond"
	"github.com/komira-app/komira/internal/platform/validate"
)

// # Handler

// Handler is the HTTP layer for authentication.
//
// Refresh tokens travel only in an HttpOnly cookie; the response body never
// carries them.
type Handler struct {
	service *Service
}

// NewHandler constructs an auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted under /auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)
	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)
		authed.Post("/logout", handler.logout)
		authed.Post("/change-password", handler.changePassword)
	})
	return router
}

// decodeBody parses and validates a JSON request payload in one step.
func decodeBody[T interface{ validate() error }](request *http.Request) (T, error) {
	var payload T
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		return payload, validate.ErrInvalidJSON
	}
	return payload, payload.validate()
}

// # Cookie Handling

// setRefreshCookie installs the refresh token as a strict HttpOnly cookie.
func setRefreshCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie expires the refresh cookie on the client.
func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshCookie reads the refresh token cookie, empty when absent.
func refreshCookie(request *http.Request) string {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// # Enrollment & Login

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (payload registerRequest) validate() error {
	v := &validate.Validator{}
	v.Required(FieldUsername, payload.Username).MinLen(FieldUsername, payload.Username, 3)
	v.Required(FieldEmail, payload.Email).Email(FieldEmail, payload.Email)
	v.Required(FieldPassword, payload.Password).MinLen(FieldPassword, payload.Password, 8)
	return v.Err()
}

/*
POST /api/v1/auth/register.

Response:
  - 201: User: The created account
  - 400: Validation: Username, email, or password constraints
  - 409: Conflict: Username or email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	payload, err := decodeBody[registerRequest](request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Register(request.Context(), RegisterInput{
		Username:    payload.Username,
		Email:       payload.Email,
		Password:    payload.Password,
		DisplayName: payload.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, user)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (payload loginRequest) validate() error {
	v := &validate.Validator{}
	v.Required(FieldLogin, payload.Login)
	v.Required(FieldPassword, payload.Password)
	return v.Err()
}

/*
POST /api/v1/auth/login.

Description: Authenticates by username or email. The access token returns in
the body; the refresh token only as a cookie.

Response:
  - 200: Access token and account
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	payload, err := decodeBody[loginRequest](request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), LoginInput{
		Login:     payload.Login,
		Password:  payload.Password,
		UserAgent: request.UserAgent(),
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)
	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldUser:        session.User,
	})
}

/*
POST /api/v1/auth/logout.

Description: Revokes the session behind the refresh cookie and clears the
cookie. Succeeds whether or not a live session existed.

Response:
  - 204: No content
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if token := refreshCookie(request); token != "" {
		_ = handler.service.Logout(request.Context(), token)
	}
	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
POST /api/v1/auth/refresh.

Description: Rotates the refresh token and issues a fresh access token. The
presented token is dead after this call regardless of outcome.

Response:
  - 200: New access token metadata
  - 401: ErrUnauthorized: Missing, expired, or already-rotated token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	token := refreshCookie(request)
	if token == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.service.RefreshSession(request.Context(), token, request.UserAgent(), middleware.RealIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)
	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
	})
}

// # Recovery Flows

type verifyEmailRequest struct {
	Token string `json:"token"`
}

func (payload verifyEmailRequest) validate() error {
	if payload.Token == "" {
		return validate.RequiredError(FieldToken, "is required")
	}
	return nil
}

/*
POST /api/v1/auth/verify-email.

Response:
  - 200: Confirmation message
  - 400: Validation: Missing or unknown token
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	payload, err := decodeBody[verifyEmailRequest](request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.VerifyEmail(request.Context(), payload.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{FieldMessage: "Email verified successfully"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (payload forgotPasswordRequest) validate() error {
	v := &validate.Validator{}
	v.Required(FieldEmail, payload.Email).Email(FieldEmail, payload.Email)
	return v.Err()
}

/*
POST /api/v1/auth/forgot-password.

Description: The response is the same whether or not the email is
registered.

Response:
  - 200: Generic confirmation message
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	payload, err := decodeBody[forgotPasswordRequest](request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.service.RequestPasswordReset(request.Context(), payload.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (payload resetPasswordRequest) validate() error {
	v := &validate.Validator{}
	v.Required(FieldToken, payload.Token)
	v.Required(FieldPassword, payload.Password).MinLen(FieldPassword, payload.Password, 8)
	return v.Err()
}

/*
POST /api/v1/auth/reset-password.

Response:
  - 200: Confirmation message
  - 400: Validation: Missing token or password shorter than 8 characters
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	payload, err := decodeBody[resetPasswordRequest](request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ResetPassword(request.Context(), payload.Token, payload.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{FieldMessage: "Password updated successfully"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (payload changePasswordRequest) validate() error {
	v := &validate.Validator{}
	v.Required(FieldCurrentPassword, payload.CurrentPassword)
	v.Required(FieldNewPassword, payload.NewPassword).MinLen(FieldNewPassword, payload.NewPassword, 8)
	return v.Err()
}

/*
POST /api/v1/auth/change-password.

Description: Requires both authentication and the live session cookie, so a
stolen access token alone cannot rotate credentials.

Response:
  - 200: Confirmation message
  - 401: ErrUnauthorized: Wrong current password or missing session cookie
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	token := refreshCookie(request)
	if token == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing active session cookie"))
		return
	}

	payload, err := decodeBody[changePasswordRequest](request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ChangePassword(request.Context(), claims.UserID, payload.CurrentPassword, payload.NewPassword, token); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{FieldMessage: "Password changed successfully"})
}
