// Copyright (c) 2026 Komira. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/constants"
	requestutil "github.com/komira-app/komira/internal/platform/request"
	"github.com/komira-app/komira/internal/platform/respond"
	"github.com/komira-app/komira/internal/platform/sec"
	"github.com/komira-app/komira/internal/platform/validate"
)

// # Handler

// Handler serves profile and device session endpoints. Everything here
// sits behind the RequireAuth middleware except public profile
// discovery.
type Handler struct {
	service *Service
}

// NewHandler constructs an account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for the account endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)
	router.Delete("/me", handler.deleteMe)

	router.Get("/me/sessions", handler.listSessions)
	router.Delete("/me/sessions", handler.revokeOtherSessions)
	router.Delete("/me/sessions/{id}", handler.revokeSession)

	router.Get("/users/{id}", handler.getUserProfile)

	return router
}

// callerID extracts the authenticated user ID, writing the 401 itself
// when the claims are missing.
func callerID(writer http.ResponseWriter, request *http.Request) (string, bool) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return "", false
	}
	return userID, true
}

// currentTokenHash hashes the caller's refresh cookie so storage can match
// it against stored sessions. Empty when the cookie is absent, which
// matches no session.
func currentTokenHash(request *http.Request) string {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return sec.HashToken(cookie.Value)
}

// # Profile Endpoints

/*
GET /api/v1/me.

Response:
  - 200: User: The caller's full private profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, ok := callerID(writer, request)
	if !ok {
		return
	}

	profile, err := handler.service.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

type updateMeRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

func (payload updateMeRequest) validate() error {
	v := &validate.Validator{}
	if payload.DisplayName != nil {
		v.MinLen("display_name", *payload.DisplayName, 2).
			MaxLen("display_name", *payload.DisplayName, 50)
	}
	if payload.Bio != nil {
		v.MaxLen("bio", *payload.Bio, 500)
	}
	return v.Err()
}

/*
PATCH /api/v1/me.

Description: Partial update; only the fields present in the payload change.

Response:
  - 200: User: The profile after the update
  - 400: Validation: Display name or bio length constraints
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, ok := callerID(writer, request)
	if !ok {
		return
	}

	var payload updateMeRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := payload.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		DisplayName: payload.DisplayName,
		AvatarURL:   payload.AvatarURL,
		Bio:         payload.Bio,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
DELETE /api/v1/me.

Description: Soft-deletes the account and revokes every session.

Response:
  - 204: No content
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	userID, ok := callerID(writer, request)
	if !ok {
		return
	}

	if err := handler.service.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
GET /api/v1/users/{id}.

Response:
  - 200: User: Profile of the requested user
  - 404: ErrNotFound: Unknown or deleted account
*/
func (handler *Handler) getUserProfile(writer http.ResponseWriter, request *http.Request) {
	userID := chi.URLParam(request, "id")
	if userID == "" {
		respond.Error(writer, request, apperr.NotFound("User"))
		return
	}

	profile, err := handler.service.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

// # Session Endpoints

/*
GET /api/v1/me/sessions.

Description: Lists the devices signed into the account. The entry for the
requesting device carries is_current = true.

Response:
  - 200: []SessionInfo: Live sessions, newest first
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	userID, ok := callerID(writer, request)
	if !ok {
		return
	}

	sessions, err := handler.service.ListSessions(request.Context(), userID, currentTokenHash(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sessions)
}

/*
DELETE /api/v1/me/sessions/{id}.

Description: Signs out one device. Session IDs belonging to other users
are ignored.

Response:
  - 204: No content
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	userID, ok := callerID(writer, request)
	if !ok {
		return
	}

	sessionID := chi.URLParam(request, "id")
	if err := handler.service.RevokeSession(request.Context(), userID, sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
DELETE /api/v1/me/sessions.

Description: Signs out every device except the one making the request.
Without a refresh cookie this signs out everything, including the caller's
own next refresh.

Response:
  - 204: No content
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) revokeOtherSessions(writer http.ResponseWriter, request *http.Request) {
	userID, ok := callerID(writer, request)
	if !ok {
		return
	}

	if err := handler.service.RevokeOtherSessions(request.Context(), userID, currentTokenHash(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
