// Copyright (c) 2026 Komira. All rights reserved.

package preference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/komira-app/komira/internal/platform/middleware"
	requestutil "github.com/komira-app/komira/internal/platform/request"
	"github.com/komira-app/komira/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for reading preferences.
type Handler struct {
	service *Service
}

// NewHandler constructs a new preference [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches preference endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)
		authed.Get("/users/me/preferences", handler.GetPreferences)
		authed.Put("/users/me/preferences", handler.SavePreferences)
	})
}

/*
GET /api/v1/users/me/preferences.

Description: Returns the caller's reading preferences, or the defaults when
none were ever saved.

Response:
  - 200: Preferences
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) GetPreferences(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	prefs, err := handler.service.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, prefs)
}

// savePreferencesRequest defines the inbound JSON schema for preference
// updates.
type savePreferencesRequest struct {
	ReadingMode  string `json:"reading_mode"`
	PageFit      string `json:"page_fit"`
	PreloadPages int    `json:"preload_pages"`
	DataSaver    bool   `json:"data_saver"`
}

/*
PUT /api/v1/users/me/preferences.

Description: Replaces the caller's reading preferences.

Request:
  - body: savePreferencesRequest

Response:
  - 200: Preferences: The stored configuration
  - 400: Validation: Unknown mode, fit, or preload depth
*/
func (handler *Handler) SavePreferences(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input savePreferencesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	prefs := &Preferences{
		UserID:       userID,
		ReadingMode:  input.ReadingMode,
		PageFit:      input.PageFit,
		PreloadPages: input.PreloadPages,
		DataSaver:    input.DataSaver,
	}

	if err := handler.service.Save(request.Context(), prefs); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, prefs)
}
