// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/komira-app/komira/internal/platform/constants"
	"github.com/komira-app/komira/internal/platform/middleware"
	requestutil "github.com/komira-app/komira/internal/platform/request"
	"github.com/komira-app/komira/internal/platform/respond"
	"github.com/komira-app/komira/internal/reader/bookmark"
)

// # Handler Implementation

// Handler implements the HTTP layer for reading sessions.
//
// Every route requires authentication: unauthenticated visitors are blocked
// before any catalogue lookup happens and receive a login prompt, not a
// not-found screen.
type Handler struct {
	manager   *Manager
	bookmarks bookmark.Repository
}

// NewHandler constructs a new reader [Handler].
func NewHandler(manager *Manager, bookmarks bookmark.Repository) *Handler {
	return &Handler{manager: manager, bookmarks: bookmarks}
}

// RegisterRoutes attaches reader endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)

		// Deep link entry: resolve a chapter and open a session in one step.
		authed.Get("/read/{mangaSlug}/{chapterNumber}", handler.OpenByRoute)

		// Session lifecycle and events.
		authed.Post("/reader/sessions", handler.OpenSession)
		authed.Get("/reader/sessions/{id}", handler.GetSession)
		authed.Post("/reader/sessions/{id}/advance", handler.Advance)
		authed.Post("/reader/sessions/{id}/retreat", handler.Retreat)
		authed.Post("/reader/sessions/{id}/page", handler.JumpTo)
		authed.Post("/reader/sessions/{id}/mode", handler.SetMode)
		authed.Post("/reader/sessions/{id}/scroll", handler.Scroll)
		authed.Post("/reader/sessions/{id}/pointer", handler.Pointer)
		authed.Post("/reader/sessions/{id}/controls", handler.ToggleControls)
		authed.Post("/reader/sessions/{id}/key", handler.Key)
		authed.Delete("/reader/sessions/{id}", handler.CloseSession)

		// One-shot bookmark read, used by the detail view on mount.
		authed.Get("/reader/bookmarks/{mangaID}", handler.GetBookmark)
	})
}

// deviceID extracts the caller's device identifier, falling back to the user
// identifier so a client that never sends the header still gets a stable,
// if coarser, position scope.
func deviceID(request *http.Request) string {
	if id := request.Header.Get(constants.HeaderXDeviceID); id != "" {
		return id
	}
	if claims := requestutil.Claims(request); claims != nil {
		return claims.UserID
	}
	return "anonymous"
}

// # Session Entry

/*
GET /api/v1/read/{mangaSlug}/{chapterNumber}.

Description: The reader deep link. Resolves the chapter (approved first,
then pending), opens a session, and returns the full session state: ordered
pages, starting index, mode, and the navigable chapter sequence.

Request:
  - mangaSlug: string
  - chapterNumber: string (positive integer route parameter)
  - page: int (optional, 1-based starting page)

Response:
  - 201: State: The opened session
  - 400: INVALID_CHAPTER_NUMBER: Unparseable chapter parameter
  - 401: ErrUnauthorized: Authentication required
  - 404: ErrNotFound/NO_PAGES_AVAILABLE: Missing manga, chapter, or pages
*/
func (handler *Handler) OpenByRoute(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.manager.Open(request.Context(), OpenParams{
		MangaSlug:    requestutil.Param(request, "mangaSlug"),
		ChapterParam: requestutil.Param(request, "chapterNumber"),
		PageParam:    request.URL.Query().Get("page"),
		DeviceID:     deviceID(request),
		UserID:       claims.UserID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, session.Snapshot())
}

// openSessionRequest defines the inbound JSON schema for session creation.
type openSessionRequest struct {
	MangaSlug     string `json:"manga_slug"`
	ChapterNumber string `json:"chapter_number"`
	Page          string `json:"page,omitempty"`
}

/*
POST /api/v1/reader/sessions.

Description: JSON-body variant of the deep link entry, used by clients that
already know the target chapter.

Request:
  - body: openSessionRequest

Response:
  - 201: State: The opened session
*/
func (handler *Handler) OpenSession(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input openSessionRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.manager.Open(request.Context(), OpenParams{
		MangaSlug:    input.MangaSlug,
		ChapterParam: input.ChapterNumber,
		PageParam:    input.Page,
		DeviceID:     deviceID(request),
		UserID:       claims.UserID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, session.Snapshot())
}

/*
GET /api/v1/reader/sessions/{id}.

Response:
  - 200: State: Current session state
  - 404: ErrNotFound: Session not found
*/
func (handler *Handler) GetSession(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.manager.Get(requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session.Snapshot())
}

// # Navigation Events

/*
POST /api/v1/reader/sessions/{id}/advance.

Description: Moves one page forward. On the chapter's last page, enters the
next chapter of the merged sequence at its first page; with no next chapter
the state is returned unchanged.

Response:
  - 200: State: State after the move
  - 404: ErrNotFound: Session (or next chapter's pages) not found
*/
func (handler *Handler) Advance(writer http.ResponseWriter, request *http.Request) {
	state, err := handler.manager.Advance(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

/*
POST /api/v1/reader/sessions/{id}/retreat.

Description: Moves one page backward. On the chapter's first page, enters
the previous chapter at its first page.

Response:
  - 200: State: State after the move
*/
func (handler *Handler) Retreat(writer http.ResponseWriter, request *http.Request) {
	state, err := handler.manager.Retreat(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

// jumpRequest defines the inbound JSON schema for direct page jumps.
type jumpRequest struct {
	Index int `json:"index"`
}

/*
POST /api/v1/reader/sessions/{id}/page.

Description: Jumps to a page index. Out-of-range indices are clamped, never
rejected.

Request:
  - body: jumpRequest

Response:
  - 200: State: State after the jump
*/
func (handler *Handler) JumpTo(writer http.ResponseWriter, request *http.Request) {
	var input jumpRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.manager.JumpTo(request.Context(), requestutil.Param(request, "id"), input.Index)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

// # Mode & Scroll Events

// modeRequest defines the inbound JSON schema for mode switches.
type modeRequest struct {
	Mode string `json:"mode"`
}

/*
POST /api/v1/reader/sessions/{id}/mode.

Description: Switches between webtoon and manga rendering. The page index is
preserved across the switch.

Request:
  - body: modeRequest (webtoon, manga)

Response:
  - 200: State: State after the switch
  - 400: Validation: Unknown reading mode
*/
func (handler *Handler) SetMode(writer http.ResponseWriter, request *http.Request) {
	var input modeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.manager.SetMode(request.Context(), requestutil.Param(request, "id"), Mode(input.Mode))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

// scrollRequest defines the inbound JSON schema for webtoon scroll updates.
type scrollRequest struct {
	Fraction float64 `json:"fraction"`
}

/*
POST /api/v1/reader/sessions/{id}/scroll.

Description: Records the webtoon scroll offset as a fraction of the
scrollable height. Progress and the derived page index are recomputed on
every event.

Request:
  - body: scrollRequest (0.0 to 1.0, clamped)

Response:
  - 200: State: State with recomputed progress
*/
func (handler *Handler) Scroll(writer http.ResponseWriter, request *http.Request) {
	var input scrollRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.manager.Scroll(request.Context(), requestutil.Param(request, "id"), input.Fraction)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

// # Control & Keyboard Events

/*
POST /api/v1/reader/sessions/{id}/pointer.

Description: Registers pointer activity. Controls become visible and the
idle hide timer restarts.

Response:
  - 200: State: State with controls visible
*/
func (handler *Handler) Pointer(writer http.ResponseWriter, request *http.Request) {
	state, err := handler.manager.Touch(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

/*
POST /api/v1/reader/sessions/{id}/controls.

Description: Flips control visibility.

Response:
  - 200: State: State after the toggle
*/
func (handler *Handler) ToggleControls(writer http.ResponseWriter, request *http.Request) {
	state, err := handler.manager.ToggleControls(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

// keyRequest defines the inbound JSON schema for keyboard events.
type keyRequest struct {
	Key string `json:"key"`
}

// keyEventResponse wraps the session state with the teardown flag Escape
// produces.
type keyEventResponse struct {
	State  State `json:"state"`
	Closed bool  `json:"closed"`
}

/*
POST /api/v1/reader/sessions/{id}/key.

Description: Applies a keyboard event. Arrow keys page only in manga mode,
KeyM toggles the mode, KeyC toggles the controls, and Escape tears the
session down.

Request:
  - body: keyRequest

Response:
  - 200: keyEventResponse: State and whether the session was closed
*/
func (handler *Handler) Key(writer http.ResponseWriter, request *http.Request) {
	var input keyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, closed, err := handler.manager.HandleKey(request.Context(), requestutil.Param(request, "id"), input.Key)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, keyEventResponse{State: state, Closed: closed})
}

// # Teardown & Bookmarks

/*
DELETE /api/v1/reader/sessions/{id}.

Description: Tears the session down: pending timers and any scheduled
bookmark write are cancelled, and the final position is written to the
device's position store.

Response:
  - 204: No content
*/
func (handler *Handler) CloseSession(writer http.ResponseWriter, request *http.Request) {
	handler.manager.Close(request.Context(), requestutil.Param(request, "id"))
	respond.NoContent(writer)
}

/*
GET /api/v1/reader/bookmarks/{mangaID}.

Description: The one-shot bookmark read a detail view performs on mount.
The reading session itself never reads the bookmark back.

Response:
  - 200: Bookmark: The saved cross-device position
  - 404: ErrNotFound: No bookmark for this title
*/
func (handler *Handler) GetBookmark(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.bookmarks.Find(request.Context(), claims.UserID, requestutil.Param(request, "mangaID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}
