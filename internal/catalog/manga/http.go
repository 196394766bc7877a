// Copyright (c) 2026 Komira. All rights reserved.

/*
Package manga provides the HTTP interface for catalogue discovery and management.

# Routing Strategy

  - Public (v1): Browse and detail endpoints accessible to all visitors.
  - Restricted (v1): Title creation and approval require the Admin role.

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package manga

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/komira-app/komira/internal/platform/middleware"
	requestutil "github.com/komira-app/komira/internal/platform/request"
	"github.com/komira-app/komira/internal/platform/respond"
	"github.com/komira-app/komira/internal/platform/sec"
	"github.com/komira-app/komira/internal/platform/validate"
	"github.com/komira-app/komira/internal/reader/bookmark"
	"github.com/komira-app/komira/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the catalogue.
type Handler struct {
	service   *Service
	bookmarks bookmark.Repository
}

// NewHandler constructs a new catalogue [Handler].
//
// The bookmark repository is consulted once per authenticated detail view so
// the client can offer a "continue reading" action.
func NewHandler(service *Service, bookmarks bookmark.Repository) *Handler {
	return &Handler{service: service, bookmarks: bookmarks}
}

// RegisterRoutes attaches catalogue endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	// Discovery endpoints
	api.Get("/manga", handler.ListManga)
	api.Get("/manga/{slug}", handler.GetManga)

	// Admin protected endpoints
	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/manga", handler.CreateManga)
		admin.Post("/manga/{slug}/approval", handler.SetApproval)
	})
}

// # Browse

/*
GET /api/v1/manga.

Description: Returns a paginated roster of approved titles.

Request:
  - status: string (ongoing, completed, hiatus)
  - q: string (Title search)
  - limit: int
  - page: int

Response:
  - 200: []Manga: Paginated list
*/
func (handler *Handler) ListManga(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Status: request.URL.Query().Get("status"),
		Search: request.URL.Query().Get("q"),
	}

	results, total, err := handler.service.ListManga(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, results, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// # Detail

// mangaDetailResponse is the payload for the title detail view.
//
// Bookmark is only populated for authenticated requests that have a saved
// reading position; anonymous readers receive null.
type mangaDetailResponse struct {
	Manga    *Manga             `json:"manga"`
	Bookmark *bookmark.Bookmark `json:"bookmark,omitempty"`
}

/*
GET /api/v1/manga/{slug}.

Description: Returns a single title. When the caller is authenticated, the
response also carries their bookmark for this title. This is the one and
only bookmark read per detail view; the reader never reads it again.

Request:
  - slug: string

Response:
  - 200: mangaDetailResponse
  - 404: ErrNotFound: Manga not found
*/
func (handler *Handler) GetManga(writer http.ResponseWriter, request *http.Request) {
	mangaSlug := requestutil.Param(request, "slug")

	result, err := handler.service.GetBySlug(request.Context(), mangaSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	response := mangaDetailResponse{Manga: result}

	// One-shot bookmark read for authenticated callers. A missing bookmark is
	// the normal case for a first visit, not an error.
	if claims := requestutil.Claims(request); claims != nil {
		if record, err := handler.bookmarks.Find(request.Context(), claims.UserID, result.ID); err == nil {
			response.Bookmark = record
		}
	}

	respond.OK(writer, response)
}

// # Administration

// createMangaRequest defines the inbound JSON schema for title creation.
type createMangaRequest struct {
	Title       string `json:"title"`
	Status      string `json:"status"`
	CoverURL    string `json:"cover_url"`
	Description string `json:"description"`
}

/*
POST /api/v1/manga.

Description: Creates a new approved title (admin only).

Request:
  - body: createMangaRequest

Response:
  - 201: Manga: Created title
  - 400: ErrInvalidJSON/Validation: Invalid payload
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Insufficient permissions
*/
func (handler *Handler) CreateManga(writer http.ResponseWriter, request *http.Request) {
	var input createMangaRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldTitle, input.Title)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entity := &Manga{
		Title:       input.Title,
		Status:      Status(input.Status),
		CoverURL:    input.CoverURL,
		Description: input.Description,
	}
	if entity.Status == "" {
		entity.Status = StatusOngoing
	}

	if err := handler.service.CreateManga(request.Context(), entity); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entity)
}

// setApprovalRequest defines the inbound JSON schema for moderation decisions.
type setApprovalRequest struct {
	Status string `json:"status"`
}

/*
POST /api/v1/manga/{slug}/approval.

Description: Moves a title through the moderation pipeline (admin only).

Request:
  - slug: string
  - body: setApprovalRequest (pending, approved, rejected)

Response:
  - 200: Message: Approval updated
  - 404: ErrNotFound: Manga not found
*/
func (handler *Handler) SetApproval(writer http.ResponseWriter, request *http.Request) {
	mangaSlug := requestutil.Param(request, "slug")

	var input setApprovalRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	target, err := handler.service.GetBySlug(request.Context(), mangaSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetApproval(request.Context(), target.ID, ApprovalStatus(input.Status)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Approval status updated"})
}
