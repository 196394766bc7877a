// Copyright (c) 2026 Komira. All rights reserved.

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/platform/middleware"
	requestutil "github.com/komira-app/komira/internal/platform/request"
	"github.com/komira-app/komira/internal/platform/respond"
	"github.com/komira-app/komira/internal/platform/sec"
	"github.com/komira-app/komira/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapter listing and moderation.
type Handler struct {
	service      *Service
	mangaService *manga.Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service, mangaService *manga.Service) *Handler {
	return &Handler{service: service, mangaService: mangaService}
}

// RegisterRoutes attaches chapter endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	// Discovery endpoints
	api.Get("/manga/{slug}/chapters", handler.ListChapters)

	// Author protected endpoints
	api.Group(func(author chi.Router) {
		author.Use(middleware.RequireRole(sec.RoleAuthor))
		author.Post("/manga/{slug}/chapters", handler.Submit)
	})

	// Moderator protected endpoints
	api.Group(func(moderator chi.Router) {
		moderator.Use(middleware.RequireRole(sec.RoleModerator))
		moderator.Post("/chapters/submissions/{id}/approve", handler.Approve)
		moderator.Post("/chapters/submissions/{id}/reject", handler.Reject)
	})
}

// # Listing

/*
GET /api/v1/manga/{slug}/chapters.

Description: Returns a paginated list of a title's approved chapters,
ascending by chapter number.

Request:
  - slug: string
  - limit: int
  - page: int

Response:
  - 200: []Chapter: Paginated list
  - 404: ErrNotFound: Manga not found
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	mangaSlug := requestutil.Param(request, "slug")

	title, err := handler.mangaService.GetBySlug(request.Context(), mangaSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	chapters, total, err := handler.service.ListChapters(request.Context(), title.ID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// # Submission

// submitChapterRequest defines the inbound JSON schema for chapter submissions.
type submitChapterRequest struct {
	ChapterNumber int      `json:"chapter_number"`
	Title         string   `json:"title"`
	Pages         []string `json:"pages"`
}

/*
POST /api/v1/manga/{slug}/chapters.

Description: Stages a chapter submission for moderation (author only). The
chapter is immediately readable through the pending path while it waits for
review.

Request:
  - slug: string
  - body: submitChapterRequest

Response:
  - 201: PendingChapter: Staged submission
  - 400: ErrInvalidJSON/Validation: Invalid payload
  - 404: ErrNotFound: Manga not found
  - 409: ErrConflict: Chapter already under review
*/
func (handler *Handler) Submit(writer http.ResponseWriter, request *http.Request) {
	mangaSlug := requestutil.Param(request, "slug")

	title, err := handler.mangaService.GetBySlug(request.Context(), mangaSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input submitChapterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pending := &PendingChapter{
		MangaID:     title.ID,
		Number:      input.ChapterNumber,
		Title:       input.Title,
		Content:     PendingContent{Pages: input.Pages},
		SubmittedBy: claims.UserID,
	}

	if err := handler.service.Submit(request.Context(), pending); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, pending)
}

// # Moderation

/*
POST /api/v1/chapters/submissions/{id}/approve.

Description: Promotes a pending submission into the approved set
(moderator only).

Request:
  - id: string

Response:
  - 200: Chapter: The newly approved chapter
  - 400: Validation: Submission already reviewed
  - 404: ErrNotFound: Submission not found
*/
func (handler *Handler) Approve(writer http.ResponseWriter, request *http.Request) {
	pendingID := requestutil.Param(request, "id")

	published, err := handler.service.Approve(request.Context(), pendingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, published)
}

/*
POST /api/v1/chapters/submissions/{id}/reject.

Description: Rejects a pending submission (moderator only). The chapter
number drops out of the reading sequence unless an approved chapter also
carries it.

Request:
  - id: string

Response:
  - 200: PendingChapter: The rejected submission
  - 400: Validation: Submission already reviewed
  - 404: ErrNotFound: Submission not found
*/
func (handler *Handler) Reject(writer http.ResponseWriter, request *http.Request) {
	pendingID := requestutil.Param(request, "id")

	if err := handler.service.Reject(request.Context(), pendingID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	rejected, err := handler.service.pendingRepo.FindByID(request.Context(), pendingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, rejected)
}
