// Copyright (c) 2026 Komira. All rights reserved.

package manga

import (
	"context"
	"log/slog"

	"github.com/komira-app/komira/internal/platform/validate"
	"github.com/komira-app/komira/pkg/slug"
	"github.com/komira-app/komira/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business logic for catalogue titles.
type Service struct {
	mangaRepo Repository
	logger    *slog.Logger
}

// NewService constructs a new [Service] with its required repository.
func NewService(mangaRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		mangaRepo: mangaRepo,
		logger:    logger,
	}
}

// # Catalogue Operations

/*
ListManga retrieves approved titles for browse views.

Parameters:
  - context: context.Context
  - filter: Filter (Status and search options)
  - limit: int
  - offset: int

Returns:
  - []*Manga: Matching titles
  - int: Total title count for the given filter
  - error: Storage or execution errors
*/
func (service *Service) ListManga(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error) {
	return service.mangaRepo.List(context, filter, limit, offset)
}

/*
GetBySlug retrieves a single title by its URL slug.

Parameters:
  - context: context.Context
  - mangaSlug: string

Returns:
  - *Manga: The hydrated domain entity
  - error: apperr.NotFound if absent
*/
func (service *Service) GetBySlug(context context.Context, mangaSlug string) (*Manga, error) {
	return service.mangaRepo.FindBySlug(context, mangaSlug)
}

/*
CreateManga registers a new title in the catalogue.

Description: Generates the identity and URL slug, applies validation, and
persists the title in the approved state (this path is admin-only; community
submissions land in the moderation pipeline instead).

Parameters:
  - context: context.Context
  - input: *Manga (Title, Status, CoverURL, Description)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) CreateManga(context context.Context, input *Manga) error {

	// Identity & mandatory field generation
	if input.ID == "" {
		input.ID = uuid.New()
	}
	if input.Slug == "" {
		input.Slug = slug.From(input.Title)
	}
	if input.Status == "" {
		input.Status = StatusOngoing
	}
	if input.ApprovalStatus == "" {
		input.ApprovalStatus = ApprovalApproved
	}

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title)
	validator.Slug(FieldSlug, input.Slug)
	validator.Custom(FieldStatus, !input.Status.IsValid(), "Unknown publication status")

	if err := validator.Err(); err != nil {
		return err
	}

	// Storage persistence
	if err := service.mangaRepo.Create(context, input); err != nil {
		return err
	}

	service.logger.Info("manga_created",
		slog.String("manga_id", input.ID),
		slog.String("slug", input.Slug),
	)

	return nil
}

/*
SetApproval moves a title through the moderation pipeline.

Parameters:
  - context: context.Context
  - id: string
  - status: ApprovalStatus

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) SetApproval(context context.Context, id string, status ApprovalStatus) error {
	validator := &validate.Validator{}
	validator.Custom(FieldStatus, !status.IsValid(), "Unknown approval status")
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.mangaRepo.SetApprovalStatus(context, id, status); err != nil {
		return err
	}

	service.logger.Info("manga_approval_changed",
		slog.String("manga_id", id),
		slog.String("approval_status", string(status)),
	)

	return nil
}
