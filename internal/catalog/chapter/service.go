// Copyright (c) 2026 Komira. All rights reserved.

package chapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/komira-app/komira/internal/platform/validate"
	"github.com/komira-app/komira/pkg/uuid"
)

// # Service Layer

// Service orchestrates chapter listing and the moderation workflow.
type Service struct {
	chapterRepo Repository
	pendingRepo PendingRepository
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its required repositories.
func NewService(chapterRepo Repository, pendingRepo PendingRepository, logger *slog.Logger) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		pendingRepo: pendingRepo,
		logger:      logger,
	}
}

// # Catalogue Operations

/*
ListChapters retrieves a page of a manga's approved chapters.

Parameters:
  - context: context.Context
  - mangaID: string
  - limit: int
  - offset: int

Returns:
  - []*Chapter: Approved chapters, ascending by number
  - int: Total approved chapter count
  - error: Storage or execution errors
*/
func (service *Service) ListChapters(context context.Context, mangaID string, limit, offset int) ([]*Chapter, int, error) {
	return service.chapterRepo.ListByManga(context, mangaID, limit, offset)
}

/*
GetApproved retrieves an approved chapter by number within a manga.

Returns:
  - *Chapter: The matching chapter
  - error: apperr.NotFound if absent
*/
func (service *Service) GetApproved(context context.Context, mangaID string, number int) (*Chapter, error) {
	return service.chapterRepo.FindByNumber(context, mangaID, number)
}

/*
GetPending retrieves a pending submission by number within a manga.

Returns:
  - *PendingChapter: The matching submission still awaiting review
  - error: apperr.NotFound if absent
*/
func (service *Service) GetPending(context context.Context, mangaID string, number int) (*PendingChapter, error) {
	return service.pendingRepo.FindByNumber(context, mangaID, number)
}

/*
GetPages retrieves a chapter's side-table pages in reading order.

Returns:
  - []*Page: Ordered pages; empty when the chapter has no side-table rows
  - error: Storage or execution errors
*/
func (service *Service) GetPages(context context.Context, chapterID string) ([]*Page, error) {
	return service.chapterRepo.ListPages(context, chapterID)
}

/*
MergedNumbers retrieves the navigable chapter number sequence of a manga.

Description: The union of approved and pending numbers, distinct and
ascending. This is the sequence the reader walks when moving between
chapters, so pending submissions are reachable before review.

Returns:
  - []int: Distinct chapter numbers, ascending
  - error: Storage or execution errors
*/
func (service *Service) MergedNumbers(context context.Context, mangaID string) ([]int, error) {
	return service.chapterRepo.MergedNumbers(context, mangaID)
}

// # Moderation Workflow

/*
Submit stages a community chapter submission for review.

Description: Validates the submission, embeds the page list in the JSON
content document, and inserts it with status pending. The chapter becomes
readable immediately through the pending fallback path; it only joins the
approved set after a moderator decision.

Parameters:
  - context: context.Context
  - input: *PendingChapter (MangaID, Number, Title, Content.Pages, SubmittedBy)

Returns:
  - error: Validation, conflict, or persistence errors
*/
func (service *Service) Submit(context context.Context, input *PendingChapter) error {

	// Identity & default generation
	if input.ID == "" {
		input.ID = uuid.New()
	}
	input.Status = ReviewPending
	now := time.Now().UTC()
	input.CreatedAt = now
	input.UpdatedAt = now

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldMangaID, input.MangaID)
	validator.Custom(FieldChapterNumber, input.Number < 1, "Chapter number must be a positive integer")
	validator.Custom(FieldPages, len(input.Content.Pages) == 0, "A submission must carry at least one page")

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.pendingRepo.Create(context, input); err != nil {
		return err
	}

	service.logger.Info("chapter_submitted",
		slog.String("submission_id", input.ID),
		slog.String("manga_id", input.MangaID),
		slog.Int("chapter_number", input.Number),
	)

	return nil
}

/*
Approve promotes a pending submission into the approved set.

Description: Loads the submission, materializes its embedded page list into
core.chapterpage rows, and runs the promotion transaction: approved chapter
insert, page inserts, submission status flip, and chapter count bump. The
inline page array on the chapter row is left empty; the side table is the
canonical page storage for promoted chapters.

Parameters:
  - context: context.Context
  - pendingID: string

Returns:
  - *Chapter: The newly approved chapter
  - error: apperr.NotFound, conflict, or persistence errors
*/
func (service *Service) Approve(context context.Context, pendingID string) (*Chapter, error) {
	pending, err := service.pendingRepo.FindByID(context, pendingID)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Custom("status", pending.Status != ReviewPending, "Submission has already been reviewed")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	published := &Chapter{
		ID:             uuid.New(),
		MangaID:        pending.MangaID,
		Number:         pending.Number,
		Title:          pending.Title,
		ApprovalStatus: string(ReviewApproved),
		PublishedAt:    &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	pages := make([]*Page, 0, len(pending.Content.Pages))
	for i, url := range pending.Content.Pages {
		pages = append(pages, &Page{
			ID:         uuid.New(),
			ChapterID:  published.ID,
			PageNumber: i + 1,
			PageURL:    url,
		})
	}

	if err := service.chapterRepo.Promote(context, pendingID, published, pages); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_approved",
		slog.String("submission_id", pendingID),
		slog.String("chapter_id", published.ID),
		slog.String("manga_id", published.MangaID),
		slog.Int("chapter_number", published.Number),
	)

	return published, nil
}

/*
Reject records a negative moderation decision on a submission.

Description: A rejected submission stays in the staging table for audit but
stops matching pending lookups, so the chapter number disappears from the
reader's navigation sequence unless an approved chapter carries it.

Returns:
  - error: apperr.NotFound or persistence errors
*/
func (service *Service) Reject(context context.Context, pendingID string) error {
	pending, err := service.pendingRepo.FindByID(context, pendingID)
	if err != nil {
		return err
	}

	validator := &validate.Validator{}
	validator.Custom("status", pending.Status != ReviewPending, "Submission has already been reviewed")
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.pendingRepo.SetStatus(context, pendingID, ReviewRejected); err != nil {
		return err
	}

	service.logger.Info("chapter_rejected",
		slog.String("submission_id", pendingID),
		slog.String("manga_id", pending.MangaID),
		slog.Int("chapter_number", pending.Number),
	)

	return nil
}
