// Copyright (c) 2026 Komira. All rights reserved.

package chapter

import "context"

// # Repository Contracts

// Repository provides access to the approved chapter set.
type Repository interface {
	/*
		FindByNumber retrieves an approved chapter by its number within a manga.

		Description:
			Soft-deleted chapters are excluded. The page side table is not
			consulted; callers that need pages use ListPages.

		Parameters:
			ctx     - request-scoped context.
			mangaID - owning manga identifier.
			number  - chapter number within the manga.

		Returns:
			*Chapter - the matching chapter.
			error    - apperr.NotFound when no approved chapter matches.
	*/
	FindByNumber(ctx context.Context, mangaID string, number int) (*Chapter, error)

	/*
		ListByManga retrieves a page of approved chapters ordered by number.

		Parameters:
			ctx     - request-scoped context.
			mangaID - owning manga identifier.
			limit   - maximum rows to return.
			offset  - rows to skip.

		Returns:
			[]*Chapter - the page of chapters, ascending by number.
			int        - total approved chapter count for the manga.
			error      - infrastructure failure, if any.
	*/
	ListByManga(ctx context.Context, mangaID string, limit, offset int) ([]*Chapter, int, error)

	/*
		ListPages retrieves the side-table pages of a chapter in reading order.

		Returns:
			[]*Page - ordered by page number; empty when the chapter has no
			          side-table rows.
			error   - infrastructure failure, if any.
	*/
	ListPages(ctx context.Context, chapterID string) ([]*Page, error)

	/*
		MergedNumbers retrieves the ordered union of approved and pending
		chapter numbers for a manga.

		Description:
			This is the navigation sequence the reader walks: a number appears
			once even when both an approved chapter and a stale pending
			submission carry it.

		Returns:
			[]int - distinct chapter numbers, ascending.
			error - infrastructure failure, if any.
	*/
	MergedNumbers(ctx context.Context, mangaID string) ([]int, error)

	/*
		Promote atomically moves a pending submission into the approved set.

		Description:
			In a single transaction: inserts the approved chapter row, inserts
			its side-table pages, marks the pending row approved, and bumps the
			manga's denormalized chapter count. Either everything lands or
			nothing does.

		Parameters:
			ctx       - request-scoped context.
			pendingID - the pending row being promoted.
			published - the approved chapter to insert.
			pages     - ordered side-table rows carrying the page URLs.

		Returns:
			error - infrastructure failure, if any.
	*/
	Promote(ctx context.Context, pendingID string, published *Chapter, pages []*Page) error
}

// PendingRepository provides access to the moderation staging set.
type PendingRepository interface {
	/*
		FindByNumber retrieves a pending submission by chapter number.

		Description:
			Only rows still awaiting review match; approved and rejected
			submissions are invisible here.

		Returns:
			*PendingChapter - the matching submission.
			error           - apperr.NotFound when no pending submission matches.
	*/
	FindByNumber(ctx context.Context, mangaID string, number int) (*PendingChapter, error)

	/*
		FindByID retrieves a submission by identifier regardless of status.

		Returns:
			*PendingChapter - the matching submission.
			error           - apperr.NotFound when the identifier is unknown.
	*/
	FindByID(ctx context.Context, id string) (*PendingChapter, error)

	/*
		Create inserts a new submission with status pending.

		Returns:
			error - apperr.Conflict when a pending submission already exists
			        for the same manga and chapter number.
	*/
	Create(ctx context.Context, pending *PendingChapter) error

	/*
		SetStatus records a moderation decision on a submission.

		Returns:
			error - apperr.NotFound when the identifier is unknown.
	*/
	SetStatus(ctx context.Context, id string, status ReviewStatus) error
}
