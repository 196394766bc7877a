// Copyright (c) 2026 Komira. All rights reserved.

package manga

import "context"

// # Manga Data Access

// Repository defines the data access contract for catalogue titles.
type Repository interface {

	/*
		FindBySlug returns the title with the given URL slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Manga: Hydrated entity
		  - error: apperr.NotFound if absent, or retrieval failures
	*/
	FindBySlug(context context.Context, slug string) (*Manga, error)

	/*
		FindByID returns the title with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Manga: Hydrated entity
		  - error: apperr.NotFound if absent, or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Manga, error)

	/*
		List returns approved titles matching the filter, newest first.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Manga: Matching titles
		  - int: Total matching count (for pagination metadata)
		  - error: Retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error)

	/*
		Create persists a brand-new title.

		Parameters:
		  - context: context.Context
		  - manga: *Manga

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, manga *Manga) error

	/*
		SetApprovalStatus moves a title through the moderation pipeline.

		Parameters:
		  - context: context.Context
		  - id: string
		  - status: ApprovalStatus

		Returns:
		  - error: apperr.NotFound if the row is missing
	*/
	SetApprovalStatus(context context.Context, id string, status ApprovalStatus) error

	/*
		IncrementChapterCount bumps the denormalized chapter counter.

		Parameters:
		  - context: context.Context
		  - id: string
		  - delta: int

		Returns:
		  - error: Persistence failures
	*/
	IncrementChapterCount(context context.Context, id string, delta int) error
}
