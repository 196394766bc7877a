// Copyright (c) 2026 Komira. All rights reserved.

/*
Package manga defines the core domain entities for the Komira catalogue.

It manages the lifecycle of serialised publications (Manga, Manhwa, Webtoons)
from submission through approval into the public library.

Core Responsibility:

  - Catalogue: Defines publication statuses (Ongoing, Completed, Hiatus).
  - Moderation: Tracks the approval state of submitted titles.
  - Discovery: Slug-based lookup for reader deep links.

This package acts as the source of truth for all title-level data models.
*/
package manga

import "time"

// # Domain Enums

// Status represents the publication status of a manga.
type Status string

const (
	// StatusOngoing indicates the publication is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the publication is paused indefinitely.
	StatusHiatus Status = "hiatus"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus:
		return true
	}
	return false
}

// ApprovalStatus classifies where a title stands in the moderation pipeline.
type ApprovalStatus string

const (
	// ApprovalPending means the title is awaiting review and hidden from browse.
	ApprovalPending ApprovalStatus = "pending"

	// ApprovalApproved means the title is visible to all readers.
	ApprovalApproved ApprovalStatus = "approved"

	// ApprovalRejected means the title failed review.
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid reports whether a is a recognised [ApprovalStatus] value.
func (a ApprovalStatus) IsValid() bool {
	switch a {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// # Core Entities

// Manga is the central aggregate of the Komira catalogue.
// It represents a single serialised publication.
//
// ChapterCount is denormalized: it is bumped by the moderation workflow when
// a chapter is approved, so list views never need a join against chapters.
type Manga struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Slug           string         `json:"slug"`
	Status         Status         `json:"status"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	ChapterCount   int            `json:"chapter_count"`
	CoverURL       string         `json:"cover_url,omitempty"`
	Description    string         `json:"description,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      *time.Time     `json:"-"`
}

// Filter narrows catalogue list queries.
type Filter struct {
	// Status filters by publication status when non-empty.
	Status string

	// Search matches against the title (case-insensitive substring).
	Search string
}

// # Field Identifiers

const (
	FieldTitle  = "title"
	FieldSlug   = "slug"
	FieldStatus = "status"
)
