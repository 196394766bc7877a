// Copyright (c) 2026 Komira. All rights reserved.

/*
Package chapter manages the two disjoint chapter sets of the Komira catalogue.

A chapter lives in exactly one of:

  - The approved set (core.chapter): visible to all readers. Its page list is
    stored either inline as an ordered URL array on the chapter row, or in the
    core.chapterpage side table keyed by page number.
  - The pending set (moderation.pendingchapter): community submissions awaiting
    review. The page list is embedded in the row's JSON content field.

The moderation workflow promotes pending chapters into the approved set;
chapters are immutable to the reader in both sets.
*/
package chapter

import (
	"encoding/json"
	"time"
)

// # Review States

// ReviewStatus classifies a submission in the moderation pipeline.
type ReviewStatus string

const (
	// ReviewPending means the submission awaits a moderation decision.
	ReviewPending ReviewStatus = "pending"

	// ReviewApproved means the submission was promoted into the approved set.
	ReviewApproved ReviewStatus = "approved"

	// ReviewRejected means the submission failed review.
	ReviewRejected ReviewStatus = "rejected"
)

// # Core Entities

// Chapter is a released chapter in the approved set.
//
// Number is unique within a manga and drives ordering and navigation, but is
// not guaranteed contiguous; cancelled or merged releases leave gaps.
//
// PageURLs is the inline page representation. A nil or empty slice means the
// pages live in the core.chapterpage side table instead (or the chapter
// genuinely has no pages, which is a valid user-visible state).
type Chapter struct {
	ID             string     `json:"id"`
	MangaID        string     `json:"manga_id"`
	Number         int        `json:"chapter_number"`
	Title          string     `json:"title"`
	PageURLs       []string   `json:"page_urls,omitempty"`
	ApprovalStatus string     `json:"approval_status"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"`
}

// Page is a single row of the core.chapterpage side table.
type Page struct {
	ID         string `json:"id"`
	ChapterID  string `json:"chapter_id"`
	PageNumber int    `json:"page_number"`
	PageURL    string `json:"page_url"`
}

// PendingContent is the JSON document embedded in a pending chapter row.
type PendingContent struct {
	Pages []string `json:"pages"`
}

// PendingChapter is a submission in the moderation staging set.
type PendingChapter struct {
	ID          string         `json:"id"`
	MangaID     string         `json:"manga_id"`
	Number      int            `json:"chapter_number"`
	Title       string         `json:"title"`
	Status      ReviewStatus   `json:"status"`
	Content     PendingContent `json:"content"`
	SubmittedBy string         `json:"submitted_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// decodeContent parses the raw JSON content column.
//
// Malformed content is treated as an empty page list rather than an error:
// the reader surfaces it as "no pages available", which is the correct
// user-visible outcome for a broken submission.
func decodeContent(raw []byte) PendingContent {
	var content PendingContent
	if len(raw) == 0 {
		return content
	}
	_ = json.Unmarshal(raw, &content)
	return content
}

// # Field Identifiers

const (
	FieldMangaID       = "manga_id"
	FieldChapterNumber = "chapter_number"
	FieldPages         = "pages"
)
