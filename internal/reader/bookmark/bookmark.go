// Copyright (c) 2026 Komira. All rights reserved.

/*
Package bookmark manages the remote, authenticated record of a user's last
reading position for a manga.

A bookmark is one row per (user, manga): the chapter and page fields are
updated in place, never appended. The reading session writes to it through a
debounced, fire-and-forget path; the manga detail view reads it exactly once.
Concurrent sessions on multiple devices race last-write-wins.
*/
package bookmark

import (
	"context"
	"time"
)

// Bookmark is the remote reading-position record for an authenticated user.
type Bookmark struct {
	UserID        string    `json:"user_id"`
	MangaID       string    `json:"manga_id"`
	ChapterID     string    `json:"chapter_id"`
	ChapterNumber int       `json:"chapter_number"`
	PageNumber    int       `json:"page_number"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// # Data Access

// Repository defines the data access contract for bookmarks.
type Repository interface {

	/*
		Upsert writes the bookmark, replacing any existing row for the
		same (user, manga) pair.

		Parameters:
		  - context: context.Context
		  - record: *Bookmark

		Returns:
		  - error: Persistence failures
	*/
	Upsert(context context.Context, record *Bookmark) error

	/*
		Find returns the bookmark for a (user, manga) pair.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - mangaID: string

		Returns:
		  - *Bookmark: Hydrated record
		  - error: apperr.NotFound if the user has no bookmark for this title
	*/
	Find(context context.Context, userID, mangaID string) (*Bookmark, error)
}
