// Copyright (c) 2026 Komira. All rights reserved.

/*
Package reader implements the server-side reading session engine.

A reading session is the stateful view a device holds on one chapter: the
current page index, the rendering mode, control visibility, and the side
effects tied to page changes (local position write-through and the debounced
remote bookmark write for authenticated readers).

The package is organized around four cooperating parts:

  - The resolver turns (manga slug, chapter number) into a uniform ordered
    page list, whether the chapter is approved or still pending review.
  - The position store (subpackage position) recalls the last-viewed page per
    device.
  - The session owns the navigation state machine and its timers.
  - The manager holds the live session registry and performs chapter re-entry
    when navigation crosses a chapter boundary.
*/
package reader

import (
	"net/http"
	"time"

	"github.com/komira-app/komira/internal/platform/apperr"
)

// # Reading Modes

// Mode selects how pages are presented to the reader.
type Mode string

const (
	// ModeWebtoon renders the whole chapter as one continuous vertical
	// scroll. Progress derives from scroll position.
	ModeWebtoon Mode = "webtoon"

	// ModeManga renders one page at a time with explicit navigation.
	// Progress derives from the page index.
	ModeManga Mode = "manga"
)

// IsValid reports whether the mode is a known rendering mode.
func (mode Mode) IsValid() bool {
	return mode == ModeWebtoon || mode == ModeManga
}

// # Timing

const (
	// ControlsHideDelay is the idle period after which on-screen controls
	// auto-hide. Any pointer activity restarts it.
	ControlsHideDelay = 3 * time.Second

	// BookmarkQuietPeriod is the debounce window for remote bookmark writes.
	// Only the last position settled within the window is sent.
	BookmarkQuietPeriod = 2 * time.Second
)

// # Errors

// ErrNoPages builds the error for a chapter that resolved but carries no
// pages in any of its representations. It is a valid user-visible state with
// its own message, distinct from the chapter not existing at all.
func ErrNoPages() *apperr.AppError {
	return &apperr.AppError{
		Code:       "NO_PAGES_AVAILABLE",
		Message:    "This chapter has no pages available yet",
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrInvalidChapterNumber builds the error for a chapter route parameter
// that is not a positive integer.
func ErrInvalidChapterNumber() *apperr.AppError {
	return &apperr.AppError{
		Code:       "INVALID_CHAPTER_NUMBER",
		Message:    "Chapter number must be a positive integer",
		HTTPStatus: http.StatusBadRequest,
	}
}
