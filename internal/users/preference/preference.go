// Copyright (c) 2026 Komira. All rights reserved.

/*
Package preference stores per-user reading preferences.

Preferences seed new reading sessions (the initial rendering mode) and
steer page delivery (fit, preload depth, data saver). A user without a
stored row gets the defaults; rows are created lazily on first write.
*/
package preference

import (
	"context"
	"time"
)

// # Preference Values

const (
	// PageFitWidth scales pages to the viewport width.
	PageFitWidth = "width"

	// PageFitHeight scales pages to the viewport height.
	PageFitHeight = "height"

	// PageFitOriginal renders pages at their native size.
	PageFitOriginal = "original"
)

// defaultPreloadPages is how many upcoming pages the client prefetches.
const defaultPreloadPages = 3

// Preferences is a user's stored reading configuration.
type Preferences struct {
	UserID       string    `json:"-"`
	ReadingMode  string    `json:"reading_mode"`
	PageFit      string    `json:"page_fit"`
	PreloadPages int       `json:"preload_pages"`
	DataSaver    bool      `json:"data_saver"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Defaults returns the configuration a user has before ever saving one.
func Defaults(userID string) *Preferences {
	return &Preferences{
		UserID:       userID,
		ReadingMode:  "webtoon",
		PageFit:      PageFitWidth,
		PreloadPages: defaultPreloadPages,
	}
}

// # Repository Contract

// Repository persists reading preferences.
type Repository interface {
	/*
		Find retrieves a user's stored preferences.

		Returns:
			*Preferences - the stored row.
			error        - apperr.NotFound when the user never saved any.
	*/
	Find(ctx context.Context, userID string) (*Preferences, error)

	/*
		Upsert stores a user's preferences, inserting or overwriting.

		Returns:
			error - infrastructure failure, if any.
	*/
	Upsert(ctx context.Context, prefs *Preferences) error
}
