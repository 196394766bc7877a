// Copyright (c) 2026 Komira. All rights reserved.

package preference

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/validate"
)

// # Service Layer

// Service orchestrates preference reads and writes.
type Service struct {
	preferenceRepo Repository
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its required repository.
func NewService(preferenceRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		preferenceRepo: preferenceRepo,
		logger:         logger,
	}
}

/*
Get retrieves a user's reading preferences.

Description: A user who never saved preferences receives the defaults, not
an error; the row is only materialized on first write.

Returns:
  - *Preferences: Stored or default configuration
  - error: Storage or execution errors
*/
func (service *Service) Get(context context.Context, userID string) (*Preferences, error) {
	prefs, err := service.preferenceRepo.Find(context, userID)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == http.StatusNotFound {
			return Defaults(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

/*
ReadingMode retrieves just the stored rendering mode for session seeding.

Returns:
  - string: The stored or default mode
  - error: Storage or execution errors
*/
func (service *Service) ReadingMode(context context.Context, userID string) (string, error) {
	prefs, err := service.Get(context, userID)
	if err != nil {
		return "", err
	}
	return prefs.ReadingMode, nil
}

/*
Save validates and stores a user's reading preferences.

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) Save(context context.Context, prefs *Preferences) error {
	validator := &validate.Validator{}
	validator.OneOf("reading_mode", prefs.ReadingMode, "webtoon", "manga")
	validator.OneOf("page_fit", prefs.PageFit, PageFitWidth, PageFitHeight, PageFitOriginal)
	validator.Range("preload_pages", prefs.PreloadPages, 0, 10)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.preferenceRepo.Upsert(context, prefs); err != nil {
		return err
	}

	service.logger.Info("preferences_saved",
		slog.String("user_id", prefs.UserID),
		slog.String("reading_mode", prefs.ReadingMode),
	)
	return nil
}
