// Copyright (c) 2026 Komira. All rights reserved.

package preference_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/users/preference"
)

type fakeRepository struct {
	stored map[string]*preference.Preferences
}

func (f *fakeRepository) Find(_ context.Context, userID string) (*preference.Preferences, error) {
	if prefs, ok := f.stored[userID]; ok {
		return prefs, nil
	}
	return nil, apperr.NotFound("Preferences")
}

func (f *fakeRepository) Upsert(_ context.Context, prefs *preference.Preferences) error {
	if f.stored == nil {
		f.stored = make(map[string]*preference.Preferences)
	}
	f.stored[prefs.UserID] = prefs
	return nil
}

func newTestService(repository *fakeRepository) *preference.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return preference.NewService(repository, logger)
}

/*
TestService_GetDefaults checks a user without a stored row receives the
defaults rather than a not-found error.
*/
func TestService_GetDefaults(t *testing.T) {
	service := newTestService(&fakeRepository{})

	prefs, err := service.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "webtoon", prefs.ReadingMode)
	assert.Equal(t, preference.PageFitWidth, prefs.PageFit)
	assert.Equal(t, 3, prefs.PreloadPages)
	assert.False(t, prefs.DataSaver)
}

/*
TestService_SaveAndReadBack checks the round trip through Save, Get, and the
session-seeding ReadingMode accessor.
*/
func TestService_SaveAndReadBack(t *testing.T) {
	service := newTestService(&fakeRepository{})
	ctx := context.Background()

	err := service.Save(ctx, &preference.Preferences{
		UserID:       "user-1",
		ReadingMode:  "manga",
		PageFit:      preference.PageFitOriginal,
		PreloadPages: 5,
		DataSaver:    true,
	})
	require.NoError(t, err)

	prefs, err := service.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "manga", prefs.ReadingMode)
	assert.True(t, prefs.DataSaver)

	mode, err := service.ReadingMode(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "manga", mode)
}

/*
TestService_SaveValidation covers the value constraints on stored
preferences.
*/
func TestService_SaveValidation(t *testing.T) {
	tests := []struct {
		name  string
		prefs *preference.Preferences
	}{
		{"unknown_mode", &preference.Preferences{UserID: "u", ReadingMode: "diagonal", PageFit: preference.PageFitWidth, PreloadPages: 3}},
		{"unknown_fit", &preference.Preferences{UserID: "u", ReadingMode: "manga", PageFit: "stretch", PreloadPages: 3}},
		{"preload_too_high", &preference.Preferences{UserID: "u", ReadingMode: "manga", PageFit: preference.PageFitWidth, PreloadPages: 11}},
		{"preload_negative", &preference.Preferences{UserID: "u", ReadingMode: "manga", PageFit: preference.PageFitWidth, PreloadPages: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(&fakeRepository{})

			err := service.Save(context.Background(), tt.prefs)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		})
	}
}
