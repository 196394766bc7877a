// Copyright (c) 2026 Komira. All rights reserved.

package manga_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/platform/apperr"
)

type fakeRepository struct {
	created  *manga.Manga
	bySlug   map[string]*manga.Manga
	approval map[string]manga.ApprovalStatus
}

func (f *fakeRepository) FindBySlug(_ context.Context, slug string) (*manga.Manga, error) {
	if title, ok := f.bySlug[slug]; ok {
		return title, nil
	}
	return nil, apperr.NotFound("Manga")
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*manga.Manga, error) {
	for _, title := range f.bySlug {
		if title.ID == id {
			return title, nil
		}
	}
	return nil, apperr.NotFound("Manga")
}

func (f *fakeRepository) List(_ context.Context, _ manga.Filter, _, _ int) ([]*manga.Manga, int, error) {
	return nil, 0, nil
}

func (f *fakeRepository) Create(_ context.Context, title *manga.Manga) error {
	f.created = title
	return nil
}

func (f *fakeRepository) SetApprovalStatus(_ context.Context, id string, status manga.ApprovalStatus) error {
	if f.approval == nil {
		f.approval = make(map[string]manga.ApprovalStatus)
	}
	f.approval[id] = status
	return nil
}

func (f *fakeRepository) IncrementChapterCount(_ context.Context, id string, delta int) error {
	return nil
}

func newTestService(repository *fakeRepository) *manga.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return manga.NewService(repository, logger)
}

/*
TestService_CreateManga covers identity defaulting, slug generation, and
title validation.
*/
func TestService_CreateManga(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		repository := &fakeRepository{}
		service := newTestService(repository)

		input := &manga.Manga{Title: "Solo Ascension Arc"}
		require.NoError(t, service.CreateManga(context.Background(), input))

		require.NotNil(t, repository.created)
		assert.NotEmpty(t, repository.created.ID)
		assert.Equal(t, "solo-ascension-arc", repository.created.Slug)
		assert.Equal(t, manga.StatusOngoing, repository.created.Status)
		assert.Equal(t, manga.ApprovalApproved, repository.created.ApprovalStatus)
	})

	t.Run("missing_title", func(t *testing.T) {
		repository := &fakeRepository{}
		service := newTestService(repository)

		err := service.CreateManga(context.Background(), &manga.Manga{})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		assert.Nil(t, repository.created)
	})

	t.Run("unknown_status", func(t *testing.T) {
		service := newTestService(&fakeRepository{})

		err := service.CreateManga(context.Background(), &manga.Manga{
			Title:  "Valid Title",
			Status: manga.Status("paused"),
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})
}

/*
TestService_GetBySlug checks the slug lookup used by reader deep links.
*/
func TestService_GetBySlug(t *testing.T) {
	repository := &fakeRepository{
		bySlug: map[string]*manga.Manga{
			"test-manga": {ID: "manga-1", Slug: "test-manga", Title: "Test Manga"},
		},
	}
	service := newTestService(repository)

	title, err := service.GetBySlug(context.Background(), "test-manga")
	require.NoError(t, err)
	assert.Equal(t, "manga-1", title.ID)

	_, err = service.GetBySlug(context.Background(), "missing")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestService_SetApproval checks moderation transitions reject unknown states.
*/
func TestService_SetApproval(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository)

	require.NoError(t, service.SetApproval(context.Background(), "manga-1", manga.ApprovalApproved))
	assert.Equal(t, manga.ApprovalApproved, repository.approval["manga-1"])

	err := service.SetApproval(context.Background(), "manga-1", manga.ApprovalStatus("shadowbanned"))
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
}
