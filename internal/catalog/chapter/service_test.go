// Copyright (c) 2026 Komira. All rights reserved.

package chapter

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komira-app/komira/internal/platform/apperr"
)

// # Test Fakes

type fakeRepository struct {
	promoted *Chapter
	pages    []*Page
}

func (f *fakeRepository) FindByNumber(_ context.Context, _ string, _ int) (*Chapter, error) {
	return nil, apperr.NotFound("Chapter")
}

func (f *fakeRepository) ListByManga(_ context.Context, _ string, _, _ int) ([]*Chapter, int, error) {
	return nil, 0, nil
}

func (f *fakeRepository) ListPages(_ context.Context, _ string) ([]*Page, error) {
	return f.pages, nil
}

func (f *fakeRepository) MergedNumbers(_ context.Context, _ string) ([]int, error) {
	return nil, nil
}

func (f *fakeRepository) Promote(_ context.Context, _ string, published *Chapter, pages []*Page) error {
	f.promoted = published
	f.pages = pages
	return nil
}

type fakePendingRepository struct {
	byID    map[string]*PendingChapter
	created *PendingChapter
	status  map[string]ReviewStatus
}

func (f *fakePendingRepository) FindByNumber(_ context.Context, _ string, _ int) (*PendingChapter, error) {
	return nil, apperr.NotFound("Chapter submission")
}

func (f *fakePendingRepository) FindByID(_ context.Context, id string) (*PendingChapter, error) {
	if pending, ok := f.byID[id]; ok {
		return pending, nil
	}
	return nil, apperr.NotFound("Chapter submission")
}

func (f *fakePendingRepository) Create(_ context.Context, pending *PendingChapter) error {
	f.created = pending
	return nil
}

func (f *fakePendingRepository) SetStatus(_ context.Context, id string, status ReviewStatus) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.NotFound("Chapter submission")
	}
	if f.status == nil {
		f.status = make(map[string]ReviewStatus)
	}
	f.status[id] = status
	return nil
}

func newTestService(chapterRepo *fakeRepository, pendingRepo *fakePendingRepository) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(chapterRepo, pendingRepo, logger)
}

// # Tests

/*
TestService_Submit covers submission validation and defaulting.
*/
func TestService_Submit(t *testing.T) {
	tests := []struct {
		name    string
		input   *PendingChapter
		wantErr bool
	}{
		{
			"valid",
			&PendingChapter{MangaID: "manga-1", Number: 4, Content: PendingContent{Pages: []string{"a.jpg"}}},
			false,
		},
		{
			"missing_manga",
			&PendingChapter{Number: 4, Content: PendingContent{Pages: []string{"a.jpg"}}},
			true,
		},
		{
			"zero_number",
			&PendingChapter{MangaID: "manga-1", Number: 0, Content: PendingContent{Pages: []string{"a.jpg"}}},
			true,
		},
		{
			"no_pages",
			&PendingChapter{MangaID: "manga-1", Number: 4},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pendingRepo := &fakePendingRepository{}
			service := newTestService(&fakeRepository{}, pendingRepo)

			err := service.Submit(context.Background(), tt.input)

			if tt.wantErr {
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Nil(t, pendingRepo.created)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, pendingRepo.created)
			assert.NotEmpty(t, pendingRepo.created.ID)
			assert.Equal(t, ReviewPending, pendingRepo.created.Status)
		})
	}
}

/*
TestService_Approve checks promotion: the approved chapter carries the
submission's identity, its pages land in the side table in order, and the
inline array stays empty.
*/
func TestService_Approve(t *testing.T) {
	chapterRepo := &fakeRepository{}
	pendingRepo := &fakePendingRepository{
		byID: map[string]*PendingChapter{
			"sub-1": {
				ID:      "sub-1",
				MangaID: "manga-1",
				Number:  4,
				Title:   "The Reveal",
				Status:  ReviewPending,
				Content: PendingContent{Pages: []string{"a.jpg", "b.jpg", "c.jpg"}},
			},
		},
	}
	service := newTestService(chapterRepo, pendingRepo)

	published, err := service.Approve(context.Background(), "sub-1")

	require.NoError(t, err)
	assert.Equal(t, "manga-1", published.MangaID)
	assert.Equal(t, 4, published.Number)
	assert.Equal(t, "The Reveal", published.Title)
	assert.Equal(t, string(ReviewApproved), published.ApprovalStatus)
	assert.NotNil(t, published.PublishedAt)
	assert.Empty(t, published.PageURLs)

	require.Same(t, published, chapterRepo.promoted)
	require.Len(t, chapterRepo.pages, 3)
	for i, page := range chapterRepo.pages {
		assert.Equal(t, published.ID, page.ChapterID)
		assert.Equal(t, i+1, page.PageNumber)
	}
	assert.Equal(t, "a.jpg", chapterRepo.pages[0].PageURL)
	assert.Equal(t, "c.jpg", chapterRepo.pages[2].PageURL)
}

/*
TestService_ApproveAlreadyReviewed checks reviewed submissions cannot be
promoted again.
*/
func TestService_ApproveAlreadyReviewed(t *testing.T) {
	pendingRepo := &fakePendingRepository{
		byID: map[string]*PendingChapter{
			"sub-1": {ID: "sub-1", MangaID: "manga-1", Number: 4, Status: ReviewApproved},
		},
	}
	service := newTestService(&fakeRepository{}, pendingRepo)

	_, err := service.Approve(context.Background(), "sub-1")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
}

/*
TestService_Reject checks a rejection flips the submission's status without
touching the approved set.
*/
func TestService_Reject(t *testing.T) {
	chapterRepo := &fakeRepository{}
	pendingRepo := &fakePendingRepository{
		byID: map[string]*PendingChapter{
			"sub-1": {ID: "sub-1", MangaID: "manga-1", Number: 4, Status: ReviewPending},
		},
	}
	service := newTestService(chapterRepo, pendingRepo)

	require.NoError(t, service.Reject(context.Background(), "sub-1"))
	assert.Equal(t, ReviewRejected, pendingRepo.status["sub-1"])
	assert.Nil(t, chapterRepo.promoted)

	err := service.Reject(context.Background(), "missing")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestDecodeContent checks the JSON content column parser treats malformed or
empty documents as an empty page list.
*/
func TestDecodeContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"valid", `{"pages":["a.jpg","b.jpg"]}`, []string{"a.jpg", "b.jpg"}},
		{"empty_document", `{}`, nil},
		{"empty_bytes", ``, nil},
		{"malformed", `{"pages":[`, nil},
		{"wrong_shape", `{"pages":"a.jpg"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := decodeContent([]byte(tt.raw))
			assert.Equal(t, tt.want, content.Pages)
		})
	}
}
