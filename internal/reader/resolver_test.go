// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komira-app/komira/internal/catalog/chapter"
	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/reader/position"
)

func newTestResolver(chapters *fakeChapters) (*Resolver, position.Store) {
	positions := position.NewMemoryStore()
	mangas := &fakeMangas{bySlug: map[string]*manga.Manga{"test-manga": testManga()}}
	return NewResolver(mangas, chapters, positions), positions
}

/*
TestResolver_ChapterParam verifies the chapter route parameter is rejected
unless it parses as a positive integer.
*/
func TestResolver_ChapterParam(t *testing.T) {
	tests := []struct {
		name  string
		param string
		code  string
	}{
		{"valid", "2", ""},
		{"zero", "0", "INVALID_CHAPTER_NUMBER"},
		{"negative", "-1", "INVALID_CHAPTER_NUMBER"},
		{"non_numeric", "two", "INVALID_CHAPTER_NUMBER"},
		{"empty", "", "INVALID_CHAPTER_NUMBER"},
	}

	resolver, _ := newTestResolver(threeChapterCatalogue())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := resolver.Resolve(context.Background(), ResolveRequest{
				MangaSlug:    "test-manga",
				ChapterParam: tt.param,
				DeviceID:     "device-1",
			})

			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, 2, resolved.ChapterNumber)
				return
			}

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}
}

/*
TestResolver_ApprovedWinsOverPending checks that when the same chapter number
exists in both sets, the approved record is served.
*/
func TestResolver_ApprovedWinsOverPending(t *testing.T) {
	chapters := threeChapterCatalogue()
	chapters.pending[2] = pendingChapter("sub-2", 2, "draft-a.jpg")

	resolver, _ := newTestResolver(chapters)

	resolved, err := resolver.Resolve(context.Background(), ResolveRequest{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	require.NoError(t, err)
	assert.False(t, resolved.Pending)
	assert.Equal(t, "ch-2", resolved.ChapterID)
	assert.Len(t, resolved.Pages, 5)
}

/*
TestResolver_PendingFallback checks that a number absent from the approved
set resolves from the pending set, with pages read from the JSON content.
*/
func TestResolver_PendingFallback(t *testing.T) {
	chapters := threeChapterCatalogue()
	chapters.pending[4] = pendingChapter("sub-4", 4, "4a.jpg", "4b.jpg", "4c.jpg")

	resolver, _ := newTestResolver(chapters)

	resolved, err := resolver.Resolve(context.Background(), ResolveRequest{
		MangaSlug:    "test-manga",
		ChapterParam: "4",
		DeviceID:     "device-1",
	})

	require.NoError(t, err)
	assert.True(t, resolved.Pending)
	assert.Empty(t, resolved.ChapterID)
	assert.Equal(t, []string{"4a.jpg", "4b.jpg", "4c.jpg"}, resolved.Pages)
	assert.Equal(t, []int{1, 2, 3, 4}, resolved.ChapterNumbers)
}

/*
TestResolver_UnknownChapter checks that a number in neither set is a plain
not-found.
*/
func TestResolver_UnknownChapter(t *testing.T) {
	resolver, _ := newTestResolver(threeChapterCatalogue())

	_, err := resolver.Resolve(context.Background(), ResolveRequest{
		MangaSlug:    "test-manga",
		ChapterParam: "9",
		DeviceID:     "device-1",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestResolver_SideTableFallback checks that a chapter with an empty inline
array falls through to the side table.
*/
func TestResolver_SideTableFallback(t *testing.T) {
	chapters := threeChapterCatalogue()
	chapters.approved[2] = approvedChapter("ch-2", 2) // no inline pages
	chapters.pages["ch-2"] = []*chapter.Page{
		{ID: "p-1", ChapterID: "ch-2", PageNumber: 1, PageURL: "side-a.jpg"},
		{ID: "p-2", ChapterID: "ch-2", PageNumber: 2, PageURL: "side-b.jpg"},
	}

	resolver, _ := newTestResolver(chapters)

	resolved, err := resolver.Resolve(context.Background(), ResolveRequest{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"side-a.jpg", "side-b.jpg"}, resolved.Pages)
}

/*
TestResolver_NoPages verifies the no-pages error for chapters that exist but
carry no pages in any representation, including an empty pending submission.
*/
func TestResolver_NoPages(t *testing.T) {
	t.Run("approved_all_sources_empty", func(t *testing.T) {
		chapters := threeChapterCatalogue()
		chapters.approved[2] = approvedChapter("ch-2", 2)

		resolver, _ := newTestResolver(chapters)

		_, err := resolver.Resolve(context.Background(), ResolveRequest{
			MangaSlug:    "test-manga",
			ChapterParam: "2",
			DeviceID:     "device-1",
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NO_PAGES_AVAILABLE", ae.Code)
	})

	t.Run("pending_empty_content", func(t *testing.T) {
		chapters := threeChapterCatalogue()
		chapters.pending[4] = pendingChapter("sub-4", 4)

		resolver, _ := newTestResolver(chapters)

		_, err := resolver.Resolve(context.Background(), ResolveRequest{
			MangaSlug:    "test-manga",
			ChapterParam: "4",
			DeviceID:     "device-1",
		})

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NO_PAGES_AVAILABLE", ae.Code)
	})
}

/*
TestResolver_InitialIndex covers the starting-page precedence: an in-range
?page parameter wins, then the device's saved position, then zero. Every
outcome is clamped to the page list.
*/
func TestResolver_InitialIndex(t *testing.T) {
	tests := []struct {
		name      string
		pageParam string
		saved     int
		hasSaved  bool
		want      int
	}{
		{"defaults_to_zero", "", 0, false, 0},
		{"page_param_in_range", "3", 0, false, 2},
		{"page_param_first_page", "1", 0, false, 0},
		{"page_param_zero_ignored", "0", 0, false, 0},
		{"page_param_past_end_ignored", "6", 0, false, 0},
		{"page_param_garbage_ignored", "abc", 0, false, 0},
		{"saved_position", "", 3, true, 3},
		{"saved_position_clamped", "", 17, true, 4},
		{"page_param_beats_saved", "2", 3, true, 1},
		{"invalid_page_param_falls_to_saved", "99", 3, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, positions := newTestResolver(threeChapterCatalogue())
			if tt.hasSaved {
				positions.Save(context.Background(), "device-1", "manga-1", 2, tt.saved)
			}

			resolved, err := resolver.Resolve(context.Background(), ResolveRequest{
				MangaSlug:    "test-manga",
				ChapterParam: "2",
				PageParam:    tt.pageParam,
				DeviceID:     "device-1",
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, resolved.InitialIndex)
		})
	}
}

/*
TestResolver_ResolveNumber checks chapter re-entry always lands on index
zero, ignoring any saved position for the target chapter.
*/
func TestResolver_ResolveNumber(t *testing.T) {
	resolver, positions := newTestResolver(threeChapterCatalogue())
	positions.Save(context.Background(), "device-1", "manga-1", 3, 1)

	resolved, err := resolver.ResolveNumber(context.Background(), testManga(), 3)

	require.NoError(t, err)
	assert.Equal(t, 0, resolved.InitialIndex)
	assert.Equal(t, 3, resolved.ChapterNumber)
}
