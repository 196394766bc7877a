// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/komira-app/komira/internal/catalog/chapter"
	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/reader/bookmark"
	"github.com/komira-app/komira/internal/reader/position"
)

// # Test Fakes

type fakeMangas struct {
	bySlug map[string]*manga.Manga
}

func (f *fakeMangas) GetBySlug(_ context.Context, mangaSlug string) (*manga.Manga, error) {
	if title, ok := f.bySlug[mangaSlug]; ok {
		return title, nil
	}
	return nil, apperr.NotFound("Manga")
}

type fakeChapters struct {
	approved map[int]*chapter.Chapter
	pending  map[int]*chapter.PendingChapter
	pages    map[string][]*chapter.Page
}

func (f *fakeChapters) GetApproved(_ context.Context, _ string, number int) (*chapter.Chapter, error) {
	if found, ok := f.approved[number]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("Chapter")
}

func (f *fakeChapters) GetPending(_ context.Context, _ string, number int) (*chapter.PendingChapter, error) {
	if found, ok := f.pending[number]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("Chapter submission")
}

func (f *fakeChapters) GetPages(_ context.Context, chapterID string) ([]*chapter.Page, error) {
	return f.pages[chapterID], nil
}

func (f *fakeChapters) MergedNumbers(_ context.Context, _ string) ([]int, error) {
	numbers := make([]int, 0, len(f.approved)+len(f.pending))
	for n := range f.approved {
		numbers = append(numbers, n)
	}
	for n := range f.pending {
		if _, dup := f.approved[n]; !dup {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}

// fakeBookmarks records every upsert so tests can assert on write counts.
type fakeBookmarks struct {
	mu      sync.Mutex
	records []*bookmark.Bookmark
}

func (f *fakeBookmarks) Upsert(_ context.Context, record *bookmark.Bookmark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeBookmarks) Find(_ context.Context, _, _ string) (*bookmark.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		return nil, apperr.NotFound("Bookmark")
	}
	return f.records[len(f.records)-1], nil
}

func (f *fakeBookmarks) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeBookmarks) last() *bookmark.Bookmark {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		return nil
	}
	return f.records[len(f.records)-1]
}

type fakePreferences struct {
	mode string
	err  error
}

func (f *fakePreferences) ReadingMode(_ context.Context, _ string) (string, error) {
	return f.mode, f.err
}

// # Fixture Builders

func testManga() *manga.Manga {
	return &manga.Manga{
		ID:     "manga-1",
		Title:  "Test Manga",
		Slug:   "test-manga",
		Status: manga.StatusOngoing,
	}
}

func approvedChapter(id string, number int, pages ...string) *chapter.Chapter {
	return &chapter.Chapter{
		ID:       id,
		MangaID:  "manga-1",
		Number:   number,
		Title:    "Chapter",
		PageURLs: pages,
	}
}

func pendingChapter(id string, number int, pages ...string) *chapter.PendingChapter {
	return &chapter.PendingChapter{
		ID:      id,
		MangaID: "manga-1",
		Number:  number,
		Title:   "Pending Chapter",
		Status:  chapter.ReviewPending,
		Content: chapter.PendingContent{Pages: pages},
	}
}

// threeChapterCatalogue builds the standard navigation fixture: chapters 1,
// 2, and 3 with 2, 5, and 2 pages respectively.
func threeChapterCatalogue() *fakeChapters {
	return &fakeChapters{
		approved: map[int]*chapter.Chapter{
			1: approvedChapter("ch-1", 1, "1a.jpg", "1b.jpg"),
			2: approvedChapter("ch-2", 2, "2a.jpg", "2b.jpg", "2c.jpg", "2d.jpg", "2e.jpg"),
			3: approvedChapter("ch-3", 3, "3a.jpg", "3b.jpg"),
		},
		pending: map[int]*chapter.PendingChapter{},
		pages:   map[string][]*chapter.Page{},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv bundles a manager wired entirely to fakes. Timings are shortened
// so debounce and idle-hide behavior can be observed without real waits.
type testEnv struct {
	manager   *Manager
	positions position.Store
	bookmarks *fakeBookmarks
	chapters  *fakeChapters
}

func newTestEnv(chapters *fakeChapters) *testEnv {
	positions := position.NewMemoryStore()
	bookmarks := &fakeBookmarks{}
	resolver := NewResolver(&fakeMangas{bySlug: map[string]*manga.Manga{"test-manga": testManga()}}, chapters, positions)

	manager := NewManager(resolver, positions, bookmarks, &fakePreferences{mode: "webtoon"}, discardLogger())
	manager.quiet = 20 * time.Millisecond
	manager.hideDelay = 40 * time.Millisecond

	return &testEnv{
		manager:   manager,
		positions: positions,
		bookmarks: bookmarks,
		chapters:  chapters,
	}
}
