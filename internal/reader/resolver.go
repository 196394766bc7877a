// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"context"
	"net/http"
	"strconv"

	"github.com/komira-app/komira/internal/catalog/chapter"
	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/reader/position"
)

// # Lookup Contracts

// MangaFinder resolves a catalogue title by its URL slug.
type MangaFinder interface {
	GetBySlug(ctx context.Context, mangaSlug string) (*manga.Manga, error)
}

// ChapterFinder resolves chapters from both the approved and pending sets.
// The catalogue's chapter service satisfies it.
type ChapterFinder interface {
	PageLister
	GetApproved(ctx context.Context, mangaID string, number int) (*chapter.Chapter, error)
	GetPending(ctx context.Context, mangaID string, number int) (*chapter.PendingChapter, error)
	MergedNumbers(ctx context.Context, mangaID string) ([]int, error)
}

// # Resolver

// Resolver turns a reader deep link into a uniform chapter view: an ordered
// page list, the navigation sequence, and the starting page index.
type Resolver struct {
	mangas    MangaFinder
	chapters  ChapterFinder
	positions position.Store
}

// NewResolver constructs a chapter resolver.
func NewResolver(mangas MangaFinder, chapters ChapterFinder, positions position.Store) *Resolver {
	return &Resolver{
		mangas:    mangas,
		chapters:  chapters,
		positions: positions,
	}
}

// ResolveRequest carries the raw inputs of a reader deep link.
type ResolveRequest struct {
	MangaSlug    string
	ChapterParam string // raw route parameter, must parse as a positive integer
	PageParam    string // raw ?page= value, 1-based, optional
	DeviceID     string
}

// ResolvedChapter is the uniform chapter view a session is built from.
//
// ChapterID is empty for pending chapters, which have no approved identity
// yet; bookmark writes for them carry the empty identifier.
type ResolvedChapter struct {
	Manga          *manga.Manga
	ChapterID      string
	ChapterNumber  int
	ChapterTitle   string
	Pages          []string
	Pending        bool
	ChapterNumbers []int
	InitialIndex   int
}

/*
Resolve produces the chapter view for a reader deep link.

Description: Lookups are strictly sequenced: the manga by slug, then the
approved set by (manga, number), then the pending set. The approved record
always wins when both sets carry the same number. Page extraction walks the
source chain (inline array, side table, pending JSON content); a chapter
whose every source is empty resolves to the no-pages error rather than a
silent empty view. The starting index honors an in-range ?page parameter
first, then the device's saved position, then zero, always clamped to the
page list.

Parameters:
  - ctx: context.Context
  - req: ResolveRequest (slug, raw chapter and page parameters, device)

Returns:
  - *ResolvedChapter: The uniform chapter view
  - error: Invalid chapter number, manga/chapter not found, no pages, or
    storage errors
*/
func (resolver *Resolver) Resolve(ctx context.Context, req ResolveRequest) (*ResolvedChapter, error) {
	number, err := strconv.Atoi(req.ChapterParam)
	if err != nil || number < 1 {
		return nil, ErrInvalidChapterNumber()
	}

	title, err := resolver.mangas.GetBySlug(ctx, req.MangaSlug)
	if err != nil {
		return nil, err
	}

	resolved, err := resolver.resolveNumber(ctx, title, number)
	if err != nil {
		return nil, err
	}

	resolved.InitialIndex = resolver.initialIndex(ctx, req, resolved)
	return resolved, nil
}

/*
ResolveNumber produces the chapter view for a known title and chapter number.

Description: Used for chapter re-entry when navigation crosses a boundary.
The landing index is always zero regardless of any saved position, so
crossing into a chapter starts it from the beginning.

Returns:
  - *ResolvedChapter: The uniform chapter view with InitialIndex zero
  - error: Chapter not found, no pages, or storage errors
*/
func (resolver *Resolver) ResolveNumber(ctx context.Context, title *manga.Manga, number int) (*ResolvedChapter, error) {
	return resolver.resolveNumber(ctx, title, number)
}

// resolveNumber runs the approved-then-pending lookup and page extraction.
func (resolver *Resolver) resolveNumber(ctx context.Context, title *manga.Manga, number int) (*ResolvedChapter, error) {
	var (
		approved *chapter.Chapter
		pending  *chapter.PendingChapter
	)

	approved, err := resolver.chapters.GetApproved(ctx, title.ID, number)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		pending, err = resolver.chapters.GetPending(ctx, title.ID, number)
		if err != nil {
			if isNotFound(err) {
				return nil, apperr.NotFound("Chapter")
			}
			return nil, err
		}
	}

	pages, err := resolvePages(ctx, resolver.chapters, approved, pending)
	if err != nil {
		return nil, err
	}

	numbers, err := resolver.chapters.MergedNumbers(ctx, title.ID)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedChapter{
		Manga:          title,
		ChapterNumber:  number,
		Pages:          pages,
		Pending:        pending != nil,
		ChapterNumbers: numbers,
	}
	if approved != nil {
		resolved.ChapterID = approved.ID
		resolved.ChapterTitle = approved.Title
	} else {
		resolved.ChapterTitle = pending.Title
	}
	return resolved, nil
}

// initialIndex picks the starting page: in-range ?page parameter, then the
// device's saved position, then zero. The result is always in [0, pageCount).
func (resolver *Resolver) initialIndex(ctx context.Context, req ResolveRequest, resolved *ResolvedChapter) int {
	count := len(resolved.Pages)

	if req.PageParam != "" {
		if page, err := strconv.Atoi(req.PageParam); err == nil && page >= 1 && page <= count {
			return page - 1
		}
	}

	if index, ok := resolver.positions.Load(ctx, req.DeviceID, resolved.Manga.ID, resolved.ChapterNumber); ok {
		return clampIndex(index, count)
	}

	return 0
}

// clampIndex confines an index to [0, count).
func clampIndex(index, count int) int {
	if index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

// isNotFound reports whether err is a resource-absence error, as opposed to
// an infrastructure failure.
func isNotFound(err error) bool {
	if appErr := apperr.As(err); appErr != nil {
		return appErr.HTTPStatus == http.StatusNotFound
	}
	return false
}
