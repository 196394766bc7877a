// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"context"

	"github.com/komira-app/komira/internal/catalog/chapter"
	"github.com/komira-app/komira/pkg/slice"
)

// # Page Source Chain

// PageLister fetches the side-table pages of an approved chapter. It is the
// only storage access the page source chain performs itself.
type PageLister interface {
	GetPages(ctx context.Context, chapterID string) ([]*chapter.Page, error)
}

// pageSource yields the ordered page URLs of a resolved chapter, or reports
// that it does not apply to this chapter. Sources are tried in a fixed order;
// the first applicable source wins even when its list is empty, because an
// empty list from an applicable source means the chapter genuinely has no
// pages.
type pageSource func(ctx context.Context, approved *chapter.Chapter, pending *chapter.PendingChapter) ([]string, bool, error)

// inlineSource reads the ordered URL array stored on the approved chapter
// row. It does not apply when the array is empty, so storage can still be
// consulted through the side table.
func inlineSource(_ context.Context, approved *chapter.Chapter, _ *chapter.PendingChapter) ([]string, bool, error) {
	if approved == nil || len(approved.PageURLs) == 0 {
		return nil, false, nil
	}
	return approved.PageURLs, true, nil
}

// sideTableSource reads core.chapterpage rows ordered by page number.
func sideTableSource(lister PageLister) pageSource {
	return func(ctx context.Context, approved *chapter.Chapter, _ *chapter.PendingChapter) ([]string, bool, error) {
		if approved == nil {
			return nil, false, nil
		}
		pages, err := lister.GetPages(ctx, approved.ID)
		if err != nil {
			return nil, false, err
		}
		urls := slice.Map(pages, func(page *chapter.Page) string { return page.PageURL })
		return urls, true, nil
	}
}

// pendingSource reads the pages array embedded in a pending submission's
// JSON content.
func pendingSource(_ context.Context, _ *chapter.Chapter, pending *chapter.PendingChapter) ([]string, bool, error) {
	if pending == nil {
		return nil, false, nil
	}
	return pending.Content.Pages, true, nil
}

// resolvePages walks the source chain and returns the first applicable page
// list. An applicable but empty list surfaces as [ErrNoPages].
func resolvePages(ctx context.Context, lister PageLister, approved *chapter.Chapter, pending *chapter.PendingChapter) ([]string, error) {
	sources := []pageSource{
		inlineSource,
		sideTableSource(lister),
		pendingSource,
	}

	for _, source := range sources {
		urls, applicable, err := source(ctx, approved, pending)
		if err != nil {
			return nil, err
		}
		if !applicable {
			continue
		}
		if len(urls) == 0 {
			return nil, ErrNoPages()
		}
		return urls, nil
	}

	return nil, ErrNoPages()
}
