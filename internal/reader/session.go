// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/reader/bookmark"
	"github.com/komira-app/komira/internal/reader/position"
)

// bookmarkWriteTimeout bounds the deferred bookmark upsert, which runs
// detached from any request context.
const bookmarkWriteTimeout = 5 * time.Second

// # Session

// Session is the live state of one device reading one chapter.
//
// Two orthogonal axes persist across page changes: the page index and the
// rendering mode. Every page-index change write-throughs to the device's
// position store and, for authenticated readers, schedules the debounced
// remote bookmark write.
//
// All mutating methods are safe for concurrent use; the hide timer and the
// debouncer fire on their own goroutines.
type Session struct {
	ID       string
	UserID   string // empty for anonymous readers
	DeviceID string

	mu              sync.Mutex
	title           *manga.Manga
	chapterID       string
	chapterNumber   int
	chapterTitle    string
	pages           []string
	pending         bool
	numbers         []int
	index           int
	mode            Mode
	scrollFraction  float64
	controlsVisible bool
	hideTimer       *time.Timer
	closed          bool

	positions position.Store
	bookmarks bookmark.Repository
	debouncer *Debouncer
	hideDelay time.Duration
	logger    *slog.Logger
}

// sessionDeps bundles the collaborators a session needs for its side effects.
type sessionDeps struct {
	positions position.Store
	bookmarks bookmark.Repository
	quiet     time.Duration
	hideDelay time.Duration
	logger    *slog.Logger
}

// newSession builds a session from a resolved chapter. Controls start
// visible with the hide timer armed, matching the on-mount behavior.
func newSession(id, userID, deviceID string, resolved *ResolvedChapter, mode Mode, deps sessionDeps) *Session {
	session := &Session{
		ID:              id,
		UserID:          userID,
		DeviceID:        deviceID,
		title:           resolved.Manga,
		chapterID:       resolved.ChapterID,
		chapterNumber:   resolved.ChapterNumber,
		chapterTitle:    resolved.ChapterTitle,
		pages:           resolved.Pages,
		pending:         resolved.Pending,
		numbers:         resolved.ChapterNumbers,
		index:           resolved.InitialIndex,
		mode:            mode,
		controlsVisible: true,
		positions:       deps.positions,
		bookmarks:       deps.bookmarks,
		debouncer:       NewDebouncer(deps.quiet),
		hideDelay:       deps.hideDelay,
		logger:          deps.logger,
	}

	session.mu.Lock()
	session.armHideTimerLocked()
	session.mu.Unlock()

	return session
}

// # Navigation

// MoveResult reports the outcome of an advance or retreat.
type MoveResult struct {
	// Index is the page index after the move, within the current chapter.
	Index int

	// ChangedChapter is true when the move ran off the chapter's edge and a
	// neighboring chapter exists. The caller performs the re-entry.
	ChangedChapter bool

	// TargetNumber is the neighboring chapter to enter when ChangedChapter
	// is set.
	TargetNumber int

	// AtBoundary is true when the move ran off the edge with no neighboring
	// chapter: the move was a no-op.
	AtBoundary bool
}

// Advance moves one page forward. On the last page it either requests entry
// into the next chapter of the merged sequence or, with no next chapter,
// does nothing.
func (session *Session) Advance(ctx context.Context) MoveResult {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.index < len(session.pages)-1 {
		session.index++
		session.persistLocked(ctx)
		return MoveResult{Index: session.index}
	}

	if next, ok := nextNumber(session.numbers, session.chapterNumber); ok {
		return MoveResult{Index: session.index, ChangedChapter: true, TargetNumber: next}
	}
	return MoveResult{Index: session.index, AtBoundary: true}
}

// Retreat moves one page backward. On the first page it requests entry into
// the previous chapter; the landing page is that chapter's start, not its
// end.
func (session *Session) Retreat(ctx context.Context) MoveResult {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.index > 0 {
		session.index--
		session.persistLocked(ctx)
		return MoveResult{Index: session.index}
	}

	if previous, ok := previousNumber(session.numbers, session.chapterNumber); ok {
		return MoveResult{Index: session.index, ChangedChapter: true, TargetNumber: previous}
	}
	return MoveResult{Index: session.index, AtBoundary: true}
}

// JumpTo sets the page index directly, clamped to the page list.
func (session *Session) JumpTo(ctx context.Context, index int) int {
	session.mu.Lock()
	defer session.mu.Unlock()

	target := clampIndex(index, len(session.pages))
	if target != session.index {
		session.index = target
		session.persistLocked(ctx)
	}
	return session.index
}

// enterChapter swaps the session onto a newly resolved chapter. Crossing a
// boundary always lands on page zero, in both directions.
func (session *Session) enterChapter(ctx context.Context, resolved *ResolvedChapter) {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.title = resolved.Manga
	session.chapterID = resolved.ChapterID
	session.chapterNumber = resolved.ChapterNumber
	session.chapterTitle = resolved.ChapterTitle
	session.pages = resolved.Pages
	session.pending = resolved.Pending
	session.numbers = resolved.ChapterNumbers
	session.index = 0
	session.scrollFraction = 0

	session.persistLocked(ctx)
}

// nextNumber finds the smallest chapter number greater than current.
func nextNumber(numbers []int, current int) (int, bool) {
	for _, n := range numbers {
		if n > current {
			return n, true
		}
	}
	return 0, false
}

// previousNumber finds the largest chapter number smaller than current.
func previousNumber(numbers []int, current int) (int, bool) {
	for i := len(numbers) - 1; i >= 0; i-- {
		if numbers[i] < current {
			return numbers[i], true
		}
	}
	return 0, false
}

// # Mode & Progress

// SetMode switches the rendering mode. The page index is untouched: a
// reader flipping between layouts stays on the same page.
func (session *Session) SetMode(mode Mode) {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.mode = mode
}

// ToggleMode flips between the two rendering modes.
func (session *Session) ToggleMode() Mode {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.mode == ModeWebtoon {
		session.mode = ModeManga
	} else {
		session.mode = ModeWebtoon
	}
	return session.mode
}

// Scroll records a webtoon scroll offset as a fraction of the scrollable
// height. The derived page index follows the fraction; progress is
// recomputed on every call with no throttling.
func (session *Session) Scroll(ctx context.Context, fraction float64) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	session.scrollFraction = fraction

	if session.mode != ModeWebtoon {
		return
	}

	derived := clampIndex(int(fraction*float64(len(session.pages))), len(session.pages))
	if derived != session.index {
		session.index = derived
		session.persistLocked(ctx)
	}
}

// progressLocked derives the progress percentage for the current mode.
func (session *Session) progressLocked() float64 {
	if session.mode == ModeWebtoon {
		return session.scrollFraction * 100
	}
	if len(session.pages) == 0 {
		return 0
	}
	return float64(session.index+1) / float64(len(session.pages)) * 100
}

// # Control Visibility

// Touch registers pointer activity: controls become visible and the idle
// hide timer restarts.
func (session *Session) Touch() {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return
	}
	session.controlsVisible = true
	session.armHideTimerLocked()
}

// ToggleControls flips control visibility. Showing restarts the idle timer;
// hiding cancels it.
func (session *Session) ToggleControls() bool {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return session.controlsVisible
	}

	session.controlsVisible = !session.controlsVisible
	if session.controlsVisible {
		session.armHideTimerLocked()
	} else {
		session.cancelHideTimerLocked()
	}
	return session.controlsVisible
}

// armHideTimerLocked replaces the idle timer with a fresh one. There is
// never more than one pending handle: arming cancels the previous timer
// first.
func (session *Session) armHideTimerLocked() {
	session.cancelHideTimerLocked()
	session.hideTimer = time.AfterFunc(session.hideDelay, session.hideControls)
}

func (session *Session) cancelHideTimerLocked() {
	if session.hideTimer != nil {
		session.hideTimer.Stop()
		session.hideTimer = nil
	}
}

// hideControls is the idle timer callback.
func (session *Session) hideControls() {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return
	}
	session.controlsVisible = false
	session.hideTimer = nil
}

// # Keyboard

// HandleKey applies a keyboard event to the session.
//
// Arrow keys page only in manga mode; webtoon mode scrolls natively, so they
// are a no-op there. KeyM toggles the rendering mode and KeyC toggles the
// controls. Escape is handled by the caller as session teardown, not here.
func (session *Session) HandleKey(ctx context.Context, key string) MoveResult {
	switch key {
	case "ArrowRight":
		if session.currentMode() == ModeManga {
			return session.Advance(ctx)
		}
	case "ArrowLeft":
		if session.currentMode() == ModeManga {
			return session.Retreat(ctx)
		}
	case "m", "M":
		session.ToggleMode()
	case "c", "C":
		session.ToggleControls()
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return MoveResult{Index: session.index}
}

func (session *Session) currentMode() Mode {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.mode
}

// # Side Effects

// persistLocked runs the page-change side effects: a synchronous local
// position write and, for authenticated readers, the debounced remote
// bookmark write. Callers hold the session mutex.
func (session *Session) persistLocked(ctx context.Context) {
	session.positions.Save(ctx, session.DeviceID, session.title.ID, session.chapterNumber, session.index)

	if session.UserID == "" {
		return
	}

	// Snapshot the record now; the debouncer fires after the request context
	// is gone, so the write runs detached with its own deadline. Failures are
	// logged and swallowed: the bookmark is a convenience, not correctness.
	record := &bookmark.Bookmark{
		UserID:        session.UserID,
		MangaID:       session.title.ID,
		ChapterID:     session.chapterID,
		ChapterNumber: session.chapterNumber,
		PageNumber:    session.index,
		UpdatedAt:     time.Now().UTC(),
	}
	repository := session.bookmarks
	logger := session.logger

	session.debouncer.Trigger(func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), bookmarkWriteTimeout)
		defer cancel()

		if err := repository.Upsert(writeCtx, record); err != nil {
			logger.Warn("bookmark_sync_failed",
				slog.String("user_id", record.UserID),
				slog.String("manga_id", record.MangaID),
				slog.Int("chapter_number", record.ChapterNumber),
				slog.String("error", err.Error()),
			)
		}
	})
}

// # Snapshot & Teardown

// State is the read-only view of a session returned to clients.
type State struct {
	SessionID       string   `json:"session_id"`
	MangaID         string   `json:"manga_id"`
	MangaSlug       string   `json:"manga_slug"`
	MangaTitle      string   `json:"manga_title"`
	ChapterNumber   int      `json:"chapter_number"`
	ChapterTitle    string   `json:"chapter_title"`
	Pending         bool     `json:"pending"`
	Pages           []string `json:"pages"`
	PageIndex       int      `json:"page_index"`
	PageCount       int      `json:"page_count"`
	Mode            Mode     `json:"mode"`
	Progress        float64  `json:"progress"`
	ControlsVisible bool     `json:"controls_visible"`
	ChapterNumbers  []int    `json:"chapter_numbers"`
}

// Snapshot captures the current session state.
func (session *Session) Snapshot() State {
	session.mu.Lock()
	defer session.mu.Unlock()

	return State{
		SessionID:       session.ID,
		MangaID:         session.title.ID,
		MangaSlug:       session.title.Slug,
		MangaTitle:      session.title.Title,
		ChapterNumber:   session.chapterNumber,
		ChapterTitle:    session.chapterTitle,
		Pending:         session.pending,
		Pages:           session.pages,
		PageIndex:       session.index,
		PageCount:       len(session.pages),
		Mode:            session.mode,
		Progress:        session.progressLocked(),
		ControlsVisible: session.controlsVisible,
		ChapterNumbers:  session.numbers,
	}
}

// Close tears the session down: the idle timer and any pending bookmark
// write are cancelled (never flushed), and the final page index is written
// to the local position store one last time.
func (session *Session) Close(ctx context.Context) {
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	session.closed = true
	session.cancelHideTimerLocked()
	session.positions.Save(ctx, session.DeviceID, session.title.ID, session.chapterNumber, session.index)
	session.mu.Unlock()

	session.debouncer.Stop()
}
