// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/reader/bookmark"
	"github.com/komira-app/komira/internal/reader/position"
	"github.com/komira-app/komira/pkg/uuid"
)

// PreferenceSource yields a user's stored reading mode. The users preference
// service satisfies it; the manager falls back to webtoon when the lookup
// fails or yields an unknown mode.
type PreferenceSource interface {
	ReadingMode(ctx context.Context, userID string) (string, error)
}

// # Session Manager

// Manager owns the registry of live reading sessions and performs the
// chapter re-entry when navigation crosses a chapter boundary.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	resolver    *Resolver
	positions   position.Store
	bookmarks   bookmark.Repository
	preferences PreferenceSource
	quiet       time.Duration
	hideDelay   time.Duration
	logger      *slog.Logger
}

// NewManager constructs a session manager with the standard timing
// constants.
func NewManager(resolver *Resolver, positions position.Store, bookmarks bookmark.Repository, preferences PreferenceSource, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		resolver:    resolver,
		positions:   positions,
		bookmarks:   bookmarks,
		preferences: preferences,
		quiet:       BookmarkQuietPeriod,
		hideDelay:   ControlsHideDelay,
		logger:      logger,
	}
}

// OpenParams carries the inputs for opening a reading session.
type OpenParams struct {
	MangaSlug    string
	ChapterParam string
	PageParam    string
	DeviceID     string
	UserID       string
}

/*
Open resolves a chapter and starts a reading session on it.

Description: The initial rendering mode comes from the user's stored
preference, defaulting to webtoon when no usable preference exists. The
starting page index follows the resolver's rules (?page parameter, then the
device's saved position, then zero).

Returns:
  - *Session: The registered live session
  - error: Resolution errors (invalid number, not found, no pages)
*/
func (manager *Manager) Open(ctx context.Context, params OpenParams) (*Session, error) {
	resolved, err := manager.resolver.Resolve(ctx, ResolveRequest{
		MangaSlug:    params.MangaSlug,
		ChapterParam: params.ChapterParam,
		PageParam:    params.PageParam,
		DeviceID:     params.DeviceID,
	})
	if err != nil {
		return nil, err
	}

	session := newSession(uuid.New(), params.UserID, params.DeviceID, resolved, manager.initialMode(ctx, params.UserID), sessionDeps{
		positions: manager.positions,
		bookmarks: manager.bookmarks,
		quiet:     manager.quiet,
		hideDelay: manager.hideDelay,
		logger:    manager.logger,
	})

	manager.mu.Lock()
	manager.sessions[session.ID] = session
	manager.mu.Unlock()

	manager.logger.Info("reading_session_opened",
		slog.String("session_id", session.ID),
		slog.String("manga_id", resolved.Manga.ID),
		slog.Int("chapter_number", resolved.ChapterNumber),
		slog.Bool("pending", resolved.Pending),
	)

	return session, nil
}

// initialMode looks up the user's stored reading mode, falling back to
// webtoon.
func (manager *Manager) initialMode(ctx context.Context, userID string) Mode {
	if userID == "" || manager.preferences == nil {
		return ModeWebtoon
	}
	stored, err := manager.preferences.ReadingMode(ctx, userID)
	if err != nil {
		return ModeWebtoon
	}
	if mode := Mode(stored); mode.IsValid() {
		return mode
	}
	return ModeWebtoon
}

// Get retrieves a live session by identifier.
func (manager *Manager) Get(id string) (*Session, error) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	session, ok := manager.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	return session, nil
}

// # Navigation

// Advance moves a session one page forward, entering the next chapter of
// the merged sequence when the move runs off the chapter's edge.
func (manager *Manager) Advance(ctx context.Context, id string) (State, error) {
	session, err := manager.Get(id)
	if err != nil {
		return State{}, err
	}
	if err := manager.applyMove(ctx, session, session.Advance(ctx)); err != nil {
		return State{}, err
	}
	return session.Snapshot(), nil
}

// Retreat moves a session one page backward, entering the previous chapter
// at its first page when the move runs off the chapter's edge.
func (manager *Manager) Retreat(ctx context.Context, id string) (State, error) {
	session, err := manager.Get(id)
	if err != nil {
		return State{}, err
	}
	if err := manager.applyMove(ctx, session, session.Retreat(ctx)); err != nil {
		return State{}, err
	}
	return session.Snapshot(), nil
}

// applyMove performs the chapter re-entry a boundary-crossing move asks for.
// The resolver runs the full lookup for the target chapter; the landing
// index is zero in both directions.
func (manager *Manager) applyMove(ctx context.Context, session *Session, result MoveResult) error {
	if !result.ChangedChapter {
		return nil
	}

	resolved, err := manager.resolver.ResolveNumber(ctx, session.manga(), result.TargetNumber)
	if err != nil {
		return err
	}
	session.enterChapter(ctx, resolved)

	manager.logger.Info("chapter_crossed",
		slog.String("session_id", session.ID),
		slog.String("manga_id", resolved.Manga.ID),
		slog.Int("chapter_number", resolved.ChapterNumber),
	)
	return nil
}

// JumpTo sets a session's page index directly, clamped to the page list.
func (manager *Manager) JumpTo(ctx context.Context, id string, index int) (State, error) {
	session, err := manager.Get(id)
	if err != nil {
		return State{}, err
	}
	session.JumpTo(ctx, index)
	return session.Snapshot(), nil
}

// SetMode switches a session's rendering mode, preserving the page index.
func (manager *Manager) SetMode(ctx context.Context, id string, mode Mode) (State, error) {
	session, err := manager.Get(id)
	if err != nil {
		return State{}, err
	}
	if !mode.IsValid() {
		return State{}, apperr.ValidationError("Unknown reading mode")
	}
	session.SetMode(mode)
	return session.Snapshot(), nil
}

// Scroll records a webtoon scroll offset for a session.
func (manager *Manager) Scroll(ctx context.Context, id string, fraction float64) (State, error) {
	session, err := manager.Get(id)
	if err != nil {
		return State{}, err
	}
	session.Scroll(ctx, fraction)
	return session.Snapshot(), nil
}

// Touch registers pointer activity on a session.
func (manager *Manager) Touch(ctx context.Context, id string) (State, error) {
	session, err := manager.Get(id)
	if err != nil {
		return State{}, err
	}
	session.Touch()
	return session.Snapshot(), nil
}

// ToggleControls flips a session's control visibility.
func (manager *Manager) ToggleControls(ctx context.Context, id string) (State, error) {
	session, err := manager.Get(id)
	if err != nil {
		return State{}, err
	}
	session.ToggleControls()
	return session.Snapshot(), nil
}

// HandleKey applies a keyboard event to a session. Escape tears the session
// down; the second return value reports whether that happened.
func (manager *Manager) HandleKey(ctx context.Context, id, key string) (State, bool, error) {
	session, err := manager.Get(id)
	if err != nil {
		return State{}, false, err
	}

	if key == "Escape" {
		state := session.Snapshot()
		manager.Close(ctx, id)
		return state, true, nil
	}

	if err := manager.applyMove(ctx, session, session.HandleKey(ctx, key)); err != nil {
		return State{}, false, err
	}
	return session.Snapshot(), false, nil
}

// # Teardown

// Close tears a session down and removes it from the registry. Closing an
// unknown or already-closed session is a no-op.
func (manager *Manager) Close(ctx context.Context, id string) {
	manager.mu.Lock()
	session, ok := manager.sessions[id]
	delete(manager.sessions, id)
	manager.mu.Unlock()

	if !ok {
		return
	}
	session.Close(ctx)

	manager.logger.Info("reading_session_closed",
		slog.String("session_id", session.ID),
	)
}

// manga returns the session's title for resolver re-entry.
func (session *Session) manga() *manga.Manga {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.title
}
