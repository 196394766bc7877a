// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komira-app/komira/internal/platform/apperr"
)

func openSession(t *testing.T, env *testEnv, params OpenParams) *Session {
	t.Helper()
	session, err := env.manager.Open(context.Background(), params)
	require.NoError(t, err)
	t.Cleanup(func() { env.manager.Close(context.Background(), session.ID) })
	return session
}

/*
TestSession_ReadingFlow walks the full navigation scenario: a deep link with
a page parameter, page-by-page progress in manga mode, and the boundary
crossing into the next chapter.
*/
func TestSession_ReadingFlow(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		PageParam:    "3",
		DeviceID:     "device-1",
	})

	state := session.Snapshot()
	assert.Equal(t, 2, state.PageIndex)
	assert.Equal(t, 5, state.PageCount)
	assert.Equal(t, []int{1, 2, 3}, state.ChapterNumbers)

	// Page-based progress: page 3 of 5.
	state, err := env.manager.SetMode(ctx, session.ID, ModeManga)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, state.Progress, 0.001)

	// Two advances land on the last page.
	_, err = env.manager.Advance(ctx, session.ID)
	require.NoError(t, err)
	state, err = env.manager.Advance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.PageIndex)
	assert.Equal(t, 2, state.ChapterNumber)
	assert.InDelta(t, 100.0, state.Progress, 0.001)

	// A third advance crosses into chapter 3 at its first page.
	state, err = env.manager.Advance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.ChapterNumber)
	assert.Equal(t, 0, state.PageIndex)
	assert.Equal(t, 2, state.PageCount)
}

/*
TestSession_RetreatAcrossBoundary checks that retreating off the first page
enters the previous chapter at its start, not its end.
*/
func TestSession_RetreatAcrossBoundary(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	state, err := env.manager.Retreat(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ChapterNumber)
	assert.Equal(t, 0, state.PageIndex)
}

/*
TestSession_BoundaryNoNeighbor checks that moves off the sequence's edges
are no-ops.
*/
func TestSession_BoundaryNoNeighbor(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	t.Run("retreat_on_first_chapter", func(t *testing.T) {
		session := openSession(t, env, OpenParams{
			MangaSlug:    "test-manga",
			ChapterParam: "1",
			DeviceID:     "device-first",
		})

		state, err := env.manager.Retreat(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, state.ChapterNumber)
		assert.Equal(t, 0, state.PageIndex)
	})

	t.Run("advance_on_last_chapter", func(t *testing.T) {
		session := openSession(t, env, OpenParams{
			MangaSlug:    "test-manga",
			ChapterParam: "3",
			PageParam:    "2",
			DeviceID:     "device-last",
		})

		state, err := env.manager.Advance(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, state.ChapterNumber)
		assert.Equal(t, 1, state.PageIndex)
	})
}

/*
TestSession_ModeSwitchPreservesIndex verifies the rendering mode and the
page index are independent axes.
*/
func TestSession_ModeSwitchPreservesIndex(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		PageParam:    "4",
		DeviceID:     "device-1",
	})

	state, err := env.manager.SetMode(ctx, session.ID, ModeManga)
	require.NoError(t, err)
	assert.Equal(t, ModeManga, state.Mode)
	assert.Equal(t, 3, state.PageIndex)

	state, err = env.manager.SetMode(ctx, session.ID, ModeWebtoon)
	require.NoError(t, err)
	assert.Equal(t, ModeWebtoon, state.Mode)
	assert.Equal(t, 3, state.PageIndex)

	_, err = env.manager.SetMode(ctx, session.ID, Mode("sideways"))
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
}

/*
TestSession_Scroll checks webtoon scrolling: the fraction drives progress
directly and derives the page index, and out-of-range fractions clamp.
*/
func TestSession_Scroll(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	state, err := env.manager.Scroll(ctx, session.ID, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, state.Progress, 0.001)
	assert.Equal(t, 2, state.PageIndex) // int(0.5 * 5)

	state, err = env.manager.Scroll(ctx, session.ID, 1.7)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, state.Progress, 0.001)
	assert.Equal(t, 4, state.PageIndex)

	state, err = env.manager.Scroll(ctx, session.ID, -0.3)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, state.Progress, 0.001)
	assert.Equal(t, 0, state.PageIndex)
}

/*
TestSession_ScrollIgnoredInMangaMode checks that scroll offsets do not move
the page index when pages are rendered one at a time.
*/
func TestSession_ScrollIgnoredInMangaMode(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		PageParam:    "2",
		DeviceID:     "device-1",
	})

	_, err := env.manager.SetMode(ctx, session.ID, ModeManga)
	require.NoError(t, err)

	state, err := env.manager.Scroll(ctx, session.ID, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 1, state.PageIndex)
}

/*
TestSession_JumpTo verifies direct page jumps clamp to the page list.
*/
func TestSession_JumpTo(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	state, err := env.manager.JumpTo(ctx, session.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, state.PageIndex)

	state, err = env.manager.JumpTo(ctx, session.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 4, state.PageIndex)

	state, err = env.manager.JumpTo(ctx, session.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, state.PageIndex)
}

/*
TestSession_PositionWriteThrough checks every page change is written to the
device position store synchronously, and that re-opening the same chapter on
the same device restores it.
*/
func TestSession_PositionWriteThrough(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	_, err := env.manager.JumpTo(ctx, session.ID, 3)
	require.NoError(t, err)

	index, ok := env.positions.Load(ctx, "device-1", "manga-1", 2)
	require.True(t, ok)
	assert.Equal(t, 3, index)

	env.manager.Close(ctx, session.ID)

	reopened := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})
	assert.Equal(t, 3, reopened.Snapshot().PageIndex)

	// A different device starts from the beginning.
	other := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-2",
	})
	assert.Equal(t, 0, other.Snapshot().PageIndex)
}

/*
TestSession_BookmarkDebounce checks that a burst of page changes settles
into exactly one bookmark write carrying the final position.
*/
func TestSession_BookmarkDebounce(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
		UserID:       "user-1",
	})

	for _, index := range []int{1, 2, 3} {
		_, err := env.manager.JumpTo(ctx, session.ID, index)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return env.bookmarks.count() == 1
	}, time.Second, 5*time.Millisecond)

	record := env.bookmarks.last()
	require.NotNil(t, record)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, "manga-1", record.MangaID)
	assert.Equal(t, "ch-2", record.ChapterID)
	assert.Equal(t, 2, record.ChapterNumber)
	assert.Equal(t, 3, record.PageNumber)

	// The window stays quiet afterwards: no second write sneaks in.
	time.Sleep(3 * env.manager.quiet)
	assert.Equal(t, 1, env.bookmarks.count())
}

/*
TestSession_BookmarkSkippedForAnonymous checks that sessions without a user
never write bookmarks, only device positions.
*/
func TestSession_BookmarkSkippedForAnonymous(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	_, err := env.manager.JumpTo(ctx, session.ID, 2)
	require.NoError(t, err)

	time.Sleep(3 * env.manager.quiet)
	assert.Equal(t, 0, env.bookmarks.count())
}

/*
TestSession_CloseCancelsPendingBookmark checks teardown inside the quiet
window discards the scheduled write instead of flushing it.
*/
func TestSession_CloseCancelsPendingBookmark(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session, err := env.manager.Open(ctx, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
		UserID:       "user-1",
	})
	require.NoError(t, err)

	_, err = env.manager.JumpTo(ctx, session.ID, 2)
	require.NoError(t, err)
	env.manager.Close(ctx, session.ID)

	time.Sleep(3 * env.manager.quiet)
	assert.Equal(t, 0, env.bookmarks.count())

	// The device position survives teardown.
	index, ok := env.positions.Load(ctx, "device-1", "manga-1", 2)
	require.True(t, ok)
	assert.Equal(t, 2, index)

	_, err = env.manager.Get(session.ID)
	assert.NotNil(t, apperr.As(err))
}

/*
TestSession_ControlsAutoHide checks the idle timer: controls start visible,
hide after the delay, and pointer activity restarts the countdown.
*/
func TestSession_ControlsAutoHide(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	assert.True(t, session.Snapshot().ControlsVisible)

	require.Eventually(t, func() bool {
		return !session.Snapshot().ControlsVisible
	}, time.Second, 5*time.Millisecond)

	state, err := env.manager.Touch(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, state.ControlsVisible)

	require.Eventually(t, func() bool {
		return !session.Snapshot().ControlsVisible
	}, time.Second, 5*time.Millisecond)
}

/*
TestSession_ToggleControls checks the explicit toggle and that hiding
cancels the idle timer.
*/
func TestSession_ToggleControls(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		DeviceID:     "device-1",
	})

	state, err := env.manager.ToggleControls(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, state.ControlsVisible)

	state, err = env.manager.ToggleControls(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, state.ControlsVisible)
}

/*
TestSession_Keyboard covers the keyboard contract: arrows page in manga mode
only, M toggles the mode, C toggles controls, Escape tears the session down.
*/
func TestSession_Keyboard(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		PageParam:    "2",
		DeviceID:     "device-1",
	})

	// Arrows are a no-op in webtoon mode.
	state, closed, err := env.manager.HandleKey(ctx, session.ID, "ArrowRight")
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, 1, state.PageIndex)

	// m switches to manga mode; arrows now page.
	state, _, err = env.manager.HandleKey(ctx, session.ID, "m")
	require.NoError(t, err)
	assert.Equal(t, ModeManga, state.Mode)

	state, _, err = env.manager.HandleKey(ctx, session.ID, "ArrowRight")
	require.NoError(t, err)
	assert.Equal(t, 2, state.PageIndex)

	state, _, err = env.manager.HandleKey(ctx, session.ID, "ArrowLeft")
	require.NoError(t, err)
	assert.Equal(t, 1, state.PageIndex)

	// c hides the controls.
	state, _, err = env.manager.HandleKey(ctx, session.ID, "c")
	require.NoError(t, err)
	assert.False(t, state.ControlsVisible)

	// Unbound keys change nothing.
	state, _, err = env.manager.HandleKey(ctx, session.ID, "x")
	require.NoError(t, err)
	assert.Equal(t, 1, state.PageIndex)

	// Escape closes the session and reports the final state.
	state, closed, err = env.manager.HandleKey(ctx, session.ID, "Escape")
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, 1, state.PageIndex)

	_, err = env.manager.Get(session.ID)
	assert.NotNil(t, apperr.As(err))
}

/*
TestSession_KeyboardBoundaryCrossing checks an ArrowRight on the last page
crosses into the next chapter.
*/
func TestSession_KeyboardBoundaryCrossing(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())
	ctx := context.Background()

	session := openSession(t, env, OpenParams{
		MangaSlug:    "test-manga",
		ChapterParam: "2",
		PageParam:    "5",
		DeviceID:     "device-1",
	})

	_, _, err := env.manager.HandleKey(ctx, session.ID, "m")
	require.NoError(t, err)

	state, _, err := env.manager.HandleKey(ctx, session.ID, "ArrowRight")
	require.NoError(t, err)
	assert.Equal(t, 3, state.ChapterNumber)
	assert.Equal(t, 0, state.PageIndex)
}

/*
TestManager_InitialMode checks the opening mode comes from the stored
preference, with webtoon as the fallback.
*/
func TestManager_InitialMode(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		prefs  *fakePreferences
		want   Mode
	}{
		{"stored_manga", "user-1", &fakePreferences{mode: "manga"}, ModeManga},
		{"stored_webtoon", "user-1", &fakePreferences{mode: "webtoon"}, ModeWebtoon},
		{"unknown_value", "user-1", &fakePreferences{mode: "diagonal"}, ModeWebtoon},
		{"lookup_error", "user-1", &fakePreferences{err: assert.AnError}, ModeWebtoon},
		{"anonymous", "", &fakePreferences{mode: "manga"}, ModeWebtoon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(threeChapterCatalogue())
			env.manager.preferences = tt.prefs

			session := openSession(t, env, OpenParams{
				MangaSlug:    "test-manga",
				ChapterParam: "1",
				DeviceID:     "device-1",
				UserID:       tt.userID,
			})

			assert.Equal(t, tt.want, session.Snapshot().Mode)
		})
	}
}

/*
TestManager_GetUnknownSession checks lookups of unknown identifiers.
*/
func TestManager_GetUnknownSession(t *testing.T) {
	env := newTestEnv(threeChapterCatalogue())

	_, err := env.manager.Get("no-such-session")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)

	// Closing an unknown session is a no-op.
	env.manager.Close(context.Background(), "no-such-session")
}
