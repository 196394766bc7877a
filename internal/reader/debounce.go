// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"sync"
	"time"
)

// # Trailing-Edge Debouncer

// Debouncer coalesces a burst of triggers into a single call after a quiet
// period. Each new trigger replaces the pending call and restarts the window,
// so only the last value settled within the window is ever delivered. There
// is at most one pending timer at any time.
//
// This is deliberately not a queue: intermediate triggers are cancelled, not
// deferred.
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	timer   *time.Timer
	pending func()
	stopped bool
}

// NewDebouncer constructs a debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Trigger schedules fn to run after the quiet period, replacing any pending
// schedule. After Stop, triggers are ignored.
func (debouncer *Debouncer) Trigger(fn func()) {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	if debouncer.stopped {
		return
	}

	debouncer.pending = fn
	if debouncer.timer != nil {
		debouncer.timer.Stop()
	}
	debouncer.timer = time.AfterFunc(debouncer.quiet, debouncer.fire)
}

// Stop cancels any pending call without delivering it and disables the
// debouncer. Used on session teardown so no write lands after the session
// is gone.
func (debouncer *Debouncer) Stop() {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	debouncer.stopped = true
	if debouncer.timer != nil {
		debouncer.timer.Stop()
		debouncer.timer = nil
	}
	debouncer.pending = nil
}

// fire delivers the pending call, if Stop has not raced ahead of the timer.
func (debouncer *Debouncer) fire() {
	debouncer.mu.Lock()
	fn := debouncer.pending
	debouncer.pending = nil
	debouncer.timer = nil
	stopped := debouncer.stopped
	debouncer.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}
