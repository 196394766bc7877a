// Copyright (c) 2026 Komira. All rights reserved.

package reader

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestDebouncer_CoalescesBurst checks a burst of triggers delivers only the
last call, once, after the quiet period.
*/
func TestDebouncer_CoalescesBurst(t *testing.T) {
	debouncer := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int64
	var last atomic.Int64

	for i := 1; i <= 5; i++ {
		value := int64(i)
		debouncer.Trigger(func() {
			fired.Add(1)
			last.Store(value)
		})
	}

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(5), last.Load())

	// Nothing else fires once the burst has settled.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(1), fired.Load())
}

/*
TestDebouncer_SeparateWindows checks triggers spaced wider than the quiet
period each deliver.
*/
func TestDebouncer_SeparateWindows(t *testing.T) {
	debouncer := NewDebouncer(10 * time.Millisecond)

	var fired atomic.Int64
	debouncer.Trigger(func() { fired.Add(1) })

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 2*time.Millisecond)

	debouncer.Trigger(func() { fired.Add(1) })

	require.Eventually(t, func() bool {
		return fired.Load() == 2
	}, time.Second, 2*time.Millisecond)
}

/*
TestDebouncer_StopDiscardsPending checks Stop cancels the scheduled call
without delivering it and disables further triggers.
*/
func TestDebouncer_StopDiscardsPending(t *testing.T) {
	debouncer := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int64
	debouncer.Trigger(func() { fired.Add(1) })
	debouncer.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(0), fired.Load())

	debouncer.Trigger(func() { fired.Add(1) })
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(0), fired.Load())
}
