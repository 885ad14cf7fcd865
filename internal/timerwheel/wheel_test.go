/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package timerwheel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestWheel(t *testing.T, onExpire func(string)) *Wheel {
	t.Helper()
	w, err := New(Config{Levels: []LevelConfig{
		{Tick: 10 * time.Millisecond, Size: 8},
		{Tick: 80 * time.Millisecond, Size: 8},
	}}, onExpire)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestWheelFiresAfterDelay(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	w := newTestWheel(t, func(id string) {
		mu.Lock()
		fired = append(fired, id)
		mu.Unlock()
	})

	require.NoError(t, w.Schedule("timer-a", 30*time.Millisecond))
	require.True(t, w.Pending("timer-a"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1 && fired[0] == "timer-a"
	}, time.Second, 5*time.Millisecond)

	require.False(t, w.Pending("timer-a"))
}

func TestWheelCancelIsIdempotentAndNoOpOnUnknownID(t *testing.T) {
	w := newTestWheel(t, func(string) {})
	w.Cancel("never-scheduled")

	require.NoError(t, w.Schedule("timer-b", time.Second))
	w.Cancel("timer-b")
	w.Cancel("timer-b")
	require.False(t, w.Pending("timer-b"))
}

func TestWheelRescheduleReplacesPriorTimer(t *testing.T) {
	var mu sync.Mutex
	var fired []string
	w := newTestWheel(t, func(id string) {
		mu.Lock()
		fired = append(fired, id)
		mu.Unlock()
	})

	require.NoError(t, w.Schedule("timer-c", time.Second))
	require.NoError(t, w.Schedule("timer-c", 20*time.Millisecond))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestWheelRejectsDelayBeyondHorizon(t *testing.T) {
	w := newTestWheel(t, func(string) {})
	err := w.Schedule("too-far", time.Hour)
	require.ErrorIs(t, err, ErrTimerTooFar)
}

func TestSetExpireCallbackRebindsAfterConstruction(t *testing.T) {
	w, err := New(Config{Levels: []LevelConfig{{Tick: 10 * time.Millisecond, Size: 8}}}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	done := make(chan string, 1)
	w.SetExpireCallback(func(id string) { done <- id })

	require.NoError(t, w.Schedule("timer-d", 15*time.Millisecond))
	select {
	case id := <-done:
		require.Equal(t, "timer-d", id)
	case <-time.After(time.Second):
		t.Fatal("timer never fired through the rebound callback")
	}
}
