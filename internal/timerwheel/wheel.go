/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package timerwheel

import (
	"sync"
	"time"
)

// LevelConfig describes one ring of the wheel: tick width and slot count.
type LevelConfig struct {
	Tick time.Duration
	Size int
}

// Config configures a Wheel. Levels must be ordered finest-to-coarsest;
// a delay that exceeds the last level's horizon is rejected.
type Config struct {
	Levels []LevelConfig
}

// location tracks where a scheduled timer currently lives, so it can
// be cancelled or found without a linear scan.
type location struct {
	levelIdx int
	anchor   *anchor
}

// Wheel is one hierarchical timing wheel shared by every process
// instance in the engine: timers are addressed by an opaque TimerID
// (the manager/instance layer encodes "processId:timerName" into it)
// rather than one OS timer per pending timeout.
type Wheel struct {
	mu        sync.Mutex
	levels    []*level
	index     map[string]*location
	running   bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
	ticker    *time.Ticker
	onExpire  func(id string)
	tickCount uint64
}

// New builds a Wheel from cfg. onExpire is invoked (on the wheel's own
// goroutine) once per fired timer id; callers hand off to their own
// dispatch queue rather than doing real work on this goroutine.
func New(cfg Config, onExpire func(id string)) (*Wheel, error) {
	if len(cfg.Levels) == 0 {
		return nil, ErrInvalidConfig
	}
	w := &Wheel{
		index:    make(map[string]*location),
		stopCh:   make(chan struct{}),
		onExpire: onExpire,
	}
	for _, lc := range cfg.Levels {
		if lc.Tick <= 0 || lc.Size <= 0 {
			return nil, ErrInvalidConfig
		}
		w.levels = append(w.levels, newLevel(lc.Tick, lc.Size))
	}
	return w, nil
}

// Start begins advancing the wheel at its finest level's tick interval.
func (w *Wheel) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrWheelAlreadyRunning
	}
	w.running = true
	w.ticker = time.NewTicker(w.levels[0].tick)
	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop halts the wheel; pending timers remain in the index so a
// restart (after restoring from persisted timeouts) can pick up
// cleanly.
func (w *Wheel) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return ErrWheelNotRunning
	}
	w.running = false
	w.ticker.Stop()
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()

	w.mu.Lock()
	w.stopCh = make(chan struct{})
	w.mu.Unlock()
	return nil
}

// Schedule arms a timer identified by id to fire after delay. Any
// existing timer under the same id is replaced (idempotent clearing,
// per §4.3).
func (w *Wheel) Schedule(id string, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	levelIdx := -1
	for i, l := range w.levels {
		if delay <= l.horizon {
			levelIdx = i
			break
		}
	}
	if levelIdx == -1 {
		return ErrTimerTooFar
	}

	w.Cancel(id)

	now := time.Now()
	e := &entry{id: id, dueAt: now.Add(delay)}
	a := w.levels[levelIdx].add(e, delay)

	w.mu.Lock()
	w.index[id] = &location{levelIdx: levelIdx, anchor: a}
	w.mu.Unlock()
	return nil
}

// Cancel removes a pending timer; it is a no-op if the id is unknown
// (matching the idempotent-clearing requirement).
func (w *Wheel) Cancel(id string) {
	w.mu.Lock()
	loc, ok := w.index[id]
	if ok {
		delete(w.index, id)
	}
	w.mu.Unlock()
	if ok {
		w.levels[loc.levelIdx].remove(loc.anchor)
	}
}

// SetExpireCallback (re)binds the function invoked per fired timer id.
// Lets a caller construct the Wheel before the component that owns
// timer routing exists, then wire it in afterward.
func (w *Wheel) SetExpireCallback(onExpire func(id string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onExpire = onExpire
}

// Pending reports whether id currently has an armed timer.
func (w *Wheel) Pending(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.index[id]
	return ok
}

func (w *Wheel) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case now := <-w.ticker.C:
			w.advance(now)
		}
	}
}

// advance ticks the finest level every call, and ticks each coarser
// level only once per full rotation of the level beneath it — the
// standard hierarchical-wheel cascade: a level-i slot spans as much
// time as level (i-1)'s whole horizon, so it only needs to turn over
// that rarely. Whatever lands in a coarser level's current slot gets
// re-levelled against the remaining time, same as fresh scheduling.
func (w *Wheel) advance(now time.Time) {
	expired, overflow := w.levels[0].advance(now)
	w.fire(expired)
	w.relevel(overflow, now)

	w.tickCount++
	multiplier := uint64(1)
	for i := 1; i < len(w.levels); i++ {
		multiplier *= uint64(w.levels[i-1].size)
		if w.tickCount%multiplier != 0 {
			break
		}
		w.relevel(w.levels[i].popCurrentSlot(), now)
	}
}

// relevel re-schedules entries pulled out of a wheel rotation: fire
// immediately if already due, otherwise re-home at whichever level's
// horizon now fits the remaining delay.
func (w *Wheel) relevel(entries []*entry, now time.Time) {
	for _, e := range entries {
		remaining := e.dueAt.Sub(now)
		if remaining <= 0 {
			w.fire([]*entry{e})
			continue
		}
		levelIdx := len(w.levels) - 1
		for i, l := range w.levels {
			if remaining <= l.horizon {
				levelIdx = i
				break
			}
		}
		a := w.levels[levelIdx].add(e, remaining)
		w.mu.Lock()
		w.index[e.id] = &location{levelIdx: levelIdx, anchor: a}
		w.mu.Unlock()
	}
}

func (w *Wheel) fire(entries []*entry) {
	w.mu.Lock()
	cb := w.onExpire
	w.mu.Unlock()
	for _, e := range entries {
		w.mu.Lock()
		delete(w.index, e.id)
		w.mu.Unlock()
		if cb != nil {
			cb(e.id)
		}
	}
}
