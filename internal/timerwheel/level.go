/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package timerwheel

import (
	"container/list"
	"sync"
	"time"
)

// entry is one scheduled timer living in a slot's linked list.
type entry struct {
	id       string
	dueAt    time.Time
	callback func(id string)
}

// anchor gives O(1) removal: which level, which slot, which list element.
type anchor struct {
	levelIdx int
	slot     int
	elem     *list.Element
}

// level is one ring of the hierarchical wheel: size slots, each tick
// wide, together spanning horizon = tick*size.
type level struct {
	mu          sync.Mutex
	tick        time.Duration
	size        int
	currentSlot int
	slots       []*list.List
	horizon     time.Duration
}

func newLevel(tick time.Duration, size int) *level {
	l := &level{
		tick:    tick,
		size:    size,
		slots:   make([]*list.List, size),
		horizon: tick * time.Duration(size),
	}
	for i := range l.slots {
		l.slots[i] = list.New()
	}
	return l
}

// add places e into the slot `delay` away from the current slot and
// returns the anchor needed to cancel it later.
func (l *level) add(e *entry, delay time.Duration) *anchor {
	l.mu.Lock()
	defer l.mu.Unlock()

	steps := int(delay / l.tick)
	slot := (l.currentSlot + steps) % l.size
	elem := l.slots[slot].PushBack(e)
	return &anchor{slot: slot, elem: elem}
}

func (l *level) remove(a *anchor) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.slot < 0 || a.slot >= l.size || a.elem == nil {
		return false
	}
	l.slots[a.slot].Remove(a.elem)
	return true
}

// advance ticks the finest level by one slot and returns (expired,
// overflow): entries due now, and entries that ended up in this slot
// despite not yet being due (can only happen from imprecise leveling,
// kept as a safety net rather than an invariant).
func (l *level) advance(now time.Time) (expired, overflow []*entry) {
	drained := l.popCurrentSlot()
	for _, e := range drained {
		if !now.Before(e.dueAt) {
			expired = append(expired, e)
		} else {
			overflow = append(overflow, e)
		}
	}
	return expired, overflow
}

// popCurrentSlot drains every entry in the current slot and advances
// to the next one. Used directly by coarser levels, whose entries must
// always cascade down for re-leveling regardless of due time, since a
// coarse slot spans more time than the finer levels' total horizon.
func (l *level) popCurrentSlot() []*entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.slots[l.currentSlot]
	var drained []*entry
	for bucket.Len() > 0 {
		front := bucket.Front()
		drained = append(drained, bucket.Remove(front).(*entry))
	}
	l.currentSlot = (l.currentSlot + 1) % l.size
	return drained
}
