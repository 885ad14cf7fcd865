/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package state

// Timeout is the persisted half of a pending timer: when it fires and
// how long it was scheduled for. The scheduled wheel handle is not
// part of this struct — it is a live, in-memory-only timerwheel handle
// that restore recreates from At, never serializes.
type Timeout struct {
	At         int64 `json:"at"`
	DurationMS int64 `json:"durationMs"`
}

// PendingTimerEvents tracks, per timer name, the persisted timeout and
// (in-process only) the scheduled wheel handle backing it.
type PendingTimerEvents struct {
	Timeouts  map[string]*Timeout `json:"timeouts"`
	scheduled map[string]any
}

// NewPendingTimerEvents returns an empty timer table.
func NewPendingTimerEvents() *PendingTimerEvents {
	return &PendingTimerEvents{
		Timeouts:  make(map[string]*Timeout),
		scheduled: make(map[string]any),
	}
}

// Set records a pending timeout for name, replacing any prior entry.
func (p *PendingTimerEvents) Set(name string, at, durationMS int64) {
	p.Timeouts[name] = &Timeout{At: at, DurationMS: durationMS}
}

// Clear removes a pending timeout; it is idempotent, matching the
// timer subsystem's "clearing is idempotent" requirement.
func (p *PendingTimerEvents) Clear(name string) {
	delete(p.Timeouts, name)
	delete(p.scheduled, name)
}

// SetHandle records the live scheduling handle for name, so it can be
// cancelled later without the instance needing to know the timerwheel's
// handle type.
func (p *PendingTimerEvents) SetHandle(name string, handle any) {
	if p.scheduled == nil {
		p.scheduled = make(map[string]any)
	}
	p.scheduled[name] = handle
}

// Handle returns the live scheduling handle for name, if any.
func (p *PendingTimerEvents) Handle(name string) (any, bool) {
	h, ok := p.scheduled[name]
	return h, ok
}

// Names returns every timer name with a pending timeout.
func (p *PendingTimerEvents) Names() []string {
	names := make([]string, 0, len(p.Timeouts))
	for n := range p.Timeouts {
		names = append(names, n)
	}
	return names
}
