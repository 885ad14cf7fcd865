/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package instance

import (
	"context"
	"time"

	"bpmn-runtime/internal/bpmndef"
	"bpmn-runtime/internal/handler"
)

// timerID builds the wheel-level identifier for one of this instance's
// named timers. The wheel is shared across every instance in the
// process, so ids must be globally unique.
func (i *Instance) timerID(name string) string {
	return i.ProcessID + ":" + name
}

// scheduleTimer resolves name$getTimeout against the handler module,
// stores the resulting deadline, and arms the shared wheel. Failure to
// obtain a finite duration is a BadTimeout RuntimeError — fatal to the
// instance per §7.
func (i *Instance) scheduleTimer(name string) error {
	canonical := handler.TimeoutName(name)
	if i.handlers == nil {
		return newRuntimeError(ErrBadTimeout, "no %s handler registered", canonical)
	}
	fn, ok := i.handlers.Timeout(canonical)
	if !ok {
		return newRuntimeError(ErrBadTimeout, "no %s handler registered", canonical)
	}
	ms, err := fn(context.Background())
	if err != nil || ms < 0 {
		return newRuntimeError(ErrBadTimeout, "%s returned an invalid duration: %v", canonical, err)
	}
	now := i.clock.NowMS()
	i.Timers.Set(name, now+ms, ms)
	if i.wheel != nil {
		id := i.timerID(name)
		if err := i.wheel.Schedule(id, time.Duration(ms)*time.Millisecond); err != nil {
			return newRuntimeError(ErrBadTimeout, "scheduling %s: %v", name, err)
		}
		i.Timers.SetHandle(name, id)
	}
	return nil
}

// clearTimer cancels a pending timer; idempotent per §4.3.
func (i *Instance) clearTimer(name string) {
	if i.wheel != nil {
		i.wheel.Cancel(i.timerID(name))
	}
	i.Timers.Clear(name)
}

// FireTimer is called by the manager when the shared wheel reports
// that one of this instance's timers has expired. It re-enters the
// instance's own queue rather than running synchronously on the
// wheel's goroutine, preserving the single-logical-thread-per-instance
// guarantee.
func (i *Instance) FireTimer(name string) {
	fo, ok := i.Def.ElementByName(name)
	if !ok {
		return
	}
	switch fo.(type) {
	case *bpmndef.IntermediateCatchEvent:
		i.enqueue(Event{Kind: IntermediateCatch, Name: name})
	case *bpmndef.BoundaryEvent:
		i.enqueue(Event{Kind: BoundaryCatch, Name: name})
	}
}
