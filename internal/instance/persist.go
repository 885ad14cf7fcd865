/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package instance

import (
	"time"

	"bpmn-runtime/internal/corelog"
	"bpmn-runtime/internal/state"
)

// toDocument builds the persisted shape of this instance. Only called
// on a main process (no parent); a process reached through a
// call-activity is nested under its parent token's Substate instead of
// persisted as its own document.
func (i *Instance) toDocument() *state.Document {
	return &state.Document{
		ProcessName:     i.ProcessName,
		ProcessID:       i.ProcessID,
		ParentToken:     i.parentToken,
		Properties:      i.Properties,
		State:           i.State,
		History:         i.History,
		PendingTimeouts: i.Timers,
		Views:           i.Views,
	}
}

// snapshotChildren recurses through every live call-activity child and
// embeds its current state/history into the owning token/history entry
// in this instance, so a single document walk from the root reaches
// every descendant (§4.4's "children are nested").
func (i *Instance) snapshotChildren() {
	i.mu.Lock()
	children := make([]*Instance, 0, len(i.children))
	for _, c := range i.children {
		children = append(children, c)
	}
	i.mu.Unlock()

	for _, child := range children {
		child.snapshotChildren()

		child.mu.Lock()
		childState := child.State.Clone()
		childHistory := child.History
		calledProcessID := child.parentToken.CalledProcessID
		position := child.parentToken.Position
		child.mu.Unlock()

		i.mu.Lock()
		for _, t := range i.State.Tokens {
			if t.Position == position && t.CalledProcessID == calledProcessID {
				t.Substate = childState
				break
			}
		}
		for _, h := range i.History.Entries {
			if h.Name == position && h.End == nil {
				h.Subhistory = childHistory
			}
		}
		i.mu.Unlock()
	}
}

// persist is the only I/O the instance performs against the store. It
// may be called on any instance of a call tree and always persists the
// root: a child instance's state is captured into its parent's
// call-activity token (Substate) and nested history (Subhistory) before
// the root persists, so the document walks parent->child in one pass
// per §4.4. If the store fails, the deferred events stay held.
func (i *Instance) persist() {
	if i.store == nil {
		return
	}
	root := i.root()
	root.mu.Lock()
	root.deferEvents = true
	root.mu.Unlock()

	root.snapshotChildren()
	doc := root.toDocument()
	err := root.store.Persist(doc)
	if err != nil {
		root.log.Error("persist failed; deferred events held", corelog.String("processId", root.ProcessID), corelog.Any("error", newStoreError("persist", err)))
		return
	}

	root.mu.Lock()
	root.deferEvents = false
	deferred := root.deferredEvents
	root.deferredEvents = nil
	root.mu.Unlock()

	for _, ev := range deferred {
		root.queue <- ev
	}
}

// root walks up the (non-owning) parent chain to the main process
// instance that actually owns a persisted document.
func (i *Instance) root() *Instance {
	r := i
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// restoreTimers recomputes each pending timeout against wall-clock
// time: reschedule if still in the future, fire immediately if the
// deadline has already passed while the process was unloaded.
func (i *Instance) restoreTimers() {
	if i.wheel == nil {
		return
	}
	now := i.clock.NowMS()
	for _, name := range i.Timers.Names() {
		t := i.Timers.Timeouts[name]
		diff := t.At - now
		tid := i.timerID(name)
		if diff > 0 {
			i.wheel.Schedule(tid, time.Duration(diff)*time.Millisecond)
			i.Timers.SetHandle(name, tid)
		} else {
			i.FireTimer(name)
		}
	}
}
