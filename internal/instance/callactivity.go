/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package instance

import (
	"bpmn-runtime/internal/bpmndef"
	"bpmn-runtime/internal/state"
)

// enterCallActivity instantiates the called process and triggers its
// single start event. Called from dispatchTokenArrived when a token
// reaches a *bpmndef.CallActivity. A called definition with zero or
// more than one start event is a BadCalledProcess — fatal to the
// instance per §7.
func (i *Instance) enterCallActivity(ca *bpmndef.CallActivity) {
	if i.spawnChild == nil {
		i.routeFatal(newRuntimeError(ErrBadCalledProcess, "no spawnChild dependency wired for call activity %q", ca.Name()))
		return
	}

	calledProcessID := i.ProcessID + "::" + ca.Name()

	i.mu.Lock()
	tagged := false
	for _, t := range i.State.Tokens {
		if t.Position == ca.Name() && t.CalledProcessID == "" {
			t.CalledProcessID = calledProcessID
			tagged = true
			break
		}
	}
	if !tagged {
		i.State.Add(&state.Token{
			Position:        ca.Name(),
			OwningProcessID: i.ProcessID,
			CalledProcessID: calledProcessID,
		})
	}
	i.mu.Unlock()

	child, err := i.spawnChild(i, ca.CalledElementName, ca.Location)
	if err != nil {
		i.routeFatal(newRuntimeError(ErrBadCalledProcess, "instantiating called process %q: %v", ca.CalledElementName, err))
		return
	}

	child.parent = i
	child.parentToken = &state.Token{
		Position:        ca.Name(),
		OwningProcessID: i.ProcessID,
		CalledProcessID: calledProcessID,
	}

	i.mu.Lock()
	i.children[calledProcessID] = child
	i.mu.Unlock()

	starts := child.Def.StartEvents()
	if len(starts) != 1 {
		i.routeFatal(newRuntimeError(ErrBadCalledProcess, "called process %q must have exactly one start event, found %d", ca.CalledElementName, len(starts)))
		return
	}

	child.Start()
	if err := child.TriggerEvent(starts[0].Name(), nil); err != nil {
		i.routeFatal(newRuntimeError(ErrBadCalledProcess, "triggering start of called process %q: %v", ca.CalledElementName, err))
	}
}

// AttachRestoredChild wires a reconstructed child instance back under
// its parent after a load, mirroring what enterCallActivity does at
// live call-activity entry time. The manager calls this once per
// nested token while recursively restoring a persisted call tree;
// child.parentToken must already be set (instance.Restore does this
// from the document's ParentToken).
func (i *Instance) AttachRestoredChild(child *Instance) {
	if child.parentToken == nil {
		return
	}
	child.parent = i
	i.mu.Lock()
	i.children[child.parentToken.CalledProcessID] = child
	i.mu.Unlock()
}

// notifyParentOfReturn is invoked by a child's emitEndEvent: it runs
// the parent's default emitTokens over its call-activity token, then
// unregisters the child. This IS the "call activity returning" path
// described in §4.1.
func (i *Instance) notifyParentOfReturn(data any) {
	parent := i.parent
	if parent == nil || i.parentToken == nil {
		return
	}
	calledProcessID := i.parentToken.CalledProcessID
	ca, ok := parent.Def.ElementByName(i.parentToken.Position)
	if !ok {
		return
	}
	parent.enqueueReturn(ca, calledProcessID, data)
}

// enqueueReturn posts the call-activity's completion back onto the
// parent's own loop, so the return is processed on the parent's
// cooperative thread rather than the child's.
func (i *Instance) enqueueReturn(ca bpmndef.FlowObject, calledProcessID string, data any) {
	i.enqueue(Event{Kind: ActivityEnd, Name: ca.Name(), Data: returnPayload{calledProcessID: calledProcessID, data: data}})
}

type returnPayload struct {
	calledProcessID string
	data            any
}

// emitCallActivityReturn runs the parent-side default emitTokens for a
// returning call activity, then forgets the finished child.
func (i *Instance) emitCallActivityReturn(ca *bpmndef.CallActivity, data any) {
	payload, _ := data.(returnPayload)

	i.mu.Lock()
	i.State.RemoveFirst(ca.Name())
	delete(i.children, payload.calledProcessID)
	i.mu.Unlock()

	for _, sf := range i.Def.OutgoingSequenceFlows(ca.ID()) {
		if target, ok := i.Def.ElementByID(sf.TargetRef); ok {
			i.putTokenAt(target, payload.data)
		}
	}
}
