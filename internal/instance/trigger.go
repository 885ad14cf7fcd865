/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package instance

import (
	"strings"

	"bpmn-runtime/internal/bpmndef"
)

// TriggerEvent resolves name against the definition and routes it to
// the right internal event kind, per §4.1's exhaustive, ordered cases.
func (i *Instance) TriggerEvent(name string, data any) error {
	fo, ok := i.Def.ElementByName(name)
	if ok {
		switch v := fo.(type) {
		case *bpmndef.StartEvent:
			if i.hasStarted(v.Name()) {
				return newRuntimeError(ErrAlreadyStarted, "start event %q already triggered", name)
			}
			i.putTokenAt(v, data)
			return nil
		case *bpmndef.IntermediateCatchEvent:
			// Posting through the channel already defers processing
			// to the instance's own loop goroutine on its next
			// iteration, satisfying §5's "defers to the next
			// scheduler tick" requirement for collaborating peers.
			i.enqueue(Event{Kind: IntermediateCatch, Name: v.Name(), Data: data})
			return nil
		case *bpmndef.BoundaryEvent:
			i.enqueue(Event{Kind: BoundaryCatch, Name: v.Name(), Data: data})
			return nil
		}
	}

	if strings.HasSuffix(name, "Done") {
		stripped := strings.TrimSuffix(name, "Done")
		if task, ok := i.Def.ElementByName(stripped); ok {
			if t, isTask := task.(*bpmndef.Task); isTask && t.IsWaitTask() {
				return i.TaskDone(stripped, data)
			}
		}
	}

	return newRuntimeError(ErrUnknownEvent, "no flow object named %q", name)
}

func (i *Instance) hasStarted(startEventName string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, e := range i.History.Entries {
		if e.Name == startEventName {
			return true
		}
	}
	return false
}

// TaskDone signals external completion of a wait-task.
func (i *Instance) TaskDone(name string, data any) error {
	i.enqueue(Event{Kind: ActivityEnd, Name: name, Data: data})
	return nil
}

// SendMessage delivers data along a message flow or, given a plain
// string, delegates straight to TriggerEvent on this instance.
func (i *Instance) SendMessage(target any, data any) error {
	if s, ok := target.(string); ok {
		return i.TriggerEvent(s, data)
	}
	mf, ok := target.(*bpmndef.MessageFlow)
	if !ok {
		return newRuntimeError(ErrNoTarget, "sendMessage target is neither a string nor a *bpmndef.MessageFlow")
	}
	if mf.TargetProcessDefinitionID == "" {
		return newRuntimeError(ErrNoTarget, "message flow %q has no target process definition (pool not executable)", mf.ID)
	}
	peer := i.findParticipant(mf.TargetProcessDefinitionID)
	if peer == nil {
		return newRuntimeError(ErrNoTarget, "no participant instance found for process definition %q", mf.TargetProcessDefinitionID)
	}
	targetFO, ok := peer.Def.ElementByID(mf.TargetRef)
	if !ok {
		return newRuntimeError(ErrNoTarget, "target ref %q not found in process %q", mf.TargetRef, mf.TargetProcessDefinitionID)
	}
	return peer.TriggerEvent(targetFO.Name(), data)
}

func (i *Instance) findParticipant(processDefinitionID string) *Instance {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, p := range i.participants {
		if p.Def.ID == processDefinitionID {
			return p
		}
	}
	return nil
}

// AddParticipant wires a collaboration peer by name, used once by the
// manager after every member of a collaborating set has been created.
func (i *Instance) AddParticipant(name string, peer *Instance) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.participants[name] = peer
}

// SetProperty writes a dot-path property.
func (i *Instance) SetProperty(key string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Properties.Set(key, value)
}

// GetProperty reads a dot-path property.
func (i *Instance) GetProperty(key string) (any, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.Properties.Get(key)
}

// GetProperties returns the full property map.
func (i *Instance) GetProperties() map[string]any {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.Properties.All()
}

// HasTokenAt reports whether a token currently sits at the named flow
// object, for findByState queries.
func (i *Instance) HasTokenAt(name string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.State.HasToken(name)
}

// MatchesPropertyQuery reports whether every key in query matches this
// instance's properties, for findByProperty queries.
func (i *Instance) MatchesPropertyQuery(query map[string]any) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.Properties.MatchesQuery(query)
}
