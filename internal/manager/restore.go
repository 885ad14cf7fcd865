/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package manager

import (
	"bpmn-runtime/internal/bpmndef"
	"bpmn-runtime/internal/corelog"
	"bpmn-runtime/internal/ids"
	"bpmn-runtime/internal/instance"
	"bpmn-runtime/internal/state"
)

// loadPersisted materializes every persisted document for one
// definition: duplicate ids anywhere in the loaded set, or a collision
// against an id already cached from an earlier definition, is fatal to
// this definition's load per §4.4's "duplicate ids in the persisted
// set are fatal".
func (m *Manager) loadPersisted(name string, def *bpmndef.ProcessDefinition) error {
	docs, err := m.store.LoadAll(name)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if seen[doc.ProcessID] {
			return newConfigError("duplicate process id %q in persisted data for %q", doc.ProcessID, name)
		}
		seen[doc.ProcessID] = true
	}

	m.mu.Lock()
	for id := range seen {
		if _, exists := m.cache[id]; exists {
			m.mu.Unlock()
			return newConfigError("process id %q already cached under another definition", id)
		}
	}
	m.mu.Unlock()

	for _, doc := range docs {
		inst := instance.Restore(name, def, doc, m.depsFor(name))
		m.mu.Lock()
		m.cache[doc.ProcessID] = inst
		m.mu.Unlock()

		if doc.State != nil {
			m.restoreChildren(inst, def, doc.State)
		}
		inst.Start()
	}
	return nil
}

// restoreChildren recursively recreates a child instance for every
// call-activity token carrying a Substate, matching §4.4's "recursively
// recreate child instances for every call-activity token".
func (m *Manager) restoreChildren(parent *instance.Instance, parentDef *bpmndef.ProcessDefinition, st *state.ProcessState) {
	for _, t := range st.Tokens {
		if t.Substate == nil {
			continue
		}
		fo, ok := parentDef.ElementByName(t.Position)
		if !ok {
			continue
		}
		ca, ok := fo.(*bpmndef.CallActivity)
		if !ok {
			continue
		}

		m.mu.Lock()
		childDef, ok := m.definitions[ca.CalledElementName]
		m.mu.Unlock()
		if !ok {
			m.log.Error("cannot restore call-activity child: no definition registered",
				corelog.String("calledElement", ca.CalledElementName))
			continue
		}

		childDoc := &state.Document{
			ProcessName:     ca.CalledElementName,
			ProcessID:       ids.NewProcessID(),
			ParentToken:     t.Clone(),
			Properties:      state.NewProperties(),
			State:           t.Substate,
			History:         subhistoryFor(parent, t.Position),
			PendingTimeouts: state.NewPendingTimerEvents(),
			Views:           &state.Views{},
		}

		child := instance.Restore(ca.CalledElementName, childDef, childDoc, m.depsFor(ca.CalledElementName))
		parent.AttachRestoredChild(child)

		m.mu.Lock()
		m.cache[child.ProcessID] = child
		m.mu.Unlock()

		m.restoreChildren(child, childDef, t.Substate)
		child.Start()
	}
}

// subhistoryFor finds the nested history captured for a call-activity
// token's flow object name, falling back to a fresh log if the parent's
// history has no matching open entry (shouldn't happen for a consistent
// persisted document, but restore must not panic on a corrupt one).
func subhistoryFor(parent *instance.Instance, position string) *state.ProcessHistory {
	for _, e := range parent.History.Entries {
		if e.Name == position && e.Subhistory != nil {
			return e.Subhistory
		}
	}
	return state.NewProcessHistory(0)
}
