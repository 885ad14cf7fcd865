/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package manager

import (
	"fmt"

	"bpmn-runtime/internal/ids"
	"bpmn-runtime/internal/instance"
)

// ConfigError reports a fatal configuration problem raised by the
// manager itself: a missing definition, a colliding process id, or a
// duplicated participant name — the manager-level slice of §7's
// ConfigError taxonomy (the instance package's own RuntimeError/
// ConfigError cover everything raised during dispatch).
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func newConfigError(format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// CreateProcess instantiates a single process from the named
// definition. If id is empty a fresh one is generated; a caller-
// supplied id (as arrives in a /bpmnCollaborate descriptor) is checked
// for collision twice — once before construction and once again after,
// to catch a concurrent create racing on the same id — per §4.5.
func (m *Manager) CreateProcess(name, id string) (*instance.Instance, error) {
	if id == "" {
		id = ids.NewProcessID()
	}

	m.mu.Lock()
	if _, exists := m.cache[id]; exists {
		m.mu.Unlock()
		return nil, newConfigError("process id %q already in use", id)
	}
	def, ok := m.definitions[name]
	deps := m.depsForLocked(name)
	m.mu.Unlock()
	if !ok {
		return nil, newConfigError("no process definition named %q", name)
	}

	inst := instance.New(name, def, deps)
	inst.ProcessID = id

	m.mu.Lock()
	if _, exists := m.cache[id]; exists {
		m.mu.Unlock()
		return nil, newConfigError("process id %q already in use", id)
	}
	m.cache[id] = inst
	m.mu.Unlock()

	inst.Start()
	return inst, nil
}

// CreateProcessByID instantiates the single registered definition
// without naming it explicitly — valid only when exactly one process
// definition is currently registered, matching §4.5's "string id with
// exactly one known definition" case.
func (m *Manager) CreateProcessByID(id string) (*instance.Instance, error) {
	m.mu.Lock()
	if len(m.definitions) != 1 {
		m.mu.Unlock()
		return nil, newConfigError("createProcess by id alone requires exactly one registered definition, found %d", len(m.definitions))
	}
	var name string
	for n := range m.definitions {
		name = n
	}
	m.mu.Unlock()
	return m.CreateProcess(name, id)
}

// ProcessDescriptor is one member of a /bpmnCollaborate request: the
// definition to instantiate, the id to give it, and (on at most one
// member) the start event to trigger once every participant exists.
type ProcessDescriptor struct {
	Name           string
	ID             string
	StartEventName string
}

// CreateCollaboratingSet instantiates every descriptor in order,
// wires every resulting instance as a participant of every other by
// process name, then triggers the start event named on whichever
// descriptor (if any) carries one, per §4.5's collaborating-set case.
func (m *Manager) CreateCollaboratingSet(descriptors []ProcessDescriptor) ([]*instance.Instance, error) {
	instances := make([]*instance.Instance, 0, len(descriptors))
	for _, d := range descriptors {
		inst, err := m.CreateProcess(d.Name, d.ID)
		if err != nil {
			return nil, fmt.Errorf("creating collaborating member %q: %w", d.Name, err)
		}
		instances = append(instances, inst)
	}

	for _, a := range instances {
		for _, b := range instances {
			if a == b {
				continue
			}
			a.AddParticipant(b.ProcessName, b)
		}
	}

	for idx, d := range descriptors {
		if d.StartEventName == "" {
			continue
		}
		if err := instances[idx].TriggerEvent(d.StartEventName, nil); err != nil {
			return instances, fmt.Errorf("triggering start of collaborating member %q: %w", d.Name, err)
		}
	}

	return instances, nil
}

// spawnChild backs instance.Deps.SpawnChild: it resolves a called
// process by name against the registered definitions and instantiates
// it, without starting it (the caller triggers its start event once
// wired up) or giving it a deterministic id — a restart re-derives the
// call tree from the parent's persisted substate instead of needing to
// recover the exact prior child id, see restore.go.
func (m *Manager) spawnChild(parent *instance.Instance, calledElementName, location string) (*instance.Instance, error) {
	m.mu.Lock()
	def, ok := m.definitions[calledElementName]
	deps := m.depsForLocked(calledElementName)
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no registered process definition named %q (location %q)", calledElementName, location)
	}

	child := instance.New(calledElementName, def, deps)

	m.mu.Lock()
	m.cache[child.ProcessID] = child
	m.mu.Unlock()

	return child, nil
}
