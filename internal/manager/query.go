/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package manager

import (
	"strings"

	"bpmn-runtime/internal/instance"
)

func (m *Manager) snapshotCache() []*instance.Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*instance.Instance, 0, len(m.cache))
	for _, inst := range m.cache {
		out = append(out, inst)
	}
	return out
}

// FindByState returns every cached instance holding at least one token
// at the named flow object.
func (m *Manager) FindByState(name string) []*instance.Instance {
	var out []*instance.Instance
	for _, inst := range m.snapshotCache() {
		if inst.HasTokenAt(name) {
			out = append(out, inst)
		}
	}
	return out
}

// FindByName returns every cached instance of the named process
// definition, optionally case-insensitively.
func (m *Manager) FindByName(name string, caseSensitive bool) []*instance.Instance {
	var out []*instance.Instance
	for _, inst := range m.snapshotCache() {
		if caseSensitive {
			if inst.ProcessName == name {
				out = append(out, inst)
			}
		} else if strings.EqualFold(inst.ProcessName, name) {
			out = append(out, inst)
		}
	}
	return out
}

// FindByProperty returns every cached instance whose properties match
// every key in query (AND-over-keys, strict equality, dot-path descent
// — see state.Properties.MatchesQuery).
func (m *Manager) FindByProperty(query map[string]any) []*instance.Instance {
	var out []*instance.Instance
	for _, inst := range m.snapshotCache() {
		if inst.MatchesPropertyQuery(query) {
			out = append(out, inst)
		}
	}
	return out
}
