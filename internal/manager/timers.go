/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package manager

import (
	"strings"

	"bpmn-runtime/internal/corelog"
)

// onTimerExpired is the shared wheel's single callback: it runs on the
// wheel's own goroutine, so it only ever parses the "processId:name"
// id and hands off to the owning instance's own queue — never does
// real dispatch work here.
func (m *Manager) onTimerExpired(id string) {
	processID, name, ok := strings.Cut(id, ":")
	if !ok {
		m.log.Error("malformed timer id", corelog.String("id", id))
		return
	}
	m.mu.Lock()
	inst, ok := m.cache[processID]
	m.mu.Unlock()
	if !ok {
		m.log.Warn("timer fired for an instance no longer cached", corelog.String("processId", processID), corelog.String("timer", name))
		return
	}
	inst.FireTimer(name)
}
