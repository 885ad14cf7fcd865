/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package state

// Views is the derived summary carried alongside the full state/history
// in the persisted document (the REST instance view omits it), so a reader
// doesn't need to scan history to learn when a process started/ended.
type Views struct {
	StartEvent string `json:"startEvent,omitempty"`
	EndEvent   string `json:"endEvent,omitempty"`
	DurationMS int64  `json:"durationMs,omitempty"`
}

// RecordStart stamps the start-event name once.
func (v *Views) RecordStart(name string) {
	if v.StartEvent == "" {
		v.StartEvent = name
	}
}

// RecordEnd stamps the end-event name and the duration since startedAt.
func (v *Views) RecordEnd(name string, startedAt, endedAt int64) {
	v.EndEvent = name
	v.DurationMS = endedAt - startedAt
}
