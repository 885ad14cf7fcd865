/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package state

// Document is the persisted shape of one main process instance.
// Children are not stored as separate documents: a call-activity
// token's Substate/Subhistory nest the child's full state, so loading
// one document recursively restores the whole call tree.
type Document struct {
	ProcessName     string              `json:"processName"`
	ProcessID       string              `json:"processId"`
	ParentToken     *Token              `json:"parentToken,omitempty"`
	Properties      Properties          `json:"properties"`
	State           *ProcessState       `json:"state"`
	History         *ProcessHistory     `json:"history"`
	PendingTimeouts *PendingTimerEvents `json:"pendingTimeouts"`
	Views           *Views              `json:"views"`
}

// NewDocument builds an empty document for a fresh main process instance.
func NewDocument(processName, processID string, createdAt int64) *Document {
	return &Document{
		ProcessName:     processName,
		ProcessID:       processID,
		Properties:      NewProperties(),
		State:           NewProcessState(),
		History:         NewProcessHistory(createdAt),
		PendingTimeouts: NewPendingTimerEvents(),
		Views:           &Views{},
	}
}
