/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package state holds the runtime state of a process instance: tokens,
// history, pending timers and queryable properties. Everything here is
// serializable so the manager/store layer can persist and restore it.
package state

// Token is the unit of execution. Position is a flow-object name, not
// an id — handler dispatch and the REST view both key off names, so
// the token carries the same key the rest of the system uses.
// Substate/CalledProcessID are set only on call-activity tokens: they
// point at the child process's own state, nested rather than owned
// separately, so persistence can walk parent->child in one pass.
type Token struct {
	Position        string `json:"position"`
	OwningProcessID  string `json:"owningProcessId"`
	Substate         *ProcessState `json:"substate,omitempty"`
	CalledProcessID  string        `json:"calledProcessId,omitempty"`
}

// NewToken places a token at the named flow object, owned by the given process.
func NewToken(position, owningProcessID string) *Token {
	return &Token{Position: position, OwningProcessID: owningProcessID}
}

// Clone returns a deep copy, recursing into Substate.
func (t *Token) Clone() *Token {
	c := &Token{Position: t.Position, OwningProcessID: t.OwningProcessID, CalledProcessID: t.CalledProcessID}
	if t.Substate != nil {
		c.Substate = t.Substate.Clone()
	}
	return c
}

// IsCallActivityToken reports whether this token owns a child process's state.
func (t *Token) IsCallActivityToken() bool {
	return t.CalledProcessID != ""
}
