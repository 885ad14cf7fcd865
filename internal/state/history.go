/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package state

// HistoryEntry records one flow object's begin/end window. End is nil
// while the flow object is current; Subhistory nests a call-activity's
// child history rather than storing it alongside as a sibling record.
type HistoryEntry struct {
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Begin      int64         `json:"begin"`
	End        *int64        `json:"end,omitempty"`
	Subhistory *ProcessHistory `json:"subhistory,omitempty"`
}

// ProcessHistory is the append-only log of a process instance. Entries
// are never removed; after append, only an entry's End field and, for a
// call activity's open entry, its Subhistory snapshot are mutated.
type ProcessHistory struct {
	Entries    []*HistoryEntry `json:"entries"`
	CreatedAt  int64           `json:"createdAt"`
	FinishedAt *int64          `json:"finishedAt,omitempty"`
}

// NewProcessHistory starts a history log stamped at createdAt (caller
// supplies the clock value — packages in this module never call
// time.Now directly so tests can drive the clock explicitly).
func NewProcessHistory(createdAt int64) *ProcessHistory {
	return &ProcessHistory{CreatedAt: createdAt}
}

// Begin appends a new open entry for name/type at the given timestamp
// and returns it so the caller can later close it via End.
func (h *ProcessHistory) Begin(name, typ string, at int64) *HistoryEntry {
	e := &HistoryEntry{Name: name, Type: typ, Begin: at}
	h.Entries = append(h.Entries, e)
	return e
}

// Close stamps the End field of the most recent open entry for name.
func (h *ProcessHistory) Close(name string, at int64) {
	for i := len(h.Entries) - 1; i >= 0; i-- {
		if h.Entries[i].Name == name && h.Entries[i].End == nil {
			end := at
			h.Entries[i].End = &end
			return
		}
	}
}

// Finish stamps FinishedAt once, at main-process end.
func (h *ProcessHistory) Finish(at int64) {
	if h.FinishedAt == nil {
		h.FinishedAt = &at
	}
}
