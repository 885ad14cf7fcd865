/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package state

// ProcessState is the token multiset of one process instance. A
// position may be held by more than one token at once (a
// parallel-gateway join counts arrivals this way), so this is
// deliberately not a set keyed on position.
type ProcessState struct {
	Tokens []*Token `json:"tokens"`
}

// NewProcessState returns an empty token set.
func NewProcessState() *ProcessState {
	return &ProcessState{}
}

// Add appends a token.
func (s *ProcessState) Add(t *Token) {
	s.Tokens = append(s.Tokens, t)
}

// RemoveFirst removes and returns the first token found at position,
// matching the first-match removal rule _emitTokens relies on. Returns
// nil if no token sits there.
func (s *ProcessState) RemoveFirst(position string) *Token {
	for i, t := range s.Tokens {
		if t.Position == position {
			s.Tokens = append(s.Tokens[:i], s.Tokens[i+1:]...)
			return t
		}
	}
	return nil
}

// RemoveAll removes and returns every token at position (used by the
// parallel-gateway join, which consumes every arrival at once).
func (s *ProcessState) RemoveAll(position string) []*Token {
	var removed []*Token
	kept := s.Tokens[:0]
	for _, t := range s.Tokens {
		if t.Position == position {
			removed = append(removed, t)
		} else {
			kept = append(kept, t)
		}
	}
	s.Tokens = kept
	return removed
}

// Count returns how many tokens currently sit at position.
func (s *ProcessState) Count(position string) int {
	n := 0
	for _, t := range s.Tokens {
		if t.Position == position {
			n++
		}
	}
	return n
}

// HasToken reports whether any token sits at position.
func (s *ProcessState) HasToken(position string) bool {
	return s.Count(position) > 0
}

// Positions returns the distinct positions currently holding a token,
// in first-seen order — used by the REST instance view.
func (s *ProcessState) Positions() []string {
	seen := make(map[string]bool, len(s.Tokens))
	var out []string
	for _, t := range s.Tokens {
		if !seen[t.Position] {
			seen[t.Position] = true
			out = append(out, t.Position)
		}
	}
	return out
}

// Clone deep-copies the token set.
func (s *ProcessState) Clone() *ProcessState {
	c := &ProcessState{Tokens: make([]*Token, len(s.Tokens))}
	for i, t := range s.Tokens {
		c.Tokens[i] = t.Clone()
	}
	return c
}
