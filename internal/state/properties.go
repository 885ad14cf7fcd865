/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package state

import "strings"

// Properties is user key/value data attached to a process instance.
// Keys are dot-paths into nested maps, matching findByProperty's
// dot-separated descent and §3.2's "dot-paths queryable" requirement.
type Properties map[string]any

// NewProperties returns an empty property bag.
func NewProperties() Properties {
	return Properties{}
}

// Set writes value at the dot-path key, creating intermediate maps as needed.
func (p Properties) Set(key string, value any) {
	parts := strings.Split(key, ".")
	m := map[string]any(p)
	for i, part := range parts {
		if i == len(parts)-1 {
			m[part] = value
			return
		}
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
}

// Get reads the value at the dot-path key.
func (p Properties) Get(key string) (any, bool) {
	parts := strings.Split(key, ".")
	var cur any = map[string]any(p)
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// All returns the full property map, as used by the REST instance view.
func (p Properties) All() map[string]any {
	return map[string]any(p)
}

// MatchesQuery reports whether every key in query is present in p with
// a strictly equal value, descending dot-separated keys into nested
// maps (findByProperty's AND-over-keys semantics).
func (p Properties) MatchesQuery(query map[string]any) bool {
	for k, want := range query {
		got, ok := p.Get(k)
		if !ok || got != want {
			return false
		}
	}
	return true
}
