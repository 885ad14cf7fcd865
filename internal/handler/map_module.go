/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package handler

// MapModule is the simplest Module: four maps keyed by canonical
// handler identifier. Used directly for in-memory handler modules
// (SourceValue) and by tests.
type MapModule struct {
	TokenArrivedFuncs map[string]TokenArrivedFunc
	PredicateFuncs    map[string]PredicateFunc
	TimeoutFuncs      map[string]TimeoutFunc
	Hooks             map[string]any
}

// NewMapModule returns an empty MapModule ready for its maps to be populated.
func NewMapModule() *MapModule {
	return &MapModule{
		TokenArrivedFuncs: make(map[string]TokenArrivedFunc),
		PredicateFuncs:    make(map[string]PredicateFunc),
		TimeoutFuncs:      make(map[string]TimeoutFunc),
		Hooks:             make(map[string]any),
	}
}

func (m *MapModule) TokenArrived(name string) (TokenArrivedFunc, bool) {
	f, ok := m.TokenArrivedFuncs[name]
	return f, ok
}

func (m *MapModule) Predicate(name string) (PredicateFunc, bool) {
	f, ok := m.PredicateFuncs[name]
	return f, ok
}

func (m *MapModule) Timeout(name string) (TimeoutFunc, bool) {
	f, ok := m.TimeoutFuncs[name]
	return f, ok
}

func (m *MapModule) Hook(name string) (any, bool) {
	h, ok := m.Hooks[name]
	return h, ok
}
