/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package handler

import (
	"context"
	"fmt"
)

// DoneFunc is invoked by a handler exactly once to signal completion.
type DoneFunc func(result any, err error)

// TokenArrivedFunc handles TOKEN_ARRIVED / INTERMEDIATE_CATCH dispatch: N(data, done).
type TokenArrivedFunc func(ctx context.Context, data any, done DoneFunc)

// PredicateFunc backs an exclusive-gateway branch: N$<outName>(data) -> truthy/falsy.
type PredicateFunc func(ctx context.Context, data any) bool

// TimeoutFunc backs N$getTimeout() -> milliseconds.
type TimeoutFunc func(ctx context.Context) (int64, error)

// Module is the mapping from canonical handler identifier to callable
// that a loaded handler module exposes — the "out of scope" handler
// module loader interface of spec.md §1, fixed here as the concrete
// contract the rest of this module codes against.
type Module interface {
	// TokenArrived returns the N(data, done) handler for a flow object
	// name, or false if the module defines none (a no-op handler is
	// substituted by the caller in that case).
	TokenArrived(canonicalName string) (TokenArrivedFunc, bool)
	// Predicate returns the N$<outName> branch predicate.
	Predicate(canonicalName string) (PredicateFunc, bool)
	// Timeout returns the N$getTimeout handler.
	Timeout(canonicalName string) (TimeoutFunc, bool)
	// Hook returns one of the special hooks by exact name:
	// defaultEventHandler, defaultErrorHandler, onBeginHandler,
	// onEndHandler, doneLoadingHandler, doneSavingHandler.
	Hook(name string) (any, bool)
}

// Source identifies where a handler module's code comes from, mirroring
// spec.md §1's "loads user code (from a file path, a source string, or
// an in-memory value)".
type SourceKind int

const (
	// SourceValue wraps an already-built Module — the embedding
	// program constructed it directly, no loading required.
	SourceValue SourceKind = iota
	// SourceFilePath loads a Go plugin (.so) built with `go build
	// -buildmode=plugin` that exports a package-level Module-typed
	// symbol named "Handlers".
	SourceFilePath
	// SourceCode would compile a source string at runtime; rejected,
	// see Load.
	SourceCode
)

// Source describes one handler-module load request.
type Source struct {
	Kind  SourceKind
	Value Module // for SourceValue
	Path  string // for SourceFilePath
	Code  string // for SourceCode (always rejected, see Load)
}

// Load resolves a Source into a Module. SourceCode is rejected outright:
// compiling arbitrary Go source at process runtime without invoking the
// toolchain has no safe implementation, so callers get a clear
// ConfigError-shaped error instead of a silently-broken handler set.
func Load(src Source) (Module, error) {
	switch src.Kind {
	case SourceValue:
		if src.Value == nil {
			return nil, fmt.Errorf("handler: SourceValue requires a non-nil Module")
		}
		return src.Value, nil
	case SourceFilePath:
		return loadPlugin(src.Path)
	case SourceCode:
		return nil, fmt.Errorf("handler: loading a handler module from a source string is not supported (no safe runtime compilation path); build it as a Go plugin and use SourceFilePath instead")
	default:
		return nil, fmt.Errorf("handler: unknown source kind %d", src.Kind)
	}
}
