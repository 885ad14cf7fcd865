/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package instance implements the process-instance state machine: the
// internal event queue, token advancement, call-activity lifecycle and
// the persistence/deferral protocol.
package instance

import "fmt"

// RuntimeErrorCode names one of the non-fatal-by-default runtime
// errors raised during event dispatch. BadTimeout and BadCalledProcess
// are fatal to the instance; the rest route to defaultEventHandler and
// the instance keeps running.
type RuntimeErrorCode string

const (
	ErrUnknownEvent     RuntimeErrorCode = "UnknownEvent"
	ErrAlreadyStarted   RuntimeErrorCode = "AlreadyStarted"
	ErrNotExecuting     RuntimeErrorCode = "NotExecuting"
	ErrNoTarget         RuntimeErrorCode = "NoTarget"
	ErrBadCalledProcess RuntimeErrorCode = "BadCalledProcess"
	ErrBadTimeout       RuntimeErrorCode = "BadTimeout"
)

// Fatal reports whether this error code ends the instance rather than
// merely routing to defaultEventHandler.
func (c RuntimeErrorCode) Fatal() bool {
	return c == ErrBadCalledProcess || c == ErrBadTimeout
}

// RuntimeError is raised during event dispatch against a live instance.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newRuntimeError(code RuntimeErrorCode, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ConfigError covers a missing handler for a definition, a duplicated
// participant name, or duplicate ids found in persisted data — all
// fatal to the operation that triggered them, never to the instance
// that was already running.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "config error: " + e.Message }

func newConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a persistence I/O failure. persist logs it; no
// doneLoadingHandler/doneSavingHandler hook is invoked with it. Deferred
// events are not released on a store error, so the instance stays
// frozen pending operator intervention, matching §7.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store error during %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func newStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
