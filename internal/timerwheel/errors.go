/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package timerwheel implements the engine's §4.3 timer subsystem as
// one shared hierarchical timing wheel serving every process
// instance's pending timer events, rather than one OS timer per
// instance-timer. Adapted from the engine's own src/timewheel package,
// generalized from per-process-instance timer records to an opaque
// caller-supplied TimerID and callback.
package timerwheel

import "fmt"

var (
	ErrInvalidConfig       = fmt.Errorf("timerwheel: invalid configuration")
	ErrWheelNotRunning     = fmt.Errorf("timerwheel: wheel is not running")
	ErrWheelAlreadyRunning = fmt.Errorf("timerwheel: wheel is already running")
	ErrTimerNotFound       = fmt.Errorf("timerwheel: timer not found")
	ErrTimerTooFar         = fmt.Errorf("timerwheel: delay exceeds the wheel's total horizon")
)
