/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package timerwheel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var iso8601DurationRe = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseISO8601Duration parses a BPMN timeDuration string such as
// "PT30S" or "P1DT2H" into a time.Duration. Years/months are
// approximated as 365/30 days, matching how the engine's own parser
// treats calendar-ambiguous units in a timer context.
func ParseISO8601Duration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("timerwheel: empty duration string")
	}
	s = strings.ToUpper(s)
	m := iso8601DurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("timerwheel: invalid ISO8601 duration %q", s)
	}

	var d time.Duration
	if m[1] != "" {
		n, _ := strconv.Atoi(m[1])
		d += time.Duration(n) * 365 * 24 * time.Hour
	}
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		d += time.Duration(n) * 30 * 24 * time.Hour
	}
	if m[3] != "" {
		n, _ := strconv.Atoi(m[3])
		d += time.Duration(n) * 24 * time.Hour
	}
	if m[4] != "" {
		n, _ := strconv.Atoi(m[4])
		d += time.Duration(n) * time.Hour
	}
	if m[5] != "" {
		n, _ := strconv.Atoi(m[5])
		d += time.Duration(n) * time.Minute
	}
	if m[6] != "" {
		f, _ := strconv.ParseFloat(m[6], 64)
		d += time.Duration(f * float64(time.Second))
	}
	return d, nil
}
