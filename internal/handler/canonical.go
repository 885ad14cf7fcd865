/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package handler resolves BPMN flow-object and flow names to the
// handler-module identifiers a loaded module exposes, and defines the
// module-loading contract the process manager uses to acquire one.
package handler

import "strings"

// specialChars is the exact character set §4.6 requires mapping to
// underscore. Written out rather than built from a regexp class so the
// set matches the specification literally, character for character.
const specialChars = ":!`~^@*#¢¬ç?¦|&;%\"<>(){}[]+, \t\n"

var replacer = buildReplacer()

func buildReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(specialChars)*2)
	for _, r := range specialChars {
		pairs = append(pairs, string(r), "_")
	}
	return strings.NewReplacer(pairs...)
}

// Canonicalize maps a BPMN display name to its handler identifier:
// every character in the special set becomes '_', and a leading digit
// gets a '_' prefix so the result is never a bare numeral.
func Canonicalize(name string) string {
	out := replacer.Replace(name)
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// DoneName returns the ACTIVITY_END completion handler identifier for
// a wait-task name, e.g. "Review Order" -> "Review_Order" + "Done".
func DoneName(flowObjectName string) string {
	return Canonicalize(flowObjectName) + "Done"
}

// TimeoutName returns the $getTimeout handler identifier for a timer event.
func TimeoutName(flowObjectName string) string {
	return Canonicalize(flowObjectName) + "$getTimeout"
}

// BranchName returns the exclusive-gateway predicate identifier for one
// outgoing flow: "<gateway>$<flow>".
func BranchName(gatewayName, flowName string) string {
	return Canonicalize(gatewayName) + "$" + Canonicalize(flowName)
}
