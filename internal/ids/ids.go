/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package ids generates identifiers for process instances, tokens and
// idempotency records. The teacher engine rolled its own node-prefixed
// NanoID generator; this module instead uses google/uuid, the
// generator adopted by the rest of the retrieval pack
// (goadesign-goa-ai, ilkoid-PonchoAiFramework both depend on it for
// the same purpose).
package ids

import "github.com/google/uuid"

// NewProcessID returns a new process-instance identifier.
func NewProcessID() string {
	return uuid.NewString()
}

// NewTokenID returns a new token identifier.
func NewTokenID() string {
	return uuid.NewString()
}

// NewRequestID returns a new idempotency-record or correlation identifier.
func NewRequestID() string {
	return uuid.NewString()
}
