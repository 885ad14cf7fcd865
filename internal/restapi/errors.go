/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package restapi

import "bpmn-runtime/internal/bpmndef"

// errorResponse is the body of every non-2xx response, carrying one of
// the two typed codes §6 fixes: BPMNParseError attaches the parse
// error queue verbatim, BPMNExecutionError carries the stringified
// underlying error.
type errorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []parseErrorPayload `json:"errors,omitempty"`
}

type parseErrorPayload struct {
	Code    string `json:"code"`
	Element string `json:"element"`
	Message string `json:"message"`
}

func parseErrorResponse(errs bpmndef.ParseErrors) errorResponse {
	payload := make([]parseErrorPayload, 0, len(errs))
	for _, e := range errs {
		payload = append(payload, parseErrorPayload{Code: string(e.Code), Element: e.Element, Message: e.Message})
	}
	return errorResponse{Code: "BPMNParseError", Message: errs.Error(), Errors: payload}
}

func executionErrorResponse(err error) errorResponse {
	return errorResponse{Code: "BPMNExecutionError", Message: err.Error()}
}
