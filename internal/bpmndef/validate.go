/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package bpmndef

import "fmt"

// ParseErrorCode identifies which invariant a ParseError violates.
type ParseErrorCode string

const (
	ErrDuplicateName       ParseErrorCode = "DUPLICATE_NAME"
	ErrBoundaryNotOnWait   ParseErrorCode = "BOUNDARY_NOT_ON_WAIT_TASK"
	ErrEndEventHasOutgoing ParseErrorCode = "END_EVENT_HAS_OUTGOING"
	ErrStartEventHasIncoming ParseErrorCode = "START_EVENT_HAS_INCOMING"
	ErrGatewayCardinality  ParseErrorCode = "GATEWAY_CARDINALITY"
	ErrUnnamedExclusiveFlow ParseErrorCode = "UNNAMED_EXCLUSIVE_FLOW"
)

// ParseError describes one invariant violation found while validating
// a parsed definition. Multiple violations are collected rather than
// failing on the first one, so a caller sees the whole error queue.
type ParseError struct {
	Code    ParseErrorCode
	Element string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Element, e.Message)
}

// ParseErrors is the ordered queue of violations found during Validate.
type ParseErrors []*ParseError

func (e ParseErrors) Error() string {
	if len(e) == 0 {
		return "no parse errors"
	}
	msg := e[0].Error()
	if len(e) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(e)-1)
	}
	return msg
}

// Validate checks the invariants of §3.1 against a process definition
// and returns every violation found (nil if none). It is a pure
// function of the definition graph. It runs at parse time
// (bpmnxml.Parse); instance creation does not run it again.
func Validate(p *ProcessDefinition) ParseErrors {
	var errs ParseErrors

	seenNames := make(map[string]string) // name -> first id seen
	for _, fo := range p.FlowObjects {
		if otherID, ok := seenNames[fo.Name()]; ok && otherID != fo.ID() {
			errs = append(errs, &ParseError{
				Code:    ErrDuplicateName,
				Element: fo.ID(),
				Message: fmt.Sprintf("flow object name %q is shared with %q", fo.Name(), otherID),
			})
		} else {
			seenNames[fo.Name()] = fo.ID()
		}

		switch v := fo.(type) {
		case *StartEvent:
			if len(p.IncomingSequenceFlows(v.ID())) != 0 {
				errs = append(errs, &ParseError{Code: ErrStartEventHasIncoming, Element: v.ID(), Message: "start event must have no incoming sequence flow"})
			}
			if len(p.OutgoingSequenceFlows(v.ID())) < 1 {
				errs = append(errs, &ParseError{Code: ErrStartEventHasIncoming, Element: v.ID(), Message: "start event must have at least one outgoing sequence flow"})
			}
		case *EndEvent:
			if len(p.OutgoingSequenceFlows(v.ID())) != 0 {
				errs = append(errs, &ParseError{Code: ErrEndEventHasOutgoing, Element: v.ID(), Message: "end event must have no outgoing sequence flow"})
			}
			if len(p.IncomingSequenceFlows(v.ID())) < 1 {
				errs = append(errs, &ParseError{Code: ErrEndEventHasOutgoing, Element: v.ID(), Message: "end event must have at least one incoming sequence flow"})
			}
		case *BoundaryEvent:
			attached, ok := p.ElementByID(v.AttachedToRef)
			if !ok {
				errs = append(errs, &ParseError{Code: ErrBoundaryNotOnWait, Element: v.ID(), Message: fmt.Sprintf("attachedToRef %q does not exist", v.AttachedToRef)})
				break
			}
			task, ok := attached.(*Task)
			if !ok || !task.IsWaitTask() {
				errs = append(errs, &ParseError{Code: ErrBoundaryNotOnWait, Element: v.ID(), Message: "boundary events may only attach to wait-tasks"})
			}
		case *ExclusiveGateway:
			in, out := len(p.IncomingSequenceFlows(v.ID())), len(p.OutgoingSequenceFlows(v.ID()))
			if in < 2 && out < 2 {
				errs = append(errs, &ParseError{Code: ErrGatewayCardinality, Element: v.ID(), Message: "exclusive gateway needs >=2 incoming or >=2 outgoing flows"})
			}
			if out > 1 {
				for _, sf := range p.OutgoingSequenceFlows(v.ID()) {
					if sf.Name == "" {
						errs = append(errs, &ParseError{Code: ErrUnnamedExclusiveFlow, Element: sf.ID, Message: "diverging exclusive-gateway flows must carry a non-empty name"})
					}
				}
			}
		case *ParallelGateway:
			in, out := len(p.IncomingSequenceFlows(v.ID())), len(p.OutgoingSequenceFlows(v.ID()))
			if in < 2 && out < 2 {
				errs = append(errs, &ParseError{Code: ErrGatewayCardinality, Element: v.ID(), Message: "parallel gateway needs >=2 incoming or >=2 outgoing flows"})
			}
		}
	}

	return errs
}
