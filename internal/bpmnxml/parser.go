/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package bpmnxml

import (
	"encoding/xml"
	"fmt"

	"bpmn-runtime/internal/bpmndef"
)

// Parse converts a BPMN 2.0 XML document into a definition graph. It
// returns either a complete, validated Definitions or a non-empty
// ParseErrors queue — never both nil.
func Parse(data []byte) (*bpmndef.Definitions, bpmndef.ParseErrors) {
	var root node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, bpmndef.ParseErrors{{
			Code:    "MALFORMED_XML",
			Element: "",
			Message: err.Error(),
		}}
	}

	defs := &bpmndef.Definitions{Processes: make(map[string]*bpmndef.ProcessDefinition)}
	var errs bpmndef.ParseErrors

	for _, procNode := range root.childrenNamed("process") {
		proc, perrs := parseProcess(procNode)
		errs = append(errs, perrs...)
		if proc != nil {
			defs.Processes[proc.ID] = proc
		}
	}

	for _, collabNode := range root.childrenNamed("collaboration") {
		collab, cerrs := parseCollaboration(collabNode, defs)
		errs = append(errs, cerrs...)
		if collab != nil {
			defs.Collaborations = append(defs.Collaborations, collab)
		}
	}

	for _, proc := range defs.Processes {
		errs = append(errs, bpmndef.Validate(proc)...)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return defs, nil
}

func parseProcess(n *node) (*bpmndef.ProcessDefinition, bpmndef.ParseErrors) {
	id := n.attrOr("id", "")
	name := n.attrOr("name", id)
	proc := &bpmndef.ProcessDefinition{ID: id, Name: name}

	var errs bpmndef.ParseErrors

	for _, c := range n.Children {
		switch c.XMLName.Local {
		case "startEvent":
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewStartEvent(elID(c), elName(c)))
		case "endEvent":
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewEndEvent(elID(c), elName(c)))
		case "task", "userTask", "receiveTask", "manualTask", "serviceTask", "scriptTask", "sendTask":
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewTask(elID(c), elName(c), bpmndef.TaskKind(c.XMLName.Local)))
		case "callActivity":
			calledElement := c.attrOr("calledElement", "")
			location := c.attrOr("location", "")
			if location == "" {
				location = calledElement
			}
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewCallActivity(elID(c), elName(c), calledElement, c.attrOr("calledElementNamespace", ""), location))
		case "intermediateCatchEvent":
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewIntermediateCatchEvent(elID(c), elName(c), c.hasChildNamed("timerEventDefinition")))
		case "intermediateThrowEvent":
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewIntermediateThrowEvent(elID(c), elName(c)))
		case "boundaryEvent":
			attachedTo, ok := c.attr("attachedToRef")
			if !ok {
				errs = append(errs, &bpmndef.ParseError{Code: bpmndef.ErrBoundaryNotOnWait, Element: elID(c), Message: "boundaryEvent missing attachedToRef"})
			}
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewBoundaryEvent(elID(c), elName(c), attachedTo, c.hasChildNamed("timerEventDefinition")))
		case "exclusiveGateway":
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewExclusiveGateway(elID(c), elName(c)))
		case "parallelGateway":
			proc.FlowObjects = append(proc.FlowObjects, bpmndef.NewParallelGateway(elID(c), elName(c)))
		case "sequenceFlow":
			proc.SequenceFlows = append(proc.SequenceFlows, &bpmndef.SequenceFlow{
				ID:        elID(c),
				SourceRef: c.attrOr("sourceRef", ""),
				TargetRef: c.attrOr("targetRef", ""),
				Name:      c.attrOr("name", ""),
			})
		}
	}

	if id == "" {
		errs = append(errs, &bpmndef.ParseError{Code: "MISSING_PROCESS_ID", Element: "process", Message: "process element missing id attribute"})
	}

	return proc, errs
}

func parseCollaboration(n *node, defs *bpmndef.Definitions) (*bpmndef.CollaborationDefinition, bpmndef.ParseErrors) {
	collab := &bpmndef.CollaborationDefinition{ID: n.attrOr("id", "")}
	var errs bpmndef.ParseErrors

	for _, p := range n.childrenNamed("participant") {
		participant := &bpmndef.Participant{
			Name:       p.attrOr("name", p.attrOr("id", "")),
			ProcessRef: p.attrOr("processRef", ""),
		}
		collab.Participants = append(collab.Participants, participant)
		if proc, ok := defs.Processes[participant.ProcessRef]; ok {
			proc.CollaboratingParticipants = append(proc.CollaboratingParticipants, participant)
		}
	}

	for _, mf := range n.childrenNamed("messageFlow") {
		sourceRef := mf.attrOr("sourceRef", "")
		targetRef := mf.attrOr("targetRef", "")

		flow := &bpmndef.MessageFlow{
			ID:        elID(mf),
			SourceRef: sourceRef,
			TargetRef: targetRef,
		}

		sourceProc, ok := findOwningProcess(defs, sourceRef)
		if !ok {
			errs = append(errs, &bpmndef.ParseError{Code: "DANGLING_MESSAGE_FLOW", Element: flow.ID, Message: fmt.Sprintf("messageFlow sourceRef %q is not in any process", sourceRef)})
		} else {
			flow.SourceProcessDefinitionID = sourceProc.ID
		}

		targetProc, ok := findOwningProcess(defs, targetRef)
		if !ok {
			errs = append(errs, &bpmndef.ParseError{Code: "DANGLING_MESSAGE_FLOW", Element: flow.ID, Message: fmt.Sprintf("messageFlow targetRef %q is not in any process", targetRef)})
		} else {
			flow.TargetProcessDefinitionID = targetProc.ID
			targetProc.MessageFlows = append(targetProc.MessageFlows, flow)
		}
		if sourceProc != nil {
			sourceProc.MessageFlows = append(sourceProc.MessageFlows, flow)
		}

		collab.MessageFlows = append(collab.MessageFlows, flow)
	}

	return collab, errs
}

func findOwningProcess(defs *bpmndef.Definitions, flowObjectID string) (*bpmndef.ProcessDefinition, bool) {
	// Scan FlowObjects directly: ElementByID would build the process's
	// once-only indices before the message flows are appended to it.
	for _, p := range defs.Processes {
		for _, fo := range p.FlowObjects {
			if fo.ID() == flowObjectID {
				return p, true
			}
		}
	}
	return nil, false
}

func elID(n *node) string   { return n.attrOr("id", "") }
func elName(n *node) string { return n.attrOr("name", elID(n)) }
