/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package bpmndef

import (
	"fmt"
	"sync"
)

// ProcessDefinition is the immutable graph for one BPMN process. It is
// safe for concurrent read access once returned by the parser; indices
// are built once, lazily, the first time they are needed.
type ProcessDefinition struct {
	ID                        string
	Name                      string
	FlowObjects               []FlowObject
	SequenceFlows             []*SequenceFlow
	MessageFlows              []*MessageFlow
	CollaboratingParticipants []*Participant

	indexOnce sync.Once

	elementByID                map[string]FlowObject
	nameToID                   map[string]string
	sequenceFlowBySource       map[string][]*SequenceFlow
	sequenceFlowByTarget       map[string][]*SequenceFlow
	messageFlowBySource        map[string][]*MessageFlow
	messageFlowByTarget        map[string][]*MessageFlow
	boundaryEventsByAttachment map[string][]*BoundaryEvent
}

func (p *ProcessDefinition) buildIndices() {
	p.indexOnce.Do(func() {
		p.elementByID = make(map[string]FlowObject, len(p.FlowObjects))
		p.nameToID = make(map[string]string, len(p.FlowObjects))
		p.sequenceFlowBySource = make(map[string][]*SequenceFlow)
		p.sequenceFlowByTarget = make(map[string][]*SequenceFlow)
		p.messageFlowBySource = make(map[string][]*MessageFlow)
		p.messageFlowByTarget = make(map[string][]*MessageFlow)
		p.boundaryEventsByAttachment = make(map[string][]*BoundaryEvent)

		for _, fo := range p.FlowObjects {
			p.elementByID[fo.ID()] = fo
			p.nameToID[fo.Name()] = fo.ID()
			if be, ok := fo.(*BoundaryEvent); ok {
				p.boundaryEventsByAttachment[be.AttachedToRef] = append(p.boundaryEventsByAttachment[be.AttachedToRef], be)
			}
		}
		for _, sf := range p.SequenceFlows {
			p.sequenceFlowBySource[sf.SourceRef] = append(p.sequenceFlowBySource[sf.SourceRef], sf)
			p.sequenceFlowByTarget[sf.TargetRef] = append(p.sequenceFlowByTarget[sf.TargetRef], sf)
		}
		for _, mf := range p.MessageFlows {
			p.messageFlowBySource[mf.SourceRef] = append(p.messageFlowBySource[mf.SourceRef], mf)
			p.messageFlowByTarget[mf.TargetRef] = append(p.messageFlowByTarget[mf.TargetRef], mf)
		}
	})
}

// ElementByID returns the flow object with the given id, or false.
func (p *ProcessDefinition) ElementByID(id string) (FlowObject, bool) {
	p.buildIndices()
	fo, ok := p.elementByID[id]
	return fo, ok
}

// ElementByName returns the flow object with the given name, or false.
func (p *ProcessDefinition) ElementByName(name string) (FlowObject, bool) {
	p.buildIndices()
	id, ok := p.nameToID[name]
	if !ok {
		return nil, false
	}
	return p.ElementByID(id)
}

// OutgoingSequenceFlows returns sequence flows leaving the given flow object id.
func (p *ProcessDefinition) OutgoingSequenceFlows(flowObjectID string) []*SequenceFlow {
	p.buildIndices()
	return p.sequenceFlowBySource[flowObjectID]
}

// IncomingSequenceFlows returns sequence flows arriving at the given flow object id.
func (p *ProcessDefinition) IncomingSequenceFlows(flowObjectID string) []*SequenceFlow {
	p.buildIndices()
	return p.sequenceFlowByTarget[flowObjectID]
}

// OutgoingMessageFlows returns message flows leaving the given flow object id.
func (p *ProcessDefinition) OutgoingMessageFlows(flowObjectID string) []*MessageFlow {
	p.buildIndices()
	return p.messageFlowBySource[flowObjectID]
}

// BoundaryEventsAt returns the boundary events attached to the given activity id.
func (p *ProcessDefinition) BoundaryEventsAt(activityID string) []*BoundaryEvent {
	p.buildIndices()
	return p.boundaryEventsByAttachment[activityID]
}

// StartEvents returns every start event in the process.
func (p *ProcessDefinition) StartEvents() []*StartEvent {
	var out []*StartEvent
	for _, fo := range p.FlowObjects {
		if se, ok := fo.(*StartEvent); ok {
			out = append(out, se)
		}
	}
	return out
}

// Definitions is the parse result for a whole BPMN document: one or
// more process definitions plus any collaboration wiring them together.
type Definitions struct {
	Processes      map[string]*ProcessDefinition // keyed by process id
	Collaborations []*CollaborationDefinition
}

// ProcessByName finds the single process definition with the given name.
func (d *Definitions) ProcessByName(name string) (*ProcessDefinition, error) {
	var found *ProcessDefinition
	for _, p := range d.Processes {
		if p.Name == name {
			if found != nil {
				return nil, fmt.Errorf("ambiguous process name %q: matches %q and %q", name, found.ID, p.ID)
			}
			found = p
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no process definition named %q", name)
	}
	return found, nil
}
