/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package bpmndef holds the immutable BPMN definition graph: flow
// objects, sequence flows, message flows and participants, plus the
// indices the runtime needs for fast lookup. Nothing in this package
// mutates after a Definitions value is built by the parser.
package bpmndef

// Kind discriminates the FlowObject tagged variant. The source engine
// this was ported from models flow objects with prototype chains
// (FlowObject -> Activity -> Task/CallActivity, FlowObject -> Gateway
// variants); Kind plus a type switch on the concrete struct plays the
// same role without inheritance.
type Kind string

const (
	KindStartEvent            Kind = "startEvent"
	KindEndEvent               Kind = "endEvent"
	KindTask                   Kind = "task"
	KindCallActivity           Kind = "callActivity"
	KindIntermediateCatchEvent Kind = "intermediateCatchEvent"
	KindIntermediateThrowEvent Kind = "intermediateThrowEvent"
	KindBoundaryEvent          Kind = "boundaryEvent"
	KindExclusiveGateway       Kind = "exclusiveGateway"
	KindParallelGateway        Kind = "parallelGateway"
)

// TaskKind distinguishes the BPMN task sub-types the handler dispatch
// needs to tell apart, carried over from the engine's own task split
// (script/service/send vs. user/manual/receive) even though the
// runtime only cares about the wait/non-wait boolean.
type TaskKind string

const (
	TaskKindTask        TaskKind = "task"
	TaskKindUserTask     TaskKind = "userTask"
	TaskKindReceiveTask  TaskKind = "receiveTask"
	TaskKindManualTask   TaskKind = "manualTask"
	TaskKindServiceTask  TaskKind = "serviceTask"
	TaskKindScriptTask   TaskKind = "scriptTask"
	TaskKindSendTask     TaskKind = "sendTask"
)

// WaitKinds are task kinds whose completion is signaled externally via
// taskDone rather than synchronously by the handler's done callback.
var waitKinds = map[TaskKind]bool{
	TaskKindTask:        true,
	TaskKindUserTask:    true,
	TaskKindReceiveTask: true,
	TaskKindManualTask:  true,
}

// IsWaitTask reports whether a task kind blocks pending an external taskDone.
func IsWaitTask(tk TaskKind) bool {
	return waitKinds[tk]
}

// FlowObject is the common surface every BPMN node implements. Runtime
// behavior (emitTokens) lives in the instance package as a type switch
// over the concrete structs below, keeping this package free of any
// dependency on runtime state.
type FlowObject interface {
	ID() string
	Name() string
	Kind() Kind
}

type base struct {
	id   string
	name string
}

func (b base) ID() string   { return b.id }
func (b base) Name() string { return b.name }

// StartEvent must have no incoming sequence flows and at least one outgoing.
type StartEvent struct {
	base
}

func NewStartEvent(id, name string) *StartEvent { return &StartEvent{base{id, name}} }
func (s *StartEvent) Kind() Kind                { return KindStartEvent }

// EndEvent must have at least one incoming sequence flow and no outgoing.
type EndEvent struct {
	base
}

func NewEndEvent(id, name string) *EndEvent { return &EndEvent{base{id, name}} }
func (e *EndEvent) Kind() Kind              { return KindEndEvent }

// Task covers task/userTask/receiveTask/manualTask (wait-tasks) and
// serviceTask/scriptTask/sendTask (non-wait tasks).
type Task struct {
	base
	TaskKind TaskKind
}

func NewTask(id, name string, tk TaskKind) *Task { return &Task{base{id, name}, tk} }
func (t *Task) Kind() Kind                       { return KindTask }
func (t *Task) IsWaitTask() bool                 { return IsWaitTask(t.TaskKind) }

// CallActivity spawns a sub-process instance from a called process
// definition. The manager resolves CalledElementName against the names
// of registered process definitions; CalledElementNamespace is not used
// for the lookup, and Location appears only in the error reported when
// no definition matches.
type CallActivity struct {
	base
	CalledElementName      string
	CalledElementNamespace string
	Location               string
}

func NewCallActivity(id, name, calledElementName, calledElementNamespace, location string) *CallActivity {
	return &CallActivity{base{id, name}, calledElementName, calledElementNamespace, location}
}
func (c *CallActivity) Kind() Kind { return KindCallActivity }

// IntermediateCatchEvent awaits an external trigger or, if IsTimerEvent,
// a timer computed by the name$getTimeout handler.
type IntermediateCatchEvent struct {
	base
	IsTimerEvent bool
}

func NewIntermediateCatchEvent(id, name string, isTimer bool) *IntermediateCatchEvent {
	return &IntermediateCatchEvent{base{id, name}, isTimer}
}
func (i *IntermediateCatchEvent) Kind() Kind { return KindIntermediateCatchEvent }

// IntermediateThrowEvent fires synchronously like a non-wait task;
// kept as a distinct kind because its handler semantics mirror a send
// task rather than a catch.
type IntermediateThrowEvent struct {
	base
}

func NewIntermediateThrowEvent(id, name string) *IntermediateThrowEvent {
	return &IntermediateThrowEvent{base{id, name}}
}
func (i *IntermediateThrowEvent) Kind() Kind { return KindIntermediateThrowEvent }

// BoundaryEvent attaches only to wait-tasks; when triggered it diverts
// flow away from the attached activity.
type BoundaryEvent struct {
	base
	AttachedToRef string
	IsTimerEvent  bool
}

func NewBoundaryEvent(id, name, attachedToRef string, isTimer bool) *BoundaryEvent {
	return &BoundaryEvent{base{id, name}, attachedToRef, isTimer}
}
func (b *BoundaryEvent) Kind() Kind { return KindBoundaryEvent }

// ExclusiveGateway requires >=2 incoming or >=2 outgoing flows.
type ExclusiveGateway struct {
	base
}

func NewExclusiveGateway(id, name string) *ExclusiveGateway { return &ExclusiveGateway{base{id, name}} }
func (g *ExclusiveGateway) Kind() Kind                      { return KindExclusiveGateway }

// ParallelGateway requires the same cardinality rule as ExclusiveGateway.
type ParallelGateway struct {
	base
}

func NewParallelGateway(id, name string) *ParallelGateway { return &ParallelGateway{base{id, name}} }
func (g *ParallelGateway) Kind() Kind                     { return KindParallelGateway }

// SequenceFlow is internal control flow between two flow objects in
// the same process.
type SequenceFlow struct {
	ID        string
	SourceRef string
	TargetRef string
	Name      string
}

// MessageFlow is the inter-process wire of a collaboration.
type MessageFlow struct {
	ID                      string
	SourceRef               string
	TargetRef               string
	SourceProcessDefinitionID string
	TargetProcessDefinitionID string
}

// Participant is a pool in a collaboration.
type Participant struct {
	Name       string
	ProcessRef string
}

// CollaborationDefinition groups the participants exchanging message
// flows across process definitions.
type CollaborationDefinition struct {
	ID           string
	Participants []*Participant
	MessageFlows []*MessageFlow
}
