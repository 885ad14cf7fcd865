/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package instance

import (
	"context"

	"bpmn-runtime/internal/bpmndef"
	"bpmn-runtime/internal/corelog"
	"bpmn-runtime/internal/handler"
	"bpmn-runtime/internal/state"
)

// putTokenAt implements §4.2: add a token at fo, open its history
// entry, record views.startEvent if fo is a start event, then enqueue
// TOKEN_ARRIVED so the instance's own loop processes it in turn. State
// mutation is guarded by i.mu because TriggerEvent's start-event case
// calls this directly from whatever goroutine the caller is on, before
// the instance's loop may have begun draining its queue.
func (i *Instance) putTokenAt(fo bpmndef.FlowObject, data any) {
	i.mu.Lock()
	i.State.Add(state.NewToken(fo.Name(), i.ProcessID))
	i.History.Begin(fo.Name(), string(fo.Kind()), i.clock.NowMS())
	if _, isStart := fo.(*bpmndef.StartEvent); isStart {
		i.Views.RecordStart(fo.Name())
	}
	i.mu.Unlock()

	i.enqueue(Event{Kind: TokenArrived, Name: fo.Name(), Data: data})
}

// emitTokens is the universal advance primitive ("_emitTokens"): clear
// any timers tied to fo, then delegate to the variant-specific
// behavior. Each variant is responsible for removing whatever token(s)
// it consumes — the default path removes a single match;
// ParallelGateway removes all only once its join is satisfied.
func (i *Instance) emitTokens(fo bpmndef.FlowObject, data any) {
	i.clearTimer(fo.Name())
	for _, be := range i.Def.BoundaryEventsAt(fo.ID()) {
		i.clearTimer(be.Name())
	}

	switch v := fo.(type) {
	case *bpmndef.ExclusiveGateway:
		i.emitExclusiveGateway(v, data)
	case *bpmndef.ParallelGateway:
		i.emitParallelGateway(v, data)
	case *bpmndef.EndEvent:
		i.emitEndEvent(v, data)
	case *bpmndef.CallActivity:
		i.emitCallActivityReturn(v, data)
	default:
		i.emitDefault(fo, data)
	}
}

// emitDefault covers Task, IntermediateCatchEvent, IntermediateThrowEvent,
// BoundaryEvent and StartEvent: remove the single token at fo, then put
// a token on every outgoing sequence flow's target.
func (i *Instance) emitDefault(fo bpmndef.FlowObject, data any) {
	i.mu.Lock()
	i.State.RemoveFirst(fo.Name())
	i.mu.Unlock()

	for _, sf := range i.Def.OutgoingSequenceFlows(fo.ID()) {
		target, ok := i.Def.ElementByID(sf.TargetRef)
		if !ok {
			continue
		}
		i.putTokenAt(target, data)
	}
}

func (i *Instance) emitExclusiveGateway(gw *bpmndef.ExclusiveGateway, data any) {
	i.mu.Lock()
	i.State.RemoveFirst(gw.Name())
	i.mu.Unlock()

	outs := i.Def.OutgoingSequenceFlows(gw.ID())
	if len(outs) == 1 {
		if target, ok := i.Def.ElementByID(outs[0].TargetRef); ok {
			i.putTokenAt(target, data)
		}
		return
	}

	for _, sf := range outs {
		canonical := handler.BranchName(gw.Name(), sf.Name)
		if i.handlers == nil {
			continue
		}
		pred, ok := i.handlers.Predicate(canonical)
		if !ok {
			continue
		}
		if pred(context.Background(), data) {
			if target, ok := i.Def.ElementByID(sf.TargetRef); ok {
				i.putTokenAt(target, data)
			}
			return
		}
	}
	// No branch returned truthy: the token is dropped. Documented
	// behavior per the exclusive-gateway design note — a stuck state,
	// not an error.
	i.log.Warn("exclusive gateway: no branch predicate matched, token dropped", corelog.String("gateway", gw.Name()))
}

func (i *Instance) emitParallelGateway(gw *bpmndef.ParallelGateway, data any) {
	incoming := len(i.Def.IncomingSequenceFlows(gw.ID()))

	i.mu.Lock()
	count := i.State.Count(gw.Name())
	i.mu.Unlock()

	if count < incoming {
		i.persist()
		return
	}

	i.mu.Lock()
	i.State.RemoveAll(gw.Name())
	i.mu.Unlock()

	for _, sf := range i.Def.OutgoingSequenceFlows(gw.ID()) {
		if target, ok := i.Def.ElementByID(sf.TargetRef); ok {
			i.putTokenAt(target, data)
		}
	}
}

func (i *Instance) emitEndEvent(end *bpmndef.EndEvent, data any) {
	i.mu.Lock()
	i.State.RemoveFirst(end.Name())
	now := i.clock.NowMS()
	i.Views.RecordEnd(end.Name(), i.History.CreatedAt, now)
	i.History.Finish(now)
	i.finishedAt = &now
	i.mu.Unlock()

	if i.parent != nil {
		i.notifyParentOfReturn(data)
		return
	}

	i.persist()
	if i.onProcessEnd != nil {
		i.onProcessEnd(i)
	}
}
