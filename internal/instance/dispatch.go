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
)

// dispatch handles one internal event. It always runs on the
// instance's own loop goroutine, so nothing here needs additional
// locking against itself — only against external readers (View,
// GetProperty) and external enqueuers (TriggerEvent/TaskDone/timers),
// which is what i.mu protects.
func (i *Instance) dispatch(ev Event) {
	switch ev.Kind {
	case TokenArrived:
		i.dispatchTokenArrived(ev.Name, ev.Data)
	case ActivityEnd:
		i.dispatchActivityEnd(ev.Name, ev.Data)
	case IntermediateCatch:
		i.dispatchIntermediateCatch(ev.Name, ev.Data)
	case BoundaryCatch:
		i.dispatchBoundaryCatch(ev.Name, ev.Data)
	}
}

func (i *Instance) dispatchTokenArrived(name string, data any) {
	fo, ok := i.Def.ElementByName(name)
	if !ok {
		i.routeDefaultEvent(string(TokenArrived), name, "unknown_flow_object", newRuntimeError(ErrUnknownEvent, "no flow object named %q", name))
		return
	}

	i.invokeHandler(handler.Canonicalize(name), data, func(result any, err error) {
		if err != nil {
			i.routeError(err)
			return
		}

		switch v := fo.(type) {
		case *bpmndef.Task:
			if v.IsWaitTask() {
				i.registerBoundaryTimers(v)
				i.persist()
				return
			}
			i.closeCurrentHistoryEntry(name)
			i.emitTokens(fo, result)
		case *bpmndef.IntermediateCatchEvent:
			if v.IsTimerEvent {
				if err := i.scheduleTimer(name); err != nil {
					i.routeFatal(err)
					return
				}
				return
			}
			i.closeCurrentHistoryEntry(name)
			i.emitTokens(fo, result)
		case *bpmndef.CallActivity:
			i.registerBoundaryTimers(v)
			i.enterCallActivity(v)
		case *bpmndef.ExclusiveGateway:
			// "without a final trx.end()": the gateway's history
			// entry is not closed here and nothing closes it later;
			// it stays open.
			i.emitTokens(fo, result)
		default:
			i.closeCurrentHistoryEntry(name)
			i.emitTokens(fo, result)
		}
	})
}

func (i *Instance) dispatchActivityEnd(name string, data any) {
	i.mu.Lock()
	hasToken := i.State.HasToken(name)
	i.mu.Unlock()
	if !hasToken {
		i.routeDefaultEvent(string(ActivityEnd), name, "not_executing", newRuntimeError(ErrNotExecuting, "no token at %q", name))
		return
	}
	fo, ok := i.Def.ElementByName(name)
	if !ok {
		i.routeDefaultEvent(string(ActivityEnd), name, "unknown_flow_object", newRuntimeError(ErrUnknownEvent, "no flow object named %q", name))
		return
	}
	if _, isCallActivity := fo.(*bpmndef.CallActivity); isCallActivity {
		// A call activity's ACTIVITY_END is its child returning, not an
		// external taskDone: no NDone handler is invoked, the parent
		// just advances past it (§4.1 "Returning").
		i.closeCurrentHistoryEntry(name)
		i.emitTokens(fo, data)
		return
	}
	i.invokeHandler(handler.DoneName(name), data, func(result any, err error) {
		if err != nil {
			i.routeError(err)
			return
		}
		i.closeCurrentHistoryEntry(name)
		i.emitTokens(fo, result)
	})
}

func (i *Instance) dispatchIntermediateCatch(name string, data any) {
	i.mu.Lock()
	hasToken := i.State.HasToken(name)
	i.mu.Unlock()
	if !hasToken {
		i.routeDefaultEvent(string(IntermediateCatch), name, "not_executing", newRuntimeError(ErrNotExecuting, "no token at %q", name))
		return
	}
	fo, ok := i.Def.ElementByName(name)
	if !ok {
		return
	}
	i.invokeHandler(handler.Canonicalize(name), data, func(result any, err error) {
		if err != nil {
			i.routeError(err)
			return
		}
		i.closeCurrentHistoryEntry(name)
		i.emitTokens(fo, result)
	})
}

func (i *Instance) dispatchBoundaryCatch(name string, data any) {
	fo, ok := i.Def.ElementByName(name)
	if !ok {
		return
	}
	be, ok := fo.(*bpmndef.BoundaryEvent)
	if !ok {
		return
	}
	attached, ok := i.Def.ElementByID(be.AttachedToRef)
	if !ok {
		i.routeDefaultEvent(string(BoundaryCatch), name, "not_executing", newRuntimeError(ErrNotExecuting, "attached activity %q has no token", be.AttachedToRef))
		return
	}
	i.mu.Lock()
	hasToken := i.State.HasToken(attached.Name())
	if hasToken {
		i.State.RemoveFirst(attached.Name())
	}
	i.mu.Unlock()
	if !hasToken {
		i.routeDefaultEvent(string(BoundaryCatch), name, "not_executing", newRuntimeError(ErrNotExecuting, "attached activity %q has no token", be.AttachedToRef))
		return
	}
	i.closeCurrentHistoryEntry(attached.Name())
	for _, other := range i.Def.BoundaryEventsAt(be.AttachedToRef) {
		i.clearTimer(other.Name())
	}
	i.putTokenAt(fo, data)
}

// invokeHandler resolves and calls the TOKEN_ARRIVED-shaped handler
// for canonicalName. A module that defines no such handler is treated
// as a no-op that completes immediately with a nil result, keeping the
// instance alive rather than raising a per-flow-object ConfigError
// (ConfigError is reserved for definition-wide configuration problems
// per §7, not a single missing handler).
func (i *Instance) invokeHandler(canonicalName string, data any, done handler.DoneFunc) {
	if i.handlers == nil {
		done(nil, nil)
		return
	}
	fn, ok := i.handlers.TokenArrived(canonicalName)
	if !ok {
		done(nil, nil)
		return
	}
	fn(context.Background(), data, done)
}

func (i *Instance) closeCurrentHistoryEntry(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.History.Close(name, i.clock.NowMS())
}

func (i *Instance) registerBoundaryTimers(activity bpmndef.FlowObject) {
	for _, be := range i.Def.BoundaryEventsAt(activity.ID()) {
		if be.IsTimerEvent {
			if err := i.scheduleTimer(be.Name()); err != nil {
				i.routeFatal(err)
			}
		}
	}
}

// routeDefaultEvent routes a non-fatal RuntimeError through
// defaultEventHandler; the instance keeps running.
func (i *Instance) routeDefaultEvent(eventType, flowName, handlerName string, err error) {
	i.log.Warn("routing default event handler", corelog.String("eventType", eventType), corelog.String("flowName", flowName), corelog.Any("error", err))
	if i.handlers == nil {
		return
	}
	hook, ok := i.handlers.Hook("defaultEventHandler")
	if !ok {
		return
	}
	if f, ok := hook.(func(eventType, flowName, handlerName string, reason error, done handler.DoneFunc)); ok {
		f(eventType, flowName, handlerName, err, func(any, error) {})
	}
}

// routeError routes an arbitrary handler-reported error through
// defaultErrorHandler, per §7's "never swallows silently" policy.
func (i *Instance) routeError(err error) {
	i.log.Error("handler reported error", corelog.Any("error", err))
	if i.handlers == nil {
		return
	}
	hook, ok := i.handlers.Hook("defaultErrorHandler")
	if !ok {
		return
	}
	if f, ok := hook.(func(error, handler.DoneFunc)); ok {
		f(err, func(any, error) {})
	}
}

// routeFatal handles BadTimeout/BadCalledProcess: these end the
// instance rather than merely logging through a hook.
func (i *Instance) routeFatal(err error) {
	i.log.Error("fatal runtime error, stopping instance", corelog.String("processId", i.ProcessID), corelog.Any("error", err))
	i.routeError(err)
	go i.Stop()
}
