/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package instance

import (
	"sync"

	"bpmn-runtime/internal/bpmndef"
	"bpmn-runtime/internal/corelog"
	"bpmn-runtime/internal/handler"
	"bpmn-runtime/internal/ids"
	"bpmn-runtime/internal/state"
	"bpmn-runtime/internal/timerwheel"
)

// Instance is one running process instance: the definition it
// interprets, its mutable state/history/timers, and the machinery that
// advances it. Event dispatch and handler invocation happen on this
// instance's own loop goroutine and never interleave with themselves —
// scheduling is cooperative per instance, matching §5. The mutations
// made from a caller's goroutine (a start event's first token via
// TriggerEvent, property writes) are guarded by mu.
type Instance struct {
	ProcessName string
	ProcessID   string
	Def         *bpmndef.ProcessDefinition

	State      *state.ProcessState
	History    *state.ProcessHistory
	Timers     *state.PendingTimerEvents
	Properties state.Properties
	Views      *state.Views
	createdAt  int64
	finishedAt *int64

	// Ownership: parent -> children is the owning direction; the
	// back-reference here is non-owning and used only to notify the
	// parent's emitTokens on a call-activity return.
	parent      *Instance
	parentToken *state.Token
	children    map[string]*Instance // calledProcessId -> child, owning

	// Collaboration peers, wired by name after a collaborating set is created.
	participants map[string]*Instance

	handlers handler.Module
	clock    Clock
	wheel    *timerwheel.Wheel
	store    Store
	log      corelog.ComponentLogger

	// onProcessEnd notifies the manager so it can finalize bookkeeping
	// (e.g. unregistering from a parent) without this package importing
	// the manager package back.
	onProcessEnd func(i *Instance)
	// spawnChild lets CallActivity entering create a child instance
	// without this package depending on the manager for definition
	// lookup/handler resolution; the manager supplies this closure.
	spawnChild func(parent *Instance, calledElementName, location string) (*Instance, error)

	mu             sync.Mutex
	queue          chan Event
	deferEvents    bool
	deferredEvents []Event
	stopCh         chan struct{}
	wg             sync.WaitGroup
	started        bool
}

// Deps bundles the collaborators an Instance needs that the manager owns.
type Deps struct {
	Clock        Clock
	Wheel        *timerwheel.Wheel
	Store        Store
	Handlers     handler.Module
	OnProcessEnd func(i *Instance)
	SpawnChild   func(parent *Instance, calledElementName, location string) (*Instance, error)
}

// New creates a fresh instance with empty state, ready to have its
// start event triggered.
func New(processName string, def *bpmndef.ProcessDefinition, deps Deps) *Instance {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	now := clock.NowMS()
	return &Instance{
		ProcessName:  processName,
		ProcessID:    ids.NewProcessID(),
		Def:          def,
		State:        state.NewProcessState(),
		History:      state.NewProcessHistory(now),
		Timers:       state.NewPendingTimerEvents(),
		Properties:   state.NewProperties(),
		Views:        &state.Views{},
		children:     make(map[string]*Instance),
		participants: make(map[string]*Instance),
		handlers:     deps.Handlers,
		clock:        clock,
		wheel:        deps.Wheel,
		store:        deps.Store,
		log:          corelog.NewComponentLogger("instance"),
		onProcessEnd: deps.OnProcessEnd,
		spawnChild:   deps.SpawnChild,
		queue:        make(chan Event, 64),
		stopCh:       make(chan struct{}),
	}
}

// Restore rebuilds one instance from a persisted document. It does not
// recreate child instances for call-activity tokens; the manager's
// restore path does that and attaches them with AttachRestoredChild.
func Restore(processName string, def *bpmndef.ProcessDefinition, doc *state.Document, deps Deps) *Instance {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	i := &Instance{
		ProcessName:  processName,
		ProcessID:    doc.ProcessID,
		Def:          def,
		State:        doc.State,
		History:      doc.History,
		Timers:       doc.PendingTimeouts,
		Properties:   doc.Properties,
		Views:        doc.Views,
		parentToken:  doc.ParentToken,
		children:     make(map[string]*Instance),
		participants: make(map[string]*Instance),
		handlers:     deps.Handlers,
		clock:        clock,
		wheel:        deps.Wheel,
		store:        deps.Store,
		log:          corelog.NewComponentLogger("instance"),
		onProcessEnd: deps.OnProcessEnd,
		spawnChild:   deps.SpawnChild,
		queue:        make(chan Event, 64),
		stopCh:       make(chan struct{}),
	}
	if i.State == nil {
		i.State = state.NewProcessState()
	}
	if i.History == nil {
		i.History = state.NewProcessHistory(clock.NowMS())
	}
	if i.Timers == nil {
		i.Timers = state.NewPendingTimerEvents()
	}
	if i.Properties == nil {
		i.Properties = state.NewProperties()
	}
	if i.Views == nil {
		i.Views = &state.Views{}
	}
	return i
}

// Start launches the instance's loop goroutine and restores any pending
// timers found in its persisted timeout table.
func (i *Instance) Start() {
	i.mu.Lock()
	if i.started {
		i.mu.Unlock()
		return
	}
	i.started = true
	i.mu.Unlock()

	i.wg.Add(1)
	go i.loop()
	i.restoreTimers()
}

// Stop halts the instance's loop goroutine. Pending state is left
// exactly as it is; a subsequent Start (after a fresh Restore) picks
// up where persistence left off.
func (i *Instance) Stop() {
	i.mu.Lock()
	if !i.started {
		i.mu.Unlock()
		return
	}
	i.started = false
	i.mu.Unlock()
	close(i.stopCh)
	i.wg.Wait()
}

func (i *Instance) loop() {
	defer i.wg.Done()
	for {
		select {
		case <-i.stopCh:
			return
		case ev := <-i.queue:
			i.dispatch(ev)
		}
	}
}

// enqueue posts an event onto the instance's own queue, honoring the
// deferral gate: while deferEvents is set, events accumulate on
// deferredEvents instead of reaching the loop, and are replayed in
// order once the gate is released.
func (i *Instance) enqueue(ev Event) {
	i.mu.Lock()
	if i.deferEvents {
		i.deferredEvents = append(i.deferredEvents, ev)
		i.mu.Unlock()
		return
	}
	i.mu.Unlock()
	i.queue <- ev
}

// View returns the REST-facing projection of this instance: id, state,
// history, properties — matching the JSON shape fixed in §6.
type View struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	State      []string       `json:"state"`
	History    *state.ProcessHistory `json:"history"`
	Properties map[string]any `json:"properties"`
}

func (i *Instance) View() View {
	i.mu.Lock()
	defer i.mu.Unlock()
	return View{
		ID:         i.ProcessID,
		Name:       i.ProcessName,
		State:      i.State.Positions(),
		History:    i.History,
		Properties: i.Properties.All(),
	}
}
