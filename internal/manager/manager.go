/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package manager owns everything a running engine needs across
// process instances: registered definitions, their handler modules,
// the live instance cache, and the shared timer wheel. It is the only
// point of contention the concurrency model allows (§5); shared maps
// are guarded by its mutex. AfterInitialization is the gate that waits
// for queued definitions to be registered; the create, find and
// Instance operations do not wait on it themselves.
package manager

import (
	"fmt"
	"sync"

	"bpmn-runtime/internal/bpmndef"
	"bpmn-runtime/internal/bpmnxml"
	"bpmn-runtime/internal/corelog"
	"bpmn-runtime/internal/handler"
	"bpmn-runtime/internal/instance"
	"bpmn-runtime/internal/timerwheel"
)

type queuedDefinition struct {
	name       string
	def        *bpmndef.ProcessDefinition
	handlerSrc *handler.Source
}

// Manager is the process manager of §4.5: definitions, handler
// modules and the live instance cache, guarded by a single mutex and
// fronted by an asynchronous initialization gate.
type Manager struct {
	mu          sync.Mutex
	definitions map[string]*bpmndef.ProcessDefinition
	handlers    map[string]handler.Module
	cache       map[string]*instance.Instance

	store instance.Store
	wheel *timerwheel.Wheel
	clock instance.Clock
	log   corelog.ComponentLogger

	initialized          bool
	initialising         bool
	initializationError  error
	queuedDefinitions    []queuedDefinition
	waitingCallbacks     []func()
}

// New builds a manager around a persistence store and a shared timer
// wheel. Either may be nil (no persistence, no timers) for tests that
// don't need them.
func New(store instance.Store, wheel *timerwheel.Wheel, clock instance.Clock) *Manager {
	if clock == nil {
		clock = instance.SystemClock{}
	}
	m := &Manager{
		definitions: make(map[string]*bpmndef.ProcessDefinition),
		handlers:    make(map[string]handler.Module),
		cache:       make(map[string]*instance.Instance),
		store:       store,
		wheel:       wheel,
		clock:       clock,
		log:         corelog.NewComponentLogger("manager"),
	}
	if wheel != nil {
		wheel.SetExpireCallback(m.onTimerExpired)
	}
	return m
}

// AddBpmnXML parses one BPMN document and queues every process
// definition it contains for registration. handlerSrc, if non-nil, is
// loaded separately for every process found in the document and bound
// to that process's name — the common case of one XML file per handler
// module. Registration
// itself happens asynchronously on the drain goroutine; use
// AfterInitialization to wait for it.
func (m *Manager) AddBpmnXML(data []byte, handlerSrc *handler.Source) error {
	defs, errs := bpmnxml.Parse(data)
	if errs != nil {
		return fmt.Errorf("parsing bpmn document: %w", errs)
	}

	m.mu.Lock()
	for _, proc := range defs.Processes {
		m.queuedDefinitions = append(m.queuedDefinitions, queuedDefinition{
			name:       proc.Name,
			def:        proc,
			handlerSrc: handlerSrc,
		})
	}
	alreadyRunning := m.initialising
	m.initialising = true
	m.initialized = false
	m.mu.Unlock()

	if !alreadyRunning {
		go m.drain()
	}
	return nil
}

// drain processes queuedDefinitions one at a time: register the
// definition, load its handler module, then (if a store is wired)
// materialize every persisted instance for it. Once the queue runs
// dry, the manager flips to initialized and releases every callback
// parked on AfterInitialization.
func (m *Manager) drain() {
	for {
		m.mu.Lock()
		if len(m.queuedDefinitions) == 0 {
			m.initialising = false
			m.initialized = true
			cbs := m.waitingCallbacks
			m.waitingCallbacks = nil
			m.mu.Unlock()
			for _, cb := range cbs {
				cb()
			}
			return
		}
		q := m.queuedDefinitions[0]
		m.queuedDefinitions = m.queuedDefinitions[1:]
		m.mu.Unlock()

		m.registerDefinition(q)
	}
}

func (m *Manager) registerDefinition(q queuedDefinition) {
	m.mu.Lock()
	m.definitions[q.name] = q.def
	m.mu.Unlock()

	if q.handlerSrc != nil {
		mod, err := handler.Load(*q.handlerSrc)
		if err != nil {
			m.recordInitError(fmt.Errorf("loading handler module for %q: %w", q.name, err))
			return
		}
		m.mu.Lock()
		m.handlers[q.name] = mod
		m.mu.Unlock()
	}

	if m.store == nil {
		return
	}
	if err := m.loadPersisted(q.name, q.def); err != nil {
		m.recordInitError(fmt.Errorf("loading persisted instances for %q: %w", q.name, err))
	}
}

func (m *Manager) recordInitError(err error) {
	m.log.Error("definition registration failed", corelog.Any("error", err))
	m.mu.Lock()
	m.initializationError = err
	m.mu.Unlock()
}

// AfterInitialization runs cb once every queued definition has been
// registered and any persisted instances for it restored. If the
// manager is already idle (nothing queued, drain not running), cb runs
// immediately on the calling goroutine; otherwise it is parked and run
// from the drain goroutine once the queue empties.
func (m *Manager) AfterInitialization(cb func()) {
	m.mu.Lock()
	if !m.initialising {
		m.mu.Unlock()
		cb()
		return
	}
	m.waitingCallbacks = append(m.waitingCallbacks, cb)
	m.mu.Unlock()
}

// InitializationError returns the most recent error encountered while
// registering a definition or loading its persisted instances, if any.
func (m *Manager) InitializationError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initializationError
}

func (m *Manager) depsFor(name string) instance.Deps {
	m.mu.Lock()
	deps := m.depsForLocked(name)
	m.mu.Unlock()
	return deps
}

// depsForLocked builds a Deps value assuming the caller already holds m.mu.
func (m *Manager) depsForLocked(name string) instance.Deps {
	return instance.Deps{
		Clock:        m.clock,
		Wheel:        m.wheel,
		Store:        m.store,
		Handlers:     m.handlers[name],
		OnProcessEnd: m.onProcessEnd,
		SpawnChild:   m.spawnChild,
	}
}

func (m *Manager) onProcessEnd(i *instance.Instance) {
	m.log.Info("process instance ended", corelog.String("processName", i.ProcessName), corelog.String("processId", i.ProcessID))
}

// Instance looks up a cached instance (main process or call-activity
// child) by process id.
func (m *Manager) Instance(processID string) (*instance.Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.cache[processID]
	return inst, ok
}
