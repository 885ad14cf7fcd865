/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package manager

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const orderXML = `<?xml version="1.0"?>
<definitions>
  <process id="p1" name="order">
    <startEvent id="s1" name="Start"/>
    <serviceTask id="t1" name="Ship"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="e1"/>
  </process>
</definitions>`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := New(nil, nil, nil)
	require.NoError(t, m.AddBpmnXML([]byte(orderXML), nil))

	done := make(chan struct{})
	m.AfterInitialization(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager never finished initializing")
	}
	require.NoError(t, m.InitializationError())
	return m
}

func TestCreateProcessGeneratesIDAndCaches(t *testing.T) {
	m := newTestManager(t)
	inst, err := m.CreateProcess("order", "")
	require.NoError(t, err)
	require.NotEmpty(t, inst.ProcessID)

	got, ok := m.Instance(inst.ProcessID)
	require.True(t, ok)
	require.Same(t, inst, got)
}

func TestCreateProcessRejectsDuplicateID(t *testing.T) {
	m := newTestManager(t)
	_, err := m.CreateProcess("order", "fixed-id")
	require.NoError(t, err)

	_, err = m.CreateProcess("order", "fixed-id")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestCreateProcessRejectsUnknownDefinition(t *testing.T) {
	m := newTestManager(t)
	_, err := m.CreateProcess("no-such-process", "")
	require.Error(t, err)
}

func TestCreateProcessByIDRequiresExactlyOneDefinition(t *testing.T) {
	m := newTestManager(t)
	inst, err := m.CreateProcessByID("sole-id")
	require.NoError(t, err)
	require.Equal(t, "sole-id", inst.ProcessID)

	m2 := New(nil, nil, nil)
	require.NoError(t, m2.AddBpmnXML([]byte(orderXML), nil))
	const secondXML = `<?xml version="1.0"?>
<definitions>
  <process id="p2" name="refund">
    <startEvent id="s1" name="Start"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="e1"/>
  </process>
</definitions>`
	require.NoError(t, m2.AddBpmnXML([]byte(secondXML), nil))
	done := make(chan struct{})
	m2.AfterInitialization(func() { close(done) })
	<-done

	_, err = m2.CreateProcessByID("ambiguous")
	require.Error(t, err)
}

func TestFindByStateAndFindByProperty(t *testing.T) {
	m := newTestManager(t)

	inst, err := m.CreateProcess("order", "")
	require.NoError(t, err)
	inst.SetProperty("region", "eu")
	require.NoError(t, inst.TriggerEvent("Start", nil))

	require.Eventually(t, func() bool {
		return len(m.FindByState("Ship")) == 1
	}, time.Second, 5*time.Millisecond)

	matches := m.FindByProperty(map[string]any{"region": "eu"})
	require.Len(t, matches, 1)
	require.Equal(t, inst.ProcessID, matches[0].ProcessID)

	require.Empty(t, m.FindByProperty(map[string]any{"region": "us"}))
}

func TestFindByNameCaseSensitivity(t *testing.T) {
	m := newTestManager(t)
	_, err := m.CreateProcess("order", "")
	require.NoError(t, err)

	require.Len(t, m.FindByName("order", true), 1)
	require.Empty(t, m.FindByName("Order", true))
	require.Len(t, m.FindByName("Order", false), 1)
}

func TestCallActivityRoundTripCompletesParentAfterChild(t *testing.T) {
	const parentXML = `<?xml version="1.0"?>
<definitions>
  <process id="p1" name="parent">
    <startEvent id="s1" name="Start"/>
    <callActivity id="ca1" name="DoChild" calledElement="child"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="ca1"/>
    <sequenceFlow id="f2" sourceRef="ca1" targetRef="e1"/>
  </process>
</definitions>`
	const childXML = `<?xml version="1.0"?>
<definitions>
  <process id="p2" name="child">
    <startEvent id="s1" name="Start"/>
    <serviceTask id="t1" name="Do Work"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="e1"/>
  </process>
</definitions>`

	m := New(nil, nil, nil)
	require.NoError(t, m.AddBpmnXML([]byte(parentXML), nil))
	require.NoError(t, m.AddBpmnXML([]byte(childXML), nil))
	done := make(chan struct{})
	m.AfterInitialization(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager never finished initializing")
	}
	require.NoError(t, m.InitializationError())

	parent, err := m.CreateProcess("parent", "")
	require.NoError(t, err)
	require.NoError(t, parent.TriggerEvent("Start", nil))

	require.Eventually(t, func() bool {
		return parent.View().History.FinishedAt != nil
	}, time.Second, 5*time.Millisecond, "parent must complete once its call activity returns")

	require.Empty(t, parent.View().State, "parent must hold no token once it has reached its end event")
}

func TestCreateCollaboratingSetWiresParticipantsAndTriggersStart(t *testing.T) {
	m := New(nil, nil, nil)
	const a = `<?xml version="1.0"?>
<definitions><process id="pa" name="buyer">
  <startEvent id="s1" name="Start"/>
  <endEvent id="e1" name="End"/>
  <sequenceFlow id="f1" sourceRef="s1" targetRef="e1"/>
</process></definitions>`
	const b = `<?xml version="1.0"?>
<definitions><process id="pb" name="seller">
  <startEvent id="s1" name="Start"/>
  <endEvent id="e1" name="End"/>
  <sequenceFlow id="f1" sourceRef="s1" targetRef="e1"/>
</process></definitions>`
	require.NoError(t, m.AddBpmnXML([]byte(a), nil))
	require.NoError(t, m.AddBpmnXML([]byte(b), nil))
	var wg sync.WaitGroup
	wg.Add(1)
	m.AfterInitialization(wg.Done)
	wg.Wait()

	instances, err := m.CreateCollaboratingSet([]ProcessDescriptor{
		{Name: "buyer", ID: "buyer-1", StartEventName: "Start"},
		{Name: "seller", ID: "seller-1"},
	})
	require.NoError(t, err)
	require.Len(t, instances, 2)

	require.Eventually(t, func() bool {
		return len(instances[0].View().History.Entries) > 0
	}, time.Second, 5*time.Millisecond)
}
