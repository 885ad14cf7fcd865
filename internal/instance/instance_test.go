/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package instance

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bpmn-runtime/internal/bpmndef"
	"bpmn-runtime/internal/bpmnxml"
	"bpmn-runtime/internal/handler"
	"bpmn-runtime/internal/timerwheel"
)

// fakeClock lets timer-path tests assert on exact stamped timestamps
// instead of racing against time.Now.
type fakeClock struct{ ms int64 }

func (c *fakeClock) NowMS() int64 { return c.ms }

const linearXML = `<?xml version="1.0"?>
<definitions>
  <process id="p1" name="linear">
    <startEvent id="s1" name="Start"/>
    <serviceTask id="t1" name="Do Work"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="e1"/>
  </process>
</definitions>`

func mustParse(t *testing.T, xml string) *bpmndef.ProcessDefinition {
	t.Helper()
	defs, errs := bpmnxml.Parse([]byte(xml))
	require.Nil(t, errs, "%v", errs)
	require.Len(t, defs.Processes, 1)
	for _, p := range defs.Processes {
		return p
	}
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestLinearProcessRunsToCompletion(t *testing.T) {
	def := mustParse(t, linearXML)
	inst := New("linear", def, Deps{})
	inst.Start()
	defer inst.Stop()

	require.NoError(t, inst.TriggerEvent("Start", nil))

	waitFor(t, func() bool {
		v := inst.View()
		return len(v.State) == 0
	})

	v := inst.View()
	require.Empty(t, v.State)
	require.NotNil(t, v.History.FinishedAt)
}

func TestWaitTaskBlocksUntilTaskDone(t *testing.T) {
	xml := `<?xml version="1.0"?>
<definitions>
  <process id="p1" name="wait">
    <startEvent id="s1" name="Start"/>
    <userTask id="t1" name="Review"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="e1"/>
  </process>
</definitions>`
	def := mustParse(t, xml)
	inst := New("wait", def, Deps{})
	inst.Start()
	defer inst.Stop()

	require.NoError(t, inst.TriggerEvent("Start", nil))

	waitFor(t, func() bool { return inst.HasTokenAt("Review") })
	time.Sleep(20 * time.Millisecond)
	require.True(t, inst.HasTokenAt("Review"), "wait task must not auto-complete")

	require.NoError(t, inst.TaskDone("Review", nil))
	waitFor(t, func() bool { return len(inst.View().State) == 0 })
}

func TestExclusiveGatewayRoutesByPredicate(t *testing.T) {
	xml := `<?xml version="1.0"?>
<definitions>
  <process id="p1" name="branch">
    <startEvent id="s1" name="Start"/>
    <exclusiveGateway id="g1" name="Check"/>
    <endEvent id="eA" name="EndA"/>
    <endEvent id="eB" name="EndB"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="g1"/>
    <sequenceFlow id="fA" name="toA" sourceRef="g1" targetRef="eA"/>
    <sequenceFlow id="fB" name="toB" sourceRef="g1" targetRef="eB"/>
  </process>
</definitions>`
	def := mustParse(t, xml)

	mod := handler.NewMapModule()
	mod.PredicateFuncs[handler.BranchName("Check", "toA")] = func(ctx context.Context, data any) bool { return false }
	mod.PredicateFuncs[handler.BranchName("Check", "toB")] = func(ctx context.Context, data any) bool { return true }

	inst := New("branch", def, Deps{Handlers: mod})
	inst.Start()
	defer inst.Stop()

	require.NoError(t, inst.TriggerEvent("Start", nil))
	waitFor(t, func() bool { return len(inst.View().State) == 0 })

	v := inst.View()
	require.NotNil(t, v.History.FinishedAt)

	var visited []string
	for _, e := range v.History.Entries {
		visited = append(visited, e.Name)
	}
	require.Contains(t, visited, "EndB")
	require.NotContains(t, visited, "EndA")
}

func TestParallelGatewayJoinsAllBranches(t *testing.T) {
	xml := `<?xml version="1.0"?>
<definitions>
  <process id="p1" name="fork">
    <startEvent id="s1" name="Start"/>
    <parallelGateway id="split" name="Split"/>
    <serviceTask id="a" name="A"/>
    <serviceTask id="b" name="B"/>
    <parallelGateway id="join" name="Join"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="split"/>
    <sequenceFlow id="f2" sourceRef="split" targetRef="a"/>
    <sequenceFlow id="f3" sourceRef="split" targetRef="b"/>
    <sequenceFlow id="f4" sourceRef="a" targetRef="join"/>
    <sequenceFlow id="f5" sourceRef="b" targetRef="join"/>
    <sequenceFlow id="f6" sourceRef="join" targetRef="e1"/>
  </process>
</definitions>`
	def := mustParse(t, xml)
	inst := New("fork", def, Deps{})
	inst.Start()
	defer inst.Stop()

	require.NoError(t, inst.TriggerEvent("Start", nil))
	waitFor(t, func() bool { return len(inst.View().State) == 0 })
	require.NotNil(t, inst.View().History.FinishedAt)
}

func TestTriggerEventRejectsDoubleStart(t *testing.T) {
	def := mustParse(t, linearXML)
	inst := New("linear", def, Deps{})
	inst.Start()
	defer inst.Stop()

	require.NoError(t, inst.TriggerEvent("Start", nil))
	waitFor(t, func() bool { return len(inst.View().History.Entries) > 0 })
	require.Error(t, inst.TriggerEvent("Start", nil))
}

func TestBoundaryTimerFiresAndDivertsTheToken(t *testing.T) {
	xml := `<?xml version="1.0"?>
<definitions>
  <process id="p1" name="reminder">
    <startEvent id="s1" name="Start"/>
    <userTask id="t1" name="Review"/>
    <boundaryEvent id="b1" name="Timeout" attachedToRef="t1">
      <timerEventDefinition/>
    </boundaryEvent>
    <endEvent id="eOK" name="Approved"/>
    <endEvent id="eLate" name="Escalated"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="eOK"/>
    <sequenceFlow id="f3" sourceRef="b1" targetRef="eLate"/>
  </process>
</definitions>`
	def := mustParse(t, xml)

	mod := handler.NewMapModule()
	mod.TimeoutFuncs[handler.TimeoutName("Timeout")] = func(ctx context.Context) (int64, error) {
		return 15, nil
	}

	wheel, err := timerwheel.New(timerwheel.Config{Levels: []timerwheel.LevelConfig{
		{Tick: 5 * time.Millisecond, Size: 8},
	}}, nil)
	require.NoError(t, err)
	require.NoError(t, wheel.Start())
	defer wheel.Stop()

	inst := New("reminder", def, Deps{Handlers: mod, Wheel: wheel, Clock: &fakeClock{ms: 1000}})
	wheel.SetExpireCallback(func(id string) {
		name := strings.TrimPrefix(id, inst.ProcessID+":")
		inst.FireTimer(name)
	})
	inst.Start()
	defer inst.Stop()

	require.NoError(t, inst.TriggerEvent("Start", nil))
	waitFor(t, func() bool { return inst.HasTokenAt("Review") })

	waitFor(t, func() bool { return len(inst.View().State) == 0 })
	require.False(t, inst.HasTokenAt("Review"), "boundary timer must remove the attached activity's token")
	require.NotNil(t, inst.View().History.FinishedAt, "process must reach Escalated via the boundary flow")
}

func TestPropertiesRoundTrip(t *testing.T) {
	def := mustParse(t, linearXML)
	inst := New("linear", def, Deps{})
	inst.Start()
	defer inst.Stop()

	inst.SetProperty("order.total", 42)
	v, ok := inst.GetProperty("order.total")
	require.True(t, ok)
	require.Equal(t, 42, v)
	require.True(t, inst.MatchesPropertyQuery(map[string]any{"order.total": 42}))
	require.False(t, inst.MatchesPropertyQuery(map[string]any{"order.total": 7}))
}
