/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package bpmnxml

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bpmn-runtime/internal/bpmndef"
)

func TestParseSimpleProcess(t *testing.T) {
	defs, errs := Parse([]byte(`<?xml version="1.0"?>
<definitions>
  <process id="p1" name="order">
    <startEvent id="s1" name="Start"/>
    <userTask id="t1" name="Review"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="e1"/>
  </process>
</definitions>`))
	require.Nil(t, errs)
	require.Len(t, defs.Processes, 1)

	proc := defs.Processes["p1"]
	require.Equal(t, "order", proc.Name)

	task, ok := proc.ElementByName("Review")
	require.True(t, ok)
	ut, ok := task.(*bpmndef.Task)
	require.True(t, ok)
	require.True(t, ut.IsWaitTask())
}

func TestParseMalformedXMLReportsParseError(t *testing.T) {
	_, errs := Parse([]byte(`<definitions><process id="p1">`))
	require.NotNil(t, errs)
	require.Equal(t, bpmndef.ParseErrorCode("MALFORMED_XML"), errs[0].Code)
}

func TestParseRunsValidationAndSurfacesCardinalityErrors(t *testing.T) {
	_, errs := Parse([]byte(`<?xml version="1.0"?>
<definitions>
  <process id="p1" name="bad-gateway">
    <startEvent id="s1" name="Start"/>
    <exclusiveGateway id="g1" name="Check"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="g1"/>
    <sequenceFlow id="f2" sourceRef="g1" targetRef="e1"/>
  </process>
</definitions>`))
	require.NotNil(t, errs)

	found := false
	for _, e := range errs {
		if e.Code == bpmndef.ErrGatewayCardinality {
			found = true
		}
	}
	require.True(t, found, "expected a gateway cardinality violation, got %v", errs)
}

func TestParseCollaborationWiresMessageFlows(t *testing.T) {
	defs, errs := Parse([]byte(`<?xml version="1.0"?>
<definitions>
  <process id="buyer" name="buyer">
    <startEvent id="bs" name="Start"/>
    <sendTask id="bt" name="Send Order"/>
    <endEvent id="be" name="End"/>
    <sequenceFlow id="bf1" sourceRef="bs" targetRef="bt"/>
    <sequenceFlow id="bf2" sourceRef="bt" targetRef="be"/>
  </process>
  <process id="seller" name="seller">
    <startEvent id="ss" name="Start"/>
    <receiveTask id="st" name="Receive Order"/>
    <endEvent id="se" name="End"/>
    <sequenceFlow id="sf1" sourceRef="ss" targetRef="st"/>
    <sequenceFlow id="sf2" sourceRef="st" targetRef="se"/>
  </process>
  <collaboration id="c1">
    <participant id="p-buyer" name="buyer" processRef="buyer"/>
    <participant id="p-seller" name="seller" processRef="seller"/>
    <messageFlow id="mf1" sourceRef="bt" targetRef="st"/>
  </collaboration>
</definitions>`))
	require.Nil(t, errs)
	require.Len(t, defs.Collaborations, 1)
	require.Len(t, defs.Collaborations[0].MessageFlows, 1)

	buyer := defs.Processes["buyer"]
	require.Len(t, buyer.MessageFlows, 1)
	require.Equal(t, "seller", buyer.MessageFlows[0].TargetProcessDefinitionID)
}
