/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bpmn-runtime/internal/state"
)

func TestPersistLoadRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	doc := &state.Document{
		ProcessName: "order",
		ProcessID:   "abc-123",
		State:       state.NewProcessState(),
		History:     state.NewProcessHistory(1000),
		Properties:  state.NewProperties(),
	}
	doc.Properties.Set("region", "eu")
	doc.State.Add(state.NewToken("Review", "abc-123"))

	require.NoError(t, s.Persist(doc))

	loaded, err := s.Load("order", "abc-123")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, "abc-123", loaded.ProcessID)
	require.True(t, loaded.State.HasToken("Review"))
	v, ok := loaded.Properties.Get("region")
	require.True(t, ok)
	require.Equal(t, "eu", v)
}

func TestLoadMissingReturnsNilNil(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	doc, err := s.Load("order", "does-not-exist")
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestLoadAllScopesByProcessName(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	for _, id := range []string{"a1", "a2"} {
		doc := &state.Document{ProcessName: "order", ProcessID: id, State: state.NewProcessState(), History: state.NewProcessHistory(0), Properties: state.NewProperties()}
		require.NoError(t, s.Persist(doc))
	}
	other := &state.Document{ProcessName: "refund", ProcessID: "b1", State: state.NewProcessState(), History: state.NewProcessHistory(0), Properties: state.NewProperties()}
	require.NoError(t, s.Persist(other))

	docs, err := s.LoadAll("order")
	require.NoError(t, err)
	require.Len(t, docs, 2)
}
