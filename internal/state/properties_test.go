/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPropertiesDotPathSetGet(t *testing.T) {
	p := NewProperties()
	p.Set("order.customer.name", "Ada")
	p.Set("order.total", 100)

	v, ok := p.Get("order.customer.name")
	require.True(t, ok)
	require.Equal(t, "Ada", v)

	v, ok = p.Get("order.total")
	require.True(t, ok)
	require.Equal(t, 100, v)

	_, ok = p.Get("order.missing")
	require.False(t, ok)
}

func TestPropertiesMatchesQueryIsANDOverKeys(t *testing.T) {
	p := NewProperties()
	p.Set("status", "open")
	p.Set("region", "eu")

	require.True(t, p.MatchesQuery(map[string]any{"status": "open"}))
	require.True(t, p.MatchesQuery(map[string]any{"status": "open", "region": "eu"}))
	require.False(t, p.MatchesQuery(map[string]any{"status": "open", "region": "us"}))
	require.False(t, p.MatchesQuery(map[string]any{"missing": "x"}))
}

func TestHistoryBeginCloseFinish(t *testing.T) {
	h := NewProcessHistory(100)
	e := h.Begin("Start", "startEvent", 100)
	require.Nil(t, e.End)

	h.Close("Start", 150)
	require.NotNil(t, h.Entries[0].End)
	require.Equal(t, int64(150), *h.Entries[0].End)

	h.Finish(200)
	require.NotNil(t, h.FinishedAt)
	h.Finish(999)
	require.Equal(t, int64(200), *h.FinishedAt, "Finish must stamp only once")
}
