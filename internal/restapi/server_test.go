/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package restapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bpmn-runtime/internal/manager"
)

const orderXML = `<?xml version="1.0"?>
<definitions>
  <process id="p1" name="order">
    <startEvent id="s1" name="Start"/>
    <userTask id="t1" name="Review"/>
    <endEvent id="e1" name="End"/>
    <sequenceFlow id="f1" sourceRef="s1" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="e1"/>
  </process>
</definitions>`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mgr := manager.New(nil, nil, nil)
	require.NoError(t, mgr.AddBpmnXML([]byte(orderXML), nil))
	done := make(chan struct{})
	mgr.AfterInitialization(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager never initialized")
	}
	require.NoError(t, mgr.InitializationError())
	return New(DefaultConfig(), mgr)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	s.router.ServeHTTP(rec, r)
	return rec
}

func TestPostCreateAndStartReturnsInstanceView(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/order/Start", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var v instanceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Equal(t, "order", v.Name)
	require.Equal(t, "self", v.Link.Rel)
	require.Contains(t, v.Link.Href, v.ID)
}

func TestGetInstanceNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/order/no-such-id", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var errResp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "BPMNExecutionError", errResp.Code)
}

func TestPutMessageIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/order/Start", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var v instanceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))

	require.Eventually(t, func() bool {
		rec := doRequest(s, http.MethodGet, "/order/"+v.ID, "")
		var cur instanceView
		_ = json.Unmarshal(rec.Body.Bytes(), &cur)
		for _, st := range cur.State {
			if st == "Review" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	path := "/order/" + v.ID + "/ReviewDone/msg-1"
	first := doRequest(s, http.MethodPut, path, "")
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(s, http.MethodPut, path, "")
	require.Equal(t, http.StatusOK, second.Code)
}

func TestListInstancesFiltersByState(t *testing.T) {
	s := newTestServer(t)
	doRequest(s, http.MethodPost, "/order/Start", "")

	require.Eventually(t, func() bool {
		rec := doRequest(s, http.MethodGet, "/order?state=Review", "")
		var views []instanceView
		_ = json.Unmarshal(rec.Body.Bytes(), &views)
		return len(views) == 1
	}, time.Second, 5*time.Millisecond)
}
