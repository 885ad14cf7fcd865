/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bpmn-runtime/internal/instance"
	"bpmn-runtime/internal/manager"
)

func errNotFound(id string) error {
	return errors.New("no process instance found with id " + id)
}

func toViews(instances []*instance.Instance) []instanceView {
	views := make([]instanceView, 0, len(instances))
	for _, inst := range instances {
		views = append(views, toView(inst))
	}
	return views
}

func filterByName(instances []*instance.Instance, processName string) []*instance.Instance {
	out := make([]*instance.Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.ProcessName == processName {
			out = append(out, inst)
		}
	}
	return out
}

// createRequest is the optional body accepted by both creating routes:
// a caller-supplied id and/or seed properties to set before the first
// event is triggered.
type createRequest struct {
	ID         string         `json:"id"`
	Data       any            `json:"data"`
	Properties map[string]any `json:"properties"`
}

// collaborateRequest is the body of POST /bpmnCollaborate.
type collaborateRequest struct {
	ProcessDescriptors []struct {
		Name           string `json:"name"`
		ID             string `json:"id"`
		StartEventName string `json:"startEventName"`
	} `json:"processDescriptors"`
}

func seedProperties(inst interface{ SetProperty(string, any) }, props map[string]any) {
	for k, v := range props {
		inst.SetProperty(k, v)
	}
}

func (s *Server) postCollaborate(c *gin.Context) {
	var req collaborateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, executionErrorResponse(err))
		return
	}

	descriptors := make([]manager.ProcessDescriptor, 0, len(req.ProcessDescriptors))
	for _, d := range req.ProcessDescriptors {
		descriptors = append(descriptors, manager.ProcessDescriptor{
			Name:           d.Name,
			ID:             d.ID,
			StartEventName: d.StartEventName,
		})
	}

	instances, err := s.manager.CreateCollaboratingSet(descriptors)
	if err != nil {
		c.JSON(http.StatusBadRequest, executionErrorResponse(err))
		return
	}

	views := make([]instanceView, 0, len(instances))
	for _, inst := range instances {
		views = append(views, toView(inst))
	}
	c.JSON(http.StatusCreated, views)
}

func (s *Server) postCreate(c *gin.Context) {
	processName := c.Param("processName")

	var req createRequest
	_ = c.ShouldBindJSON(&req)

	inst, err := s.manager.CreateProcess(processName, req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, executionErrorResponse(err))
		return
	}
	seedProperties(inst, req.Properties)
	c.JSON(http.StatusCreated, toView(inst))
}

func (s *Server) postCreateAndStart(c *gin.Context) {
	processName := c.Param("processName")
	startEventName := c.Param("startEventName")

	var req createRequest
	_ = c.ShouldBindJSON(&req)

	inst, err := s.manager.CreateProcess(processName, req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, executionErrorResponse(err))
		return
	}
	seedProperties(inst, req.Properties)

	if err := inst.TriggerEvent(startEventName, req.Data); err != nil {
		c.JSON(http.StatusBadRequest, executionErrorResponse(err))
		return
	}
	c.JSON(http.StatusCreated, toView(inst))
}

func (s *Server) getInstance(c *gin.Context) {
	id := c.Param("id")
	inst, ok := s.manager.Instance(id)
	if !ok || inst.ProcessName != c.Param("processName") {
		c.JSON(http.StatusNotFound, executionErrorResponse(errNotFound(id)))
		return
	}
	c.JSON(http.StatusOK, toView(inst))
}

// listInstances implements §6's filter semantics: the "state" query
// parameter matches current token positions (FindByState); every other
// query parameter is folded into one property-equality query
// (FindByProperty). With neither kind of filter, every instance of the
// named process definition is returned (FindByName).
func (s *Server) listInstances(c *gin.Context) {
	processName := c.Param("processName")

	if state := c.Query("state"); state != "" {
		matches := filterByName(s.manager.FindByState(state), processName)
		c.JSON(http.StatusOK, toViews(matches))
		return
	}

	query := map[string]any{}
	for k, vs := range c.Request.URL.Query() {
		if k == "state" || len(vs) == 0 {
			continue
		}
		query[k] = vs[0]
	}
	if len(query) > 0 {
		matches := filterByName(s.manager.FindByProperty(query), processName)
		c.JSON(http.StatusOK, toViews(matches))
		return
	}

	c.JSON(http.StatusOK, toViews(s.manager.FindByName(processName, true)))
}

func (s *Server) putMessage(c *gin.Context) {
	processName := c.Param("processName")
	id := c.Param("id")
	messageName := c.Param("messageName")
	messageID := c.Param("messageId")

	inst, ok := s.manager.Instance(id)
	if !ok || inst.ProcessName != processName {
		c.JSON(http.StatusNotFound, executionErrorResponse(errNotFound(id)))
		return
	}

	key := processName + "|" + id + "|" + messageName + "|" + messageID

	s.idempotencyMu.Lock()
	seen := s.idempotency[key]
	if !seen {
		s.idempotency[key] = true
	}
	s.idempotencyMu.Unlock()

	if seen {
		c.JSON(http.StatusOK, toView(inst))
		return
	}

	var body any
	_ = c.ShouldBindJSON(&body)

	if err := inst.TriggerEvent(messageName, body); err != nil {
		c.JSON(http.StatusBadRequest, executionErrorResponse(err))
		return
	}
	c.JSON(http.StatusCreated, toView(inst))
}
