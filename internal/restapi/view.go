/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package restapi

import (
	"net/url"

	"bpmn-runtime/internal/instance"
	"bpmn-runtime/internal/state"
)

// link is the HATEOAS self-reference the instance view carries per §6.
type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// instanceView is the exact JSON shape §6 fixes for GET/POST responses.
type instanceView struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Link       link                   `json:"link"`
	State      []string               `json:"state"`
	History    *state.ProcessHistory  `json:"history"`
	Properties map[string]any         `json:"properties"`
}

func toView(inst *instance.Instance) instanceView {
	v := inst.View()
	return instanceView{
		ID:   v.ID,
		Name: v.Name,
		Link: link{
			Rel:  "self",
			Href: "/" + url.PathEscape(v.Name) + "/" + url.PathEscape(v.ID),
		},
		State:      v.State,
		History:    v.History,
		Properties: v.Properties,
	}
}
