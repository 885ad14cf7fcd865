/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package bpmnxml implements the "out of scope" definition parser of
// spec.md §1 as a pure function: Parse(xml) -> (*bpmndef.Definitions,
// bpmndef.ParseErrors). It walks BPMN 2.0 XML with a generic element
// tree, the same technique the teacher engine's src/parser package
// uses (encoding/xml with a recursive any-element node), instead of
// unmarshaling into one rigid struct per BPMN element.
package bpmnxml

import "encoding/xml"

// node is a generic XML element: any attribute, any children,
// character data captured alongside.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*node    `xml:",any"`
}

// attr returns the value of the named attribute (local name match,
// namespace-agnostic — BPMN files mix bpmn/bpmndi/di namespaces for
// attributes that are unambiguous by local name alone).
func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) attrOr(name, def string) string {
	if v, ok := n.attr(name); ok {
		return v
	}
	return def
}

// childrenNamed returns direct children whose local element name matches.
func (n *node) childrenNamed(local string) []*node {
	var out []*node
	for _, c := range n.Children {
		if c.XMLName.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// firstChildNamed returns the first direct child with the given local name.
func (n *node) firstChildNamed(local string) (*node, bool) {
	for _, c := range n.Children {
		if c.XMLName.Local == local {
			return c, true
		}
	}
	return nil, false
}

// hasChildNamed reports whether any direct child has the given local name.
func (n *node) hasChildNamed(local string) bool {
	_, ok := n.firstChildNamed(local)
	return ok
}
