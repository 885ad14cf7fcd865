/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package handler

import (
	"fmt"
	"plugin"
)

// pluginSymbol is the package-level identifier a handler-module plugin
// must export: var Handlers handler.Module.
const pluginSymbol = "Handlers"

func loadPlugin(path string) (Module, error) {
	if path == "" {
		return nil, fmt.Errorf("handler: empty plugin path")
	}
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("handler: opening plugin %q: %w", path, err)
	}
	sym, err := p.Lookup(pluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("handler: plugin %q does not export %q: %w", path, pluginSymbol, err)
	}
	mod, ok := sym.(Module)
	if !ok {
		modPtr, ok2 := sym.(*Module)
		if ok2 {
			return *modPtr, nil
		}
		return nil, fmt.Errorf("handler: plugin %q symbol %q does not implement Module", path, pluginSymbol)
	}
	return mod, nil
}
