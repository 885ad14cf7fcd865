/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package corelog

// ComponentLogger is a logger bound to a single component name
// Логгер, привязанный к имени одного компонента
type ComponentLogger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
}

// NewComponentLogger creates a component logger using the global logger
func NewComponentLogger(component string) ComponentLogger {
	return &componentLogger{component: component}
}

type componentLogger struct {
	component string
}

func (cl *componentLogger) Debug(msg string, fields ...Field) {
	Debug(msg, append([]Field{String("component", cl.component)}, fields...)...)
}

func (cl *componentLogger) Info(msg string, fields ...Field) {
	Info(msg, append([]Field{String("component", cl.component)}, fields...)...)
}

func (cl *componentLogger) Warn(msg string, fields ...Field) {
	Warn(msg, append([]Field{String("component", cl.component)}, fields...)...)
}

func (cl *componentLogger) Error(msg string, fields ...Field) {
	Error(msg, append([]Field{String("component", cl.component)}, fields...)...)
}

func (cl *componentLogger) Fatal(msg string, fields ...Field) {
	Fatal(msg, append([]Field{String("component", cl.component)}, fields...)...)
}
