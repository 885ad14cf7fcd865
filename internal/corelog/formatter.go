/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package corelog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Formatter interface for log formatting
// Интерфейс для форматирования логов
type Formatter interface {
	Format(*LogEntry) string
}

// JSONFormatter formats logs as JSON
// Форматирует логи в формате JSON
type JSONFormatter struct{}

// TextFormatter formats logs as plain text
// Форматирует логи в текстовом формате
type TextFormatter struct{}

// NewFormatter creates formatter based on format type
// Создает форматтер на основе типа формата
func NewFormatter(format string) Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &JSONFormatter{}
	case "text":
		return &TextFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// Format implements Formatter for JSON
func (f *JSONFormatter) Format(entry *LogEntry) string {
	data := map[string]interface{}{
		"timestamp": entry.Timestamp.Format(time.RFC3339),
		"level":     entry.Level.String(),
		"message":   entry.Message,
	}

	for _, field := range entry.Fields {
		data[field.Key] = field.Value
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf(`{"timestamp":"%s","level":"%s","message":"marshal error: %s"}`,
			entry.Timestamp.Format(time.RFC3339), entry.Level.String(), err.Error())
	}
	return string(bytes)
}

// Format implements Formatter for plain text
func (f *TextFormatter) Format(entry *LogEntry) string {
	var b strings.Builder
	b.WriteString(entry.Timestamp.Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(entry.Level.String())
	b.WriteString("] ")
	b.WriteString(entry.Message)

	for _, field := range entry.Fields {
		fmt.Fprintf(&b, " %s=%v", field.Key, field.Value)
	}

	return b.String()
}
