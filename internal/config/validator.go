/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate validates the configuration
// Валидирует конфигурацию
func (c *Config) Validate() error {
	if err := c.validateBasePath(); err != nil {
		return fmt.Errorf("base_path validation failed: %w", err)
	}
	if err := c.validateRestAPI(); err != nil {
		return fmt.Errorf("rest_api validation failed: %w", err)
	}
	if err := c.validateStore(); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	if err := c.validateLogger(); err != nil {
		return fmt.Errorf("logger validation failed: %w", err)
	}
	if err := c.validateEngine(); err != nil {
		return fmt.Errorf("engine validation failed: %w", err)
	}
	return nil
}

// validateBasePath validates base path
// Валидирует базовый путь
func (c *Config) validateBasePath() error {
	if c.BasePath == "" {
		return fmt.Errorf("base_path cannot be empty")
	}
	if _, err := os.Stat(c.BasePath); os.IsNotExist(err) {
		if err := os.MkdirAll(c.BasePath, 0755); err != nil {
			return fmt.Errorf("cannot create base path %s: %w", c.BasePath, err)
		}
	}
	return nil
}

// validateRestAPI validates REST façade configuration
// Валидирует конфигурацию REST фасада
func (c *Config) validateRestAPI() error {
	if c.RestAPI.Port < 1024 || c.RestAPI.Port > 65535 {
		return fmt.Errorf("rest_api port must be between 1024 and 65535, got %d", c.RestAPI.Port)
	}
	if c.RestAPI.Host == "" {
		return fmt.Errorf("rest_api host cannot be empty")
	}
	return nil
}

// validateStore validates persistence store configuration
// Валидирует конфигурацию хранилища персистентности
func (c *Config) validateStore() error {
	if c.Store.Directory == "" {
		return fmt.Errorf("store directory cannot be empty")
	}
	return nil
}

// validateLogger validates logger configuration
// Валидирует конфигурацию логгера
func (c *Config) validateLogger() error {
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	valid := false
	for _, level := range validLevels {
		if strings.ToLower(c.Logger.Level) == level {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("logger level must be one of %v, got %s", validLevels, c.Logger.Level)
	}

	validFormats := []string{"json", "text"}
	valid = false
	for _, format := range validFormats {
		if strings.ToLower(c.Logger.Format) == format {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("logger format must be one of %v, got %s", validFormats, c.Logger.Format)
	}

	if c.Logger.Directory == "" {
		return fmt.Errorf("logger directory cannot be empty")
	}
	if c.Logger.MaxSize <= 0 {
		return fmt.Errorf("logger max_size must be positive, got %d", c.Logger.MaxSize)
	}
	if c.Logger.MaxAge <= 0 {
		return fmt.Errorf("logger max_age must be positive, got %d", c.Logger.MaxAge)
	}
	if c.Logger.MaxBackups <= 0 {
		return fmt.Errorf("logger max_backups must be positive, got %d", c.Logger.MaxBackups)
	}
	return nil
}

// validateEngine validates process-engine configuration
// Валидирует конфигурацию движка процессов
func (c *Config) validateEngine() error {
	if c.Engine.HandlerModulePath == "" {
		return fmt.Errorf("handler_module_path cannot be empty")
	}
	if c.Engine.TimerWheelResolutionMS <= 0 {
		return fmt.Errorf("timer_wheel_resolution_ms must be positive, got %d", c.Engine.TimerWheelResolutionMS)
	}
	if c.Engine.TimerWheelSlots <= 0 {
		return fmt.Errorf("timer_wheel_slots must be positive, got %d", c.Engine.TimerWheelSlots)
	}
	return nil
}
