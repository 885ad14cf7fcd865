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
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config holds application configuration
// Содержит конфигурацию приложения
type Config struct {
	InstanceName string        `yaml:"instance_name"` // Instance/deployment name
	BasePath     string        `yaml:"base_path"`     // Base path for all relative paths
	RestAPI      RestAPIConfig `yaml:"rest_api"`
	Logger       LoggerConfig  `yaml:"logger"`
	Store        StoreConfig   `yaml:"store"`
	Engine       EngineConfig  `yaml:"engine"`
}

// RestAPIConfig holds REST façade configuration
// Конфигурация REST фасада
type RestAPIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig holds persistence store configuration
// Конфигурация хранилища персистентности
type StoreConfig struct {
	Directory string `yaml:"directory"`
}

// LoggerConfig holds logger configuration
// Конфигурация логгера
type LoggerConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	Directory     string `yaml:"directory"`
	MaxSize       int64  `yaml:"max_size"`       // Maximum size in MB
	MaxAge        int    `yaml:"max_age"`        // Maximum age in days
	MaxBackups    int    `yaml:"max_backups"`    // Maximum number of backup files
	EnableConsole bool   `yaml:"enable_console"` // Enable console output
}

// EngineConfig holds process-engine configuration
// Конфигурация движка процессов
type EngineConfig struct {
	// HandlerModulePath is the directory bpmnd scans at startup for
	// *.bpmn definitions, each paired with the compiled plugin of the
	// same base name (.so) when one is present.
	HandlerModulePath string `yaml:"handler_module_path"`
	// TimerWheelResolutionMS is the tick period of the shared timer
	// wheel, in milliseconds.
	TimerWheelResolutionMS int64 `yaml:"timer_wheel_resolution_ms"`
	// TimerWheelSlots is the number of slots per wheel level.
	TimerWheelSlots int `yaml:"timer_wheel_slots"`
}

// LoadConfig loads configuration from a YAML file
// Загружает конфигурацию из YAML файла
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.BasePath == "" {
		cfg.BasePath = "."
	}

	setDefaults(&cfg)
	cfg.LoadFromEnv()
	resolvePaths(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
// Устанавливает значения по умолчанию для конфигурации
func setDefaults(cfg *Config) {
	if cfg.InstanceName == "" {
		cfg.InstanceName = "bpmn-runtime"
	}

	if cfg.RestAPI.Host == "" {
		cfg.RestAPI.Host = "localhost"
	}
	if cfg.RestAPI.Port == 0 {
		cfg.RestAPI.Port = 8080
	}

	if cfg.Store.Directory == "" {
		cfg.Store.Directory = "data/store"
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
	if cfg.Logger.Directory == "" {
		cfg.Logger.Directory = "logs"
	}
	if cfg.Logger.MaxSize == 0 {
		cfg.Logger.MaxSize = 100
	}
	if cfg.Logger.MaxAge == 0 {
		cfg.Logger.MaxAge = 30
	}
	if cfg.Logger.MaxBackups == 0 {
		cfg.Logger.MaxBackups = 10
	}

	if cfg.Engine.HandlerModulePath == "" {
		cfg.Engine.HandlerModulePath = "handlers/"
	}
	if cfg.Engine.TimerWheelResolutionMS == 0 {
		cfg.Engine.TimerWheelResolutionMS = 100
	}
	if cfg.Engine.TimerWheelSlots == 0 {
		cfg.Engine.TimerWheelSlots = 60
	}
}

// resolvePaths resolves relative paths based on base path
// Разрешает относительные пути на основе базового пути
func resolvePaths(cfg *Config) {
	if !filepath.IsAbs(cfg.Store.Directory) {
		cfg.Store.Directory = filepath.Join(cfg.BasePath, cfg.Store.Directory)
	}
	if !filepath.IsAbs(cfg.Logger.Directory) {
		cfg.Logger.Directory = filepath.Join(cfg.BasePath, cfg.Logger.Directory)
	}
	if !filepath.IsAbs(cfg.Engine.HandlerModulePath) {
		cfg.Engine.HandlerModulePath = filepath.Join(cfg.BasePath, cfg.Engine.HandlerModulePath)
	}
}
