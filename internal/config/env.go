/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package config

import (
	"os"
	"strconv"
	"strings"
)

// LoadFromEnv loads configuration from environment variables
// Загружает конфигурацию из переменных окружения
func (c *Config) LoadFromEnv() {
	if env := os.Getenv("BPMN_INSTANCE_NAME"); env != "" {
		c.InstanceName = env
	}
	if env := os.Getenv("BPMN_BASE_PATH"); env != "" {
		c.BasePath = env
	}

	if env := os.Getenv("BPMN_REST_API_HOST"); env != "" {
		c.RestAPI.Host = env
	}
	if env := os.Getenv("BPMN_REST_API_PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil {
			c.RestAPI.Port = port
		}
	}

	if env := os.Getenv("BPMN_STORE_DIRECTORY"); env != "" {
		c.Store.Directory = env
	}

	if env := os.Getenv("BPMN_LOGGER_LEVEL"); env != "" {
		c.Logger.Level = strings.ToLower(env)
	}
	if env := os.Getenv("BPMN_LOGGER_FORMAT"); env != "" {
		c.Logger.Format = strings.ToLower(env)
	}
	if env := os.Getenv("BPMN_LOGGER_DIRECTORY"); env != "" {
		c.Logger.Directory = env
	}
	if env := os.Getenv("BPMN_LOGGER_ENABLE_CONSOLE"); env != "" {
		c.Logger.EnableConsole = strings.ToLower(env) == "true"
	}

	if env := os.Getenv("BPMN_HANDLER_MODULE_PATH"); env != "" {
		c.Engine.HandlerModulePath = env
	}
}

// GetConfigPath returns configuration file path from environment or default
// Возвращает путь к файлу конфигурации из окружения или по умолчанию
func GetConfigPath() string {
	if env := os.Getenv("BPMN_CONFIG_PATH"); env != "" {
		return env
	}
	return "config/config.yaml"
}

// GetEnvWithDefault returns environment variable value or default
// Возвращает значение переменной окружения или значение по умолчанию
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvAsInt returns environment variable as integer or default
// Возвращает переменную окружения как число или значение по умолчанию
func GetEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
