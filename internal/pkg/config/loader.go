// Package config provides reusable configuration loading and validation
// helpers shared by all components. Loaders follow a fail-open strategy:
// an invalid environment value never aborts startup, it falls back to the
// default and surfaces a warning plus a metric.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult represents the result of loading a configuration value.
// Value holds the loaded value (or the default when a fallback was applied),
// Warnings carries one message per fallback, and FallbackApplied reports
// whether the default was used due to a parse or validation failure.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString loads a string value from an environment variable.
// If the variable is not set, the default value is returned. No validation
// is performed; use LoadEnvWithFallback when validation is needed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string value from an environment variable,
// validating it with the given validator (nil skips validation). A value
// that fails validation is replaced by the default and reported as a
// warning; an unset variable silently yields the default.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallbackResult(envKey, value, err, defaultValue)
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvInt loads an integer value from an environment variable with
// parsing, validation, and fallback to the default on failure.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, defaultValue)
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvFloat loads a float value from an environment variable with
// parsing, validation, and fallback to the default on failure.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, defaultValue)
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvDuration loads a duration value from an environment variable with
// parsing (time.ParseDuration format, e.g. "30s", "5m"), validation, and
// fallback to the default on failure.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, defaultValue)
		}
	}

	return ConfigLoadResult{Value: parsed}
}

func fallbackResult(envKey, rawValue string, cause error, defaultValue interface{}) ConfigLoadResult {
	warning := fmt.Sprintf(
		"Invalid %s='%s': %v, falling back to default '%v'",
		envKey, rawValue, cause, defaultValue,
	)
	return ConfigLoadResult{
		Value:           defaultValue,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}
