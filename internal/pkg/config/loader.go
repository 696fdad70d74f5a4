// Package config provides fail-open configuration loading: every loader
// returns a usable value, falling back to the supplied default with a
// warning when the environment carries an invalid one. A worker that
// skips a scheduled notification day because of a typo in a cron
// expression is worse than one that runs on its default schedule.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult represents the result of loading one configuration
// value: the value itself (possibly the fallback), warnings generated
// during loading, and whether the fallback was applied.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString loads a string from an environment variable, returning
// the default when the variable is unset. No validation is applied.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string from an environment variable with
// validation. An unset variable yields the default silently; a set but
// invalid one yields the default with a warning and the fallback flag.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)

	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			warning := fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%s'",
				envKey, value, err, defaultValue,
			)
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{warning},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvInt loads an integer from an environment variable with
// validation and fallback. Unparseable values fall back with a warning,
// the same way invalid ones do.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)

	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		warning := fmt.Sprintf(
			"Invalid %s='%s': not an integer, falling back to default '%d'",
			envKey, raw, defaultValue,
		)
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{warning},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			warning := fmt.Sprintf(
				"Invalid %s='%d': %v, falling back to default '%d'",
				envKey, value, err, defaultValue,
			)
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{warning},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration loads a time.Duration from an environment variable
// with validation and fallback. The value must be in Go duration syntax
// (e.g. "10m", "1h30m").
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)

	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		warning := fmt.Sprintf(
			"Invalid %s='%s': not a duration, falling back to default '%v'",
			envKey, raw, defaultValue,
		)
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{warning},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			warning := fmt.Sprintf(
				"Invalid %s='%v': %v, falling back to default '%v'",
				envKey, value, err, defaultValue,
			)
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{warning},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}
