package worker

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	// Verify all fields have expected default values
	if config.Timezone != "Asia/Kolkata" {
		t.Errorf("Expected Timezone 'Asia/Kolkata', got '%s'", config.Timezone)
	}

	if config.RunTimeout != 10*time.Minute {
		t.Errorf("Expected RunTimeout 10m, got %v", config.RunTimeout)
	}

	if config.HealthPort != 9091 {
		t.Errorf("Expected HealthPort 9091, got %d", config.HealthPort)
	}

	if config.JobsFile != "" {
		t.Errorf("Expected empty JobsFile, got '%s'", config.JobsFile)
	}
}

func TestDefaultConfig_Immutability(t *testing.T) {
	// Each call to DefaultConfig should return a new instance
	config1 := DefaultConfig()
	config2 := DefaultConfig()

	config1.Timezone = "UTC"
	config1.HealthPort = 8080

	if config2.Timezone != "Asia/Kolkata" {
		t.Error("DefaultConfig returned a shared instance instead of a new one")
	}

	if config2.HealthPort != 9091 {
		t.Error("DefaultConfig returned a shared instance instead of a new one")
	}
}

func TestWorkerConfig_Validate_ValidConfig(t *testing.T) {
	// Default config should be valid
	config := DefaultConfig()

	err := config.Validate()
	if err != nil {
		t.Errorf("DefaultConfig should be valid, got error: %v", err)
	}
}

func TestWorkerConfig_Validate_InvalidTimezone(t *testing.T) {
	config := DefaultConfig()
	config.Timezone = "Invalid/Timezone"

	err := config.Validate()
	if err == nil {
		t.Error("Expected validation error for invalid timezone")
	}
}

func TestWorkerConfig_Validate_EmptyTimezone(t *testing.T) {
	config := DefaultConfig()
	config.Timezone = ""

	err := config.Validate()
	if err == nil {
		t.Error("Expected validation error for empty timezone")
	}
}

func TestWorkerConfig_Validate_RunTimeoutBoundary(t *testing.T) {
	tests := []struct {
		name  string
		value time.Duration
		valid bool
	}{
		{"Min valid (1m)", 1 * time.Minute, true},
		{"Max valid (30m)", 30 * time.Minute, true},
		{"Below min (30s)", 30 * time.Second, false},
		{"Zero", 0, false},
		{"Negative", -1 * time.Minute, false},
		{"Above max (31m)", 31 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.RunTimeout = tt.value

			err := config.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config, got error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected validation error for value %v", tt.value)
			}
		})
	}
}

func TestWorkerConfig_Validate_HealthPortTooLow(t *testing.T) {
	config := DefaultConfig()
	config.HealthPort = 1023

	err := config.Validate()
	if err == nil {
		t.Error("Expected validation error for HealthPort = 1023 (below 1024)")
	}
}

func TestWorkerConfig_Validate_HealthPortTooHigh(t *testing.T) {
	config := DefaultConfig()
	config.HealthPort = 65536

	err := config.Validate()
	if err == nil {
		t.Error("Expected validation error for HealthPort = 65536 (above 65535)")
	}
}

// globalTestMetrics is a shared metrics instance for tests to avoid
// duplicate Prometheus registration errors. In production, metrics are
// created once at startup, so this simulates that behavior.
var globalTestMetrics = NewWorkerMetrics()

// setEnv is a test helper that sets an environment variable and fails the test if it errors
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("Failed to set %s: %v", key, err)
	}
}

// unsetEnv is a test helper that unsets an environment variable and fails the test if it errors
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("Failed to unset %s: %v", key, err)
	}
}

func TestLoadConfigFromEnv_AllEnvVarsValid(t *testing.T) {
	setEnv(t, "WORKER_TIMEZONE", "UTC")
	setEnv(t, "RUN_TIMEOUT", "5m")
	setEnv(t, "WORKER_HEALTH_PORT", "8080")
	setEnv(t, "JOBS_CONFIG", "/etc/temple-notify/jobs.yaml")
	defer func() {
		unsetEnv(t, "WORKER_TIMEZONE")
		unsetEnv(t, "RUN_TIMEOUT")
		unsetEnv(t, "WORKER_HEALTH_PORT")
		unsetEnv(t, "JOBS_CONFIG")
	}()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	// Should not return error (fail-open strategy)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if config.Timezone != "UTC" {
		t.Errorf("Expected Timezone 'UTC', got '%s'", config.Timezone)
	}
	if config.RunTimeout != 5*time.Minute {
		t.Errorf("Expected RunTimeout 5m, got %v", config.RunTimeout)
	}
	if config.HealthPort != 8080 {
		t.Errorf("Expected HealthPort 8080, got %d", config.HealthPort)
	}
	if config.JobsFile != "/etc/temple-notify/jobs.yaml" {
		t.Errorf("Expected JobsFile to be set, got '%s'", config.JobsFile)
	}

	// No warnings should be logged
	if buf.Len() > 0 {
		t.Errorf("Expected no warnings, got: %s", buf.String())
	}
}

func TestLoadConfigFromEnv_MissingEnvVars(t *testing.T) {
	unsetEnv(t, "WORKER_TIMEZONE")
	unsetEnv(t, "RUN_TIMEOUT")
	unsetEnv(t, "WORKER_HEALTH_PORT")
	unsetEnv(t, "JOBS_CONFIG")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	// Should not return error (fail-open strategy)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	// Should use default values
	defaults := DefaultConfig()
	if config.Timezone != defaults.Timezone {
		t.Errorf("Expected default Timezone, got '%s'", config.Timezone)
	}
	if config.RunTimeout != defaults.RunTimeout {
		t.Errorf("Expected default RunTimeout, got %v", config.RunTimeout)
	}
	if config.HealthPort != defaults.HealthPort {
		t.Errorf("Expected default HealthPort, got %d", config.HealthPort)
	}

	// No warnings should be logged (missing env vars don't trigger fallback)
	if buf.Len() > 0 {
		t.Errorf("Expected no warnings, got: %s", buf.String())
	}
}

func TestLoadConfigFromEnv_InvalidTimezone(t *testing.T) {
	setEnv(t, "WORKER_TIMEZONE", "Not/AZone")
	defer unsetEnv(t, "WORKER_TIMEZONE")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error (fail-open), got: %v", err)
	}

	// Should fall back to default
	if config.Timezone != DefaultConfig().Timezone {
		t.Errorf("Expected fallback to default Timezone, got '%s'", config.Timezone)
	}

	// A warning should be logged
	if buf.Len() == 0 {
		t.Error("Expected a fallback warning to be logged")
	}
}

func TestLoadConfigFromEnv_InvalidRunTimeout(t *testing.T) {
	setEnv(t, "RUN_TIMEOUT", "2h")
	defer unsetEnv(t, "RUN_TIMEOUT")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error (fail-open), got: %v", err)
	}

	if config.RunTimeout != DefaultConfig().RunTimeout {
		t.Errorf("Expected fallback to default RunTimeout, got %v", config.RunTimeout)
	}

	if buf.Len() == 0 {
		t.Error("Expected a fallback warning to be logged")
	}
}

func TestLoadConfigFromEnv_UnparsableHealthPort(t *testing.T) {
	setEnv(t, "WORKER_HEALTH_PORT", "not-a-number")
	defer unsetEnv(t, "WORKER_HEALTH_PORT")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)

	if err != nil {
		t.Errorf("Expected no error (fail-open), got: %v", err)
	}

	if config.HealthPort != DefaultConfig().HealthPort {
		t.Errorf("Expected fallback to default HealthPort, got %d", config.HealthPort)
	}

	if buf.Len() == 0 {
		t.Error("Expected a fallback warning to be logged")
	}
}
