package worker

import (
	"fmt"
	"log/slog"
	"time"

	"temple-notify/internal/pkg/config"
	"temple-notify/internal/pkg/localdate"
)

// WorkerConfig holds the configuration for the scheduler component: the
// timezone the cron expressions are evaluated in, the per-run timeout,
// the health server port, and the path of the optional jobs YAML file.
//
// All fields have defaults and validation rules; loading is fail-open so
// the worker can operate on defaults even with broken configuration.
type WorkerConfig struct {
	// Timezone is the IANA timezone name for cron scheduling and date
	// matching. The product operates on a fixed community timezone, so
	// overriding this is only useful in tests and staging.
	// Default: "Asia/Kolkata"
	Timezone string

	// RunTimeout is the maximum duration of a single dispatch run.
	// After this timeout the run's context is cancelled; already-written
	// ledger records keep a re-run idempotent.
	// Range: 1m-30m. Default: 10 minutes
	RunTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535. Default: 9091
	HealthPort int

	// JobsFile is the path of the optional jobs YAML file with per-slot
	// schedule overrides. Empty means built-in schedules only.
	JobsFile string
}

// DefaultConfig returns a WorkerConfig with production defaults: the
// community timezone, a 10 minute run timeout, and the common exporter
// port for health checks.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		Timezone:   localdate.ProductZone,
		RunTimeout: 10 * time.Minute,
		HealthPort: 9091,
	}
}

// Validate checks the configuration values using the validators from
// internal/pkg/config. All errors are collected and returned together.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateDuration(c.RunTimeout, time.Minute, 30*time.Minute); err != nil {
		errors = append(errors, fmt.Errorf("run timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment
// variables with validation and automatic fallback to defaults on
// failure (fail-open strategy: it never returns an error).
//
// Environment variables:
//   - WORKER_TIMEZONE: IANA timezone name (default: "Asia/Kolkata")
//   - RUN_TIMEOUT: Duration string 1m-30m, e.g. "10m" (default: 10 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//   - JOBS_CONFIG: Path to the jobs YAML file (default: none)
//
// Fallbacks are logged and recorded on the worker metrics so operators
// can see a deployment running on defaults.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "Timezone"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 30*time.Minute)
	})
	cfg.RunTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("run_timeout")
		metrics.RecordFallback("run_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "RunTimeout"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	cfg.JobsFile = config.LoadEnvString("JOBS_CONFIG", cfg.JobsFile)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
