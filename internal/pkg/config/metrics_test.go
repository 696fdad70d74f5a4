package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestNewConfigMetrics_Registration tests that metrics are registered correctly
func TestNewConfigMetrics_Registration(t *testing.T) {
	// Create metrics with unique component name to avoid conflicts
	metrics := NewConfigMetrics("test_component_registration")

	assert.NotNil(t, metrics.LoadTimestamp, "LoadTimestamp should be initialized")
	assert.NotNil(t, metrics.ValidationErrorsTotal, "ValidationErrorsTotal should be initialized")
	assert.NotNil(t, metrics.FallbacksTotal, "FallbacksTotal should be initialized")
	assert.NotNil(t, metrics.FallbackActive, "FallbackActive should be initialized")
}

// TestNewConfigMetrics_UniqueNames tests that different components create unique metrics
func TestNewConfigMetrics_UniqueNames(t *testing.T) {
	workerMetrics := NewConfigMetrics("test_scheduler")
	pushMetrics := NewConfigMetrics("test_push")

	assert.NotSame(t, workerMetrics.LoadTimestamp, pushMetrics.LoadTimestamp,
		"Different components should have different metric instances")

	// Both should be usable without panic
	workerMetrics.RecordLoadTimestamp()
	pushMetrics.RecordLoadTimestamp()
}

// TestRecordLoadTimestamp_UpdatesMetric tests that load timestamp is recorded
func TestRecordLoadTimestamp_UpdatesMetric(t *testing.T) {
	metrics := NewConfigMetrics("test_load_timestamp")

	metrics.RecordLoadTimestamp()

	value := testutil.ToFloat64(metrics.LoadTimestamp)
	assert.Greater(t, value, float64(0), "Load timestamp should be greater than 0")
}

// TestRecordValidationError_IncrementsCounter tests validation error recording
func TestRecordValidationError_IncrementsCounter(t *testing.T) {
	metrics := NewConfigMetrics("test_validation_error")

	initialValue := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("timezone"))
	assert.Equal(t, float64(0), initialValue, "Initial validation error count should be 0")

	metrics.RecordValidationError("timezone")

	newValue := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("timezone"))
	assert.Equal(t, float64(1), newValue, "Validation error count should be 1 after recording")

	metrics.RecordValidationError("timezone")

	finalValue := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("timezone"))
	assert.Equal(t, float64(2), finalValue, "Validation error count should be 2 after second recording")
}

// TestRecordFallback_TracksFieldAndKind tests fallback recording per label pair
func TestRecordFallback_TracksFieldAndKind(t *testing.T) {
	metrics := NewConfigMetrics("test_fallback")

	metrics.RecordFallback("timezone", "default")
	metrics.RecordFallback("run_timeout", "default")
	metrics.RecordFallback("timezone", "default")

	timezoneCount := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timezone", "default"))
	timeoutCount := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("run_timeout", "default"))

	assert.Equal(t, float64(2), timezoneCount, "Timezone fallback count should be 2")
	assert.Equal(t, float64(1), timeoutCount, "Run timeout fallback count should be 1")
}

// TestSetFallbackActive_TogglesGauge tests the fallback-active gauge
func TestSetFallbackActive_TogglesGauge(t *testing.T) {
	metrics := NewConfigMetrics("test_fallback_active")

	metrics.SetFallbackActive("", true)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbackActive))

	metrics.SetFallbackActive("", false)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.FallbackActive))
}
