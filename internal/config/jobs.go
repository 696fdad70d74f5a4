// Package config holds the application-level configuration files: the
// jobs YAML describing the dispatch schedule and its display settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"temple-notify/internal/domain/entity"
	pkgconfig "temple-notify/internal/pkg/config"
	"temple-notify/internal/usecase/dispatch"
)

// JobsConfig represents the dispatch jobs configuration.
type JobsConfig struct {
	Jobs struct {
		// Community is the display name suffixed to occasion broadcast
		// titles.
		Community string `yaml:"community"`

		// Schedules maps a slot name to a cron expression overriding the
		// built-in schedule for that slot. Unknown slots are rejected.
		Schedules map[string]string `yaml:"schedules"`
	} `yaml:"jobs"`
}

// defaultCommunity is the community name used when no jobs file is
// provided or the file carries no name.
const defaultCommunity = "ISKCON Vesu"

// defaultSchedules holds the built-in cron expression per slot, in the
// worker timezone.
var defaultSchedules = map[string]string{
	dispatch.SlotToday6AM:    "30 6 * * *",
	dispatch.SlotToday7AM:    "0 7 * * *",
	dispatch.SlotToday730AM:  "30 7 * * *",
	dispatch.SlotTomorrow5PM: "0 17 * * *",
}

// Jobs returns the default job table: which occasion kind each slot
// dispatches and with which date offset.
func Jobs() []dispatch.Job {
	return []dispatch.Job{
		{Kind: entity.KindFestival, Slot: dispatch.SlotToday6AM, DayOffset: 0},
		{Kind: entity.KindBirthday, Slot: dispatch.SlotToday7AM, DayOffset: 0},
		{Kind: entity.KindAnniversary, Slot: dispatch.SlotToday730AM, DayOffset: 0},
		{Kind: entity.KindFestival, Slot: dispatch.SlotTomorrow5PM, DayOffset: 1},
	}
}

// DefaultJobsConfig returns a JobsConfig with the built-in community
// name and no schedule overrides.
func DefaultJobsConfig() *JobsConfig {
	var config JobsConfig
	config.Jobs.Community = defaultCommunity
	return &config
}

// LoadJobsConfig loads the jobs configuration from a YAML file. An empty
// path returns the defaults.
// The path parameter is expected to come from a trusted source (command-line argument or environment).
func LoadJobsConfig(path string) (*JobsConfig, error) {
	if path == "" {
		return DefaultJobsConfig(), nil
	}

	// #nosec G304 -- path is provided by trusted source (env or CLI arg), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs config file: %w", err)
	}

	var config JobsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse jobs config: %w", err)
	}

	if config.Jobs.Community == "" {
		config.Jobs.Community = defaultCommunity
	}

	if err := validateJobsConfig(&config); err != nil {
		return nil, fmt.Errorf("jobs config validation failed: %w", err)
	}

	return &config, nil
}

// validateJobsConfig validates the loaded configuration: every schedule
// override must name a known slot and parse as a cron expression.
func validateJobsConfig(config *JobsConfig) error {
	for slot, schedule := range config.Jobs.Schedules {
		if _, ok := defaultSchedules[slot]; !ok {
			return fmt.Errorf("unknown slot '%s'", slot)
		}
		if err := pkgconfig.ValidateCronSchedule(schedule); err != nil {
			return fmt.Errorf("slot '%s': %w", slot, err)
		}
	}
	return nil
}

// Community returns the configured community display name.
func (c *JobsConfig) Community() string {
	return c.Jobs.Community
}

// ScheduleFor returns the cron expression for a slot: the override from
// the file when present, the built-in schedule otherwise.
func (c *JobsConfig) ScheduleFor(slot string) string {
	if schedule, ok := c.Jobs.Schedules[slot]; ok {
		return schedule
	}
	return defaultSchedules[slot]
}
