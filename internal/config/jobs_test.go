package config

import (
	"os"
	"path/filepath"
	"testing"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/usecase/dispatch"
)

func TestLoadJobsConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "jobs-config-test")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		validate    func(*testing.T, *JobsConfig)
	}{
		{
			name: "valid config with overrides",
			configYAML: `jobs:
  community: "ISKCON Juhu"
  schedules:
    today_7am: "15 7 * * *"
    tomorrow_5pm: "30 17 * * *"
`,
			expectError: false,
			validate: func(t *testing.T, config *JobsConfig) {
				if config.Community() != "ISKCON Juhu" {
					t.Errorf("expected community 'ISKCON Juhu', got '%s'", config.Community())
				}
				if got := config.ScheduleFor(dispatch.SlotToday7AM); got != "15 7 * * *" {
					t.Errorf("expected override '15 7 * * *', got '%s'", got)
				}
				if got := config.ScheduleFor(dispatch.SlotTomorrow5PM); got != "30 17 * * *" {
					t.Errorf("expected override '30 17 * * *', got '%s'", got)
				}
				// Slots without an override keep the built-in schedule
				if got := config.ScheduleFor(dispatch.SlotToday6AM); got != "30 6 * * *" {
					t.Errorf("expected built-in schedule '30 6 * * *', got '%s'", got)
				}
			},
		},
		{
			name: "missing community falls back to default",
			configYAML: `jobs:
  schedules:
    today_6am: "0 6 * * *"
`,
			expectError: false,
			validate: func(t *testing.T, config *JobsConfig) {
				if config.Community() != "ISKCON Vesu" {
					t.Errorf("expected default community, got '%s'", config.Community())
				}
			},
		},
		{
			name: "unknown slot rejected",
			configYAML: `jobs:
  schedules:
    midnight: "0 0 * * *"
`,
			expectError: true,
		},
		{
			name: "invalid cron expression rejected",
			configYAML: `jobs:
  schedules:
    today_7am: "not a cron"
`,
			expectError: true,
		},
		{
			name:        "malformed yaml rejected",
			configYAML:  "jobs: [this is: not yaml",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "jobs.yaml")
			if err := os.WriteFile(path, []byte(tt.configYAML), 0o600); err != nil {
				t.Fatal(err)
			}

			config, err := LoadJobsConfig(path)

			if tt.expectError {
				if err == nil {
					t.Error("expected an error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, config)
			}
		})
	}
}

func TestLoadJobsConfig_EmptyPath(t *testing.T) {
	config, err := LoadJobsConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Community() != "ISKCON Vesu" {
		t.Errorf("expected default community, got '%s'", config.Community())
	}
	if got := config.ScheduleFor(dispatch.SlotToday730AM); got != "30 7 * * *" {
		t.Errorf("expected built-in schedule '30 7 * * *', got '%s'", got)
	}
}

func TestLoadJobsConfig_MissingFile(t *testing.T) {
	_, err := LoadJobsConfig("/nonexistent/jobs.yaml")
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestJobs_Table(t *testing.T) {
	jobs := Jobs()

	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobs))
	}

	// The tomorrow slot is the only one looking a day ahead
	for _, job := range jobs {
		wantOffset := 0
		if job.Slot == dispatch.SlotTomorrow5PM {
			wantOffset = 1
		}
		if job.DayOffset != wantOffset {
			t.Errorf("slot %s: expected day offset %d, got %d", job.Slot, wantOffset, job.DayOffset)
		}
	}

	// Both festival slots dispatch the festival kind
	kinds := map[string]string{}
	for _, job := range jobs {
		kinds[job.Slot] = job.Kind
	}
	if kinds[dispatch.SlotToday6AM] != entity.KindFestival {
		t.Errorf("expected festival kind for %s, got %s", dispatch.SlotToday6AM, kinds[dispatch.SlotToday6AM])
	}
	if kinds[dispatch.SlotToday7AM] != entity.KindBirthday {
		t.Errorf("expected birthday kind for %s, got %s", dispatch.SlotToday7AM, kinds[dispatch.SlotToday7AM])
	}
	if kinds[dispatch.SlotToday730AM] != entity.KindAnniversary {
		t.Errorf("expected anniversary kind for %s, got %s", dispatch.SlotToday730AM, kinds[dispatch.SlotToday730AM])
	}
	if kinds[dispatch.SlotTomorrow5PM] != entity.KindFestival {
		t.Errorf("expected festival kind for %s, got %s", dispatch.SlotTomorrow5PM, kinds[dispatch.SlotTomorrow5PM])
	}
}
