package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/observability/logging"
	"temple-notify/internal/observability/tracing"
	"temple-notify/internal/pkg/localdate"
	"temple-notify/internal/repository"
	"temple-notify/internal/usecase/occasion"
)

// Dispatch slots. Each slot runs at most once per calendar day; the slot
// name is part of every ledger key written during its run.
const (
	SlotToday6AM    = "today_6am"
	SlotToday7AM    = "today_7am"
	SlotToday730AM  = "today_730am"
	SlotTomorrow5PM = "tomorrow_5pm"
)

// storePingTimeout bounds the pre-run ledger connectivity check.
const storePingTimeout = 15 * time.Second

// Job describes one scheduled dispatch: which occasion kind to resolve
// and under which slot to record it. DayOffset shifts the target date
// relative to today (0 for today's occasions, +1 for tomorrow's
// festivals).
type Job struct {
	Kind      string
	Slot      string
	DayOffset int
}

// Orchestrator executes complete dispatch runs: store check, resolution,
// both send lanes, and the run summary record.
type Orchestrator struct {
	resolver *occasion.Resolver
	service  *Service
	ledger   repository.NotificationLedger
	zone     *time.Location
	logger   *slog.Logger
}

// NewOrchestrator wires a run orchestrator.
func NewOrchestrator(
	resolver *occasion.Resolver,
	service *Service,
	ledger repository.NotificationLedger,
	zone *time.Location,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		service:  service,
		ledger:   ledger,
		zone:     zone,
		logger:   logger,
	}
}

// Run executes one dispatch job to completion. It never returns an
// error: every failure mode ends in a summary record and run stats, so a
// scheduler loop cannot crash on a bad run. An unreachable ledger aborts
// before any send with StoreOK false and zero sends.
func (o *Orchestrator) Run(ctx context.Context, job Job) *RunStats {
	runID := uuid.NewString()
	target := localdate.Today(o.zone).AddDays(job.DayOffset)

	ctx, span := tracing.GetTracer().Start(ctx, "dispatch.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.kind", job.Kind),
		attribute.String("dispatch.slot", job.Slot),
		attribute.String("dispatch.date", target.String()),
		attribute.String("dispatch.run_id", runID),
	)

	stats := &RunStats{
		RunID:     runID,
		Kind:      job.Kind,
		Slot:      job.Slot,
		Date:      target.String(),
		StoreOK:   true,
		StartedAt: time.Now(),
	}
	logger := logging.WithRun(o.logger, runID, job.Kind, job.Slot).
		With(slog.String("date", target.String()))
	logger.InfoContext(ctx, "dispatch run started")

	pingCtx, cancel := context.WithTimeout(ctx, storePingTimeout)
	err := o.ledger.Ping(pingCtx)
	cancel()
	if err != nil {
		// Without the ledger no send can be made idempotent; abort with
		// zero sends rather than risk duplicates.
		stats.StoreOK = false
		logger.ErrorContext(ctx, "notification store unreachable, aborting run",
			slog.String("error", err.Error()),
		)
		o.finish(ctx, logger, stats)
		return stats
	}

	switch job.Kind {
	case entity.KindBirthday:
		o.runBirthdays(ctx, logger, job, target, stats)
	case entity.KindAnniversary:
		o.runAnniversaries(ctx, logger, job, target, stats)
	case entity.KindFestival:
		o.runFestivals(ctx, logger, job, target, stats)
	default:
		logger.ErrorContext(ctx, "unknown occasion kind")
	}

	o.finish(ctx, logger, stats)
	return stats
}

func (o *Orchestrator) runBirthdays(ctx context.Context, logger *slog.Logger, job Job, target localdate.LocalDate, stats *RunStats) {
	recipients, scanned, err := o.resolver.ResolveBirthdays(ctx, target)
	if err != nil {
		logger.ErrorContext(ctx, "birthday resolution failed", slog.String("error", err.Error()))
		return
	}
	stats.TotalCandidates = scanned
	stats.TodaysCount = len(recipients)

	o.service.BroadcastOccasion(ctx, job.Kind, job.Slot, target.String(), recipients, stats)
	o.service.SendPersonalWishes(ctx, job.Kind, job.Slot, target.String(), recipients, stats)
}

func (o *Orchestrator) runAnniversaries(ctx context.Context, logger *slog.Logger, job Job, target localdate.LocalDate, stats *RunStats) {
	entries, scanned, err := o.resolver.ResolveAnniversaries(ctx, target)
	if err != nil {
		logger.ErrorContext(ctx, "anniversary resolution failed", slog.String("error", err.Error()))
		return
	}
	stats.TotalCandidates = scanned
	stats.TodaysCount = len(entries)

	// The broadcast lists couples once; the personal lane still wishes
	// each registered spouse individually.
	broadcast := occasion.PairForBroadcast(entries)
	personal := make([]entity.Recipient, 0, len(entries))
	for _, e := range entries {
		personal = append(personal, e.Recipient)
	}

	o.service.BroadcastOccasion(ctx, job.Kind, job.Slot, target.String(), broadcast, stats)
	o.service.SendPersonalWishes(ctx, job.Kind, job.Slot, target.String(), personal, stats)
}

func (o *Orchestrator) runFestivals(ctx context.Context, logger *slog.Logger, job Job, target localdate.LocalDate, stats *RunStats) {
	events, candidates, err := o.resolver.ResolveFestivals(ctx, target)
	if err != nil {
		logger.ErrorContext(ctx, "festival resolution failed", slog.String("error", err.Error()))
		return
	}
	stats.TotalCandidates = candidates
	stats.TodaysCount = len(events)

	o.service.BroadcastFestival(ctx, job.Slot, target.String(), events, stats)
}

// finish stamps the end time, writes the run summary record, and emits
// the closing log line and metrics. The summary write is best-effort: it
// must not fail a run whose sends already happened.
func (o *Orchestrator) finish(ctx context.Context, logger *slog.Logger, stats *RunStats) {
	stats.EndedAt = time.Now()

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		logger.ErrorContext(ctx, "run stats marshal failed", slog.String("error", err.Error()))
		statsJSON = []byte("{}")
	}
	detailsJSON, err := json.Marshal(stats.Details)
	if err != nil {
		logger.ErrorContext(ctx, "run details marshal failed", slog.String("error", err.Error()))
		detailsJSON = []byte("[]")
	}

	rec := &entity.NotificationRecord{
		Key: entity.NotificationKey{
			Kind:      stats.Kind,
			Topic:     entity.TopicRun,
			Slot:      stats.Slot,
			EventDate: stats.Date,
			EventID:   entity.EventIDSummary,
		},
		Status:  entity.StatusCompleted,
		Stats:   statsJSON,
		Details: detailsJSON,
	}
	o.service.bestEffort(ctx, "upsert run summary", func(ctx context.Context) error {
		return o.ledger.UpsertSummary(ctx, rec)
	})

	duration := stats.EndedAt.Sub(stats.StartedAt)
	recordRun(stats, duration)
	logger.InfoContext(ctx, "dispatch run finished",
		slog.Bool("store_ok", stats.StoreOK),
		slog.Int("todays_count", stats.TodaysCount),
		slog.Int("broadcast_sent", stats.BroadcastSent),
		slog.Int("personal_sent", stats.PersonalSent),
		slog.Int("failed", stats.BroadcastFailed+stats.PersonalFailed),
		slog.Duration("duration", duration),
	)
}
