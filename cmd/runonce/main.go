// Command runonce executes every dispatch job once for the current date
// and exits. It is the local development and backfill entry point: since
// each job writes into a disjoint ledger key space, all jobs run
// concurrently and a re-execution after a crash only sends what the
// previous attempt did not record.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	appconfig "temple-notify/internal/config"
	pgRepo "temple-notify/internal/infra/adapter/persistence/postgres"
	"temple-notify/internal/infra/db"
	"temple-notify/internal/infra/push"
	"temple-notify/internal/observability/logging"
	"temple-notify/internal/pkg/localdate"
	"temple-notify/internal/resilience/circuitbreaker"
	"temple-notify/internal/usecase/dispatch"
	"temple-notify/internal/usecase/occasion"
)

const runTimeout = 10 * time.Minute

func main() {
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	jobsConfig, err := appconfig.LoadJobsConfig(os.Getenv("JOBS_CONFIG"))
	if err != nil {
		logger.Warn("failed to load jobs config, using defaults", slog.Any("error", err))
		jobsConfig = appconfig.DefaultJobsConfig()
	}

	location := localdate.Zone()
	protected := circuitbreaker.NewDBCircuitBreaker(database)
	members := pgRepo.NewMemberRepo(protected)
	devices := pgRepo.NewDeviceRepo(protected)
	calendar := pgRepo.NewCalendarRepo(protected)
	ledger := pgRepo.NewNotificationRepo(protected)

	resolver := occasion.NewResolver(members, devices, calendar, location)

	// Local runs use the noop gateway unless credentials are explicitly
	// provided, so a developer cannot accidentally notify real devices.
	var gateway dispatch.Gateway = push.NewNoopGateway()
	if credentialsFile := os.Getenv("FCM_CREDENTIALS_FILE"); credentialsFile != "" {
		gateway = setupFCMGateway(logger, credentialsFile)
	} else {
		logger.Info("no FCM credentials configured, sends are no-ops")
	}

	service := dispatch.NewService(ledger, devices, gateway, jobsConfig.Community(), logger)
	orchestrator := dispatch.NewOrchestrator(resolver, service, ledger, location, logger)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	for _, job := range appconfig.Jobs() {
		job := job
		group.Go(func() error {
			stats := orchestrator.Run(ctx, job)
			logger.Info("job finished",
				slog.String("kind", job.Kind),
				slog.String("slot", job.Slot),
				slog.Bool("store_ok", stats.StoreOK),
				slog.Int("todays_count", stats.TodaysCount),
				slog.Int("broadcast_sent", stats.BroadcastSent),
				slog.Int("personal_sent", stats.PersonalSent))
			return nil
		})
	}
	_ = group.Wait()
}

func setupFCMGateway(logger *slog.Logger, credentialsFile string) dispatch.Gateway {
	// #nosec G304 -- path is provided by trusted source (env), not user input
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		logger.Error("failed to read FCM credentials, sends are no-ops", slog.Any("error", err))
		return push.NewNoopGateway()
	}

	account, err := push.ParseServiceAccount(data)
	if err != nil {
		logger.Error("failed to parse FCM credentials, sends are no-ops", slog.Any("error", err))
		return push.NewNoopGateway()
	}

	tokens := push.NewServiceAccountTokenSource(account, nil)
	logger.Info("FCM gateway initialized", slog.String("project_id", account.ProjectID))
	return push.NewFCMClient(push.FCMConfig{ProjectID: account.ProjectID}, tokens)
}
