package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	appconfig "temple-notify/internal/config"
	pgRepo "temple-notify/internal/infra/adapter/persistence/postgres"
	"temple-notify/internal/infra/db"
	"temple-notify/internal/infra/push"
	workerPkg "temple-notify/internal/infra/worker"
	"temple-notify/internal/observability/logging"
	"temple-notify/internal/resilience/circuitbreaker"
	"temple-notify/internal/usecase/dispatch"
	"temple-notify/internal/usecase/occasion"
)

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM members LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.String("jobs_file", workerConfig.JobsFile))

	// Load the jobs file; a broken file means default schedules, not a
	// worker that silently never fires.
	jobsConfig, err := appconfig.LoadJobsConfig(workerConfig.JobsFile)
	if err != nil {
		logger.Warn("failed to load jobs config, using defaults", slog.Any("error", err))
		jobsConfig = appconfig.DefaultJobsConfig()
	}

	location, err := time.LoadLocation(workerConfig.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", slog.Any("error", err))
		os.Exit(1)
	}

	orchestrator := setupOrchestrator(logger, database, jobsConfig, location)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(ctx, logger, orchestrator, jobsConfig, workerConfig, workerMetrics, healthServer, location)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

// setupOrchestrator wires repositories, resolver, gateway, and dispatcher
// into a run orchestrator. All store access goes through the circuit
// breaker so a dead Postgres fails runs fast instead of hanging them.
func setupOrchestrator(logger *slog.Logger, database *sql.DB, jobsConfig *appconfig.JobsConfig, location *time.Location) *dispatch.Orchestrator {
	protected := circuitbreaker.NewDBCircuitBreaker(database)

	members := pgRepo.NewMemberRepo(protected)
	devices := pgRepo.NewDeviceRepo(protected)
	calendar := pgRepo.NewCalendarRepo(protected)
	ledger := pgRepo.NewNotificationRepo(protected)

	resolver := occasion.NewResolver(members, devices, calendar, location)
	gateway := setupGateway(logger)
	service := dispatch.NewService(ledger, devices, gateway, jobsConfig.Community(), logger)

	return dispatch.NewOrchestrator(resolver, service, ledger, location, logger)
}

// setupGateway creates the push gateway from environment configuration.
// Missing credentials fall back to the noop gateway so local runs against
// production data never reach real devices.
//
// Environment variables:
//   - PUSH_ENABLED: "false" disables delivery entirely (default: enabled)
//   - FCM_CREDENTIALS_FILE: Path to the service account JSON key
//   - FCM_PROJECT_ID: Overrides the project ID from the key file
func setupGateway(logger *slog.Logger) dispatch.Gateway {
	if os.Getenv("PUSH_ENABLED") == "false" {
		logger.Info("push delivery disabled, using noop gateway")
		return push.NewNoopGateway()
	}

	credentialsFile := os.Getenv("FCM_CREDENTIALS_FILE")
	if credentialsFile == "" {
		logger.Warn("FCM_CREDENTIALS_FILE not set, using noop gateway")
		return push.NewNoopGateway()
	}

	account, err := loadServiceAccount(credentialsFile)
	if err != nil {
		logger.Error("failed to load FCM credentials, using noop gateway", slog.Any("error", err))
		return push.NewNoopGateway()
	}

	projectID := account.ProjectID
	if override := os.Getenv("FCM_PROJECT_ID"); override != "" {
		projectID = override
	}
	if projectID == "" {
		logger.Error("FCM project ID missing from credentials and environment, using noop gateway")
		return push.NewNoopGateway()
	}

	tokens := push.NewServiceAccountTokenSource(account, nil)
	logger.Info("FCM gateway initialized", slog.String("project_id", projectID))
	return push.NewFCMClient(push.FCMConfig{ProjectID: projectID}, tokens)
}

// loadServiceAccount reads a Google service account JSON key file.
func loadServiceAccount(path string) (push.ServiceAccount, error) {
	// #nosec G304 -- path is provided by trusted source (env), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return push.ServiceAccount{}, fmt.Errorf("read credentials file: %w", err)
	}
	return push.ParseServiceAccount(data)
}

// startCronWorker registers the four dispatch jobs with the cron
// scheduler and blocks until shutdown. Every job runs under the
// configured run timeout; a run that overruns is cancelled and its
// remaining sends are picked up as already-recorded or fresh keys on the
// next scheduled slot.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	orchestrator *dispatch.Orchestrator,
	jobsConfig *appconfig.JobsConfig,
	workerConfig *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
	location *time.Location,
) {
	scheduler := cron.New(cron.WithLocation(location))

	for _, job := range appconfig.Jobs() {
		job := job
		schedule := jobsConfig.ScheduleFor(job.Slot)
		_, err := scheduler.AddFunc(schedule, func() {
			runJob(ctx, logger, orchestrator, job, workerConfig.RunTimeout, metrics)
		})
		if err != nil {
			logger.Error("failed to schedule job",
				slog.String("slot", job.Slot),
				slog.String("schedule", schedule),
				slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("job scheduled",
			slog.String("kind", job.Kind),
			slog.String("slot", job.Slot),
			slog.String("schedule", schedule))
	}

	scheduler.Start()
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("timezone", location.String()))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("worker shutting down")

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("worker stopped")
	case <-time.After(workerConfig.RunTimeout):
		logger.Warn("worker stop timed out with jobs still running")
	}
}

// runJob executes one dispatch run under the run timeout and records
// scheduler metrics for it.
func runJob(
	ctx context.Context,
	logger *slog.Logger,
	orchestrator *dispatch.Orchestrator,
	job dispatch.Job,
	timeout time.Duration,
	metrics *workerPkg.WorkerMetrics,
) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stats := orchestrator.Run(runCtx, job)
	metrics.RecordJobDuration(time.Since(start).Seconds())

	if stats.StoreOK {
		metrics.RecordJobRun(job.Slot, "success")
		metrics.RecordLastSuccess(job.Slot)
	} else {
		metrics.RecordJobRun(job.Slot, "failure")
	}

	logger.Info("scheduled job finished",
		slog.String("slot", job.Slot),
		slog.Bool("store_ok", stats.StoreOK),
		slog.Int("todays_count", stats.TodaysCount))
}
