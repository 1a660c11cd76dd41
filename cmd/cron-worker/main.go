package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/prylogi/logi-backend/internal/attachments"
	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/internal/cleanup"
	"github.com/prylogi/logi-backend/internal/cron"
	"github.com/prylogi/logi-backend/pkg/bigquery"
	"github.com/prylogi/logi-backend/pkg/config"
	"github.com/prylogi/logi-backend/pkg/db"
	"github.com/prylogi/logi-backend/pkg/logger"
	"github.com/prylogi/logi-backend/pkg/metrics"
	"github.com/prylogi/logi-backend/pkg/migrate"
	"github.com/prylogi/logi-backend/pkg/redis"
	"github.com/prylogi/logi-backend/pkg/storage/gcs"
)

const lockKeyFormat = "logi:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs client", err)
		}
	}()

	bigqueryClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap bigquery", err)
		os.Exit(1)
	}
	defer func() {
		if err := bigqueryClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing bigquery client", err)
		}
	}()

	attachmentsRepo := attachments.NewRepository(dbClient.DB())
	deletionRecorder := audit.NewDeletionRecorder(dbClient.DB())
	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	reportWriter, err := cleanup.NewReportWriter(bigqueryClient, cfg.BigQuery.CleanupReportsTable, cleanup.RetryPolicy{})
	if err != nil {
		logg.Error(context.Background(), "failed to create report writer", err)
		os.Exit(1)
	}

	expiryJob, err := cleanup.NewExpiryJob(cleanup.ExpiryJobParams{
		Logger:    logg,
		Store:     attachmentsRepo,
		Objects:   gcsClient,
		Audit:     deletionRecorder,
		Reports:   reportWriter,
		Metrics:   metricsCollector,
		BatchSize: cfg.Cleanup.ExpiryBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create expiry job", err)
		os.Exit(1)
	}

	orphanJob, err := cleanup.NewOrphanJob(cleanup.OrphanJobParams{
		Logger:    logg,
		Store:     attachmentsRepo,
		Objects:   gcsClient,
		Audit:     deletionRecorder,
		Reports:   reportWriter,
		Metrics:   metricsCollector,
		Prefix:    cfg.Cleanup.OrphanPrefix,
		BatchSize: cfg.Cleanup.ExpiryBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orphan job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(expiryJob, orphanJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cleanup.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
