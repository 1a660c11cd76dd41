package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/prylogi/logi-backend/api/routes"
	"github.com/prylogi/logi-backend/internal/attachments"
	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/internal/jobs"
	"github.com/prylogi/logi-backend/internal/retention"
	"github.com/prylogi/logi-backend/internal/tracking"
	"github.com/prylogi/logi-backend/pkg/bigquery"
	"github.com/prylogi/logi-backend/pkg/config"
	"github.com/prylogi/logi-backend/pkg/db"
	"github.com/prylogi/logi-backend/pkg/logger"
	"github.com/prylogi/logi-backend/pkg/migrate"
	"github.com/prylogi/logi-backend/pkg/redis"
	"github.com/prylogi/logi-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	jobsRepo := jobs.NewRepository(dbClient.DB())
	trackingRepo := tracking.NewRepository(dbClient.DB())
	attachmentsRepo := attachments.NewRepository(dbClient.DB())
	deletionRecorder := audit.NewDeletionRecorder(dbClient.DB())

	retentionEngine, err := retention.NewEngine(attachmentsRepo, cfg.Retention, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create retention engine", err)
		os.Exit(1)
	}

	jobsService, err := jobs.NewService(jobsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create jobs service", err)
		os.Exit(1)
	}
	trackingService, err := tracking.NewService(trackingRepo, jobsRepo, retentionEngine, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking service", err)
		os.Exit(1)
	}
	attachmentsService, err := attachments.NewService(attachmentsRepo, jobsRepo, gcsClient, deletionRecorder, cfg.Upload, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create attachments service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			bigqueryClient,
			jobsService,
			trackingService,
			attachmentsService,
			deletionRecorder,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
