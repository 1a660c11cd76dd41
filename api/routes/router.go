package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prylogi/logi-backend/api/controllers"
	"github.com/prylogi/logi-backend/api/middleware"
	"github.com/prylogi/logi-backend/internal/attachments"
	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/internal/jobs"
	"github.com/prylogi/logi-backend/internal/tracking"
	"github.com/prylogi/logi-backend/pkg/bigquery"
	"github.com/prylogi/logi-backend/pkg/config"
	"github.com/prylogi/logi-backend/pkg/db"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/logger"
	"github.com/prylogi/logi-backend/pkg/redis"
	"github.com/prylogi/logi-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redis.Pinger,
	gcsClient gcs.Pinger,
	bigqueryClient bigquery.Pinger,
	jobsService jobs.Service,
	trackingService tracking.Service,
	attachmentsService attachments.Service,
	deletionRecorder audit.DeletionRecorder,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	health := controllers.NewHealthController(logg, map[string]controllers.Pinger{
		"postgres": dbP,
		"redis":    redisClient,
		"gcs":      gcsClient,
		"bigquery": bigqueryClient,
	})
	jobsController := controllers.NewJobsController(jobsService, logg)
	trackingController := controllers.NewTrackingController(trackingService, logg)
	attachmentsController := controllers.NewAttachmentsController(attachmentsService, deletionRecorder, cfg.Upload, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", health.Live)
		r.Get("/ready", health.Ready)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobsController.List)
			r.With(middleware.RequireMutator(logg)).Post("/", jobsController.Create)

			r.Route("/{jobID}", func(r chi.Router) {
				r.Get("/", jobsController.Get)

				r.Route("/tracking", func(r chi.Router) {
					r.Get("/", trackingController.Timeline)
					r.Get("/events", trackingController.History)
					r.With(middleware.RequireMutator(logg)).Post("/events", trackingController.Advance)
					r.With(middleware.RequireRole(string(enums.ActorRoleAdmin), logg)).Post("/repair", trackingController.RepairPointer)
				})

				r.Route("/attachments", func(r chi.Router) {
					r.Get("/", attachmentsController.List)
					r.With(middleware.RequireMutator(logg)).Post("/", attachmentsController.Upload)
				})

				r.Get("/deletions", attachmentsController.Deletions)
			})
		})

		r.Route("/attachments/{attachmentID}", func(r chi.Router) {
			r.Get("/url", attachmentsController.DownloadURL)
			r.With(middleware.RequireMutator(logg)).Delete("/", attachmentsController.Delete)
		})
	})

	return r
}
