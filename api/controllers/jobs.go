package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prylogi/logi-backend/api/responses"
	"github.com/prylogi/logi-backend/api/validators"
	"github.com/prylogi/logi-backend/internal/jobs"
	"github.com/prylogi/logi-backend/pkg/enums"
	pkgerrors "github.com/prylogi/logi-backend/pkg/errors"
	"github.com/prylogi/logi-backend/pkg/logger"
	"github.com/prylogi/logi-backend/pkg/pagination"
)

// JobsController handles the shipment job endpoints.
type JobsController struct {
	svc  jobs.Service
	logg *logger.Logger
}

func NewJobsController(svc jobs.Service, logg *logger.Logger) *JobsController {
	return &JobsController{svc: svc, logg: logg}
}

type createJobRequest struct {
	Reference           string     `json:"reference" validate:"required,max=64"`
	CustomerName        string     `json:"customer_name" validate:"required,max=255"`
	Origin              string     `json:"origin" validate:"required,max=255"`
	Destination         string     `json:"destination" validate:"required,max=255"`
	AgreedPrice         string     `json:"agreed_price" validate:"required"`
	Currency            string     `json:"currency" validate:"omitempty,len=3"`
	ScheduledPickupAt   *time.Time `json:"scheduled_pickup_at"`
	ScheduledDeliveryAt *time.Time `json:"scheduled_delivery_at"`
}

func (c *JobsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createJobRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	price, err := decimal.NewFromString(req.AgreedPrice)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "agreed price must be a decimal string").
			WithDetails(map[string]any{"field": "agreed_price"}))
		return
	}

	job, err := c.svc.Create(ctx, jobs.CreateJobInput{
		Reference:           req.Reference,
		CustomerName:        req.CustomerName,
		Origin:              req.Origin,
		Destination:         req.Destination,
		AgreedPrice:         price,
		Currency:            req.Currency,
		ScheduledPickupAt:   req.ScheduledPickupAt,
		ScheduledDeliveryAt: req.ScheduledDeliveryAt,
	})
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, job)
}

func (c *JobsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	job, err := c.svc.Get(ctx, jobID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, job)
}

func (c *JobsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	filters, err := parseJobFilters(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	params := pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	list, err := c.svc.List(ctx, params, *filters)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, list)
}

func parseJobFilters(r *http.Request) (*jobs.ListFilters, error) {
	query := r.URL.Query()
	filters := &jobs.ListFilters{
		Query: strings.TrimSpace(query.Get("q")),
	}

	if raw := strings.TrimSpace(query.Get("step")); raw != "" {
		step := enums.TrackingStep(raw)
		filters.CurrentStep = &step
	}
	if raw := strings.TrimSpace(query.Get("terminal")); raw != "" {
		terminal, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "terminal filter must be a boolean").
				WithDetails(map[string]any{"field": "terminal"})
		}
		filters.Terminal = &terminal
	}
	if raw := strings.TrimSpace(query.Get("date_from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_from must be RFC3339").
				WithDetails(map[string]any{"field": "date_from"})
		}
		filters.DateFrom = &from
	}
	if raw := strings.TrimSpace(query.Get("date_to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_to must be RFC3339").
				WithDetails(map[string]any{"field": "date_to"})
		}
		filters.DateTo = &to
	}
	return filters, nil
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
