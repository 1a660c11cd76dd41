package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/api/middleware"
	"github.com/prylogi/logi-backend/api/responses"
	"github.com/prylogi/logi-backend/api/validators"
	"github.com/prylogi/logi-backend/internal/tracking"
	"github.com/prylogi/logi-backend/pkg/enums"
	pkgerrors "github.com/prylogi/logi-backend/pkg/errors"
	"github.com/prylogi/logi-backend/pkg/logger"
)

// TrackingController handles status advancement and timeline reads.
type TrackingController struct {
	svc  tracking.Service
	logg *logger.Logger
}

func NewTrackingController(svc tracking.Service, logg *logger.Logger) *TrackingController {
	return &TrackingController{svc: svc, logg: logg}
}

type advanceRequest struct {
	Step      string     `json:"step" validate:"required"`
	Notes     *string    `json:"notes" validate:"omitempty,max=2000"`
	EventTime *time.Time `json:"event_time"`
}

func (c *TrackingController) Advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var req advanceRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	actorID, err := uuid.Parse(middleware.ActorIDFromContext(ctx))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing"))
		return
	}

	input := tracking.AdvanceInput{
		JobID:     jobID,
		Step:      enums.TrackingStep(req.Step),
		Notes:     req.Notes,
		ActorID:   actorID,
		ActorName: middleware.ActorNameFromContext(ctx),
	}
	if req.EventTime != nil {
		input.EventTime = *req.EventTime
	}

	result, err := c.svc.Advance(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, result)
}

func (c *TrackingController) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	events, err := c.svc.History(ctx, jobID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"events": events})
}

func (c *TrackingController) Timeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	view, err := c.svc.Timeline(ctx, jobID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, view)
}

func (c *TrackingController) RepairPointer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	step, err := c.svc.RepairPointer(ctx, jobID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"current_step": step})
}
