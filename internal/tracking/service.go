package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/internal/retention"
	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	pkgerrors "github.com/prylogi/logi-backend/pkg/errors"
	"github.com/prylogi/logi-backend/pkg/logger"
)

type jobStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateCurrentStep(ctx context.Context, jobID uuid.UUID, updates map[string]any) error
}

// RetentionApplier schedules attachment cleanup when a job first reaches the
// terminal step.
type RetentionApplier interface {
	Apply(ctx context.Context, jobID uuid.UUID, completedAt time.Time) (*retention.Report, error)
}

// Service defines the tracking operations exposed to the API surface.
type Service interface {
	Advance(ctx context.Context, input AdvanceInput) (*AdvanceResult, error)
	History(ctx context.Context, jobID uuid.UUID) ([]EventView, error)
	Timeline(ctx context.Context, jobID uuid.UUID) (*TimelineView, error)
	RepairPointer(ctx context.Context, jobID uuid.UUID) (enums.TrackingStep, error)
}

type service struct {
	repo      Repository
	jobs      jobStore
	retention RetentionApplier
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds a tracking service with the required dependencies.
func NewService(repo Repository, jobs jobStore, retention RetentionApplier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tracking repository required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job store required")
	}
	if retention == nil {
		return nil, fmt.Errorf("retention applier required")
	}
	return &service{
		repo:      repo,
		jobs:      jobs,
		retention: retention,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Advance appends a status event and moves the job's current-step pointer.
// Any catalog step is accepted regardless of the current pointer; corrections
// that move backwards, skips, and repeats of the same step are all legal and
// all leave an audit entry. The event append and the pointer update are
// separate writes; if the pointer write fails the event still stands and
// RepairPointer reconciles later.
func (s *service) Advance(ctx context.Context, input AdvanceInput) (*AdvanceResult, error) {
	if input.JobID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}
	if !input.Step.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown tracking step").
			WithDetails(map[string]any{"step": input.Step.String()})
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if strings.TrimSpace(input.ActorName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor name required")
	}

	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job")
	}

	eventTime := input.EventTime
	if eventTime.IsZero() {
		eventTime = s.now()
	}

	event := &models.TrackingEvent{
		JobID:     job.ID,
		Step:      input.Step,
		StepRank:  input.Step.Rank(),
		Notes:     input.Notes,
		ActorID:   input.ActorID,
		ActorName: input.ActorName,
		EventTime: eventTime,
	}
	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append tracking event")
	}

	updates := map[string]any{"current_step": input.Step}

	firstTerminal := input.Step == enums.TrackingStepTerminal && job.TerminalCompletedAt == nil
	completedAt := s.now()
	if firstTerminal {
		updates["terminal_completed_at"] = completedAt
	}

	if err := s.jobs.UpdateCurrentStep(ctx, job.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update current step")
	}

	result := &AdvanceResult{
		Event:       toEventView(*created),
		CurrentStep: input.Step,
	}

	if firstTerminal {
		report, err := s.retention.Apply(ctx, job.ID, completedAt)
		if err != nil && s.logg != nil {
			fields := map[string]any{"job_id": job.ID.String()}
			s.logg.Error(s.logg.WithFields(ctx, fields), "retention.partial_failure", err)
		}
		result.Retention = report
	}

	return result, nil
}

func (s *service) History(ctx context.Context, jobID uuid.UUID) ([]EventView, error) {
	if jobID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}
	events, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tracking events")
	}
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, toEventView(event))
	}
	return views, nil
}

func (s *service) Timeline(ctx context.Context, jobID uuid.UUID) (*TimelineView, error) {
	if jobID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job")
	}

	events, err := s.History(ctx, jobID)
	if err != nil {
		return nil, err
	}

	current := enums.TrackingStepCreated
	if job.CurrentStep != nil {
		current = *job.CurrentStep
	}

	return &TimelineView{
		JobID:       job.ID,
		CurrentStep: current,
		Timeline:    ProjectTimeline(job.CurrentStep),
		Events:      events,
	}, nil
}

// RepairPointer re-derives the current-step pointer from the newest event in
// the log. Used when an advance appended its event but crashed before the
// pointer write landed.
func (s *service) RepairPointer(ctx context.Context, jobID uuid.UUID) (enums.TrackingStep, error) {
	if jobID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}

	if _, err := s.jobs.FindByID(ctx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job")
	}

	latest, err := s.repo.FindLatestByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No events yet; the unset pointer already projects correctly.
			return enums.TrackingStepCreated, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest event")
	}

	updates := map[string]any{"current_step": latest.Step}
	if err := s.jobs.UpdateCurrentStep(ctx, jobID, updates); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update current step")
	}
	return latest.Step, nil
}

func toEventView(event models.TrackingEvent) EventView {
	return EventView{
		ID:        event.ID,
		Step:      event.Step,
		StepRank:  event.StepRank,
		Notes:     event.Notes,
		ActorID:   event.ActorID,
		ActorName: event.ActorName,
		EventTime: event.EventTime,
		CreatedAt: event.CreatedAt,
	}
}
