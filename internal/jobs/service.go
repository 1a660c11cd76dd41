package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db"
	dbmodels "github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	pkgerrors "github.com/prylogi/logi-backend/pkg/errors"
	"github.com/prylogi/logi-backend/pkg/pagination"
)

// Service defines job-level operations exposed to the API surface.
type Service interface {
	Create(ctx context.Context, input CreateJobInput) (*dbmodels.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*dbmodels.Job, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*JobList, error)
}

type service struct {
	repo Repository
}

// NewService builds a jobs service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("jobs repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateJobInput) (*dbmodels.Job, error) {
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job reference required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.Origin) == "" || strings.TrimSpace(input.Destination) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin and destination required")
	}
	if input.AgreedPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agreed price cannot be negative")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = enums.CurrencyUSD.String()
	}
	if !enums.Currency(currency).IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency").
			WithDetails(map[string]any{"currency": currency})
	}

	job := &dbmodels.Job{
		Reference:           reference,
		CustomerName:        strings.TrimSpace(input.CustomerName),
		Origin:              strings.TrimSpace(input.Origin),
		Destination:         strings.TrimSpace(input.Destination),
		AgreedPrice:         input.AgreedPrice,
		Currency:            currency,
		ScheduledPickupAt:   input.ScheduledPickupAt,
		ScheduledDeliveryAt: input.ScheduledDeliveryAt,
	}

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "job reference already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create job")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*dbmodels.Job, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job")
	}
	return job, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*JobList, error) {
	if filters.CurrentStep != nil && !filters.CurrentStep.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tracking step filter").
			WithDetails(map[string]any{"step": filters.CurrentStep.String()})
	}
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list jobs")
	}
	return list, nil
}

// ProjectedStep resolves the job's current-step pointer, defaulting to the
// first catalog step when the job has never been advanced.
func ProjectedStep(job *dbmodels.Job) enums.TrackingStep {
	if job == nil || job.CurrentStep == nil {
		return enums.TrackingStepCreated
	}
	return *job.CurrentStep
}
