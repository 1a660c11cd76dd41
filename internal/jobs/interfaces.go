package jobs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/pagination"
)

// Repository defines persistence operations for shipment jobs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	FindByReference(ctx context.Context, reference string) (*models.Job, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*JobList, error)
	UpdateCurrentStep(ctx context.Context, jobID uuid.UUID, updates map[string]any) error
}
