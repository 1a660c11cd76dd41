package tracking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db/models"
)

// Repository defines persistence operations for the append-only event log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEvent(ctx context.Context, event *models.TrackingEvent) (*models.TrackingEvent, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.TrackingEvent, error)
	FindLatestByJob(ctx context.Context, jobID uuid.UUID) (*models.TrackingEvent, error)
}
