package tracking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tracking repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEvent(ctx context.Context, event *models.TrackingEvent) (*models.TrackingEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// ListByJob returns the full history for a job ordered by catalog rank, then
// append time, then id. Stored ranks drive the order; they are never
// recomputed from the catalog.
func (r *repository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.TrackingEvent, error) {
	var events []models.TrackingEvent
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("step_rank ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// FindLatestByJob returns the most recently appended event regardless of rank.
func (r *repository) FindLatestByJob(ctx context.Context, jobID uuid.UUID) (*models.TrackingEvent, error) {
	var event models.TrackingEvent
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Order("id DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
