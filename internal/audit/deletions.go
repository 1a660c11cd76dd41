package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
)

// DeletionEntry captures one physical object removal for the audit trail.
type DeletionEntry struct {
	AttachmentID *uuid.UUID
	JobID        *uuid.UUID
	StoragePath  string
	FileName     *string
	DeletedBy    *string
	Reason       enums.DeletionReason
	Success      bool
	Error        error
	DeletedAt    time.Time
}

// DeletionRecorder appends deletion audit rows. Every path that removes a
// stored object writes here, including failed attempts.
type DeletionRecorder interface {
	Record(ctx context.Context, entry DeletionEntry) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.DeletionLog, error)
}

type deletionRecorder struct {
	db *gorm.DB
}

// NewDeletionRecorder builds a recorder bound to the provided DB.
func NewDeletionRecorder(db *gorm.DB) DeletionRecorder {
	return &deletionRecorder{db: db}
}

func (r *deletionRecorder) Record(ctx context.Context, entry DeletionEntry) error {
	deletedAt := entry.DeletedAt
	if deletedAt.IsZero() {
		deletedAt = time.Now()
	}

	var errText *string
	if entry.Error != nil {
		text := entry.Error.Error()
		errText = &text
	}

	row := &models.DeletionLog{
		ID:           uuid.New(),
		AttachmentID: entry.AttachmentID,
		JobID:        entry.JobID,
		StoragePath:  entry.StoragePath,
		FileName:     entry.FileName,
		DeletedBy:    entry.DeletedBy,
		Reason:       entry.Reason,
		Success:      entry.Success,
		Error:        errText,
		DeletedAt:    deletedAt,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *deletionRecorder) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.DeletionLog, error) {
	var rows []models.DeletionLog
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("deleted_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
