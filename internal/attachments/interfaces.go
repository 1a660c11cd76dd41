package attachments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
)

// Repository defines persistence operations for the attachment registry.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	FindByStoragePath(ctx context.Context, storagePath string) (*models.Attachment, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, folder *enums.AttachmentFolder) ([]models.Attachment, error)
	FindUnscheduledByJob(ctx context.Context, jobID uuid.UUID) ([]models.Attachment, error)
	ListDueForPurge(ctx context.Context, cutoff time.Time, limit int) ([]models.Attachment, error)
	FilterKnownStoragePaths(ctx context.Context, paths []string) (map[string]struct{}, error)
	MarkDeleteAt(ctx context.Context, attachmentID uuid.UUID, deleteAt time.Time) error
	MarkPurged(ctx context.Context, attachmentID uuid.UUID, purgedAt time.Time) error
}
