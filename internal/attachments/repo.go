package attachments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an attachments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error) {
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&attachment).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *repository) FindByStoragePath(ctx context.Context, storagePath string) (*models.Attachment, error) {
	var attachment models.Attachment
	err := r.db.WithContext(ctx).
		Where("storage_path = ?", storagePath).
		First(&attachment).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *repository) ListByJob(ctx context.Context, jobID uuid.UUID, folder *enums.AttachmentFolder) ([]models.Attachment, error) {
	query := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Where("purged_at IS NULL")
	if folder != nil {
		query = query.Where("folder = ?", *folder)
	}

	var rows []models.Attachment
	err := query.
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindUnscheduledByJob returns the job's live attachments that have no
// deletion deadline yet. Retention stamps exactly these.
func (r *repository) FindUnscheduledByJob(ctx context.Context, jobID uuid.UUID) ([]models.Attachment, error) {
	var rows []models.Attachment
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Where("delete_at IS NULL").
		Where("purged_at IS NULL").
		Order("uploaded_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDueForPurge returns attachments whose deadline has passed and whose
// stored object has not been removed yet.
func (r *repository) ListDueForPurge(ctx context.Context, cutoff time.Time, limit int) ([]models.Attachment, error) {
	var rows []models.Attachment
	err := r.db.WithContext(ctx).
		Where("delete_at IS NOT NULL").
		Where("delete_at <= ?", cutoff).
		Where("purged_at IS NULL").
		Order("delete_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FilterKnownStoragePaths returns the subset of paths the registry knows
// about. The orphan sweep deletes everything else.
func (r *repository) FilterKnownStoragePaths(ctx context.Context, paths []string) (map[string]struct{}, error) {
	known := make(map[string]struct{}, len(paths))
	if len(paths) == 0 {
		return known, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("storage_path IN ?", paths).
		Pluck("storage_path", &found).Error
	if err != nil {
		return nil, err
	}

	for _, p := range found {
		known[p] = struct{}{}
	}
	return known, nil
}

func (r *repository) MarkDeleteAt(ctx context.Context, attachmentID uuid.UUID, deleteAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("id = ?", attachmentID).
		Update("delete_at", deleteAt).Error
}

func (r *repository) MarkPurged(ctx context.Context, attachmentID uuid.UUID, purgedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("id = ?", attachmentID).
		Updates(map[string]any{"purged_at": purgedAt}).Error
}
