package jobs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a jobs repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repository) FindByReference(ctx context.Context, reference string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*JobList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Job{})

	if filters.CurrentStep != nil {
		query = query.Where("current_step = ?", *filters.CurrentStep)
	}
	if filters.Terminal != nil {
		if *filters.Terminal {
			query = query.Where("terminal_completed_at IS NOT NULL")
		} else {
			query = query.Where("terminal_completed_at IS NULL")
		}
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("reference ILIKE ? OR customer_name ILIKE ?", like, like)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Job
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &JobList{Jobs: make([]JobSummary, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}

	for _, row := range rows {
		list.Jobs = append(list.Jobs, summarize(row))
	}
	return list, nil
}

func (r *repository) UpdateCurrentStep(ctx context.Context, jobID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", jobID).
		Updates(updates).Error
}

func summarize(job models.Job) JobSummary {
	step := enums.TrackingStepCreated
	if job.CurrentStep != nil {
		step = *job.CurrentStep
	}
	return JobSummary{
		ID:                  job.ID,
		Reference:           job.Reference,
		CustomerName:        job.CustomerName,
		Origin:              job.Origin,
		Destination:         job.Destination,
		AgreedPrice:         job.AgreedPrice,
		Currency:            job.Currency,
		CurrentStep:         step,
		CurrentStepRank:     step.Rank(),
		TerminalCompletedAt: job.TerminalCompletedAt,
		CreatedAt:           job.CreatedAt,
	}
}
