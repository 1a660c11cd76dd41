package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/prylogi/logi-backend/pkg/config"
	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/logger"
)

// Report summarizes one retention pass over a job's attachments.
type Report struct {
	WorkflowMarked  int `json:"workflow_marked"`
	DocumentsMarked int `json:"documents_marked"`
	Failed          int `json:"failed"`
}

type attachmentStore interface {
	FindUnscheduledByJob(ctx context.Context, jobID uuid.UUID) ([]models.Attachment, error)
	MarkDeleteAt(ctx context.Context, attachmentID uuid.UUID, deleteAt time.Time) error
}

// Engine stamps per-attachment deletion deadlines when a job completes.
// Workflow photos and standing documents get independent horizons, counted
// from the completion time, not from upload time.
type Engine struct {
	store        attachmentStore
	workflowTTL  time.Duration
	documentsTTL time.Duration
	logg         *logger.Logger
}

// NewEngine builds a retention engine from the configured horizons.
func NewEngine(store attachmentStore, cfg config.RetentionConfig, logg *logger.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("attachment store required")
	}
	if cfg.WorkflowDays <= 0 || cfg.DocumentDays <= 0 {
		return nil, fmt.Errorf("retention horizons must be positive")
	}
	return &Engine{
		store:        store,
		workflowTTL:  time.Duration(cfg.WorkflowDays) * 24 * time.Hour,
		documentsTTL: time.Duration(cfg.DocumentDays) * 24 * time.Hour,
		logg:         logg,
	}, nil
}

// Apply stamps a DeleteAt deadline on every attachment of the job that does
// not have one yet. Each attachment is written independently; one failed
// write never blocks the rest. The aggregated error carries every failure.
func (e *Engine) Apply(ctx context.Context, jobID uuid.UUID, completedAt time.Time) (*Report, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("job id required")
	}
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	attachments, err := e.store.FindUnscheduledByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load attachments for retention: %w", err)
	}

	report := &Report{}
	var errs error
	for _, attachment := range attachments {
		deleteAt := completedAt.Add(e.horizonFor(attachment.Folder))

		if err := e.store.MarkDeleteAt(ctx, attachment.ID, deleteAt); err != nil {
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("mark attachment %s: %w", attachment.ID, err))
			continue
		}

		switch attachment.Folder {
		case enums.AttachmentFolderWorkflow:
			report.WorkflowMarked++
		default:
			report.DocumentsMarked++
		}
	}

	if e.logg != nil {
		ctx = e.logg.WithFields(ctx, map[string]any{
			"job_id":           jobID.String(),
			"workflow_marked":  report.WorkflowMarked,
			"documents_marked": report.DocumentsMarked,
			"failed":           report.Failed,
		})
		e.logg.Info(ctx, "retention.applied")
	}

	return report, errs
}

func (e *Engine) horizonFor(folder enums.AttachmentFolder) time.Duration {
	if folder == enums.AttachmentFolderWorkflow {
		return e.workflowTTL
	}
	return e.documentsTTL
}
