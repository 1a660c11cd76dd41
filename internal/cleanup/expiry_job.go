package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/logger"
	"github.com/prylogi/logi-backend/pkg/metrics"
)

const defaultExpiryBatch = 200

type expiryStore interface {
	ListDueForPurge(ctx context.Context, cutoff time.Time, limit int) ([]models.Attachment, error)
	MarkPurged(ctx context.Context, attachmentID uuid.UUID, purgedAt time.Time) error
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

// ExpiryJobParams configure the attachment expiry sweep.
type ExpiryJobParams struct {
	Logger    *logger.Logger
	Store     expiryStore
	Objects   objectDeleter
	Audit     audit.DeletionRecorder
	Reports   reportSink
	Metrics   *metrics.CronJobMetrics
	BatchSize int
}

type reportSink interface {
	Write(ctx context.Context, row ReportRow) error
}

// NewExpiryJob builds the sweep that purges attachments whose deletion
// deadline has passed.
func NewExpiryJob(params ExpiryJobParams) (*ExpiryJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("attachment store required")
	}
	if params.Objects == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("deletion recorder required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &ExpiryJob{
		logg:    params.Logger,
		store:   params.Store,
		objects: params.Objects,
		audit:   params.Audit,
		reports: params.Reports,
		metrics: params.Metrics,
		batch:   batch,
		now:     time.Now,
	}, nil
}

// ExpiryJob removes stored objects past their retention deadline. Every
// removal, successful or not, lands in the deletion log.
type ExpiryJob struct {
	logg    *logger.Logger
	store   expiryStore
	objects objectDeleter
	audit   audit.DeletionRecorder
	reports reportSink
	metrics *metrics.CronJobMetrics
	batch   int
	now     func() time.Time
}

func (j *ExpiryJob) Name() string { return "attachment-expiry" }

func (j *ExpiryJob) Run(ctx context.Context) error {
	startedAt := j.now().UTC()

	due, err := j.store.ListDueForPurge(ctx, startedAt, j.batch)
	if err != nil {
		return fmt.Errorf("query due attachments: %w", err)
	}

	deleted := 0
	failed := 0
	var errs error

	for _, attachment := range due {
		deleteErr := j.objects.DeleteObject(ctx, "", attachment.StoragePath)

		entry := audit.DeletionEntry{
			AttachmentID: &attachment.ID,
			JobID:        &attachment.JobID,
			StoragePath:  attachment.StoragePath,
			FileName:     &attachment.FileName,
			Reason:       enums.DeletionReasonAutoExpiry,
			Success:      deleteErr == nil,
			Error:        deleteErr,
			DeletedAt:    j.now(),
		}
		if auditErr := j.audit.Record(ctx, entry); auditErr != nil {
			j.logg.Error(ctx, "deletion_log.write_failed", auditErr)
		}

		if deleteErr != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("purge %s: %w", attachment.StoragePath, deleteErr))
			continue
		}

		if err := j.store.MarkPurged(ctx, attachment.ID, j.now()); err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("mark purged %s: %w", attachment.ID, err))
			continue
		}
		deleted++
	}

	if j.metrics != nil && deleted > 0 {
		j.metrics.AddDeleted(string(enums.DeletionReasonAutoExpiry), deleted)
	}

	finishedAt := j.now().UTC()
	j.writeReport(ctx, ReportRow{
		RunID:      uuid.NewString(),
		Job:        j.Name(),
		Scanned:    len(due),
		Deleted:    deleted,
		Failed:     failed,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	})

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"due":     len(due),
		"deleted": deleted,
		"failed":  failed,
	})
	j.logg.Info(logCtx, "attachment expiry sweep complete")
	return errs
}

func (j *ExpiryJob) writeReport(ctx context.Context, row ReportRow) {
	if j.reports == nil {
		return
	}
	if err := j.reports.Write(ctx, row); err != nil {
		j.logg.Error(ctx, "cleanup report write failed", err)
	}
}
