package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/logger"
	"github.com/prylogi/logi-backend/pkg/metrics"
	"github.com/prylogi/logi-backend/pkg/storage/gcs"
)

const defaultOrphanBatch = 200

type orphanStore interface {
	FilterKnownStoragePaths(ctx context.Context, paths []string) (map[string]struct{}, error)
}

type objectLister interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]gcs.ObjectInfo, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

// OrphanJobParams configure the orphaned object sweep.
type OrphanJobParams struct {
	Logger    *logger.Logger
	Store     orphanStore
	Objects   objectLister
	Audit     audit.DeletionRecorder
	Reports   reportSink
	Metrics   *metrics.CronJobMetrics
	Prefix    string
	BatchSize int
}

// NewOrphanJob builds the sweep that deletes stored objects the registry
// does not know about.
func NewOrphanJob(params OrphanJobParams) (*OrphanJob, error) {
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
	prefix := params.Prefix
	if prefix == "" {
		prefix = "jobs/"
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultOrphanBatch
	}
	return &OrphanJob{
		logg:    params.Logger,
		store:   params.Store,
		objects: params.Objects,
		audit:   params.Audit,
		reports: params.Reports,
		metrics: params.Metrics,
		prefix:  prefix,
		batch:   batch,
		now:     time.Now,
	}, nil
}

// OrphanJob reconciles the bucket against the registry. Objects under the
// job prefix with no registry row are deleted and logged.
type OrphanJob struct {
	logg    *logger.Logger
	store   orphanStore
	objects objectLister
	audit   audit.DeletionRecorder
	reports reportSink
	metrics *metrics.CronJobMetrics
	prefix  string
	batch   int
	now     func() time.Time
}

func (j *OrphanJob) Name() string { return "orphan-sweep" }

func (j *OrphanJob) Run(ctx context.Context) error {
	startedAt := j.now().UTC()

	objects, err := j.objects.ListObjects(ctx, "", j.prefix)
	if err != nil {
		return fmt.Errorf("list stored objects: %w", err)
	}

	deleted := 0
	failed := 0
	var errs error

	for start := 0; start < len(objects); start += j.batch {
		end := start + j.batch
		if end > len(objects) {
			end = len(objects)
		}

		paths := make([]string, 0, end-start)
		for _, object := range objects[start:end] {
			paths = append(paths, object.Name)
		}

		known, err := j.store.FilterKnownStoragePaths(ctx, paths)
		if err != nil {
			return fmt.Errorf("match stored objects against registry: %w", err)
		}

		for _, path := range paths {
			if _, ok := known[path]; ok {
				continue
			}

			deleteErr := j.objects.DeleteObject(ctx, "", path)

			entry := audit.DeletionEntry{
				StoragePath: path,
				Reason:      enums.DeletionReasonOrphanedCleanup,
				Success:     deleteErr == nil,
				Error:       deleteErr,
				DeletedAt:   j.now(),
			}
			if auditErr := j.audit.Record(ctx, entry); auditErr != nil {
				j.logg.Error(ctx, "deletion_log.write_failed", auditErr)
			}

			if deleteErr != nil {
				failed++
				errs = multierr.Append(errs, fmt.Errorf("delete orphan %s: %w", path, deleteErr))
				continue
			}
			deleted++
		}
	}

	if j.metrics != nil && deleted > 0 {
		j.metrics.AddDeleted(string(enums.DeletionReasonOrphanedCleanup), deleted)
	}

	finishedAt := j.now().UTC()
	j.writeReport(ctx, ReportRow{
		RunID:      uuid.NewString(),
		Job:        j.Name(),
		Scanned:    len(objects),
		Deleted:    deleted,
		Failed:     failed,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	})

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned": len(objects),
		"deleted": deleted,
		"failed":  failed,
	})
	j.logg.Info(logCtx, "orphan sweep complete")
	return errs
}

func (j *OrphanJob) writeReport(ctx context.Context, row ReportRow) {
	if j.reports == nil {
		return
	}
	if err := j.reports.Write(ctx, row); err != nil {
		j.logg.Error(ctx, "cleanup report write failed", err)
	}
}
