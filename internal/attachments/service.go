package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/pkg/config"
	"github.com/prylogi/logi-backend/pkg/db"
	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	pkgerrors "github.com/prylogi/logi-backend/pkg/errors"
	"github.com/prylogi/logi-backend/pkg/logger"
)

const downloadURLTTL = 15 * time.Minute

type objectStore interface {
	UploadObject(ctx context.Context, bucket, object, contentType string, body io.Reader) error
	DeleteObject(ctx context.Context, bucket, object string) error
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

type jobFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// Service defines the attachment operations exposed to the API surface.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*View, error)
	List(ctx context.Context, jobID uuid.UUID, folder *enums.AttachmentFolder) ([]View, error)
	Delete(ctx context.Context, attachmentID uuid.UUID, actorName string) error
	DownloadURL(ctx context.Context, attachmentID uuid.UUID) (string, error)
}

type service struct {
	repo    Repository
	jobs    jobFinder
	objects objectStore
	audit   audit.DeletionRecorder
	upload  config.UploadConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds an attachments service with the required dependencies.
func NewService(repo Repository, jobs jobFinder, objects objectStore, recorder audit.DeletionRecorder, upload config.UploadConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("attachments repository required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job finder required")
	}
	if objects == nil {
		return nil, fmt.Errorf("object store required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("deletion recorder required")
	}
	return &service{
		repo:    repo,
		jobs:    jobs,
		objects: objects,
		audit:   recorder,
		upload:  upload,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Upload stores the file and registers it. Workflow uploads bind to a step
// rank, document uploads bind to a document type; never both.
func (s *service) Upload(ctx context.Context, input UploadInput) (*View, error) {
	if err := s.validateUpload(input); err != nil {
		return nil, err
	}

	if _, err := s.jobs.FindByID(ctx, input.JobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job")
	}

	uploadedAt := s.now()
	stepRank := 0
	if input.StepRank != nil {
		stepRank = *input.StepRank
	}
	storagePath := BuildStoragePath(input.JobID, input.Folder, stepRank, uploadedAt.UnixMilli(), input.FileName)

	if err := s.objects.UploadObject(ctx, "", storagePath, input.MimeType, input.Body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store attachment object")
	}

	attachment := &models.Attachment{
		ID:           uuid.New(),
		JobID:        input.JobID,
		Folder:       input.Folder,
		StepRank:     input.StepRank,
		DocumentType: input.DocumentType,
		StoragePath:  storagePath,
		FileName:     SanitizeFileName(input.FileName),
		FileSize:     input.Size,
		MimeType:     input.MimeType,
		UploaderID:   input.UploaderID,
		UploaderName: input.UploaderName,
		UploadedAt:   uploadedAt,
	}
	created, err := s.repo.Create(ctx, attachment)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "attachment already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register attachment")
	}

	view := toView(*created)
	return &view, nil
}

func (s *service) validateUpload(input UploadInput) error {
	if input.JobID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}
	if !input.Folder.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown attachment folder")
	}
	if input.UploaderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if strings.TrimSpace(input.FileName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file name required")
	}
	if input.Body == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "file body required")
	}
	if input.Size <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if s.upload.MaxFileBytes > 0 && input.Size > s.upload.MaxFileBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, "file exceeds size limit").
			WithDetails(map[string]any{"max_bytes": s.upload.MaxFileBytes})
	}
	if !MimeAllowed(input.Folder, input.MimeType) {
		return pkgerrors.New(pkgerrors.CodeValidation, "file type not allowed").
			WithDetails(map[string]any{"mime_type": input.MimeType})
	}

	switch input.Folder {
	case enums.AttachmentFolderWorkflow:
		if input.DocumentType != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "workflow uploads cannot carry a document type")
		}
		if input.StepRank == nil || *input.StepRank < 1 || *input.StepRank > len(enums.TrackingStepsInOrder()) {
			return pkgerrors.New(pkgerrors.CodeValidation, "workflow uploads need a valid step rank")
		}
	case enums.AttachmentFolderDocuments:
		if input.StepRank != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "document uploads cannot carry a step rank")
		}
		if input.DocumentType == nil || !input.DocumentType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "document uploads need a valid document type")
		}
	}
	return nil
}

func (s *service) List(ctx context.Context, jobID uuid.UUID, folder *enums.AttachmentFolder) ([]View, error) {
	if jobID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}
	if folder != nil && !folder.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown attachment folder")
	}

	rows, err := s.repo.ListByJob(ctx, jobID, folder)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attachments")
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return views, nil
}

// Delete removes the stored object now and records the manual deletion. A
// missing object counts as already deleted; the registry row is still
// closed out and the audit entry still written.
func (s *service) Delete(ctx context.Context, attachmentID uuid.UUID, actorName string) error {
	if attachmentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "attachment id required")
	}

	attachment, err := s.repo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attachment")
	}
	if attachment.PurgedAt != nil {
		return nil
	}

	now := s.now()
	deleteErr := s.objects.DeleteObject(ctx, "", attachment.StoragePath)

	entry := audit.DeletionEntry{
		AttachmentID: &attachment.ID,
		JobID:        &attachment.JobID,
		StoragePath:  attachment.StoragePath,
		FileName:     &attachment.FileName,
		Reason:       enums.DeletionReasonManualDelete,
		Success:      deleteErr == nil,
		Error:        deleteErr,
		DeletedAt:    now,
	}
	if name := strings.TrimSpace(actorName); name != "" {
		entry.DeletedBy = &name
	}
	if auditErr := s.audit.Record(ctx, entry); auditErr != nil && s.logg != nil {
		s.logg.Error(ctx, "deletion_log.write_failed", auditErr)
	}

	if deleteErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, deleteErr, "delete attachment object")
	}

	if attachment.DeleteAt == nil {
		if err := s.repo.MarkDeleteAt(ctx, attachment.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark attachment deletion")
		}
	}
	if err := s.repo.MarkPurged(ctx, attachment.ID, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark attachment purged")
	}
	return nil
}

func (s *service) DownloadURL(ctx context.Context, attachmentID uuid.UUID) (string, error) {
	if attachmentID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "attachment id required")
	}

	attachment, err := s.repo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attachment")
	}
	if attachment.PurgedAt != nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "attachment no longer stored")
	}

	url, err := s.objects.SignedReadURL("", attachment.StoragePath, downloadURLTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}
	return url, nil
}
