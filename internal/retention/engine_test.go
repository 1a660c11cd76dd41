package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/prylogi/logi-backend/pkg/config"
	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
)

type stubAttachmentStore struct {
	attachments []models.Attachment
	marked      map[uuid.UUID]time.Time
	failIDs     map[uuid.UUID]error
	listErr     error
}

func (s *stubAttachmentStore) FindUnscheduledByJob(ctx context.Context, jobID uuid.UUID) ([]models.Attachment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.attachments, nil
}

func (s *stubAttachmentStore) MarkDeleteAt(ctx context.Context, attachmentID uuid.UUID, deleteAt time.Time) error {
	if err, ok := s.failIDs[attachmentID]; ok {
		return err
	}
	if s.marked == nil {
		s.marked = map[uuid.UUID]time.Time{}
	}
	s.marked[attachmentID] = deleteAt
	return nil
}

func defaultConfig() config.RetentionConfig {
	return config.RetentionConfig{WorkflowDays: 30, DocumentDays: 90}
}

func workflowAttachment() models.Attachment {
	rank := 5
	return models.Attachment{ID: uuid.New(), Folder: enums.AttachmentFolderWorkflow, StepRank: &rank}
}

func documentAttachment() models.Attachment {
	docType := enums.DocumentTypeInvoice
	return models.Attachment{ID: uuid.New(), Folder: enums.AttachmentFolderDocuments, DocumentType: &docType}
}

func TestApplyStampsIndependentHorizons(t *testing.T) {
	workflow := workflowAttachment()
	document := documentAttachment()
	store := &stubAttachmentStore{attachments: []models.Attachment{workflow, document}}

	engine, err := NewEngine(store, defaultConfig(), nil)
	require.NoError(t, err)

	completedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	report, err := engine.Apply(context.Background(), uuid.New(), completedAt)
	require.NoError(t, err)

	assert.Equal(t, 1, report.WorkflowMarked)
	assert.Equal(t, 1, report.DocumentsMarked)
	assert.Zero(t, report.Failed)

	assert.Equal(t, completedAt.Add(30*24*time.Hour), store.marked[workflow.ID])
	assert.Equal(t, completedAt.Add(90*24*time.Hour), store.marked[document.ID])
}

func TestApplyContinuesPastFailures(t *testing.T) {
	ok := workflowAttachment()
	broken := documentAttachment()
	alsoBroken := workflowAttachment()
	store := &stubAttachmentStore{
		attachments: []models.Attachment{broken, ok, alsoBroken},
		failIDs: map[uuid.UUID]error{
			broken.ID:     errors.New("write timeout"),
			alsoBroken.ID: errors.New("write timeout"),
		},
	}

	engine, err := NewEngine(store, defaultConfig(), nil)
	require.NoError(t, err)

	report, err := engine.Apply(context.Background(), uuid.New(), time.Now())
	require.Error(t, err)

	assert.Equal(t, 1, report.WorkflowMarked)
	assert.Zero(t, report.DocumentsMarked)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, store.marked, ok.ID)
}

func TestApplySkipsNothingToMark(t *testing.T) {
	store := &stubAttachmentStore{}
	engine, err := NewEngine(store, defaultConfig(), nil)
	require.NoError(t, err)

	report, err := engine.Apply(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, report.WorkflowMarked+report.DocumentsMarked+report.Failed)
}

func TestNewEngineValidates(t *testing.T) {
	_, err := NewEngine(nil, defaultConfig(), nil)
	assert.Error(t, err)

	_, err = NewEngine(&stubAttachmentStore{}, config.RetentionConfig{WorkflowDays: 0, DocumentDays: 90}, nil)
	assert.Error(t, err)
}
