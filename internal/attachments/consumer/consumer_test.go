package consumer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/logger"
)

type stubRegistry struct {
	attachment *models.Attachment
	findErr    error
	purged     []uuid.UUID
	purgeErr   error
}

func (s *stubRegistry) FindByStoragePath(ctx context.Context, storagePath string) (*models.Attachment, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.attachment, nil
}

func (s *stubRegistry) MarkPurged(ctx context.Context, attachmentID uuid.UUID, purgedAt time.Time) error {
	if s.purgeErr != nil {
		return s.purgeErr
	}
	s.purged = append(s.purged, attachmentID)
	return nil
}

type stubRecorder struct {
	entries []audit.DeletionEntry
}

func (s *stubRecorder) Record(ctx context.Context, entry audit.DeletionEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubRecorder) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.DeletionLog, error) {
	return nil, nil
}

func encodePayload(payload gcsPayload) []byte {
	data, _ := json.Marshal(payload)
	return []byte(base64.StdEncoding.EncodeToString(data))
}

func buildMessage(name string) *pubsub.Message {
	return &pubsub.Message{
		Attributes: map[string]string{
			"eventType":     objectDeleteEvent,
			"payloadFormat": payloadFormatJSONAPI,
		},
		Data: encodePayload(gcsPayload{Name: name, Bucket: "logi-attachments"}),
	}
}

func newTestConsumer(t *testing.T, reg *stubRegistry, recorder *stubRecorder) *DeletionConsumer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	consumer, err := NewDeletionConsumer(reg, recorder, &pubsub.Subscriber{}, logg)
	if err != nil {
		t.Fatalf("NewDeletionConsumer: %v", err)
	}
	return consumer
}

func TestConsumerReconcilesOutOfBandDeletion(t *testing.T) {
	t.Parallel()

	attachment := &models.Attachment{
		ID:          uuid.New(),
		JobID:       uuid.New(),
		StoragePath: "jobs/a/documents/1_invoice.pdf",
		FileName:    "invoice.pdf",
	}
	reg := &stubRegistry{attachment: attachment}
	recorder := &stubRecorder{}
	consumer := newTestConsumer(t, reg, recorder)

	result := consumer.process(context.Background(), buildMessage(attachment.StoragePath))
	if !result.ack || result.nack {
		t.Fatalf("expected ack result")
	}
	if len(reg.purged) != 1 || reg.purged[0] != attachment.ID {
		t.Fatalf("expected attachment marked purged, got %v", reg.purged)
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(recorder.entries))
	}
	if recorder.entries[0].Reason != enums.DeletionReasonOrphanedCleanup {
		t.Fatalf("unexpected reason %s", recorder.entries[0].Reason)
	}
}

func TestConsumerIgnoresUnknownObject(t *testing.T) {
	t.Parallel()

	reg := &stubRegistry{findErr: gorm.ErrRecordNotFound}
	recorder := &stubRecorder{}
	consumer := newTestConsumer(t, reg, recorder)

	result := consumer.process(context.Background(), buildMessage("jobs/a/documents/unknown.pdf"))
	if !result.ack {
		t.Fatalf("expected ack for unknown object")
	}
	if len(recorder.entries) != 0 {
		t.Fatalf("expected no audit entries")
	}
}

func TestConsumerSkipsAlreadyPurged(t *testing.T) {
	t.Parallel()

	purgedAt := time.Now()
	reg := &stubRegistry{attachment: &models.Attachment{
		ID:          uuid.New(),
		StoragePath: "jobs/a/documents/1_invoice.pdf",
		PurgedAt:    &purgedAt,
	}}
	recorder := &stubRecorder{}
	consumer := newTestConsumer(t, reg, recorder)

	result := consumer.process(context.Background(), buildMessage("jobs/a/documents/1_invoice.pdf"))
	if !result.ack {
		t.Fatalf("expected ack for already purged attachment")
	}
	if len(reg.purged) != 0 {
		t.Fatalf("expected no purge writes")
	}
}

func TestConsumerNacksOnTransientDBError(t *testing.T) {
	t.Parallel()

	reg := &stubRegistry{findErr: context.DeadlineExceeded}
	consumer := newTestConsumer(t, reg, &stubRecorder{})

	result := consumer.process(context.Background(), buildMessage("jobs/a/documents/1_invoice.pdf"))
	if !result.nack {
		t.Fatalf("expected nack on transient db error")
	}
}

func TestConsumerSkipsNonDeleteEvents(t *testing.T) {
	t.Parallel()

	consumer := newTestConsumer(t, &stubRegistry{}, &stubRecorder{})

	msg := buildMessage("jobs/a/documents/1_invoice.pdf")
	msg.Attributes["eventType"] = "OBJECT_FINALIZE"

	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack for non-delete event")
	}
}
