package consumer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/logger"
)

const (
	objectDeleteEvent    = "OBJECT_DELETE"
	payloadFormatJSONAPI = "JSON_API_V1"
)

type registry interface {
	FindByStoragePath(ctx context.Context, storagePath string) (*models.Attachment, error)
	MarkPurged(ctx context.Context, attachmentID uuid.UUID, purgedAt time.Time) error
}

// DeletionConsumer watches Pub/Sub for GCS OBJECT_DELETE notifications and
// reconciles the attachment registry. Objects removed out of band (console,
// gsutil, lifecycle rules) still end up marked purged and audited.
type DeletionConsumer struct {
	registry     registry
	audit        audit.DeletionRecorder
	subscription *pubsub.Subscriber
	logg         *logger.Logger
	now          func() time.Time
}

// NewDeletionConsumer wires the dependencies required for registry reconciliation.
func NewDeletionConsumer(reg registry, recorder audit.DeletionRecorder, subscription *pubsub.Subscriber, logg *logger.Logger) (*DeletionConsumer, error) {
	if reg == nil {
		return nil, errors.New("attachment registry is required")
	}
	if recorder == nil {
		return nil, errors.New("deletion recorder is required")
	}
	if subscription == nil {
		return nil, errors.New("storage subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &DeletionConsumer{
		registry:     reg,
		audit:        recorder,
		subscription: subscription,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// Run processes deletion notifications until the context is canceled.
func (c *DeletionConsumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *DeletionConsumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	attrs := parseAttributes(msg.Attributes)
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": attrs.EventType,
		"bucket":     attrs.BucketID,
	})

	if attrs.EventType != objectDeleteEvent {
		c.logg.Info(logCtx, "skipping non-delete event")
		return processResult{ack: true}
	}
	if attrs.PayloadFormat != payloadFormatJSONAPI {
		c.logg.Warn(logCtx, "unsupported payload format")
		return processResult{ack: true}
	}

	payload, err := decodePayload(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return processResult{ack: true}
	}

	var object gcsPayload
	if err := json.Unmarshal(payload, &object); err != nil {
		c.logg.Error(logCtx, "failed to unmarshal payload", err)
		return processResult{ack: true}
	}
	if strings.TrimSpace(object.Name) == "" {
		c.logg.Error(logCtx, "payload missing gcs object name", fmt.Errorf("empty name"))
		return processResult{ack: true}
	}

	logCtx = c.logg.WithField(logCtx, "storage_path", object.Name)

	attachment, err := c.registry.FindByStoragePath(logCtx, object.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already purged and audited, or never registered. The orphan
			// sweep owns unregistered objects; nothing to reconcile here.
			c.logg.Info(logCtx, "no registry row for deleted object")
			return processResult{ack: true}
		}
		return c.handleDBError(logCtx, err)
	}

	if attachment.PurgedAt != nil {
		c.logg.Info(logCtx, "attachment already marked purged")
		return processResult{ack: true}
	}

	now := c.now()
	if err := c.registry.MarkPurged(ctx, attachment.ID, now); err != nil {
		return c.handleDBError(logCtx, err)
	}

	entry := audit.DeletionEntry{
		AttachmentID: &attachment.ID,
		JobID:        &attachment.JobID,
		StoragePath:  attachment.StoragePath,
		FileName:     &attachment.FileName,
		Reason:       enums.DeletionReasonOrphanedCleanup,
		Success:      true,
		DeletedAt:    now,
	}
	if err := c.audit.Record(ctx, entry); err != nil {
		c.logg.Error(logCtx, "deletion_log.write_failed", err)
	}

	c.logg.Info(logCtx, "reconciled out-of-band deletion")
	return processResult{ack: true}
}

func (c *DeletionConsumer) handleDBError(ctx context.Context, err error) processResult {
	c.logg.Error(ctx, "attachment reconciliation db error", err)
	if isTransientDBError(err) {
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func parseAttributes(attrs map[string]string) gcsAttributes {
	return gcsAttributes{
		EventType:     attrs["eventType"],
		BucketID:      attrs["bucketId"],
		ObjectID:      attrs["objectId"],
		PayloadFormat: attrs["payloadFormat"],
	}
}

type gcsAttributes struct {
	EventType     string
	BucketID      string
	ObjectID      string
	PayloadFormat string
}

type gcsPayload struct {
	Name       string `json:"name"`
	Bucket     string `json:"bucket"`
	Generation string `json:"generation"`
	Size       string `json:"size"`
}

func decodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("payload empty")
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		return decoded, nil
	}
	return data, nil
}

func isTransientDBError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
