package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/pkg/enums"
)

// DeletionLog is an append-only audit row written whenever a stored object is
// physically removed, by any path.
type DeletionLog struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AttachmentID *uuid.UUID `gorm:"column:attachment_id;type:uuid"`
	JobID        *uuid.UUID `gorm:"column:job_id;type:uuid;index"`

	StoragePath string  `gorm:"column:storage_path;not null"`
	FileName    *string `gorm:"column:file_name"`
	DeletedBy   *string `gorm:"column:deleted_by"`

	Reason  enums.DeletionReason `gorm:"column:reason;not null"`
	Success bool                 `gorm:"column:success;not null"`
	Error   *string              `gorm:"column:error"`

	DeletedAt time.Time `gorm:"column:deleted_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
