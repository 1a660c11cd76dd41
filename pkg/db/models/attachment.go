package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/pkg/enums"
)

// Attachment records an uploaded photo or document for a job. Exactly one of
// StepRank and DocumentType is set, matching Folder.
type Attachment struct {
	ID     uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JobID  uuid.UUID              `gorm:"column:job_id;type:uuid;not null;index"`
	Folder enums.AttachmentFolder `gorm:"column:folder;not null"`

	StepRank     *int                `gorm:"column:step_rank"`
	DocumentType *enums.DocumentType `gorm:"column:document_type"`

	StoragePath string `gorm:"column:storage_path;not null;unique"`
	FileName    string `gorm:"column:file_name;not null"`
	FileSize    int64  `gorm:"column:file_size;not null"`
	MimeType    string `gorm:"column:mime_type;not null"`

	UploaderID   uuid.UUID `gorm:"column:uploader_id;type:uuid;not null"`
	UploaderName string    `gorm:"column:uploader_name;not null"`

	UploadedAt time.Time `gorm:"column:uploaded_at;not null"`

	// DeleteAt marks intent; physical removal happens in the expiry sweep.
	DeleteAt *time.Time `gorm:"column:delete_at"`
	// PurgedAt is stamped by whichever path removed the stored object.
	PurgedAt *time.Time `gorm:"column:purged_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
