package attachments

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
)

// UploadInput carries one file upload plus its registry metadata.
type UploadInput struct {
	JobID        uuid.UUID
	Folder       enums.AttachmentFolder
	StepRank     *int
	DocumentType *enums.DocumentType
	FileName     string
	MimeType     string
	Size         int64
	Body         io.Reader
	UploaderID   uuid.UUID
	UploaderName string
}

// View is the attachment representation returned to clients.
type View struct {
	ID           uuid.UUID              `json:"id"`
	JobID        uuid.UUID              `json:"job_id"`
	Folder       enums.AttachmentFolder `json:"folder"`
	StepRank     *int                   `json:"step_rank,omitempty"`
	DocumentType *enums.DocumentType    `json:"document_type,omitempty"`
	StoragePath  string                 `json:"storage_path"`
	FileName     string                 `json:"file_name"`
	FileSize     int64                  `json:"file_size"`
	MimeType     string                 `json:"mime_type"`
	UploaderID   uuid.UUID              `json:"uploader_id"`
	UploaderName string                 `json:"uploader_name"`
	UploadedAt   time.Time              `json:"uploaded_at"`
	DeleteAt     *time.Time             `json:"delete_at,omitempty"`
}

func toView(attachment models.Attachment) View {
	return View{
		ID:           attachment.ID,
		JobID:        attachment.JobID,
		Folder:       attachment.Folder,
		StepRank:     attachment.StepRank,
		DocumentType: attachment.DocumentType,
		StoragePath:  attachment.StoragePath,
		FileName:     attachment.FileName,
		FileSize:     attachment.FileSize,
		MimeType:     attachment.MimeType,
		UploaderID:   attachment.UploaderID,
		UploaderName: attachment.UploaderName,
		UploadedAt:   attachment.UploadedAt,
		DeleteAt:     attachment.DeleteAt,
	}
}
