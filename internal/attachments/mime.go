package attachments

import "github.com/prylogi/logi-backend/pkg/enums"

var workflowMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/heic": {},
}

var documentMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
}

// MimeAllowed reports whether the content type is accepted for the folder.
// Workflow uploads are proof-of-work photos; documents also accept PDFs.
func MimeAllowed(folder enums.AttachmentFolder, mimeType string) bool {
	if folder == enums.AttachmentFolderWorkflow {
		_, ok := workflowMimeTypes[mimeType]
		return ok
	}
	_, ok := documentMimeTypes[mimeType]
	return ok
}
