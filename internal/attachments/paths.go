package attachments

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/pkg/enums"
)

// BuildStoragePath returns the canonical object name for an upload.
// Workflow photos nest under their step rank; documents share one folder
// per job. The millisecond timestamp prefix keeps repeated uploads of the
// same filename distinct.
func BuildStoragePath(jobID uuid.UUID, folder enums.AttachmentFolder, stepRank int, uploadedAtMillis int64, fileName string) string {
	name := SanitizeFileName(fileName)
	if folder == enums.AttachmentFolderWorkflow {
		return fmt.Sprintf("jobs/%s/workflow/%d/%d_%s", jobID, stepRank, uploadedAtMillis, name)
	}
	return fmt.Sprintf("jobs/%s/documents/%d_%s", jobID, uploadedAtMillis, name)
}

// SanitizeFileName strips directory components and characters that have no
// business in an object name.
func SanitizeFileName(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.TrimSpace(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

// JobPrefix returns the listing prefix that covers every object a job owns.
func JobPrefix(jobID uuid.UUID) string {
	return fmt.Sprintf("jobs/%s/", jobID)
}
