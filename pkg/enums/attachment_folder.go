package enums

import "fmt"

// AttachmentFolder separates step-bound workflow photos from the job's
// standing documents. The folder decides which retention horizon applies.
type AttachmentFolder string

const (
	AttachmentFolderWorkflow  AttachmentFolder = "workflow"
	AttachmentFolderDocuments AttachmentFolder = "documents"
)

var validAttachmentFolders = []AttachmentFolder{
	AttachmentFolderWorkflow,
	AttachmentFolderDocuments,
}

// String implements fmt.Stringer.
func (a AttachmentFolder) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AttachmentFolder.
func (a AttachmentFolder) IsValid() bool {
	for _, candidate := range validAttachmentFolders {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttachmentFolder converts raw input into an AttachmentFolder.
func ParseAttachmentFolder(value string) (AttachmentFolder, error) {
	for _, candidate := range validAttachmentFolders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attachment folder %q", value)
}
