package attachments

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/prylogi/logi-backend/pkg/enums"
)

func TestBuildStoragePathWorkflow(t *testing.T) {
	jobID := uuid.MustParse("3f1d6f5e-7c2a-4f0b-9a43-dc6a5b2f9d11")

	got := BuildStoragePath(jobID, enums.AttachmentFolderWorkflow, 5, 1717230000000, "pickup photo.jpg")
	want := fmt.Sprintf("jobs/%s/workflow/5/1717230000000_pickup_photo.jpg", jobID)
	assert.Equal(t, want, got)
}

func TestBuildStoragePathDocuments(t *testing.T) {
	jobID := uuid.MustParse("3f1d6f5e-7c2a-4f0b-9a43-dc6a5b2f9d11")

	got := BuildStoragePath(jobID, enums.AttachmentFolderDocuments, 0, 1717230000000, "invoice.pdf")
	want := fmt.Sprintf("jobs/%s/documents/1717230000000_invoice.pdf", jobID)
	assert.Equal(t, want, got)
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"invoice.pdf":            "invoice.pdf",
		"../../etc/passwd":       "passwd",
		"C:\\photos\\truck.png":  "truck.png",
		"receipt (final).pdf":    "receipt__final_.pdf",
		"...":                    "file",
		"  spaced name.jpg  ":    "spaced_name.jpg",
		"déjà-vu.png":            "d_j_-vu.png",
	}
	for input, want := range cases {
		assert.Equal(t, want, SanitizeFileName(input), input)
	}
}

func TestJobPrefix(t *testing.T) {
	jobID := uuid.New()
	assert.Equal(t, "jobs/"+jobID.String()+"/", JobPrefix(jobID))
}
