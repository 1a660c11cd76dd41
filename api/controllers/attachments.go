package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/api/middleware"
	"github.com/prylogi/logi-backend/api/responses"
	"github.com/prylogi/logi-backend/internal/attachments"
	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/pkg/config"
	"github.com/prylogi/logi-backend/pkg/enums"
	pkgerrors "github.com/prylogi/logi-backend/pkg/errors"
	"github.com/prylogi/logi-backend/pkg/logger"
)

const multipartMemoryLimit = 8 << 20

// AttachmentsController handles uploads, listings, deletions, and signed
// download links for job files.
type AttachmentsController struct {
	svc    attachments.Service
	audit  audit.DeletionRecorder
	upload config.UploadConfig
	logg   *logger.Logger
}

func NewAttachmentsController(svc attachments.Service, recorder audit.DeletionRecorder, upload config.UploadConfig, logg *logger.Logger) *AttachmentsController {
	return &AttachmentsController{svc: svc, audit: recorder, upload: upload, logg: logg}
}

// Upload accepts a multipart form with a "files" part per file plus the
// folder binding fields. All files in one request share the same binding.
func (c *AttachmentsController) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	uploaderID, err := uuid.Parse(middleware.ActorIDFromContext(ctx))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing"))
		return
	}

	maxRequestBytes := c.upload.MaxFileBytes*int64(c.upload.MaxFiles) + multipartMemoryLimit
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	folder := enums.AttachmentFolder(strings.TrimSpace(r.FormValue("folder")))
	if !folder.IsValid() {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown attachment folder").
			WithDetails(map[string]any{"field": "folder"}))
		return
	}

	var stepRank *int
	if raw := strings.TrimSpace(r.FormValue("step_rank")); raw != "" {
		rank, err := strconv.Atoi(raw)
		if err != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "step rank must be numeric").
				WithDetails(map[string]any{"field": "step_rank"}))
			return
		}
		stepRank = &rank
	}

	var documentType *enums.DocumentType
	if raw := strings.TrimSpace(r.FormValue("document_type")); raw != "" {
		docType := enums.DocumentType(raw)
		documentType = &docType
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at least one file required"))
		return
	}
	if c.upload.MaxFiles > 0 && len(files) > c.upload.MaxFiles {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many files in one request").
			WithDetails(map[string]any{"max_files": c.upload.MaxFiles}))
		return
	}

	uploaderName := middleware.ActorNameFromContext(ctx)
	views := make([]attachments.View, 0, len(files))
	for _, header := range files {
		view, err := c.uploadOne(r, header, attachments.UploadInput{
			JobID:        jobID,
			Folder:       folder,
			StepRank:     stepRank,
			DocumentType: documentType,
			UploaderID:   uploaderID,
			UploaderName: uploaderName,
		})
		if err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
		views = append(views, *view)
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"attachments": views})
}

func (c *AttachmentsController) uploadOne(r *http.Request, header *multipart.FileHeader, input attachments.UploadInput) (*attachments.View, error) {
	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable file part")
	}
	defer file.Close()

	input.FileName = header.Filename
	input.MimeType = header.Header.Get("Content-Type")
	input.Size = header.Size
	input.Body = file

	return c.svc.Upload(r.Context(), input)
}

func (c *AttachmentsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var folder *enums.AttachmentFolder
	if raw := strings.TrimSpace(r.URL.Query().Get("folder")); raw != "" {
		f := enums.AttachmentFolder(raw)
		folder = &f
	}

	views, err := c.svc.List(ctx, jobID, folder)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"attachments": views})
}

func (c *AttachmentsController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attachmentID, err := parseUUIDParam(r, "attachmentID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := c.svc.Delete(ctx, attachmentID, middleware.ActorNameFromContext(ctx)); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "deleted"})
}

func (c *AttachmentsController) DownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attachmentID, err := parseUUIDParam(r, "attachmentID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	url, err := c.svc.DownloadURL(ctx, attachmentID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"url": url})
}

// Deletions returns the deletion audit trail for a job, newest first.
func (c *AttachmentsController) Deletions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := parseUUIDParam(r, "jobID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	entries, err := c.audit.ListByJob(ctx, jobID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deletion log"))
		return
	}
	responses.WriteSuccess(w, map[string]any{"deletions": entries})
}
