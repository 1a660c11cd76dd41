package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/internal/attachments"
	"github.com/prylogi/logi-backend/internal/audit"
	"github.com/prylogi/logi-backend/internal/jobs"
	"github.com/prylogi/logi-backend/internal/tracking"
	pkgAuth "github.com/prylogi/logi-backend/pkg/auth"
	"github.com/prylogi/logi-backend/pkg/config"
	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/logger"
	"github.com/prylogi/logi-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubJobsService struct{}

func (stubJobsService) Create(ctx context.Context, input jobs.CreateJobInput) (*models.Job, error) {
	return &models.Job{ID: uuid.New(), Reference: input.Reference}, nil
}

func (stubJobsService) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return &models.Job{ID: id}, nil
}

func (stubJobsService) List(ctx context.Context, params pagination.Params, filters jobs.ListFilters) (*jobs.JobList, error) {
	return &jobs.JobList{}, nil
}

type stubTrackingService struct{}

func (stubTrackingService) Advance(ctx context.Context, input tracking.AdvanceInput) (*tracking.AdvanceResult, error) {
	return &tracking.AdvanceResult{CurrentStep: input.Step}, nil
}

func (stubTrackingService) History(ctx context.Context, jobID uuid.UUID) ([]tracking.EventView, error) {
	return nil, nil
}

func (stubTrackingService) Timeline(ctx context.Context, jobID uuid.UUID) (*tracking.TimelineView, error) {
	return &tracking.TimelineView{JobID: jobID}, nil
}

func (stubTrackingService) RepairPointer(ctx context.Context, jobID uuid.UUID) (enums.TrackingStep, error) {
	return enums.TrackingStepCreated, nil
}

type stubAttachmentsService struct{}

func (stubAttachmentsService) Upload(ctx context.Context, input attachments.UploadInput) (*attachments.View, error) {
	panic("unimplemented")
}

func (stubAttachmentsService) List(ctx context.Context, jobID uuid.UUID, folder *enums.AttachmentFolder) ([]attachments.View, error) {
	return nil, nil
}

func (stubAttachmentsService) Delete(ctx context.Context, attachmentID uuid.UUID, actorName string) error {
	return nil
}

func (stubAttachmentsService) DownloadURL(ctx context.Context, attachmentID uuid.UUID) (string, error) {
	return "https://storage.example.com/signed", nil
}

type stubDeletionRecorder struct{}

func (stubDeletionRecorder) Record(ctx context.Context, entry audit.DeletionEntry) error {
	return nil
}

func (stubDeletionRecorder) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.DeletionLog, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Upload: config.UploadConfig{MaxFileBytes: 5 << 20, MaxFiles: 5},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		stubPinger{},
		stubPinger{},
		stubJobsService{},
		stubTrackingService{},
		stubAttachmentsService{},
		stubDeletionRecorder{},
	)
}

func TestJobsRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestViewerCanReadJobs(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for viewer list got %d", resp.Code)
	}
}

func TestViewerCannotCreateJobs(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"reference":"LOGI-1001","customer_name":"Acme","origin":"Karachi","destination":"Lahore","agreed_price":"1500.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleViewer))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer create got %d", resp.Code)
	}
}

func TestOpsCanCreateJobs(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"reference":"LOGI-1001","customer_name":"Acme","origin":"Karachi","destination":"Lahore","agreed_price":"1500.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleOps))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for ops create got %d", resp.Code)
	}
}

func TestRepairPointerRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	path := "/api/v1/jobs/" + uuid.NewString() + "/tracking/repair"

	manager := httptest.NewRequest(http.MethodPost, path, nil)
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager repair got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, path, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin repair got %d", resp.Code)
	}
}

func TestAdvanceRequiresMutator(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	path := "/api/v1/jobs/" + uuid.NewString() + "/tracking/events"

	viewer := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"step":"in-transit"}`))
	viewer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleViewer))
	viewer.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, viewer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer advance got %d", resp.Code)
	}

	ops := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"step":"in-transit"}`))
	ops.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleOps))
	ops.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, ops)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for ops advance got %d", resp.Code)
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		ActorID:   uuid.New(),
		ActorName: "Test Operator",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
