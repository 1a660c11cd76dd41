package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prylogi/logi-backend/pkg/db/models"
	"github.com/prylogi/logi-backend/pkg/enums"
	"github.com/prylogi/logi-backend/pkg/pagination"
)

func setupJobsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	jobs := `
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  reference TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  agreed_price TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  scheduled_pickup_at DATETIME,
  scheduled_delivery_at DATETIME,
  current_step TEXT,
  terminal_completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(jobs).Error)
	return db
}

func newJob(t *testing.T, db *gorm.DB, reference string, createdAt time.Time) *models.Job {
	t.Helper()

	job := &models.Job{
		ID:           uuid.New(),
		Reference:    reference,
		CustomerName: "Acme Imports",
		Origin:       "Port Klang",
		Destination:  "Penang",
		AgreedPrice:  decimal.NewFromInt(1200),
		Currency:     "MYR",
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupJobsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Job{
		ID:           uuid.New(),
		Reference:    "JOB-1001",
		CustomerName: "Acme Imports",
		Origin:       "Port Klang",
		Destination:  "Penang",
		AgreedPrice:  decimal.NewFromInt(900),
		Currency:     "MYR",
	})
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "JOB-1001", byID.Reference)
	assert.Nil(t, byID.CurrentStep)

	byRef, err := repo.FindByReference(ctx, "JOB-1001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byRef.ID)
}

func TestRepositoryListPaginates(t *testing.T) {
	db := setupJobsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		newJob(t, db, "JOB-"+uuid.NewString()[:8], base.Add(time.Duration(i)*time.Minute))
	}

	page1, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page1.Jobs, 2)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: page1.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page2.Jobs, 2)

	// Newest first, no overlap across pages.
	assert.True(t, page1.Jobs[0].CreatedAt.After(page1.Jobs[1].CreatedAt))
	for _, a := range page1.Jobs {
		for _, b := range page2.Jobs {
			assert.NotEqual(t, a.ID, b.ID)
		}
	}
}

func TestRepositoryListFiltersByStep(t *testing.T) {
	db := setupJobsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	inTransit := newJob(t, db, "JOB-A", base)
	step := enums.TrackingStepInTransit
	require.NoError(t, db.Model(&models.Job{}).Where("id = ?", inTransit.ID).
		Update("current_step", step).Error)
	newJob(t, db, "JOB-B", base.Add(time.Minute))

	list, err := repo.List(ctx, pagination.Params{}, ListFilters{CurrentStep: &step})
	require.NoError(t, err)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, inTransit.ID, list.Jobs[0].ID)
	assert.Equal(t, 6, list.Jobs[0].CurrentStepRank)
}

func TestSummarizeDefaultsToFirstStep(t *testing.T) {
	summary := summarize(models.Job{ID: uuid.New(), Reference: "JOB-X"})
	assert.Equal(t, enums.TrackingStepCreated, summary.CurrentStep)
	assert.Equal(t, 1, summary.CurrentStepRank)
}
