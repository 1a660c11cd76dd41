package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prylogi/logi-backend/pkg/enums"
)

// CreateJobInput carries the fields accepted when registering a shipment job.
type CreateJobInput struct {
	Reference           string
	CustomerName        string
	Origin              string
	Destination         string
	AgreedPrice         decimal.Decimal
	Currency            string
	ScheduledPickupAt   *time.Time
	ScheduledDeliveryAt *time.Time
}

// ListFilters describe the inputs supported by the jobs list.
type ListFilters struct {
	CurrentStep *enums.TrackingStep
	Terminal    *bool
	DateFrom    *time.Time
	DateTo      *time.Time
	Query       string
}

// JobSummary exposes the fields returned by the jobs list.
type JobSummary struct {
	ID                  uuid.UUID          `json:"id"`
	Reference           string             `json:"reference"`
	CustomerName        string             `json:"customer_name"`
	Origin              string             `json:"origin"`
	Destination         string             `json:"destination"`
	AgreedPrice         decimal.Decimal    `json:"agreed_price"`
	Currency            string             `json:"currency"`
	CurrentStep         enums.TrackingStep `json:"current_step"`
	CurrentStepRank     int                `json:"current_step_rank"`
	TerminalCompletedAt *time.Time         `json:"terminal_completed_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

// JobList wraps the paginated jobs plus the next page cursor.
type JobList struct {
	Jobs       []JobSummary `json:"jobs"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
