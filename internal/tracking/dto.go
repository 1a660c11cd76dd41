package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/internal/retention"
	"github.com/prylogi/logi-backend/pkg/enums"
)

// AdvanceInput carries everything needed to record a status change.
type AdvanceInput struct {
	JobID     uuid.UUID
	Step      enums.TrackingStep
	Notes     *string
	ActorID   uuid.UUID
	ActorName string
	// EventTime is when the change happened in the real world. Zero means now.
	EventTime time.Time
}

// EventView is a single history entry returned to clients.
type EventView struct {
	ID        uuid.UUID          `json:"id"`
	Step      enums.TrackingStep `json:"step"`
	StepRank  int                `json:"step_rank"`
	Notes     *string            `json:"notes,omitempty"`
	ActorID   uuid.UUID          `json:"actor_id"`
	ActorName string             `json:"actor_name"`
	EventTime time.Time          `json:"event_time"`
	CreatedAt time.Time          `json:"created_at"`
}

// StepStatus is the projection state of one catalog step.
type StepStatus string

const (
	StepStatusDone    StepStatus = "done"
	StepStatusCurrent StepStatus = "current"
	StepStatusPending StepStatus = "pending"
)

// TimelineEntry is one catalog step with its projection state.
type TimelineEntry struct {
	Step   enums.TrackingStep `json:"step"`
	Rank   int                `json:"rank"`
	Status StepStatus         `json:"status"`
}

// TimelineView combines the projected timeline with the raw history.
type TimelineView struct {
	JobID       uuid.UUID          `json:"job_id"`
	CurrentStep enums.TrackingStep `json:"current_step"`
	Timeline    []TimelineEntry    `json:"timeline"`
	Events      []EventView        `json:"events"`
}

// AdvanceResult reports what a status change produced.
type AdvanceResult struct {
	Event       EventView          `json:"event"`
	CurrentStep enums.TrackingStep `json:"current_step"`
	// Retention is set only on the advance that first reached the terminal
	// step and triggered the retention pass.
	Retention *retention.Report `json:"retention,omitempty"`
}
