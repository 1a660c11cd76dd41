package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/pkg/enums"
)

// TrackingEvent is one append-only entry in a job's step history. StepRank is
// captured at write time and never recomputed from the catalog for stored
// rows.
type TrackingEvent struct {
	ID       uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JobID    uuid.UUID          `gorm:"column:job_id;type:uuid;not null;index"`
	Step     enums.TrackingStep `gorm:"column:step;not null"`
	StepRank int                `gorm:"column:step_rank;not null"`
	Notes    *string            `gorm:"column:notes"`

	ActorID   uuid.UUID `gorm:"column:actor_id;type:uuid;not null"`
	ActorName string    `gorm:"column:actor_name;not null"`

	EventTime time.Time `gorm:"column:event_time;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
