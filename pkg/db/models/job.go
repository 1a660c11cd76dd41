package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prylogi/logi-backend/pkg/enums"
)

// Job is a shipment job owned by the intake surface. The tracking core only
// reads and writes CurrentStep and TerminalCompletedAt.
type Job struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference    string    `gorm:"column:reference;not null;unique"`
	CustomerName string    `gorm:"column:customer_name;not null"`
	Origin       string    `gorm:"column:origin;not null"`
	Destination  string    `gorm:"column:destination;not null"`

	AgreedPrice decimal.Decimal `gorm:"column:agreed_price;type:numeric(12,2);not null"`
	Currency    string          `gorm:"column:currency;not null;default:'USD'"`

	ScheduledPickupAt   *time.Time `gorm:"column:scheduled_pickup_at"`
	ScheduledDeliveryAt *time.Time `gorm:"column:scheduled_delivery_at"`

	// CurrentStep is the current-step pointer. NULL means the job has never
	// been advanced and projects as the first catalog step.
	CurrentStep *enums.TrackingStep `gorm:"column:current_step"`

	// TerminalCompletedAt is stamped once, on the first arrival at the
	// terminal step, and never changes afterwards.
	TerminalCompletedAt *time.Time `gorm:"column:terminal_completed_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
