package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// StatusHistory is an append-only audit trail of order status changes.
// One row per transition; rows are never updated or deleted.
type StatusHistory struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	OldStatus enums.OrderStatus `gorm:"column:old_status;type:text;not null"`
	NewStatus enums.OrderStatus `gorm:"column:new_status;type:text;not null"`

	// ChangedBy is "system:<provider>" for webhook-driven transitions
	// and "staff:<email>" for admin ones.
	ChangedBy string  `gorm:"column:changed_by;not null"`
	Notes     *string `gorm:"column:notes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (StatusHistory) TableName() string {
	return "order_status_history"
}
