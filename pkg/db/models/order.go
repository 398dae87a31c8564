package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// Order is one commissioned-song purchase and its fulfillment record.
// Rows are never deleted; cancellation and refund are terminal statuses.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string    `gorm:"column:order_number;not null;unique"`

	CustomerName  string  `gorm:"column:customer_name;not null"`
	CustomerEmail string  `gorm:"column:customer_email;not null"`
	CustomerPhone *string `gorm:"column:customer_phone"`

	PackageTier enums.PackageTier `gorm:"column:package_tier;type:text;not null"`
	SongTitle   *string           `gorm:"column:song_title"`
	Occasion    *string           `gorm:"column:occasion"`
	Genre       *string           `gorm:"column:genre"`
	BriefNotes  *string           `gorm:"column:brief_notes"`

	Currency       enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	AmountExpected decimal.Decimal     `gorm:"column:amount_expected;type:numeric(12,2);not null"`
	AmountPaid     decimal.NullDecimal `gorm:"column:amount_paid;type:numeric(12,2)"`

	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`

	PaymentProvider  *enums.PaymentProvider `gorm:"column:payment_provider;type:text"`
	PaymentReference *string                `gorm:"column:payment_reference"`
	PaidAt           *time.Time             `gorm:"column:paid_at"`

	RefundAmount    decimal.NullDecimal `gorm:"column:refund_amount;type:numeric(12,2)"`
	RefundReason    *string             `gorm:"column:refund_reason"`
	RefundReference *string             `gorm:"column:refund_reference"`
	RefundedAt      *time.Time          `gorm:"column:refunded_at"`

	DeliverableKey *string    `gorm:"column:deliverable_key"`
	DeliveredAt    *time.Time `gorm:"column:delivered_at"`

	History []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name regardless of pluralization settings.
func (Order) TableName() string {
	return "orders"
}
