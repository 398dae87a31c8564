package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NghaReformer/eventune-backend/internal/authz"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// CreateOrderInput carries the checkout fields needed to originate an order.
type CreateOrderInput struct {
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  *string
	PackageTier    enums.PackageTier
	SongTitle      *string
	Occasion       *string
	Genre          *string
	BriefNotes     *string
	Currency       enums.Currency
	AmountExpected decimal.Decimal
	Provider       *enums.PaymentProvider
	Reference      *string
}

// AdminStatusInput captures an admin-initiated business status change.
type AdminStatusInput struct {
	OrderID   uuid.UUID
	NewStatus enums.OrderStatus
	Note      *string
	Actor     authz.Actor
}

// MarkDeliveredInput captures the deliverable handoff command.
type MarkDeliveredInput struct {
	OrderID        uuid.UUID
	DeliverableKey string
	Note           *string
	Actor          authz.Actor
}

// StaffRefundInput records a refund that already settled at the payment
// provider. Reference is the provider refund id, or the out-of-band ticket
// for manual refunds.
type StaffRefundInput struct {
	OrderID   uuid.UUID
	Amount    decimal.Decimal
	Full      bool
	Reference string
	Reason    string
	Actor     authz.Actor
}

// ListFilters describe the inputs supported by the admin orders list.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Provider      *enums.PaymentProvider
	Query         string
}

// OrderSummary exposes the aggregated fields returned in the admin list.
type OrderSummary struct {
	ID             uuid.UUID              `json:"id"`
	OrderNumber    string                 `json:"order_number"`
	CustomerName   string                 `json:"customer_name"`
	CustomerEmail  string                 `json:"customer_email"`
	PackageTier    enums.PackageTier      `json:"package_tier"`
	Currency       enums.Currency         `json:"currency"`
	AmountExpected decimal.Decimal        `json:"amount_expected"`
	AmountPaid     *decimal.Decimal       `json:"amount_paid,omitempty"`
	Status         enums.OrderStatus      `json:"status"`
	PaymentStatus  enums.PaymentStatus    `json:"payment_status"`
	Provider       *enums.PaymentProvider `json:"payment_provider,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// PublicOrderStatus is the read-only customer-facing view keyed by order number.
type PublicOrderStatus struct {
	OrderNumber    string              `json:"order_number"`
	PackageTier    enums.PackageTier   `json:"package_tier"`
	Status         enums.OrderStatus   `json:"status"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	Currency       enums.Currency      `json:"currency"`
	AmountExpected decimal.Decimal     `json:"amount_expected"`
	PaidAt         *time.Time          `json:"paid_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
}

// HistoryEntry is one audit-trail row in the admin order detail.
type HistoryEntry struct {
	OldStatus enums.OrderStatus `json:"old_status"`
	NewStatus enums.OrderStatus `json:"new_status"`
	ChangedBy string            `json:"changed_by"`
	Notes     *string           `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// ApplyResult reports what a webhook event did to an order.
type ApplyResult struct {
	OrderID       uuid.UUID
	OrderNumber   string
	CustomerEmail string
	CustomerName  string
	Outcome       enums.PaymentOutcome
	Amount        decimal.Decimal
	Currency      enums.Currency
	Applied       bool
	Skipped       bool
	SkipReason    string
	NewStatus     enums.OrderStatus
	PaymentStatus enums.PaymentStatus
}
