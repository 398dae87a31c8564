package payments

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// Event is the provider-neutral form of a verified webhook payload. Verifiers
// authenticate first, parse second, and only then produce one of these.
type Event struct {
	Provider  enums.PaymentProvider
	Type      string
	DedupKey  string
	OrderID   uuid.UUID
	Outcome   enums.PaymentOutcome
	Amount    decimal.NullDecimal
	Currency  string
	Reference string
	Raw       json.RawMessage
}

// Supported reports whether the event maps to an outcome the state machine
// consumes. Unsupported events are acknowledged and skipped.
func (e *Event) Supported() bool {
	return e != nil && e.Outcome.IsValid()
}

// HasOrder reports whether the payload carried a resolvable order id.
func (e *Event) HasOrder() bool {
	return e != nil && e.OrderID != uuid.Nil
}
