package enums

import "fmt"

// PaymentOutcome is the normalized result of a verified provider webhook event.
type PaymentOutcome string

const (
	PaymentOutcomeCompleted         PaymentOutcome = "completed"
	PaymentOutcomeFailed            PaymentOutcome = "failed"
	PaymentOutcomeRefunded          PaymentOutcome = "refunded"
	PaymentOutcomePartiallyRefunded PaymentOutcome = "partially_refunded"
)

var validPaymentOutcomes = []PaymentOutcome{
	PaymentOutcomeCompleted,
	PaymentOutcomeFailed,
	PaymentOutcomeRefunded,
	PaymentOutcomePartiallyRefunded,
}

// String implements fmt.Stringer.
func (o PaymentOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known PaymentOutcome.
func (o PaymentOutcome) IsValid() bool {
	for _, candidate := range validPaymentOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParsePaymentOutcome converts raw input into a PaymentOutcome.
func ParsePaymentOutcome(value string) (PaymentOutcome, error) {
	for _, candidate := range validPaymentOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment outcome %q", value)
}
