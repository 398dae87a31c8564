package orders

import (
	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// statusTransitions is the static whitelist for the business workflow axis.
// Anything absent is rejected; the table is never computed dynamically.
var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:        {enums.OrderStatusPaymentPending, enums.OrderStatusCancelled},
	enums.OrderStatusPaymentPending: {enums.OrderStatusPaid, enums.OrderStatusCancelled},
	enums.OrderStatusPaid:           {enums.OrderStatusInProgress, enums.OrderStatusCancelled, enums.OrderStatusRefunded},
	enums.OrderStatusInProgress:     {enums.OrderStatusReview, enums.OrderStatusCancelled},
	enums.OrderStatusReview:         {enums.OrderStatusRevision, enums.OrderStatusCompleted, enums.OrderStatusInProgress},
	enums.OrderStatusRevision:       {enums.OrderStatusInProgress},
	enums.OrderStatusCompleted:      {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:      {},
	enums.OrderStatusCancelled:      {},
	enums.OrderStatusRefunded:       {},
}

// paymentTransitions is the narrower machine for the money axis. Anything
// else is a provider replay or an out-of-order delivery and is skipped.
var paymentTransitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	enums.PaymentStatusPending: {enums.PaymentStatusPaid, enums.PaymentStatusFailed},
	enums.PaymentStatusPaid:    {enums.PaymentStatusRefunded, enums.PaymentStatusPartiallyRefunded},
}

// CanTransitionStatus reports whether the business status move is whitelisted.
func CanTransitionStatus(from, to enums.OrderStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether the payment status move is whitelisted.
func CanTransitionPayment(from, to enums.PaymentStatus) bool {
	for _, allowed := range paymentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedStatusTargets returns the whitelisted targets for a status. Used in
// rejection details so operators can see what was legal.
func AllowedStatusTargets(from enums.OrderStatus) []enums.OrderStatus {
	targets := statusTransitions[from]
	out := make([]enums.OrderStatus, len(targets))
	copy(out, targets)
	return out
}
