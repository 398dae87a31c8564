package enums

import "fmt"

// NotificationTemplate names the customer-facing messages the worker can send.
type NotificationTemplate string

const (
	NotificationOrderPaid      NotificationTemplate = "order_paid"
	NotificationOrderDelivered NotificationTemplate = "order_delivered"
	NotificationRefundFull     NotificationTemplate = "refund_full"
	NotificationRefundPartial  NotificationTemplate = "refund_partial"
)

var validNotificationTemplates = []NotificationTemplate{
	NotificationOrderPaid,
	NotificationOrderDelivered,
	NotificationRefundFull,
	NotificationRefundPartial,
}

// String implements fmt.Stringer.
func (n NotificationTemplate) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationTemplate.
func (n NotificationTemplate) IsValid() bool {
	for _, candidate := range validNotificationTemplates {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationTemplate converts raw input into a NotificationTemplate.
func ParseNotificationTemplate(value string) (NotificationTemplate, error) {
	for _, candidate := range validNotificationTemplates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification template %q", value)
}
