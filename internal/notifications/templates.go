package notifications

import (
	"fmt"
	"strings"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// Rendered is a ready-to-send email body.
type Rendered struct {
	Subject string
	Body    string
}

// Render produces the email for a notification message. Data keys the
// template needs but the message lacks render as empty strings.
func Render(msg Message) (*Rendered, error) {
	name := strings.TrimSpace(msg.RecipientName)
	if name == "" {
		name = "there"
	}
	amount := msg.Data["amount"]
	currency := msg.Data["currency"]

	switch msg.Template {
	case enums.NotificationOrderPaid:
		return &Rendered{
			Subject: fmt.Sprintf("Payment received for order %s", msg.OrderNumber),
			Body: fmt.Sprintf(
				"Hi %s,\n\nWe received your payment of %s %s for order %s. "+
					"Our studio is lining up your song and you will hear from us as work begins.\n\n"+
					"You can follow progress any time with your order number.\n\nThe Eventune team",
				name, amount, currency, msg.OrderNumber),
		}, nil
	case enums.NotificationOrderDelivered:
		return &Rendered{
			Subject: fmt.Sprintf("Your song for order %s is ready", msg.OrderNumber),
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour commissioned song for order %s has been delivered. "+
					"Use your download link to grab the final files.\n\n"+
					"We hope it is everything you imagined.\n\nThe Eventune team",
				name, msg.OrderNumber),
		}, nil
	case enums.NotificationRefundFull:
		return &Rendered{
			Subject: fmt.Sprintf("Refund issued for order %s", msg.OrderNumber),
			Body: fmt.Sprintf(
				"Hi %s,\n\nWe have refunded %s %s for order %s in full and the order is now closed. "+
					"Depending on your payment method the money can take a few business days to arrive.\n\nThe Eventune team",
				name, amount, currency, msg.OrderNumber),
		}, nil
	case enums.NotificationRefundPartial:
		return &Rendered{
			Subject: fmt.Sprintf("Partial refund issued for order %s", msg.OrderNumber),
			Body: fmt.Sprintf(
				"Hi %s,\n\nWe have refunded %s %s for order %s. The rest of your order is unaffected "+
					"and work continues as planned.\n\nThe Eventune team",
				name, amount, currency, msg.OrderNumber),
		}, nil
	default:
		return nil, fmt.Errorf("unknown notification template %q", msg.Template)
	}
}
