package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/NghaReformer/eventune-backend/internal/orders"
	"github.com/NghaReformer/eventune-backend/internal/refunds"
	"github.com/NghaReformer/eventune-backend/pkg/db/models"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
)

const publishTimeout = 10 * time.Second

type messagePublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// Dispatcher publishes notification messages for the worker to send.
// All notifications are best-effort: a publish failure is logged, never
// surfaced to the caller.
type Dispatcher struct {
	publisher messagePublisher
	logg      *logger.Logger
	// wait blocks on the publish result; tests swap it out.
	wait func(ctx context.Context, result *pubsub.PublishResult) error
}

func NewDispatcher(publisher messagePublisher, logg *logger.Logger) (*Dispatcher, error) {
	if publisher == nil {
		return nil, fmt.Errorf("notification publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		publisher: publisher,
		logg:      logg,
		wait: func(ctx context.Context, result *pubsub.PublishResult) error {
			_, err := result.Get(ctx)
			return err
		},
	}, nil
}

// NotifyPaymentApplied emits the customer email matching an applied webhook
// outcome. Failed payments stay silent; customers see those on the payment
// page itself.
func (d *Dispatcher) NotifyPaymentApplied(ctx context.Context, result *orders.ApplyResult) {
	if result == nil {
		return
	}
	var template enums.NotificationTemplate
	switch result.Outcome {
	case enums.PaymentOutcomeCompleted:
		template = enums.NotificationOrderPaid
	case enums.PaymentOutcomeRefunded:
		template = enums.NotificationRefundFull
	case enums.PaymentOutcomePartiallyRefunded:
		template = enums.NotificationRefundPartial
	default:
		return
	}
	d.send(ctx, Message{
		Template:       template,
		OrderID:        result.OrderID,
		OrderNumber:    result.OrderNumber,
		RecipientEmail: result.CustomerEmail,
		RecipientName:  result.CustomerName,
		Data: map[string]string{
			"amount":   result.Amount.String(),
			"currency": result.Currency.String(),
		},
	})
}

// NotifyDelivered emits the deliverable handoff email.
func (d *Dispatcher) NotifyDelivered(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	d.send(ctx, Message{
		Template:       enums.NotificationOrderDelivered,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		RecipientEmail: order.CustomerEmail,
		RecipientName:  order.CustomerName,
	})
}

// NotifyRefund emits the email for a staff-initiated refund.
func (d *Dispatcher) NotifyRefund(ctx context.Context, result *refunds.Result) {
	if result == nil {
		return
	}
	template := enums.NotificationRefundPartial
	if result.Full {
		template = enums.NotificationRefundFull
	}
	d.send(ctx, Message{
		Template:       template,
		OrderID:        result.OrderID,
		OrderNumber:    result.OrderNumber,
		RecipientEmail: result.CustomerEmail,
		RecipientName:  result.CustomerName,
		Data: map[string]string{
			"amount":   result.Amount.String(),
			"currency": result.Currency.String(),
		},
	})
}

func (d *Dispatcher) send(ctx context.Context, msg Message) {
	if msg.RecipientEmail == "" {
		return
	}
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(msg)
	if err != nil {
		d.logg.Error(ctx, "encode notification", err)
		return
	}

	logCtx := d.logg.WithFields(context.WithoutCancel(ctx), map[string]any{
		"notification_id": msg.ID,
		"template":        msg.Template,
		"order_id":        msg.OrderID,
	})

	// Detached from the request so an early handler return cannot cancel
	// the publish.
	go func() {
		publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		result := d.publisher.Publish(publishCtx, &pubsub.Message{
			Data:       payload,
			Attributes: map[string]string{"template": msg.Template.String()},
		})
		if err := d.wait(publishCtx, result); err != nil {
			d.logg.Error(logCtx, "publish notification", err)
			return
		}
		d.logg.Info(logCtx, "notification published")
	}()
}
