package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/NghaReformer/eventune-backend/pkg/logger"
	"github.com/NghaReformer/eventune-backend/pkg/redis"
)

const (
	consumerScope = "notification"
	dedupTTL      = 24 * time.Hour
)

// Consumer drains the notification subscription and emails customers.
// Redis dedup keeps redeliveries from double-sending.
type Consumer struct {
	subscription *pubsub.Subscriber
	sender       mailSender
	store        redis.IdempotencyStore
	logg         *logger.Logger
}

type mailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

func NewConsumer(subscription *pubsub.Subscriber, sender mailSender, store redis.IdempotencyStore, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if store == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		sender:       sender,
		store:        store,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"template":   msg.Attributes["template"],
	})

	var notification Message
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		// A malformed message never gets better; drop it.
		c.logg.Error(logCtx, "decode notification", err)
		return processResult{ack: true}
	}
	if notification.ID == "" || notification.RecipientEmail == "" {
		c.logg.Warn(logCtx, "notification missing id or recipient")
		return processResult{ack: true}
	}

	key := c.store.IdempotencyKey(consumerScope, notification.ID)
	fresh, err := c.store.SetNX(ctx, key, "1", dedupTTL)
	if err != nil {
		c.logg.Error(logCtx, "dedup check", err)
		return processResult{nack: true}
	}
	if !fresh {
		c.logg.Info(logCtx, "notification already sent")
		return processResult{ack: true}
	}

	rendered, err := Render(notification)
	if err != nil {
		c.logg.Error(logCtx, "render notification", err)
		return processResult{ack: true}
	}

	if err := c.sender.Send(ctx, notification.RecipientEmail, rendered.Subject, rendered.Body); err != nil {
		c.logg.Error(logCtx, "send notification email", err)
		_ = c.store.Del(ctx, key)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "notification email sent")
	return processResult{ack: true}
}
