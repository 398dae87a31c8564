package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
)

type fakeStore struct {
	keys   map[string]bool
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: make(map[string]bool)}
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	return f.keys[key], nil
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "et:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+"|"+subject)
	return nil
}

func newTestConsumer(t *testing.T, sender *fakeSender, store *fakeStore) *Consumer {
	t.Helper()
	// The subscriber is only touched by Run; process is exercised directly.
	consumer := &Consumer{
		subscription: &pubsub.Subscriber{},
		sender:       sender,
		store:        store,
		logg:         logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard}),
	}
	return consumer
}

func notificationMessage(t *testing.T, id string) *pubsub.Message {
	t.Helper()
	payload, err := json.Marshal(Message{
		ID:             id,
		Template:       enums.NotificationOrderPaid,
		OrderNumber:    "EVT-ABC1234567",
		RecipientEmail: "ama@example.com",
		RecipientName:  "Ama K",
		Data:           map[string]string{"amount": "5000", "currency": "XAF"},
	})
	require.NoError(t, err)
	return &pubsub.Message{Data: payload, Attributes: map[string]string{"template": "order_paid"}}
}

func TestConsumerSendsEmail(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStore()
	consumer := newTestConsumer(t, sender, store)

	result := consumer.process(context.Background(), notificationMessage(t, "n-1"))
	assert.True(t, result.ack)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "ama@example.com")
	assert.True(t, store.keys["et:idempotency:notification:n-1"])
}

func TestConsumerDeduplicates(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStore()
	consumer := newTestConsumer(t, sender, store)

	first := consumer.process(context.Background(), notificationMessage(t, "n-1"))
	second := consumer.process(context.Background(), notificationMessage(t, "n-1"))
	assert.True(t, first.ack)
	assert.True(t, second.ack)
	assert.Len(t, sender.sent, 1, "redelivery must not send twice")
}

func TestConsumerAcksMalformedPayload(t *testing.T) {
	sender := &fakeSender{}
	consumer := newTestConsumer(t, sender, newFakeStore())

	result := consumer.process(context.Background(), &pubsub.Message{Data: []byte("not json")})
	assert.True(t, result.ack)
	assert.Empty(t, sender.sent)
}

func TestConsumerAcksMissingRecipient(t *testing.T) {
	sender := &fakeSender{}
	consumer := newTestConsumer(t, sender, newFakeStore())

	payload, err := json.Marshal(Message{ID: "n-2", Template: enums.NotificationOrderPaid})
	require.NoError(t, err)

	result := consumer.process(context.Background(), &pubsub.Message{Data: payload})
	assert.True(t, result.ack)
	assert.Empty(t, sender.sent)
}

func TestConsumerNacksOnSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	store := newFakeStore()
	consumer := newTestConsumer(t, sender, store)

	result := consumer.process(context.Background(), notificationMessage(t, "n-3"))
	assert.True(t, result.nack)
	// Marker is released so the redelivery can retry the send.
	assert.False(t, store.keys["et:idempotency:notification:n-3"])
}

func TestConsumerNacksOnDedupFailure(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStore()
	store.setErr = errors.New("redis down")
	consumer := newTestConsumer(t, sender, store)

	result := consumer.process(context.Background(), notificationMessage(t, "n-4"))
	assert.True(t, result.nack)
	assert.Empty(t, sender.sent)
}
