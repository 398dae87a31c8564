package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

func TestRenderOrderPaid(t *testing.T) {
	rendered, err := Render(Message{
		Template:       enums.NotificationOrderPaid,
		OrderNumber:    "EVT-ABC1234567",
		RecipientName:  "Ama K",
		RecipientEmail: "ama@example.com",
		Data:           map[string]string{"amount": "5000", "currency": "XAF"},
	})
	require.NoError(t, err)
	assert.Contains(t, rendered.Subject, "EVT-ABC1234567")
	assert.Contains(t, rendered.Body, "Hi Ama K")
	assert.Contains(t, rendered.Body, "5000 XAF")
}

func TestRenderOrderDelivered(t *testing.T) {
	rendered, err := Render(Message{
		Template:      enums.NotificationOrderDelivered,
		OrderNumber:   "EVT-ABC1234567",
		RecipientName: "Ama K",
	})
	require.NoError(t, err)
	assert.Contains(t, rendered.Subject, "ready")
	assert.Contains(t, rendered.Body, "delivered")
}

func TestRenderRefunds(t *testing.T) {
	full, err := Render(Message{
		Template:    enums.NotificationRefundFull,
		OrderNumber: "EVT-ABC1234567",
		Data:        map[string]string{"amount": "100", "currency": "USD"},
	})
	require.NoError(t, err)
	assert.Contains(t, full.Body, "in full")
	// Empty recipient name falls back to a neutral greeting.
	assert.Contains(t, full.Body, "Hi there")

	partial, err := Render(Message{
		Template:    enums.NotificationRefundPartial,
		OrderNumber: "EVT-ABC1234567",
		Data:        map[string]string{"amount": "40", "currency": "USD"},
	})
	require.NoError(t, err)
	assert.Contains(t, partial.Subject, "Partial refund")
	assert.Contains(t, partial.Body, "40 USD")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render(Message{Template: "price_drop"})
	require.Error(t, err)
}
