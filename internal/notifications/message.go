package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// Message is the envelope published to the notification topic. The worker
// renders and sends one email per message.
type Message struct {
	ID             string                     `json:"id"`
	Template       enums.NotificationTemplate `json:"template"`
	OrderID        uuid.UUID                  `json:"order_id"`
	OrderNumber    string                     `json:"order_number"`
	RecipientEmail string                     `json:"recipient_email"`
	RecipientName  string                     `json:"recipient_name"`
	Data           map[string]string          `json:"data,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
}
