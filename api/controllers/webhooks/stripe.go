package webhooks

import (
	"net/http"

	"github.com/NghaReformer/eventune-backend/internal/payments"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
)

// StripeWebhook handles Stripe payment lifecycle events.
func StripeWebhook(verifier payments.Verifier, svc ingestService, logg *logger.Logger) http.HandlerFunc {
	return handleWebhook(verifier, svc, logg)
}
