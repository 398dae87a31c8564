package webhooks

import (
	"net/http"

	"github.com/NghaReformer/eventune-backend/internal/payments"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
)

// NotchPayWebhook handles NotchPay payment events for mobile money flows.
func NotchPayWebhook(verifier payments.Verifier, svc ingestService, logg *logger.Logger) http.HandlerFunc {
	return handleWebhook(verifier, svc, logg)
}
