// Package webhooks exposes the provider webhook endpoints. Each endpoint
// authenticates the raw request with its provider verifier before any
// payload field is trusted, then hands the normalized event to the
// ingestion service.
package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/NghaReformer/eventune-backend/api/responses"
	"github.com/NghaReformer/eventune-backend/internal/payments"
	"github.com/NghaReformer/eventune-backend/internal/webhooks"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
)

// maxBodyBytes caps webhook payload reads; both providers send payloads
// well under this.
const maxBodyBytes = 1 << 20

type ingestService interface {
	HandleEvent(ctx context.Context, event *payments.Event) (*webhooks.Result, error)
}

type ackResponse struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func handleWebhook(verifier payments.Verifier, svc ingestService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		event, err := verifier.Verify(ctx, body, r.Header)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.HandleEvent(ctx, event)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, ackResponse{
			Received:  true,
			Duplicate: result.Duplicate,
			Ignored:   result.Ignored,
			Reason:    result.Reason,
		})
	}
}
