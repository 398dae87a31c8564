package payments

import (
	"context"
	"net/http"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// Verifier authenticates a raw webhook request for one provider and
// normalizes its payload. Verification failures must surface before any
// payload field is trusted.
type Verifier interface {
	Provider() enums.PaymentProvider
	Verify(ctx context.Context, body []byte, headers http.Header) (*Event, error)
}
