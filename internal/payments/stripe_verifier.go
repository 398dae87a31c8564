package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
)

const stripeSignatureHeader = "Stripe-Signature"

// Stripe event types the lifecycle consumes. Anything else is acknowledged
// and skipped.
const (
	stripeEventPaymentSucceeded = "payment_intent.succeeded"
	stripeEventPaymentFailed    = "payment_intent.payment_failed"
	stripeEventChargeRefunded   = "charge.refunded"
)

type stripeSecretSource interface {
	SigningSecret() string
}

type stripeVerifier struct {
	secrets stripeSecretSource
}

// NewStripeVerifier builds the card-provider verifier backed by Stripe's
// signed webhook scheme.
func NewStripeVerifier(secrets stripeSecretSource) (Verifier, error) {
	if secrets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe secret source required")
	}
	return &stripeVerifier{secrets: secrets}, nil
}

func (v *stripeVerifier) Provider() enums.PaymentProvider {
	return enums.PaymentProviderStripe
}

func (v *stripeVerifier) Verify(ctx context.Context, body []byte, headers http.Header) (*Event, error) {
	sigHeader := headers.Get(stripeSignatureHeader)
	if sigHeader == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "stripe signature missing")
	}

	// The endpoint's API version is pinned in the Stripe dashboard and may
	// trail the SDK's, so the version mismatch check is skipped.
	event, err := webhook.ConstructEventWithOptions(body, sigHeader, v.secrets.SigningSecret(), webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "verify stripe signature")
	}

	normalized := &Event{
		Provider: enums.PaymentProviderStripe,
		Type:     string(event.Type),
		DedupKey: event.ID,
		Raw:      event.Data.Raw,
	}

	switch string(event.Type) {
	case stripeEventPaymentSucceeded, stripeEventPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent")
		}
		normalized.Reference = intent.ID
		normalized.OrderID = orderIDFromMetadata(intent.Metadata)
		normalized.Currency = strings.ToUpper(string(intent.Currency))
		normalized.Amount = normalizeMinorAmount(intent.Amount, normalized.Currency)
		if string(event.Type) == stripeEventPaymentSucceeded {
			normalized.Outcome = enums.PaymentOutcomeCompleted
		} else {
			normalized.Outcome = enums.PaymentOutcomeFailed
		}

	case stripeEventChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode charge")
		}
		normalized.Reference = charge.ID
		normalized.OrderID = orderIDFromMetadata(charge.Metadata)
		normalized.Currency = strings.ToUpper(string(charge.Currency))
		normalized.Amount = normalizeMinorAmount(charge.AmountRefunded, normalized.Currency)
		if charge.AmountRefunded >= charge.Amount {
			normalized.Outcome = enums.PaymentOutcomeRefunded
		} else {
			normalized.Outcome = enums.PaymentOutcomePartiallyRefunded
		}
	}

	return normalized, nil
}

func orderIDFromMetadata(metadata map[string]string) uuid.UUID {
	raw, ok := metadata["order_id"]
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// normalizeMinorAmount converts a provider minor-unit amount into a decimal
// using the currency's exponent. XAF has no minor unit, so amounts pass
// through whole.
func normalizeMinorAmount(amount int64, currency string) decimal.NullDecimal {
	minor := int32(2)
	if parsed, err := enums.ParseCurrency(currency); err == nil {
		minor = parsed.MinorUnits()
	}
	return decimal.NewNullDecimal(decimal.New(amount, -minor))
}
