package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
)

const notchPaySignatureHeader = "X-Notch-Signature"

// Notch Pay webhook event names the lifecycle consumes.
const (
	notchPayEventComplete = "payment.complete"
	notchPayEventFailed   = "payment.failed"
	notchPayEventCanceled = "payment.canceled"
	notchPayEventExpired  = "payment.expired"
)

type notchPaySecretSource interface {
	SigningSecret() string
}

type notchPayVerifier struct {
	secrets notchPaySecretSource
}

// notchPayEnvelope is the wire shape Notch Pay posts. The merchant reference
// carries our order id.
type notchPayEnvelope struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	Data  struct {
		Reference         string              `json:"reference"`
		TrxRef            string              `json:"trx_ref"`
		MerchantReference string              `json:"merchant_reference"`
		Status            string              `json:"status"`
		Amount            decimal.NullDecimal `json:"amount"`
		Currency          string              `json:"currency"`
	} `json:"data"`
}

// NewNotchPayVerifier builds the mobile-money verifier backed by an
// HMAC-SHA256 over the raw body.
func NewNotchPayVerifier(secrets notchPaySecretSource) (Verifier, error) {
	if secrets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notchpay secret source required")
	}
	return &notchPayVerifier{secrets: secrets}, nil
}

func (v *notchPayVerifier) Provider() enums.PaymentProvider {
	return enums.PaymentProviderNotchPay
}

func (v *notchPayVerifier) Verify(ctx context.Context, body []byte, headers http.Header) (*Event, error) {
	sigHeader := strings.TrimSpace(headers.Get(notchPaySignatureHeader))
	if sigHeader == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "notchpay signature missing")
	}
	if !validNotchPaySignature(body, v.secrets.SigningSecret(), sigHeader) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid notchpay signature")
	}

	var envelope notchPayEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode notchpay event")
	}

	reference := strings.TrimSpace(envelope.Data.Reference)
	if reference == "" {
		reference = strings.TrimSpace(envelope.Data.TrxRef)
	}

	dedup := strings.TrimSpace(envelope.ID)
	if dedup == "" {
		// Notch Pay does not always carry an event id; the transaction
		// reference plus event name is stable across redeliveries.
		dedup = fmt.Sprintf("%s:%s", reference, envelope.Event)
	}

	normalized := &Event{
		Provider:  enums.PaymentProviderNotchPay,
		Type:      envelope.Event,
		DedupKey:  dedup,
		Reference: reference,
		Currency:  strings.ToUpper(strings.TrimSpace(envelope.Data.Currency)),
		Amount:    envelope.Data.Amount,
		Raw:       json.RawMessage(body),
	}

	if merchantRef := strings.TrimSpace(envelope.Data.MerchantReference); merchantRef != "" {
		if id, err := uuid.Parse(merchantRef); err == nil {
			normalized.OrderID = id
		}
	}

	switch envelope.Event {
	case notchPayEventComplete:
		normalized.Outcome = enums.PaymentOutcomeCompleted
	case notchPayEventFailed, notchPayEventCanceled, notchPayEventExpired:
		normalized.Outcome = enums.PaymentOutcomeFailed
	}

	return normalized, nil
}

func validNotchPaySignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(header)))
}
