package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NghaReformer/eventune-backend/internal/payments"
	internalwebhooks "github.com/NghaReformer/eventune-backend/internal/webhooks"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
)

type stubVerifier struct {
	provider enums.PaymentProvider
	event    *payments.Event
	err      error
	body     []byte
}

func (s *stubVerifier) Provider() enums.PaymentProvider {
	return s.provider
}

func (s *stubVerifier) Verify(_ context.Context, body []byte, _ http.Header) (*payments.Event, error) {
	s.body = body
	if s.err != nil {
		return nil, s.err
	}
	return s.event, nil
}

type stubIngest struct {
	event  *payments.Event
	result *internalwebhooks.Result
	err    error
	calls  int
}

func (s *stubIngest) HandleEvent(_ context.Context, event *payments.Event) (*internalwebhooks.Result, error) {
	s.calls++
	s.event = event
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "webhooks-test", Output: io.Discard})
}

func postWebhook(t *testing.T, handler http.HandlerFunc, body string, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(body))
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestStripeWebhookAcknowledgesAppliedEvent(t *testing.T) {
	event := &payments.Event{
		Provider: enums.PaymentProviderStripe,
		DedupKey: "evt_1",
		OrderID:  uuid.New(),
		Outcome:  enums.PaymentOutcomeCompleted,
	}
	verifier := &stubVerifier{provider: enums.PaymentProviderStripe, event: event}
	svc := &stubIngest{result: &internalwebhooks.Result{}}
	handler := StripeWebhook(verifier, svc, testLogger())

	rec := postWebhook(t, handler, `{"id":"evt_1"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.calls)
	assert.Same(t, event, svc.event)
	assert.Equal(t, []byte(`{"id":"evt_1"}`), verifier.body)

	var envelope struct {
		Data ackResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Received)
	assert.False(t, envelope.Data.Duplicate)
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	verifier := &stubVerifier{
		provider: enums.PaymentProviderStripe,
		err:      pkgerrors.New(pkgerrors.CodeUnauthorized, "signature verification failed"),
	}
	svc := &stubIngest{}
	handler := StripeWebhook(verifier, svc, testLogger())

	rec := postWebhook(t, handler, `{"id":"evt_1"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestStripeWebhookReportsDuplicate(t *testing.T) {
	verifier := &stubVerifier{
		provider: enums.PaymentProviderStripe,
		event:    &payments.Event{Provider: enums.PaymentProviderStripe, DedupKey: "evt_1"},
	}
	svc := &stubIngest{result: &internalwebhooks.Result{Duplicate: true}}
	handler := StripeWebhook(verifier, svc, testLogger())

	rec := postWebhook(t, handler, `{"id":"evt_1"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data ackResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Duplicate)
}

func TestStripeWebhookSurfacesUnknownOrder(t *testing.T) {
	verifier := &stubVerifier{
		provider: enums.PaymentProviderStripe,
		event:    &payments.Event{Provider: enums.PaymentProviderStripe, DedupKey: "evt_1", OrderID: uuid.New()},
	}
	svc := &stubIngest{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	handler := StripeWebhook(verifier, svc, testLogger())

	rec := postWebhook(t, handler, `{"id":"evt_1"}`, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStripeWebhookWithoutServiceFailsClosed(t *testing.T) {
	handler := StripeWebhook(nil, nil, testLogger())

	rec := postWebhook(t, handler, `{"id":"evt_1"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type notchPaySecrets string

func (s notchPaySecrets) SigningSecret() string { return string(s) }

// End to end through the real NotchPay verifier: HMAC over the raw body,
// hex encoded in X-Notch-Signature.
func TestNotchPayWebhookVerifiesRealSignature(t *testing.T) {
	const secret = "np-webhook-secret"

	verifier, err := payments.NewNotchPayVerifier(notchPaySecrets(secret))
	require.NoError(t, err)

	orderID := uuid.New()
	body := `{"event":"payment.complete","data":{"reference":"np_ref_1","merchant_reference":"` + orderID.String() + `","amount":5000,"currency":"XAF"}}`

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	headers := http.Header{}
	headers.Set("X-Notch-Signature", hex.EncodeToString(mac.Sum(nil)))

	svc := &stubIngest{result: &internalwebhooks.Result{}}
	handler := NotchPayWebhook(verifier, svc, testLogger())

	rec := postWebhook(t, handler, body, headers)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.event)
	assert.Equal(t, enums.PaymentProviderNotchPay, svc.event.Provider)
	assert.Equal(t, orderID, svc.event.OrderID)
	assert.Equal(t, enums.PaymentOutcomeCompleted, svc.event.Outcome)
}

func TestNotchPayWebhookRejectsTamperedBody(t *testing.T) {
	const secret = "np-webhook-secret"

	verifier, err := payments.NewNotchPayVerifier(notchPaySecrets(secret))
	require.NoError(t, err)

	body := `{"event":"payment.complete","data":{"reference":"np_ref_1"}}`
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	headers := http.Header{}
	headers.Set("X-Notch-Signature", hex.EncodeToString(mac.Sum(nil)))

	svc := &stubIngest{}
	handler := NotchPayWebhook(verifier, svc, testLogger())

	rec := postWebhook(t, handler, body+" ", headers)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.calls)
}
