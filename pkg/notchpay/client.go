package notchpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NghaReformer/eventune-backend/pkg/config"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
)

const defaultTimeout = 15 * time.Second

var (
	errPublicKeyRequired     = errors.New("notchpay public key is required")
	errWebhookSecretRequired = errors.New("notchpay webhook secret is required")
	errLoggerRequired        = errors.New("notchpay logger is required")
)

// Client exposes Notch Pay primitives with centralized auth, logging, and
// error mapping. Notch Pay has no refund API; refunds raised against it are
// handled out of band.
type Client struct {
	http          *http.Client
	baseURL       string
	publicKey     string
	webhookSecret string
	logger        *logger.Logger
}

// StatusComplete is the transaction status Notch Pay reports once funds have
// settled.
const StatusComplete = "complete"

// Payment is the subset of Notch Pay's payment resource the platform reads.
type Payment struct {
	Reference string          `json:"reference"`
	TrxRef    string          `json:"trx_ref"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Channel   string          `json:"channel"`
}

// Completed reports whether the provider considers the payment settled.
func (p *Payment) Completed() bool {
	return p != nil && p.Status == StatusComplete
}

type paymentEnvelope struct {
	Code        int      `json:"code"`
	Message     string   `json:"message"`
	Transaction *Payment `json:"transaction"`
}

// NewClient initializes the Notch Pay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.NotchPayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	publicKey := strings.TrimSpace(cfg.PublicKey)
	if publicKey == "" {
		return nil, errPublicKeyRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.notchpay.co"
	}

	c := &Client{
		http:          &http.Client{Timeout: defaultTimeout},
		baseURL:       baseURL,
		publicKey:     publicKey,
		webhookSecret: webhookSecret,
		logger:        logg,
	}

	logg.Info(ctx, "notchpay client initialized")
	return c, nil
}

// SigningSecret returns the Notch Pay webhook secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// GetPayment fetches a payment by its merchant reference. Used to
// cross-check webhook payloads against the provider's records.
func (c *Client) GetPayment(ctx context.Context, reference string) (*Payment, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	c.log(ctx, "request", "get_payment", map[string]any{"reference": reference})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+reference, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building notchpay request")
	}
	req.Header.Set("Authorization", c.publicKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log(ctx, "error", "get_payment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notchpay get payment failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading notchpay response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log(ctx, "error", "get_payment", map[string]any{
			"status": resp.StatusCode,
			"error":  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		})
		return nil, pkgerrors.New(domainCodeForStatus(resp.StatusCode), fmt.Sprintf("notchpay get payment failed (%d)", resp.StatusCode))
	}

	var envelope paymentEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding notchpay response")
	}
	if envelope.Transaction == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notchpay response missing transaction")
	}

	c.log(ctx, "response", "get_payment", map[string]any{
		"reference": envelope.Transaction.Reference,
		"status":    envelope.Transaction.Status,
	})
	return envelope.Transaction, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("notchpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("notchpay %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"key", "secret", "token", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
