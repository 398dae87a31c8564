package webhooks

import (
	"context"
	"fmt"
	"time"

	"github.com/NghaReformer/eventune-backend/internal/orders"
	"github.com/NghaReformer/eventune-backend/internal/payments"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
	"github.com/NghaReformer/eventune-backend/pkg/metrics"
	"github.com/NghaReformer/eventune-backend/pkg/notchpay"
)

type orderApplier interface {
	ApplyPaymentEvent(ctx context.Context, event *payments.Event) (*orders.ApplyResult, error)
}

type dedupGuard interface {
	HasProcessed(ctx context.Context, provider enums.PaymentProvider, dedupKey string) (bool, error)
	MarkProcessed(ctx context.Context, provider enums.PaymentProvider, dedupKey string) error
}

// paymentLookup fetches the provider's own record of a payment. Notch Pay's
// HMAC covers the body but their docs still recommend re-reading the
// transaction before acting on a completion, so money-affecting events get
// cross-checked when a lookup is configured.
type paymentLookup interface {
	GetPayment(ctx context.Context, reference string) (*notchpay.Payment, error)
}

// PaymentNotifier is told about applied payment outcomes. Best-effort.
type PaymentNotifier interface {
	NotifyPaymentApplied(ctx context.Context, result *orders.ApplyResult)
}

// Result is what a processed webhook delivery amounted to.
type Result struct {
	Duplicate bool
	Ignored   bool
	Reason    string
	Apply     *orders.ApplyResult
}

type ServiceParams struct {
	Orders   orderApplier
	Guard    dedupGuard
	Logger   *logger.Logger
	Metrics  *metrics.WebhookMetrics
	Notifier PaymentNotifier
	// NotchPay is optional; when set, completed Notch Pay events are
	// verified against the provider's transaction record before applying.
	NotchPay paymentLookup
}

// Service applies verified provider events to orders exactly once.
type Service struct {
	orders   orderApplier
	guard    dedupGuard
	logg     *logger.Logger
	mets     *metrics.WebhookMetrics
	notifier PaymentNotifier
	notchpay paymentLookup
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order applier required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		orders:   params.Orders,
		guard:    params.Guard,
		logg:     params.Logger,
		mets:     params.Metrics,
		notifier: params.Notifier,
		notchpay: params.NotchPay,
	}, nil
}

// HandleEvent runs the dedup-check, apply, notify, dedup-mark sequence for a
// verified event. The caller has already authenticated the payload.
func (s *Service) HandleEvent(ctx context.Context, event *payments.Event) (*Result, error) {
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event required")
	}

	started := time.Now()
	ctx = s.logg.WithProvider(ctx, event.Provider.String())
	defer func() {
		s.mets.ObserveDuration(event.Provider.String(), time.Since(started))
	}()

	if !event.Supported() {
		// Providers send event types we never act on; acknowledge and move on
		// so they stop retrying.
		s.logg.Info(ctx, fmt.Sprintf("ignoring unsupported event type %s", event.Type))
		s.mets.IncReceived(event.Provider.String(), "ignored")
		return &Result{Ignored: true, Reason: "unsupported event type"}, nil
	}
	if !event.HasOrder() {
		s.logg.Warn(ctx, fmt.Sprintf("event %s carries no order reference", event.Type))
		s.mets.IncReceived(event.Provider.String(), "ignored")
		return &Result{Ignored: true, Reason: "no order reference"}, nil
	}

	seen, err := s.guard.HasProcessed(ctx, event.Provider, event.DedupKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	if seen {
		s.logg.Info(ctx, fmt.Sprintf("duplicate delivery %s", event.DedupKey))
		s.mets.IncReceived(event.Provider.String(), "duplicate")
		return &Result{Duplicate: true}, nil
	}

	if mismatch, err := s.crossCheckProvider(ctx, event); err != nil {
		s.mets.IncReceived(event.Provider.String(), "error")
		return nil, err
	} else if mismatch != "" {
		// Not marked processed: a later delivery that matches the
		// provider's record is still welcome.
		s.logg.Warn(ctx, fmt.Sprintf("event rejected, %s", mismatch))
		s.mets.IncReceived(event.Provider.String(), "rejected")
		return &Result{Ignored: true, Reason: mismatch}, nil
	}

	apply, err := s.orders.ApplyPaymentEvent(ctx, event)
	if err != nil {
		s.mets.IncReceived(event.Provider.String(), "error")
		return nil, err
	}

	if apply.Applied && s.notifier != nil {
		s.notifier.NotifyPaymentApplied(ctx, apply)
	}

	// A lost marker only costs an extra no-op replay, so a Redis failure
	// here is logged rather than surfaced as a 5xx to the provider.
	if err := s.guard.MarkProcessed(ctx, event.Provider, event.DedupKey); err != nil {
		s.logg.Error(ctx, "mark webhook processed", err)
	}

	outcome := "skipped"
	if apply.Applied {
		outcome = apply.Outcome.String()
	}
	s.mets.IncReceived(event.Provider.String(), outcome)
	return &Result{Apply: apply}, nil
}

// crossCheckProvider compares a completed Notch Pay event against the
// provider's transaction record. Returns a non-empty mismatch reason when the
// payload disagrees with what the provider reports.
func (s *Service) crossCheckProvider(ctx context.Context, event *payments.Event) (string, error) {
	if s.notchpay == nil ||
		event.Provider != enums.PaymentProviderNotchPay ||
		event.Outcome != enums.PaymentOutcomeCompleted ||
		event.Reference == "" {
		return "", nil
	}

	payment, err := s.notchpay.GetPayment(ctx, event.Reference)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cross-check notchpay payment")
	}
	if !payment.Completed() {
		return fmt.Sprintf("provider reports status %q for %s", payment.Status, event.Reference), nil
	}
	if event.Amount.Valid && !payment.Amount.Equal(event.Amount.Decimal) {
		return fmt.Sprintf("provider reports amount %s, payload claims %s",
			payment.Amount, event.Amount.Decimal), nil
	}
	return "", nil
}
