package refunds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/NghaReformer/eventune-backend/internal/authz"
	"github.com/NghaReformer/eventune-backend/internal/orders"
	"github.com/NghaReformer/eventune-backend/pkg/db/models"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
	"github.com/NghaReformer/eventune-backend/pkg/metrics"
)

const minReasonLength = 10

// orderApplier records a provider-confirmed refund against the order. The
// order lifecycle service owns all status and history writes; refunds only
// hand it the settled facts.
type orderApplier interface {
	ApplyStaffRefund(ctx context.Context, input orders.StaffRefundInput) (*models.Order, error)
}

// Notifier is told about completed refunds. Best-effort.
type Notifier interface {
	NotifyRefund(ctx context.Context, result *Result)
}

// Input is a staff-initiated refund command. A nil Amount means a full
// refund. Manual records a refund that was already executed out of band,
// which is the only way to refund providers without a refund API.
type Input struct {
	OrderID         uuid.UUID
	Amount          *decimal.Decimal
	Reason          string
	Manual          bool
	ManualReference *string
	Actor           authz.Actor
}

// Result reports what the refund did to the order.
type Result struct {
	OrderID       uuid.UUID
	OrderNumber   string
	CustomerEmail string
	CustomerName  string
	Amount        decimal.Decimal
	Currency      enums.Currency
	Full          bool
	Reference     string
	PaymentStatus enums.PaymentStatus
	OrderStatus   enums.OrderStatus
}

type ServiceParams struct {
	Repo     orders.Repository
	Orders   orderApplier
	Authz    authz.Authorizer
	Stripe   StripeRefundClient
	Logger   *logger.Logger
	Metrics  *metrics.WebhookMetrics
	Notifier Notifier
}

// Service executes staff refunds against the payment provider and the order
// record.
type Service struct {
	repo     orders.Repository
	orders   orderApplier
	az       authz.Authorizer
	stripe   StripeRefundClient
	logg     *logger.Logger
	mets     *metrics.WebhookMetrics
	notifier Notifier
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order applier required")
	}
	if params.Authz == nil {
		return nil, fmt.Errorf("authorizer required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe refund client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		repo:     params.Repo,
		orders:   params.Orders,
		az:       params.Authz,
		stripe:   params.Stripe,
		logg:     params.Logger,
		mets:     params.Metrics,
		notifier: params.Notifier,
	}, nil
}

// Refund runs the full command: validate, charge back at the provider, then
// persist the refund and cancel the workflow when the refund is total.
func (s *Service) Refund(ctx context.Context, input Input) (*Result, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(strings.TrimSpace(input.Reason)) < minReasonLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("refund reason must be at least %d characters", minReasonLength))
	}
	if input.Amount != nil && input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if !s.az.HasPermission(input.Actor, authz.ActionRefund) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to refund orders")
	}

	order, err := s.loadRefundable(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	amountPaid := order.AmountPaid.Decimal
	refundAmount := amountPaid
	if input.Amount != nil && input.Amount.LessThan(amountPaid) {
		refundAmount = *input.Amount
	}
	full := refundAmount.GreaterThanOrEqual(amountPaid)

	reference, err := s.executeProviderRefund(ctx, order, refundAmount, input)
	if err != nil {
		return nil, err
	}

	result := &Result{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerEmail: order.CustomerEmail,
		CustomerName:  order.CustomerName,
		Amount:        refundAmount,
		Currency:      order.Currency,
		Full:          full,
		Reference:     reference,
	}

	updated, err := s.orders.ApplyStaffRefund(ctx, orders.StaffRefundInput{
		OrderID:   order.ID,
		Amount:    refundAmount,
		Full:      full,
		Reference: reference,
		Reason:    input.Reason,
		Actor:     input.Actor,
	})
	if err != nil {
		// Money already moved at the provider. Surface this loudly so
		// operations can reconcile by hand.
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Error(ctx, "refund executed at provider but not persisted", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeReconciliation, err, "refund recorded at provider but not on the order").
			WithDetails(map[string]any{
				"order_id":          order.ID,
				"provider_refund":   reference,
				"reconciliation":    "required",
				"refunded_amount":   refundAmount,
				"refunded_currency": order.Currency,
			})
	}
	result.PaymentStatus = updated.PaymentStatus
	result.OrderStatus = updated.Status

	kind := "partial"
	if full {
		kind = "full"
	}
	if order.PaymentProvider != nil {
		s.mets.IncRefund(order.PaymentProvider.String(), kind)
	}
	if s.notifier != nil {
		s.notifier.NotifyRefund(ctx, result)
	}
	return result, nil
}

func (s *Service) loadRefundable(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentStatus != enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not refundable").
			WithDetails(map[string]any{"payment_status": order.PaymentStatus})
	}
	if !order.AmountPaid.Valid || order.AmountPaid.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no recorded payment amount")
	}
	if order.PaymentProvider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no payment provider")
	}
	return order, nil
}

func (s *Service) executeProviderRefund(ctx context.Context, order *models.Order, amount decimal.Decimal, input Input) (string, error) {
	provider := *order.PaymentProvider

	if input.Manual {
		if input.ManualReference == nil || strings.TrimSpace(*input.ManualReference) == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "manual refund requires a reference")
		}
		return strings.TrimSpace(*input.ManualReference), nil
	}

	if !provider.SupportsAPIRefunds() {
		return "", pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("%s cannot refund via API, execute the refund manually and record it", provider)).
			WithDetails(map[string]any{"manual_required": true, "provider": provider})
	}

	if order.PaymentReference == nil || *order.PaymentReference == "" {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "order has no payment reference")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(*order.PaymentReference),
		Amount:        stripe.Int64(minorUnits(amount, order.Currency)),
		Metadata:      map[string]string{"order_id": order.ID.String()},
	}
	// Deterministic key: retrying the same refund command must not double
	// charge back.
	params.SetIdempotencyKey(fmt.Sprintf("refund:%s:%s", order.ID, amount.String()))

	refund, err := s.stripe.Create(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe refund")
	}
	return refund.ID, nil
}

func minorUnits(amount decimal.Decimal, currency enums.Currency) int64 {
	return amount.Shift(currency.MinorUnits()).IntPart()
}
