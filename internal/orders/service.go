package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NghaReformer/eventune-backend/internal/authz"
	"github.com/NghaReformer/eventune-backend/internal/payments"
	"github.com/NghaReformer/eventune-backend/pkg/db"
	"github.com/NghaReformer/eventune-backend/pkg/db/models"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
	"github.com/NghaReformer/eventune-backend/pkg/metrics"
	"github.com/NghaReformer/eventune-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DeliveryNotifier is told when an order's deliverable is handed off.
// Best-effort; a nil notifier is a no-op.
type DeliveryNotifier interface {
	NotifyDelivered(ctx context.Context, order *models.Order)
}

// Service defines order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetPublicStatus(ctx context.Context, orderNumber string) (*PublicOrderStatus, error)
	GetDetail(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*models.Order, []HistoryEntry, error)
	List(ctx context.Context, actor authz.Actor, params pagination.Params, filters ListFilters) (*OrderList, error)
	ApplyPaymentEvent(ctx context.Context, event *payments.Event) (*ApplyResult, error)
	ApplyStaffRefund(ctx context.Context, input StaffRefundInput) (*models.Order, error)
	AdminUpdateStatus(ctx context.Context, input AdminStatusInput) (*models.Order, error)
	MarkDelivered(ctx context.Context, input MarkDeliveredInput) (*models.Order, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	az       authz.Authorizer
	logg     *logger.Logger
	mets     *metrics.WebhookMetrics
	notifier DeliveryNotifier
	now      func() time.Time
}

// NewService builds the order lifecycle service with the required dependencies.
// Metrics and notifier are optional.
func NewService(repo Repository, tx txRunner, az authz.Authorizer, logg *logger.Logger, mets *metrics.WebhookMetrics, notifier DeliveryNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if az == nil {
		return nil, fmt.Errorf("authorizer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		az:       az,
		logg:     logg,
		mets:     mets,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if !input.PackageTier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid package tier")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	if input.AmountExpected.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount expected must be positive")
	}
	if input.Provider != nil && !input.Provider.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment provider")
	}

	order := &models.Order{
		CustomerName:     strings.TrimSpace(input.CustomerName),
		CustomerEmail:    strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
		CustomerPhone:    input.CustomerPhone,
		PackageTier:      input.PackageTier,
		SongTitle:        input.SongTitle,
		Occasion:         input.Occasion,
		Genre:            input.Genre,
		BriefNotes:       input.BriefNotes,
		Currency:         input.Currency,
		AmountExpected:   input.AmountExpected,
		Status:           enums.OrderStatusPending,
		PaymentStatus:    enums.PaymentStatusPending,
		PaymentProvider:  input.Provider,
		PaymentReference: input.Reference,
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	// Retry with a fresh number on a random-suffix collision.
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = generateOrderNumber()
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if _, err := repo.Create(ctx, order); err != nil {
				if db.IsUniqueViolation(err, "order_number") {
					return errOrderNumberTaken
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}
			// A known provider at creation time means checkout already pointed
			// the customer at a payment page.
			if input.Provider != nil {
				if err := s.recordTransition(ctx, repo, order, enums.OrderStatusPaymentPending, "system:checkout", nil); err != nil {
					return err
				}
			}
			return nil
		})
		if !errors.Is(err, errOrderNumberTaken) {
			break
		}
	}
	if errors.Is(err, errOrderNumberTaken) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate an order number")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) GetPublicStatus(ctx context.Context, orderNumber string) (*PublicOrderStatus, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &PublicOrderStatus{
		OrderNumber:    order.OrderNumber,
		PackageTier:    order.PackageTier,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		Currency:       order.Currency,
		AmountExpected: order.AmountExpected,
		PaidAt:         order.PaidAt,
		DeliveredAt:    order.DeliveredAt,
	}, nil
}

func (s *service) GetDetail(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*models.Order, []HistoryEntry, error) {
	if !s.az.HasPermission(actor, authz.ActionViewOrders) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to view orders")
	}
	if orderID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	rows, err := s.repo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}
	history := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		history = append(history, HistoryEntry{
			OldStatus: row.OldStatus,
			NewStatus: row.NewStatus,
			ChangedBy: row.ChangedBy,
			Notes:     row.Notes,
			CreatedAt: row.CreatedAt,
		})
	}
	return order, history, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if !s.az.HasPermission(actor, authz.ActionViewOrders) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to view orders")
	}
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ApplyPaymentEvent(ctx context.Context, event *payments.Event) (*ApplyResult, error) {
	if event == nil || !event.Supported() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment event")
	}
	if !event.HasOrder() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment event has no order id")
	}

	result := &ApplyResult{OrderID: event.OrderID, Outcome: event.Outcome}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, event.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		result.OrderNumber = order.OrderNumber
		result.CustomerEmail = order.CustomerEmail
		result.CustomerName = order.CustomerName
		result.Currency = order.Currency

		if order.PaymentProvider != nil && *order.PaymentProvider != event.Provider {
			s.warn(ctx, order, fmt.Sprintf("event provider %s does not match order provider %s", event.Provider, *order.PaymentProvider))
			s.skip(result, order, "provider mismatch")
			return nil
		}

		switch event.Outcome {
		case enums.PaymentOutcomeCompleted:
			return s.applyCompleted(ctx, repo, order, event, result)
		case enums.PaymentOutcomeFailed:
			return s.applyFailed(ctx, repo, order, event, result)
		case enums.PaymentOutcomeRefunded, enums.PaymentOutcomePartiallyRefunded:
			return s.applyProviderRefund(ctx, repo, order, event, result)
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment outcome")
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) applyCompleted(ctx context.Context, repo Repository, order *models.Order, event *payments.Event, result *ApplyResult) error {
	if order.PaymentStatus == enums.PaymentStatusPaid {
		// Redelivered paid event: idempotent no-op, no history row.
		s.skip(result, order, "already paid")
		return nil
	}
	if !CanTransitionPayment(order.PaymentStatus, enums.PaymentStatusPaid) {
		s.warn(ctx, order, fmt.Sprintf("paid event ignored, payment status is %s", order.PaymentStatus))
		s.skip(result, order, "payment status cannot move to paid")
		return nil
	}

	paidAmount := order.AmountExpected
	if event.Amount.Valid {
		paidAmount = event.Amount.Decimal
	}
	now := s.now().UTC()

	updates := map[string]any{
		"payment_status": enums.PaymentStatusPaid,
		"amount_paid":    paidAmount,
		"paid_at":        now,
	}
	if order.PaymentProvider == nil {
		updates["payment_provider"] = event.Provider
	}
	if order.PaymentReference == nil && event.Reference != "" {
		updates["payment_reference"] = event.Reference
	}
	if err := repo.Update(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	order.PaymentStatus = enums.PaymentStatusPaid
	order.AmountPaid = decimal.NewNullDecimal(paidAmount)
	order.PaidAt = &now

	changedBy := systemActor(event.Provider)
	switch order.Status {
	case enums.OrderStatusPending:
		if err := s.recordTransition(ctx, repo, order, enums.OrderStatusPaymentPending, changedBy, nil); err != nil {
			return err
		}
		fallthrough
	case enums.OrderStatusPaymentPending:
		if err := s.recordTransition(ctx, repo, order, enums.OrderStatusPaid, changedBy, nil); err != nil {
			return err
		}
	default:
		// Money settled after the workflow already advanced; keep the
		// workflow where it is.
		s.warn(ctx, order, fmt.Sprintf("payment confirmed while status is %s", order.Status))
	}

	result.Applied = true
	result.Amount = paidAmount
	result.NewStatus = order.Status
	result.PaymentStatus = order.PaymentStatus
	return nil
}

func (s *service) applyFailed(ctx context.Context, repo Repository, order *models.Order, event *payments.Event, result *ApplyResult) error {
	if order.PaymentStatus == enums.PaymentStatusFailed {
		s.skip(result, order, "already failed")
		return nil
	}
	if !CanTransitionPayment(order.PaymentStatus, enums.PaymentStatusFailed) {
		s.warn(ctx, order, fmt.Sprintf("failed event ignored, payment status is %s", order.PaymentStatus))
		s.skip(result, order, "payment status cannot move to failed")
		return nil
	}

	updates := map[string]any{"payment_status": enums.PaymentStatusFailed}
	if order.PaymentProvider == nil {
		updates["payment_provider"] = event.Provider
	}
	if order.PaymentReference == nil && event.Reference != "" {
		updates["payment_reference"] = event.Reference
	}
	if err := repo.Update(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}
	order.PaymentStatus = enums.PaymentStatusFailed

	result.Applied = true
	result.NewStatus = order.Status
	result.PaymentStatus = order.PaymentStatus
	return nil
}

func (s *service) applyProviderRefund(ctx context.Context, repo Repository, order *models.Order, event *payments.Event, result *ApplyResult) error {
	target := enums.PaymentStatusRefunded
	if event.Outcome == enums.PaymentOutcomePartiallyRefunded {
		target = enums.PaymentStatusPartiallyRefunded
	}
	if order.PaymentStatus == target {
		s.skip(result, order, "refund already recorded")
		return nil
	}
	if !CanTransitionPayment(order.PaymentStatus, target) {
		s.warn(ctx, order, fmt.Sprintf("%s event ignored, payment status is %s", event.Outcome, order.PaymentStatus))
		s.skip(result, order, "payment status cannot move to "+target.String())
		return nil
	}

	now := s.now().UTC()
	refundAmount := decimal.Zero
	if event.Amount.Valid {
		refundAmount = event.Amount.Decimal
	} else if order.AmountPaid.Valid {
		refundAmount = order.AmountPaid.Decimal
	}

	updates := map[string]any{
		"payment_status": target,
		"refund_amount":  refundAmount,
		"refunded_at":    now,
	}
	if event.Reference != "" {
		updates["refund_reference"] = event.Reference
	}
	if err := repo.Update(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record provider refund")
	}
	order.PaymentStatus = target
	order.RefundAmount = decimal.NewNullDecimal(refundAmount)
	order.RefundedAt = &now

	if target == enums.PaymentStatusRefunded && order.Status != enums.OrderStatusCancelled {
		// Full refund cancels the workflow regardless of how far it got;
		// this junction is the only path that overrides the whitelist.
		if err := s.forceTransition(ctx, repo, order, enums.OrderStatusCancelled, systemActor(event.Provider), nil); err != nil {
			return err
		}
	}

	result.Applied = true
	result.Amount = refundAmount
	result.NewStatus = order.Status
	result.PaymentStatus = order.PaymentStatus
	return nil
}

// ApplyStaffRefund records a staff refund that the provider has already
// honored. The refund orchestrator validates and charges back first; this is
// the only place the resulting status moves are written, so the transition
// whitelist and history stay in one component.
func (s *service) ApplyStaffRefund(ctx context.Context, input StaffRefundInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if !s.az.HasPermission(input.Actor, authz.ActionRefund) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to refund orders")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.PaymentStatus != enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer refundable").
				WithDetails(map[string]any{"payment_status": order.PaymentStatus})
		}

		target := enums.PaymentStatusPartiallyRefunded
		if input.Full {
			target = enums.PaymentStatusRefunded
		}
		now := s.now().UTC()
		reason := strings.TrimSpace(input.Reason)
		reference := strings.TrimSpace(input.Reference)
		updates := map[string]any{
			"payment_status":   target,
			"refund_amount":    input.Amount,
			"refund_reason":    reason,
			"refund_reference": reference,
			"refunded_at":      now,
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
		}
		order.PaymentStatus = target
		order.RefundAmount = decimal.NewNullDecimal(input.Amount)
		order.RefundReason = &reason
		order.RefundReference = &reference
		order.RefundedAt = &now

		if input.Full && order.Status != enums.OrderStatusCancelled {
			// Same junction as provider-initiated full refunds.
			if err := s.forceTransition(ctx, repo, order, enums.OrderStatusCancelled, staffActor(input.Actor), &reason); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) AdminUpdateStatus(ctx context.Context, input AdminStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if !s.az.HasPermission(input.Actor, authz.ActionUpdateStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to update order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == input.NewStatus {
			updated = order
			return nil
		}
		if !CanTransitionStatus(order.Status, input.NewStatus) {
			return invalidTransition(order.Status, input.NewStatus)
		}
		if err := s.recordTransition(ctx, repo, order, input.NewStatus, staffActor(input.Actor), input.Note); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) MarkDelivered(ctx context.Context, input MarkDeliveredInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.DeliverableKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deliverable key required")
	}
	if !s.az.HasPermission(input.Actor, authz.ActionMarkDelivered) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to mark delivered")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusDelivered {
			updated = order
			return nil
		}
		if !CanTransitionStatus(order.Status, enums.OrderStatusDelivered) {
			return invalidTransition(order.Status, enums.OrderStatusDelivered)
		}

		now := s.now().UTC()
		key := strings.TrimSpace(input.DeliverableKey)
		updates := map[string]any{
			"deliverable_key": key,
			"delivered_at":    now,
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record deliverable")
		}
		order.DeliverableKey = &key
		order.DeliveredAt = &now

		if err := s.recordTransition(ctx, repo, order, enums.OrderStatusDelivered, staffActor(input.Actor), input.Note); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && updated != nil {
		s.notifier.NotifyDelivered(ctx, updated)
	}
	return updated, nil
}

// recordTransition applies a whitelisted status move plus its history row.
func (s *service) recordTransition(ctx context.Context, repo Repository, order *models.Order, target enums.OrderStatus, changedBy string, notes *string) error {
	if !CanTransitionStatus(order.Status, target) {
		return invalidTransition(order.Status, target)
	}
	return s.forceTransition(ctx, repo, order, target, changedBy, notes)
}

// forceTransition writes the status move and history row without consulting
// the whitelist. Only the full-refund junctions may call it directly.
func (s *service) forceTransition(ctx context.Context, repo Repository, order *models.Order, target enums.OrderStatus, changedBy string, notes *string) error {
	if err := repo.Update(ctx, order.ID, map[string]any{"status": target}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	entry := &models.StatusHistory{
		OrderID:   order.ID,
		OldStatus: order.Status,
		NewStatus: target,
		ChangedBy: changedBy,
		Notes:     notes,
	}
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
	}
	order.Status = target
	s.mets.IncTransition(target.String())
	return nil
}

func (s *service) skip(result *ApplyResult, order *models.Order, reason string) {
	result.Skipped = true
	result.SkipReason = reason
	result.NewStatus = order.Status
	result.PaymentStatus = order.PaymentStatus
}

func (s *service) warn(ctx context.Context, order *models.Order, msg string) {
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Warn(ctx, msg)
}

func invalidTransition(current, attempted enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
		WithDetails(map[string]any{
			"current_status":   current,
			"attempted_status": attempted,
			"allowed_targets":  AllowedStatusTargets(current),
		})
}

func systemActor(provider enums.PaymentProvider) string {
	return "system:" + provider.String()
}

func staffActor(actor authz.Actor) string {
	return "staff:" + strings.ToLower(strings.TrimSpace(actor.Email))
}

const orderNumberAttempts = 3

var errOrderNumberTaken = errors.New("order number taken")

func generateOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "EVT-" + strings.ToUpper(raw[:10])
}
