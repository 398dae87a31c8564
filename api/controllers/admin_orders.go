package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NghaReformer/eventune-backend/api/middleware"
	"github.com/NghaReformer/eventune-backend/api/responses"
	"github.com/NghaReformer/eventune-backend/api/validators"
	"github.com/NghaReformer/eventune-backend/internal/authz"
	"github.com/NghaReformer/eventune-backend/internal/orders"
	"github.com/NghaReformer/eventune-backend/internal/refunds"
	"github.com/NghaReformer/eventune-backend/pkg/db/models"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
	"github.com/NghaReformer/eventune-backend/pkg/pagination"
)

type adminOrderService interface {
	List(ctx context.Context, actor authz.Actor, params pagination.Params, filters orders.ListFilters) (*orders.OrderList, error)
	GetDetail(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*models.Order, []orders.HistoryEntry, error)
	AdminUpdateStatus(ctx context.Context, input orders.AdminStatusInput) (*models.Order, error)
	MarkDelivered(ctx context.Context, input orders.MarkDeliveredInput) (*models.Order, error)
}

type refundService interface {
	Refund(ctx context.Context, input refunds.Input) (*refunds.Result, error)
}

type adminOrderDetail struct {
	ID               string                `json:"id"`
	OrderNumber      string                `json:"order_number"`
	CustomerName     string                `json:"customer_name"`
	CustomerEmail    string                `json:"customer_email"`
	CustomerPhone    *string               `json:"customer_phone,omitempty"`
	PackageTier      string                `json:"package_tier"`
	SongTitle        *string               `json:"song_title,omitempty"`
	Occasion         *string               `json:"occasion,omitempty"`
	Genre            *string               `json:"genre,omitempty"`
	BriefNotes       *string               `json:"brief_notes,omitempty"`
	Currency         string                `json:"currency"`
	AmountExpected   decimal.Decimal       `json:"amount_expected"`
	AmountPaid       *decimal.Decimal      `json:"amount_paid,omitempty"`
	Status           string                `json:"status"`
	PaymentStatus    string                `json:"payment_status"`
	PaymentProvider  *string               `json:"payment_provider,omitempty"`
	PaymentReference *string               `json:"payment_reference,omitempty"`
	PaidAt           *time.Time            `json:"paid_at,omitempty"`
	RefundAmount     *decimal.Decimal      `json:"refund_amount,omitempty"`
	RefundReason     *string               `json:"refund_reason,omitempty"`
	RefundReference  *string               `json:"refund_reference,omitempty"`
	RefundedAt       *time.Time            `json:"refunded_at,omitempty"`
	DeliverableKey   *string               `json:"deliverable_key,omitempty"`
	DeliveredAt      *time.Time            `json:"delivered_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	History          []orders.HistoryEntry `json:"history"`
}

type updateStatusRequest struct {
	NewStatus string  `json:"new_status" validate:"required"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

type markDeliveredRequest struct {
	DeliverableKey string  `json:"deliverable_key" validate:"required,max=512"`
	Note           *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

type refundRequest struct {
	Amount          *string `json:"amount,omitempty"`
	Reason          string  `json:"reason" validate:"required,min=10,max=2000"`
	Manual          bool    `json:"manual,omitempty"`
	ManualReference *string `json:"manual_reference,omitempty" validate:"omitempty,max=255"`
}

type refundResponse struct {
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Full          bool            `json:"full"`
	Reference     string          `json:"reference"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   string          `json:"order_status"`
}

// ListOrders returns the paginated admin order index with optional filters.
func ListOrders(svc adminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		list, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns the full admin order record with its audit trail.
func GetOrder(svc adminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, history, err := svc.GetDetail(r.Context(), middleware.ActorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detailFromOrder(order, history))
	}
}

// UpdateOrderStatus applies an admin-initiated business status change.
func UpdateOrderStatus(svc adminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		newStatus, err := enums.ParseOrderStatus(req.NewStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}

		order, err := svc.AdminUpdateStatus(r.Context(), orders.AdminStatusInput{
			OrderID:   orderID,
			NewStatus: newStatus,
			Note:      req.Note,
			Actor:     middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"id":             order.ID.String(),
			"order_number":   order.OrderNumber,
			"status":         order.Status.String(),
			"payment_status": order.PaymentStatus.String(),
		})
	}
}

// DeliverOrder records the deliverable handoff and moves the order to delivered.
func DeliverOrder(svc adminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req markDeliveredRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkDelivered(r.Context(), orders.MarkDeliveredInput{
			OrderID:        orderID,
			DeliverableKey: validators.SanitizeString(req.DeliverableKey, 512),
			Note:           req.Note,
			Actor:          middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"id":           order.ID.String(),
			"order_number": order.OrderNumber,
			"status":       order.Status.String(),
			"delivered_at": order.DeliveredAt,
		})
	}
}

// RefundOrder issues a full or partial refund against a paid order.
func RefundOrder(svc refundService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refunds service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req refundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := refunds.Input{
			OrderID:         orderID,
			Reason:          validators.SanitizeString(req.Reason, 2000),
			Manual:          req.Manual,
			ManualReference: req.ManualReference,
			Actor:           middleware.ActorFromContext(r.Context()),
		}
		if req.Amount != nil {
			amount, err := decimal.NewFromString(strings.TrimSpace(*req.Amount))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal number"))
				return
			}
			input.Amount = &amount
		}

		result, err := svc.Refund(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, refundResponse{
			OrderID:       result.OrderID.String(),
			OrderNumber:   result.OrderNumber,
			Amount:        result.Amount,
			Currency:      result.Currency.String(),
			Full:          result.Full,
			Reference:     result.Reference,
			PaymentStatus: result.PaymentStatus.String(),
			OrderStatus:   result.OrderStatus.String(),
		})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderID")
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a uuid")
	}
	return orderID, nil
}

func parseListFilters(r *http.Request) (orders.ListFilters, error) {
	var filters orders.ListFilters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status filter")
		}
		filters.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(query.Get("provider")); raw != "" {
		provider, err := enums.ParsePaymentProvider(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown provider filter")
		}
		filters.Provider = &provider
	}
	filters.Query = validators.SanitizeString(query.Get("q"), 100)

	return filters, nil
}

func detailFromOrder(order *models.Order, history []orders.HistoryEntry) adminOrderDetail {
	detail := adminOrderDetail{
		ID:               order.ID.String(),
		OrderNumber:      order.OrderNumber,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerPhone:    order.CustomerPhone,
		PackageTier:      order.PackageTier.String(),
		SongTitle:        order.SongTitle,
		Occasion:         order.Occasion,
		Genre:            order.Genre,
		BriefNotes:       order.BriefNotes,
		Currency:         order.Currency.String(),
		AmountExpected:   order.AmountExpected,
		Status:           order.Status.String(),
		PaymentStatus:    order.PaymentStatus.String(),
		PaymentReference: order.PaymentReference,
		PaidAt:           order.PaidAt,
		RefundReason:     order.RefundReason,
		RefundReference:  order.RefundReference,
		RefundedAt:       order.RefundedAt,
		DeliverableKey:   order.DeliverableKey,
		DeliveredAt:      order.DeliveredAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		History:          history,
	}
	if order.AmountPaid.Valid {
		detail.AmountPaid = &order.AmountPaid.Decimal
	}
	if order.RefundAmount.Valid {
		detail.RefundAmount = &order.RefundAmount.Decimal
	}
	if order.PaymentProvider != nil {
		provider := order.PaymentProvider.String()
		detail.PaymentProvider = &provider
	}
	if history == nil {
		detail.History = []orders.HistoryEntry{}
	}
	return detail
}
