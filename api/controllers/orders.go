package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/NghaReformer/eventune-backend/api/responses"
	"github.com/NghaReformer/eventune-backend/api/validators"
	"github.com/NghaReformer/eventune-backend/internal/orders"
	"github.com/NghaReformer/eventune-backend/pkg/db/models"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
)

type publicOrderService interface {
	CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error)
	GetPublicStatus(ctx context.Context, orderNumber string) (*orders.PublicOrderStatus, error)
}

type createOrderRequest struct {
	CustomerName  string  `json:"customer_name" validate:"required,max=200"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	CustomerPhone *string `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
	PackageTier   string  `json:"package_tier" validate:"required"`
	SongTitle     *string `json:"song_title,omitempty" validate:"omitempty,max=200"`
	Occasion      *string `json:"occasion,omitempty" validate:"omitempty,max=200"`
	Genre         *string `json:"genre,omitempty" validate:"omitempty,max=100"`
	BriefNotes    *string `json:"brief_notes,omitempty" validate:"omitempty,max=4000"`
	Currency      string  `json:"currency" validate:"required"`
	Amount        string  `json:"amount" validate:"required"`
	Provider      *string `json:"payment_provider,omitempty"`
	Reference     *string `json:"payment_reference,omitempty" validate:"omitempty,max=255"`
}

type createOrderResponse struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// CreateOrder takes a checkout submission and originates the order record.
func CreateOrder(svc publicOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := enums.ParsePackageTier(req.PackageTier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown package tier"))
			return
		}
		currency, err := enums.ParseCurrency(req.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency"))
			return
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal number"))
			return
		}

		input := orders.CreateOrderInput{
			CustomerName:   validators.SanitizeString(req.CustomerName, 200),
			CustomerEmail:  validators.SanitizeString(req.CustomerEmail, 320),
			CustomerPhone:  req.CustomerPhone,
			PackageTier:    tier,
			SongTitle:      req.SongTitle,
			Occasion:       req.Occasion,
			Genre:          req.Genre,
			BriefNotes:     req.BriefNotes,
			Currency:       currency,
			AmountExpected: amount,
			Reference:      req.Reference,
		}
		if req.Provider != nil {
			provider, err := enums.ParsePaymentProvider(*req.Provider)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment provider"))
				return
			}
			input.Provider = &provider
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createOrderResponse{
			ID:          order.ID.String(),
			OrderNumber: order.OrderNumber,
			Status:      order.Status.String(),
		})
	}
}

// PublicOrderStatus returns the customer-facing view keyed by order number.
// No authentication; order numbers are unguessable.
func PublicOrderStatus(svc publicOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderNumber := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
		status, err := svc.GetPublicStatus(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
