package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NghaReformer/eventune-backend/api/middleware"
	"github.com/NghaReformer/eventune-backend/internal/authz"
	"github.com/NghaReformer/eventune-backend/internal/orders"
	"github.com/NghaReformer/eventune-backend/internal/refunds"
	"github.com/NghaReformer/eventune-backend/pkg/db/models"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
	"github.com/NghaReformer/eventune-backend/pkg/pagination"
)

type stubAdminOrders struct {
	listParams   pagination.Params
	listFilters  orders.ListFilters
	listActor    authz.Actor
	list         *orders.OrderList
	listErr      error
	detailOrder  *models.Order
	detailHist   []orders.HistoryEntry
	detailErr    error
	statusInput  orders.AdminStatusInput
	statusOrder  *models.Order
	statusErr    error
	deliverInput orders.MarkDeliveredInput
	deliverOrder *models.Order
	deliverErr   error
}

func (s *stubAdminOrders) List(_ context.Context, actor authz.Actor, params pagination.Params, filters orders.ListFilters) (*orders.OrderList, error) {
	s.listActor = actor
	s.listParams = params
	s.listFilters = filters
	return s.list, s.listErr
}

func (s *stubAdminOrders) GetDetail(_ context.Context, _ authz.Actor, _ uuid.UUID) (*models.Order, []orders.HistoryEntry, error) {
	return s.detailOrder, s.detailHist, s.detailErr
}

func (s *stubAdminOrders) AdminUpdateStatus(_ context.Context, input orders.AdminStatusInput) (*models.Order, error) {
	s.statusInput = input
	return s.statusOrder, s.statusErr
}

func (s *stubAdminOrders) MarkDelivered(_ context.Context, input orders.MarkDeliveredInput) (*models.Order, error) {
	s.deliverInput = input
	return s.deliverOrder, s.deliverErr
}

type stubRefunds struct {
	input  refunds.Input
	result *refunds.Result
	err    error
}

func (s *stubRefunds) Refund(_ context.Context, input refunds.Input) (*refunds.Result, error) {
	s.input = input
	return s.result, s.err
}

func adminRequest(t *testing.T, method, target, orderID, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	routeCtx := chi.NewRouteContext()
	if orderID != "" {
		routeCtx.URLParams.Add("orderID", orderID)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithActor(ctx, authz.Actor{
		ID:    uuid.New(),
		Email: "admin@eventune.app",
		Role:  enums.StaffRoleAdmin,
	})
	return req.WithContext(ctx)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestListOrdersParsesFilters(t *testing.T) {
	svc := &stubAdminOrders{list: &orders.OrderList{Orders: []orders.OrderSummary{}}}
	handler := ListOrders(svc, testLogger(t))

	req := adminRequest(t, http.MethodGet, "/api/v1/admin/orders?limit=10&status=paid&payment_status=paid&provider=stripe&q=ORD", "", "")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, svc.listParams.Limit)
	require.NotNil(t, svc.listFilters.Status)
	assert.Equal(t, enums.OrderStatusPaid, *svc.listFilters.Status)
	require.NotNil(t, svc.listFilters.PaymentStatus)
	assert.Equal(t, enums.PaymentStatusPaid, *svc.listFilters.PaymentStatus)
	require.NotNil(t, svc.listFilters.Provider)
	assert.Equal(t, enums.PaymentProviderStripe, *svc.listFilters.Provider)
	assert.Equal(t, "ORD", svc.listFilters.Query)
	assert.Equal(t, "admin@eventune.app", svc.listActor.Email)
}

func TestListOrdersRejectsUnknownStatusFilter(t *testing.T) {
	svc := &stubAdminOrders{}
	handler := ListOrders(svc, testLogger(t))

	req := adminRequest(t, http.MethodGet, "/api/v1/admin/orders?status=bogus", "", "")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersRejectsLimitOutOfRange(t *testing.T) {
	svc := &stubAdminOrders{}
	handler := ListOrders(svc, testLogger(t))

	req := adminRequest(t, http.MethodGet, "/api/v1/admin/orders?limit=5000", "", "")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderReturnsDetailWithHistory(t *testing.T) {
	orderID := uuid.New()
	paidAt := time.Now().UTC()
	order := &models.Order{
		ID:             orderID,
		OrderNumber:    "EVT-20260830-TEST01",
		CustomerName:   "Ama Mbarga",
		CustomerEmail:  "ama@example.com",
		PackageTier:    enums.PackageTierFullSong,
		Currency:       enums.CurrencyUSD,
		AmountExpected: decimal.NewFromInt(100),
		AmountPaid:     decimal.NewNullDecimal(decimal.NewFromInt(100)),
		Status:         enums.OrderStatusPaid,
		PaymentStatus:  enums.PaymentStatusPaid,
		PaidAt:         &paidAt,
	}
	svc := &stubAdminOrders{
		detailOrder: order,
		detailHist: []orders.HistoryEntry{
			{OldStatus: enums.OrderStatusPending, NewStatus: enums.OrderStatusPaid, ChangedBy: "system:stripe"},
		},
	}
	handler := GetOrder(svc, testLogger(t))

	req := adminRequest(t, http.MethodGet, "/api/v1/admin/orders/"+orderID.String(), orderID.String(), "")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "EVT-20260830-TEST01", data["order_number"])
	assert.Equal(t, "100", data["amount_paid"])
	history, ok := data["history"].([]any)
	require.True(t, ok)
	require.Len(t, history, 1)
}

func TestGetOrderRejectsMalformedID(t *testing.T) {
	svc := &stubAdminOrders{}
	handler := GetOrder(svc, testLogger(t))

	req := adminRequest(t, http.MethodGet, "/api/v1/admin/orders/not-a-uuid", "not-a-uuid", "")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := &stubAdminOrders{detailErr: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	handler := GetOrder(svc, testLogger(t))

	orderID := uuid.NewString()
	req := adminRequest(t, http.MethodGet, "/api/v1/admin/orders/"+orderID, orderID, "")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatusForwardsActorAndNote(t *testing.T) {
	orderID := uuid.New()
	svc := &stubAdminOrders{statusOrder: &models.Order{
		ID:            orderID,
		OrderNumber:   "EVT-20260830-TEST02",
		Status:        enums.OrderStatusInProgress,
		PaymentStatus: enums.PaymentStatusPaid,
	}}
	handler := UpdateOrderStatus(svc, testLogger(t))

	body := `{"new_status":"in_progress","note":"starting production"}`
	req := adminRequest(t, http.MethodPatch, "/api/v1/admin/orders/"+orderID.String()+"/status", orderID.String(), body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.OrderStatusInProgress, svc.statusInput.NewStatus)
	require.NotNil(t, svc.statusInput.Note)
	assert.Equal(t, "starting production", *svc.statusInput.Note)
	assert.Equal(t, "admin@eventune.app", svc.statusInput.Actor.Email)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc := &stubAdminOrders{}
	handler := UpdateOrderStatus(svc, testLogger(t))

	orderID := uuid.NewString()
	req := adminRequest(t, http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", orderID, `{"new_status":"shipped"}`)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatusSurfacesInvalidTransition(t *testing.T) {
	svc := &stubAdminOrders{
		statusErr: pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed").WithDetails(map[string]any{
			"current_status":   "pending",
			"attempted_status": "completed",
		}),
	}
	handler := UpdateOrderStatus(svc, testLogger(t))

	orderID := uuid.NewString()
	req := adminRequest(t, http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", orderID, `{"new_status":"completed"}`)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeEnvelope(t, rec)
	errObj, ok := envelope["error"].(map[string]any)
	require.True(t, ok)
	details, ok := errObj["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pending", details["current_status"])
}

func TestDeliverOrderRequiresDeliverableKey(t *testing.T) {
	svc := &stubAdminOrders{}
	handler := DeliverOrder(svc, testLogger(t))

	orderID := uuid.NewString()
	req := adminRequest(t, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/deliver", orderID, `{"note":"ready"}`)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeliverOrderForwardsKey(t *testing.T) {
	orderID := uuid.New()
	deliveredAt := time.Now().UTC()
	svc := &stubAdminOrders{deliverOrder: &models.Order{
		ID:          orderID,
		OrderNumber: "EVT-20260830-TEST03",
		Status:      enums.OrderStatusDelivered,
		DeliveredAt: &deliveredAt,
	}}
	handler := DeliverOrder(svc, testLogger(t))

	body := `{"deliverable_key":"deliverables/evt-test03/final.wav"}`
	req := adminRequest(t, http.MethodPost, "/api/v1/admin/orders/"+orderID.String()+"/deliver", orderID.String(), body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deliverables/evt-test03/final.wav", svc.deliverInput.DeliverableKey)
}

func TestRefundOrderForwardsAmountAndReason(t *testing.T) {
	orderID := uuid.New()
	svc := &stubRefunds{result: &refunds.Result{
		OrderID:       orderID,
		OrderNumber:   "EVT-20260830-TEST04",
		Amount:        decimal.NewFromInt(40),
		Currency:      enums.CurrencyUSD,
		Full:          false,
		Reference:     "re_test_1",
		PaymentStatus: enums.PaymentStatusPartiallyRefunded,
		OrderStatus:   enums.OrderStatusInProgress,
	}}
	handler := RefundOrder(svc, testLogger(t))

	body := `{"amount":"40.00","reason":"customer asked for a partial refund"}`
	req := adminRequest(t, http.MethodPost, "/api/v1/admin/orders/"+orderID.String()+"/refund", orderID.String(), body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.input.Amount)
	assert.True(t, svc.input.Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "customer asked for a partial refund", svc.input.Reason)
	assert.Equal(t, "admin@eventune.app", svc.input.Actor.Email)

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "re_test_1", data["reference"])
	assert.Equal(t, false, data["full"])
}

func TestRefundOrderRejectsShortReason(t *testing.T) {
	svc := &stubRefunds{}
	handler := RefundOrder(svc, testLogger(t))

	orderID := uuid.NewString()
	req := adminRequest(t, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/refund", orderID, `{"reason":"short"}`)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefundOrderRejectsMalformedAmount(t *testing.T) {
	svc := &stubRefunds{}
	handler := RefundOrder(svc, testLogger(t))

	orderID := uuid.NewString()
	body := `{"amount":"forty","reason":"customer asked for a partial refund"}`
	req := adminRequest(t, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/refund", orderID, body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefundOrderSurfacesManualRequired(t *testing.T) {
	svc := &stubRefunds{
		err: pkgerrors.New(pkgerrors.CodeConflict, "provider requires manual refund").WithDetails(map[string]any{
			"manual_required": true,
			"provider":        "notchpay",
		}),
	}
	handler := RefundOrder(svc, testLogger(t))

	orderID := uuid.NewString()
	body := `{"reason":"customer cancelled before production"}`
	req := adminRequest(t, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/refund", orderID, body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	envelope := decodeEnvelope(t, rec)
	errObj, ok := envelope["error"].(map[string]any)
	require.True(t, ok)
	details, ok := errObj["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, details["manual_required"])
}

func TestRefundOrderSurfacesReconciliationFailure(t *testing.T) {
	orderID := uuid.New()
	svc := &stubRefunds{
		err: pkgerrors.New(pkgerrors.CodeReconciliation, "refund recorded at provider but not on the order").
			WithDetails(map[string]any{
				"order_id":        orderID.String(),
				"provider_refund": "re_test_9",
				"reconciliation":  "required",
			}),
	}
	handler := RefundOrder(svc, testLogger(t))

	body := `{"reason":"customer cancelled before production"}`
	req := adminRequest(t, http.MethodPost, "/api/v1/admin/orders/"+orderID.String()+"/refund", orderID.String(), body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	envelope := decodeEnvelope(t, rec)
	errObj, ok := envelope["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "RECONCILIATION_REQUIRED", errObj["code"])
	assert.Equal(t, "refund recorded at provider but not on the order", errObj["message"])
	details, ok := errObj["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "re_test_9", details["provider_refund"])
	assert.Equal(t, "required", details["reconciliation"])
}
