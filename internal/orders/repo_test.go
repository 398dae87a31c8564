package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/NghaReformer/eventune-backend/pkg/db/models"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
	pkgerrors "github.com/NghaReformer/eventune-backend/pkg/errors"
	"github.com/NghaReformer/eventune-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  package_tier TEXT NOT NULL,
  song_title TEXT,
  occasion TEXT,
  genre TEXT,
  brief_notes TEXT,
  currency TEXT NOT NULL DEFAULT 'USD',
  amount_expected NUMERIC NOT NULL,
  amount_paid NUMERIC,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_provider TEXT,
  payment_reference TEXT,
  paid_at DATETIME,
  refund_amount NUMERIC,
  refund_reason TEXT,
  refund_reference TEXT,
  refunded_at DATETIME,
  deliverable_key TEXT,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS order_status_history (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  old_status TEXT NOT NULL,
  new_status TEXT NOT NULL,
  changed_by TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(history).Error)
	return db
}

func newOrder(t *testing.T, db *gorm.DB, orderNumber string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:             uuid.New(),
		OrderNumber:    orderNumber,
		CustomerName:   "Ama K",
		CustomerEmail:  "ama@example.com",
		PackageTier:    enums.PackageTierFullSong,
		Currency:       enums.CurrencyUSD,
		AmountExpected: decimal.NewFromInt(100),
		Status:         status,
		PaymentStatus:  enums.PaymentStatusPending,
		CreatedAt:      createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := &models.Order{
		ID:             uuid.New(),
		OrderNumber:    "EVT-AAAA111122",
		CustomerName:   "Ama K",
		CustomerEmail:  "ama@example.com",
		PackageTier:    enums.PackageTierFullSong,
		Currency:       enums.CurrencyXAF,
		AmountExpected: decimal.NewFromInt(5000),
		Status:         enums.OrderStatusPending,
		PaymentStatus:  enums.PaymentStatusPending,
	}
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, byID.OrderNumber)
	assert.True(t, byID.AmountExpected.Equal(decimal.NewFromInt(5000)))

	byNumber, err := repo.FindByOrderNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByOrderNumber(ctx, "EVT-MISSING000")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdate(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, "EVT-BBBB111122", enums.OrderStatusPaymentPending, time.Now().UTC())

	paidAt := time.Now().UTC()
	err := repo.Update(ctx, order.ID, map[string]any{
		"status":         enums.OrderStatusPaid,
		"payment_status": enums.PaymentStatusPaid,
		"amount_paid":    decimal.NewFromInt(100),
		"paid_at":        paidAt,
	})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, stored.Status)
	assert.Equal(t, enums.PaymentStatusPaid, stored.PaymentStatus)
	require.True(t, stored.AmountPaid.Valid)
	assert.True(t, stored.AmountPaid.Decimal.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, stored.PaidAt)

	// Empty update set is a no-op, not an error.
	require.NoError(t, repo.Update(ctx, order.ID, map[string]any{}))
}

func TestRepositoryHistory(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, "EVT-CCCC111122", enums.OrderStatusPending, time.Now().UTC())

	first := &models.StatusHistory{
		OrderID:   order.ID,
		OldStatus: enums.OrderStatusPending,
		NewStatus: enums.OrderStatusPaymentPending,
		ChangedBy: "system:checkout",
	}
	require.NoError(t, repo.AppendHistory(ctx, first))
	require.NotEqual(t, uuid.Nil, first.ID)

	note := "card charge settled"
	second := &models.StatusHistory{
		OrderID:   order.ID,
		OldStatus: enums.OrderStatusPaymentPending,
		NewStatus: enums.OrderStatusPaid,
		ChangedBy: "system:stripe",
		Notes:     &note,
	}
	require.NoError(t, repo.AppendHistory(ctx, second))

	entries, err := repo.ListHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, enums.OrderStatusPaymentPending, entries[0].NewStatus)
	assert.Equal(t, enums.OrderStatusPaid, entries[1].NewStatus)
	assert.Equal(t, "system:stripe", entries[1].ChangedBy)
	require.NotNil(t, entries[1].Notes)
	assert.Equal(t, note, *entries[1].Notes)

	other, err := repo.ListHistory(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	paid := newOrder(t, db, "EVT-DDDD111122", enums.OrderStatusPaid, base.Add(-2*time.Minute))
	newOrder(t, db, "EVT-EEEE111122", enums.OrderStatusPending, base.Add(-1*time.Minute))

	provider := enums.PaymentProviderStripe
	require.NoError(t, repo.Update(ctx, paid.ID, map[string]any{
		"payment_status":   enums.PaymentStatusPaid,
		"payment_provider": provider,
	}))

	status := enums.OrderStatusPaid
	list, err := repo.List(ctx, pagination.Params{}, ListFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, paid.ID, list.Orders[0].ID)

	paymentStatus := enums.PaymentStatusPaid
	list, err = repo.List(ctx, pagination.Params{}, ListFilters{PaymentStatus: &paymentStatus})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)

	list, err = repo.List(ctx, pagination.Params{}, ListFilters{Provider: &provider})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)

	list, err = repo.List(ctx, pagination.Params{}, ListFilters{Query: "evt-dddd"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "EVT-DDDD111122", list.Orders[0].OrderNumber)

	list, err = repo.List(ctx, pagination.Params{}, ListFilters{Query: "nobody@example.com"})
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	numbers := []string{"EVT-PAGE000001", "EVT-PAGE000002", "EVT-PAGE000003", "EVT-PAGE000004", "EVT-PAGE000005"}
	for i, number := range numbers {
		newOrder(t, db, number, enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)
	// Newest first.
	assert.Equal(t, "EVT-PAGE000005", page.Orders[0].OrderNumber)
	assert.Equal(t, "EVT-PAGE000004", page.Orders[1].OrderNumber)

	page, err = repo.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.Equal(t, "EVT-PAGE000003", page.Orders[0].OrderNumber)
	assert.Equal(t, "EVT-PAGE000002", page.Orders[1].OrderNumber)

	page, err = repo.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "EVT-PAGE000001", page.Orders[0].OrderNumber)
	assert.Empty(t, page.NextCursor)

	// A garbage cursor is the caller's fault, not the database's.
	_, err = repo.List(ctx, pagination.Params{Cursor: "not-base64"}, ListFilters{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRepositoryWithTx(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, "EVT-FFFF111122", enums.OrderStatusPending, time.Now().UTC())

	err := db.Transaction(func(tx *gorm.DB) error {
		scoped := repo.WithTx(tx)
		if err := scoped.Update(ctx, order.ID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, stored.Status, "rolled back write must not be visible")
}
