package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NghaReformer/eventune-backend/pkg/db/models"
	"github.com/NghaReformer/eventune-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// FindByIDForUpdate takes a row lock so concurrent webhook deliveries
	// for the same order serialize their read-modify-write.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AppendHistory(ctx context.Context, entry *models.StatusHistory) error
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.StatusHistory, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
}
