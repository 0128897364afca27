package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohansky/ecom-backend/pkg/db/models"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomerEmail(ctx context.Context, email string) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	LinkCustomerRef(ctx context.Context, id, customerID uuid.UUID) error
}
