package products

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mohansky/ecom-backend/pkg/db/models"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/logger"
)

// Repository defines persistence operations for catalog rows.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// AdjustStockInput carries one stock delta. A negative delta decrements.
type AdjustStockInput struct {
	ProductID string
	VariantID *string
	Delta     int
}

// Service adjusts stock levels. Callers treat failures as best-effort: the
// primary flow never blocks on a stock write.
type Service interface {
	AdjustStock(ctx context.Context, input AdjustStockInput) (*models.Product, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a products service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// AdjustStock applies the delta to the named variant when a variant id is
// given, else to the base product quantity. Levels clamp at zero.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*models.Product, error) {
	if input.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID is required")
	}

	product, err := s.repo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching product")
	}

	if input.VariantID != nil && *input.VariantID != "" {
		found := false
		for i := range product.Variants {
			if product.Variants[i].ID == *input.VariantID {
				product.Variants[i].Stock = clampStock(product.Variants[i].Stock + input.Delta)
				found = true
				break
			}
		}
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
	} else {
		product.Stock = clampStock(product.Stock + input.Delta)
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving stock level")
	}

	if s.logg != nil {
		fields := map[string]any{"product_id": product.ID, "delta": input.Delta}
		if input.VariantID != nil {
			fields["variant_id"] = *input.VariantID
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "stock adjusted")
	}
	return product, nil
}

func clampStock(level int) int {
	if level < 0 {
		return 0
	}
	return level
}
