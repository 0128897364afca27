package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mohansky/ecom-backend/pkg/db/models"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  variants TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	t.Cleanup(func() { db.Exec("DELETE FROM products") })

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int, variants []models.ProductVariant) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       "prod-1",
		Name:     "Mug",
		Price:    decimal.NewFromInt(500),
		Stock:    stock,
		Variants: variants,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestAdjustStockBaseQuantity(t *testing.T) {
	db := setupProductsTestDB(t)
	seedProduct(t, db, 10, nil)
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)

	updated, err := svc.AdjustStock(context.Background(), AdjustStockInput{ProductID: "prod-1", Delta: -3})
	require.NoError(t, err)
	require.Equal(t, 7, updated.Stock)
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	db := setupProductsTestDB(t)
	seedProduct(t, db, 2, nil)
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)

	updated, err := svc.AdjustStock(context.Background(), AdjustStockInput{ProductID: "prod-1", Delta: -5})
	require.NoError(t, err)
	require.Equal(t, 0, updated.Stock)
}

func TestAdjustStockVariantAware(t *testing.T) {
	db := setupProductsTestDB(t)
	seedProduct(t, db, 10, []models.ProductVariant{
		{ID: "v1", Name: "size", Value: "S", Stock: 4},
		{ID: "v2", Name: "size", Value: "L", Stock: 6},
	})
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)

	variantID := "v2"
	updated, err := svc.AdjustStock(context.Background(), AdjustStockInput{ProductID: "prod-1", VariantID: &variantID, Delta: -2})
	require.NoError(t, err)
	require.Equal(t, 4, updated.Variants[1].Stock)
	require.Equal(t, 4, updated.Variants[0].Stock, "other variant untouched")
	require.Equal(t, 10, updated.Stock, "base stock untouched")
}

func TestAdjustStockUnknownTargets(t *testing.T) {
	db := setupProductsTestDB(t)
	seedProduct(t, db, 10, nil)
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)

	_, err = svc.AdjustStock(context.Background(), AdjustStockInput{ProductID: "nope", Delta: -1})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	missingVariant := "v9"
	_, err = svc.AdjustStock(context.Background(), AdjustStockInput{ProductID: "prod-1", VariantID: &missingVariant, Delta: -1})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
