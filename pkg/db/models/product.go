package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant is one selectable option stored in the product's variant
// snapshot. Stock is tracked per variant when variants exist.
type ProductVariant struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Value         string          `json:"value"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
	Stock         int             `json:"stock"`
}

// Product is the catalog row. IDs are CMS-issued strings, not UUIDs.
type Product struct {
	ID        string           `gorm:"column:id;primaryKey"`
	Name      string           `gorm:"column:name;not null"`
	Price     decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int              `gorm:"column:stock;not null;default:0"`
	Variants  []ProductVariant `gorm:"column:variants;type:jsonb;serializer:json"`
	IsActive  bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
