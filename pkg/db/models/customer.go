package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohansky/ecom-backend/pkg/enums"
	"github.com/mohansky/ecom-backend/pkg/types"
)

// CustomerAddress is one entry of a customer's merged address book.
type CustomerAddress struct {
	Type enums.AddressType `json:"type"`
	types.Address
}

// Customer is the aggregate maintained by the projector, keyed by email.
// TotalOrders, TotalSpent and LastOrderDate are derived wholesale from the
// order history on every projection.
type Customer struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string            `gorm:"column:email;not null;uniqueIndex:idx_customers_email"`
	FirstName     string            `gorm:"column:first_name;not null"`
	LastName      string            `gorm:"column:last_name;not null"`
	Phone         *string           `gorm:"column:phone"`
	Addresses     []CustomerAddress `gorm:"column:addresses;type:jsonb;serializer:json"`
	TotalOrders   int               `gorm:"column:total_orders;not null;default:0"`
	TotalSpent    decimal.Decimal   `gorm:"column:total_spent;type:numeric(12,2);not null;default:0"`
	LastOrderDate *time.Time        `gorm:"column:last_order_date"`
	Status        string            `gorm:"column:status;not null;default:'active'"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
