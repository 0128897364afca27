package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohansky/ecom-backend/pkg/enums"
	"github.com/mohansky/ecom-backend/pkg/types"
)

// Order is the persisted result of a verified checkout. Customer fields are a
// point-in-time snapshot; CustomerRef is linked afterwards by the projector.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string    `gorm:"column:order_number;not null;uniqueIndex:idx_orders_order_number"`

	CustomerEmail     string     `gorm:"column:customer_email;not null;index"`
	CustomerFirstName string     `gorm:"column:customer_first_name;not null"`
	CustomerLastName  string     `gorm:"column:customer_last_name;not null"`
	CustomerPhone     *string    `gorm:"column:customer_phone"`
	CustomerRef       *uuid.UUID `gorm:"column:customer_ref;type:uuid"`

	ShippingAddress       types.Address  `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress        *types.Address `gorm:"column:billing_address;type:jsonb;serializer:json"`
	BillingSameAsShipping bool           `gorm:"column:billing_same_as_shipping;not null;default:true"`

	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax          decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Discount     decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`

	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'razorpay'"`
	GatewayOrderID   string              `gorm:"column:gateway_order_id;not null;index"`
	GatewayPaymentID string              `gorm:"column:gateway_payment_id;not null"`
	GatewaySignature string              `gorm:"column:gateway_signature;not null"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentDetail    *string             `gorm:"column:payment_detail"`
	PaymentDate      *time.Time          `gorm:"column:payment_date"`
	PaymentAmount    decimal.Decimal     `gorm:"column:payment_amount;type:numeric(12,2);not null"`

	Status enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Notes  *string           `gorm:"column:notes"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
