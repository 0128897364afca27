package payments

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohansky/ecom-backend/pkg/enums"
	"github.com/mohansky/ecom-backend/pkg/types"
)

// FlexInt decodes a JSON number or a numeric string. The storefront
// serializes quantities inconsistently depending on which cart action
// produced them.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(int(parsed))
		return nil
	}
	var parsed float64
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*f = FlexInt(int(parsed))
	return nil
}

func (f FlexInt) Int() int {
	return int(f)
}

// FlexAmount decodes a JSON number or numeric string into a decimal.
// Unparseable values collapse to zero rather than failing the request,
// matching how the storefront coerced charge fields.
type FlexAmount struct {
	decimal.Decimal
}

func (f *FlexAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		f.Decimal = decimal.Zero
		return nil
	}
	if err := f.Decimal.UnmarshalJSON(data); err != nil {
		f.Decimal = decimal.Zero
	}
	return nil
}

// CartLine is one submitted cart row. Price fields are optional because
// different cart builds populate different subsets of them.
type CartLine struct {
	ID         string           `json:"id"`
	ProductID  types.ProductRef `json:"productId"`
	Name       string           `json:"name"`
	Quantity   FlexInt          `json:"quantity"`
	Price      *FlexAmount      `json:"price"`
	BasePrice  *FlexAmount      `json:"basePrice"`
	TotalPrice *FlexAmount      `json:"totalPrice"`
	Variants   json.RawMessage  `json:"variants,omitempty"`
}

// ResolvedProductID prefers the explicit product reference, falling back
// to the line id.
func (l CartLine) ResolvedProductID() string {
	if !l.ProductID.IsZero() {
		return l.ProductID.ID
	}
	return strings.TrimSpace(l.ID)
}

// HasValidPrice reports whether any price field carries a positive value.
func (l CartLine) HasValidPrice() bool {
	for _, candidate := range []*FlexAmount{l.Price, l.BasePrice, l.TotalPrice} {
		if candidate != nil && candidate.IsPositive() {
			return true
		}
	}
	return false
}

// UnitPrice resolves the per-unit price used for subtotal recomputation.
// Base price wins over the displayed price; a line total is divided back
// down as the last resort.
func (l CartLine) UnitPrice() decimal.Decimal {
	if l.BasePrice != nil && l.BasePrice.IsPositive() {
		return l.BasePrice.Decimal
	}
	if l.Price != nil && l.Price.IsPositive() {
		return l.Price.Decimal
	}
	if l.TotalPrice != nil && l.TotalPrice.IsPositive() && l.Quantity.Int() > 0 {
		return l.TotalPrice.Div(decimal.NewFromInt(int64(l.Quantity.Int())))
	}
	return decimal.Zero
}

// CartDetails is the checkout cart snapshot the storefront submits.
type CartDetails struct {
	Items        []CartLine `json:"items"`
	TotalItems   FlexInt    `json:"totalItems"`
	Tax          FlexAmount `json:"tax"`
	ShippingCost FlexAmount `json:"shippingCost"`
	Discount     FlexAmount `json:"discount"`
}

// CustomerDetails is the customer block submitted alongside a checkout.
type CustomerDetails struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// MissingFields lists the required customer fields that are blank.
func (c CustomerDetails) MissingFields() []string {
	missing := []string{}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.FirstName) == "" {
		missing = append(missing, "firstName")
	}
	if strings.TrimSpace(c.LastName) == "" {
		missing = append(missing, "lastName")
	}
	return missing
}

// CreateOrderInput carries a gateway order request.
type CreateOrderInput struct {
	Amount      *FlexAmount    `json:"amount"`
	Currency    string         `json:"currency"`
	Receipt     string         `json:"receipt"`
	Notes       map[string]any `json:"notes"`
	CartDetails *CartDetails   `json:"cartDetails"`
}

// CreateOrderResult mirrors the gateway order back to the storefront with
// the widget key it needs to open checkout.
type CreateOrderResult struct {
	Success bool             `json:"success"`
	Order   GatewayOrderView `json:"order"`
	KeyID   string           `json:"key_id"`
}

// GatewayOrderView is the gateway order subset exposed to clients.
type GatewayOrderView struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

// VerifyInput is the payment verification request. The customer block may
// arrive under either key depending on storefront version.
type VerifyInput struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`

	CartDetails     *CartDetails          `json:"cartDetails"`
	CustomerDetails *CustomerDetails      `json:"customerDetails"`
	Customer        *CustomerDetails      `json:"customer"`
	ShippingAddress *types.Address        `json:"shippingAddress"`
	BillingAddress  *types.BillingAddress `json:"billingAddress"`
}

// ResolvedCustomer returns whichever customer block was submitted.
func (v VerifyInput) ResolvedCustomer() *CustomerDetails {
	if v.CustomerDetails != nil {
		return v.CustomerDetails
	}
	return v.Customer
}

// VerifyResult confirms the materialized order and echoes the gateway view.
type VerifyResult struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Order         OrderView         `json:"order"`
	Payment       PaymentView       `json:"payment"`
	RazorpayOrder RazorpayOrderView `json:"razorpayOrder"`
}

// OrderView is the persisted order subset returned on verification.
type OrderView struct {
	ID          uuid.UUID         `json:"id"`
	OrderNumber string            `json:"orderNumber"`
	Status      enums.OrderStatus `json:"status"`
	Total       decimal.Decimal   `json:"total"`
}

// PaymentView echoes the fetched gateway payment.
type PaymentView struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	CreatedAt int64  `json:"created_at"`
}

// RazorpayOrderView echoes the fetched gateway order.
type RazorpayOrderView struct {
	ID      string `json:"id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	Receipt string `json:"receipt"`
}
