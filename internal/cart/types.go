package cart

import (
	"github.com/shopspring/decimal"
)

// Variant is a snapshot of a product variant's pricing-relevant fields,
// captured at add-to-cart time. Not a live reference to the catalog.
type Variant struct {
	Name          string          `json:"name"`
	Value         string          `json:"value"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
	Quantity      *int            `json:"quantity,omitempty"`
	SKU           *string         `json:"sku,omitempty"`
}

// ProductSnapshot is the catalog data a cart line keeps for itself.
type ProductSnapshot struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Slug           string           `json:"slug,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	TrackQuantity  bool             `json:"trackQuantity,omitempty"`
	Quantity       *int             `json:"quantity,omitempty"`
}

// Item is one cart line. BasePrice is the effective unit price and
// TotalPrice is always BasePrice times Quantity after a reducer transition.
type Item struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"productId"`
	Product    ProductSnapshot `json:"product"`
	Variants   []Variant       `json:"variants,omitempty"`
	Quantity   int             `json:"quantity"`
	BasePrice  decimal.Decimal `json:"basePrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Cart is the whole cart state. Totals are recomputed wholesale after every
// mutation, never patched incrementally.
type Cart struct {
	Items      []Item          `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Empty returns a cart with no items and zero totals.
func Empty() Cart {
	return Cart{Items: []Item{}, TotalItems: 0, TotalPrice: decimal.Zero}
}
