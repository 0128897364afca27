package cart

import "github.com/shopspring/decimal"

// EffectivePrice returns the unit price for a product with the given selected
// variants: base price plus the sum of variant price modifiers. Modifiers may
// be negative and the result is not floored; a variant can undercut base.
// No variants means exactly the base price.
func EffectivePrice(product ProductSnapshot, variants []Variant) decimal.Decimal {
	price := product.Price
	for _, v := range variants {
		price = price.Add(v.PriceModifier)
	}
	return price
}
