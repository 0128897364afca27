package cart

import (
	"sort"
	"strings"
)

// ItemID derives the deterministic cart line id from the product id and the
// selected variant set. Variants are sorted by name so set-equal selections
// in any order resolve to the same id, which is what makes re-adding the same
// combination merge instead of duplicate.
func ItemID(productID string, variants []Variant) string {
	if len(variants) == 0 {
		return productID
	}
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		parts = append(parts, v.Name+":"+v.Value)
	}
	sort.Strings(parts)
	return productID + "-" + strings.Join(parts, "|")
}
