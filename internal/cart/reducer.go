package cart

import "github.com/shopspring/decimal"

// ActionType enumerates the reducer transitions.
type ActionType string

const (
	ActionAdd            ActionType = "ADD"
	ActionUpdateQuantity ActionType = "UPDATE_QUANTITY"
	ActionRemove         ActionType = "REMOVE"
	ActionClear          ActionType = "CLEAR"
	ActionLoad           ActionType = "LOAD"
)

// Action is one reducer input. Fields are read depending on Type.
type Action struct {
	Type     ActionType
	Product  ProductSnapshot
	Variants []Variant
	Quantity int
	ItemID   string
	Cart     Cart
}

// Reduce applies one transition and returns the next cart state. It is a pure
// function; persistence happens in the Store wrapper.
func Reduce(state Cart, action Action) Cart {
	switch action.Type {
	case ActionAdd:
		return reduceAdd(state, action)
	case ActionUpdateQuantity:
		if action.Quantity <= 0 {
			return reduceRemove(state, action.ItemID)
		}
		return reduceUpdateQuantity(state, action.ItemID, action.Quantity)
	case ActionRemove:
		return reduceRemove(state, action.ItemID)
	case ActionClear:
		return Empty()
	case ActionLoad:
		// Wholesale replacement, no validation. A corrupted persisted blob
		// produces a broken cart.
		return action.Cart
	default:
		return state
	}
}

func reduceAdd(state Cart, action Action) Cart {
	id := ItemID(action.Product.ID, action.Variants)

	items := make([]Item, 0, len(state.Items)+1)
	merged := false
	for _, item := range state.Items {
		if item.ID == id {
			item.Quantity += action.Quantity
			item.TotalPrice = item.BasePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			merged = true
		}
		items = append(items, item)
	}

	if !merged {
		basePrice := EffectivePrice(action.Product, action.Variants)
		items = append(items, Item{
			ID:         id,
			ProductID:  action.Product.ID,
			Product:    action.Product,
			Variants:   action.Variants,
			Quantity:   action.Quantity,
			BasePrice:  basePrice,
			TotalPrice: basePrice.Mul(decimal.NewFromInt(int64(action.Quantity))),
		})
	}

	return recompute(items)
}

func reduceUpdateQuantity(state Cart, itemID string, quantity int) Cart {
	items := make([]Item, 0, len(state.Items))
	for _, item := range state.Items {
		if item.ID == itemID {
			item.Quantity = quantity
			item.TotalPrice = item.BasePrice.Mul(decimal.NewFromInt(int64(quantity)))
		}
		items = append(items, item)
	}
	return recompute(items)
}

func reduceRemove(state Cart, itemID string) Cart {
	items := make([]Item, 0, len(state.Items))
	for _, item := range state.Items {
		if item.ID == itemID {
			continue
		}
		items = append(items, item)
	}
	return recompute(items)
}

// recompute rebuilds the cart totals from the item list.
func recompute(items []Item) Cart {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range items {
		totalItems += item.Quantity
		totalPrice = totalPrice.Add(item.TotalPrice)
	}
	return Cart{Items: items, TotalItems: totalItems, TotalPrice: totalPrice}
}
