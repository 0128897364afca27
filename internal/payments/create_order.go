package payments

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/razorpay"
)

// CreateOrder registers the pending checkout amount with the gateway and
// returns the order handle the storefront widget needs.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.Amount == nil || input.Amount.IsZero() || strings.TrimSpace(input.Receipt) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Amount and receipt are required")
	}

	amountPaise := input.Amount.Shift(2).Round(0).IntPart()
	if amountPaise < 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Amount should be at least ₹1")
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = s.cfg.Currency
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderParams{
		AmountPaise: amountPaise,
		Currency:    currency,
		Receipt:     input.Receipt,
		Notes:       buildOrderNotes(input.Notes, input.CartDetails),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to create order").
			WithDetails(err.Error())
	}

	if s.logg != nil {
		fields := map[string]any{
			"gateway_order_id": order.ID,
			"amount_paise":     amountPaise,
			"currency":         currency,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "gateway order created")
	}

	return &CreateOrderResult{
		Success: true,
		Order: GatewayOrderView{
			ID:         order.ID,
			Amount:     order.Amount,
			AmountPaid: order.AmountPaid,
			AmountDue:  order.AmountDue,
			Currency:   order.Currency,
			Receipt:    order.Receipt,
			Status:     order.Status,
			CreatedAt:  order.CreatedAt,
		},
		KeyID: s.gateway.WidgetKeyID(),
	}, nil
}

// buildOrderNotes merges caller notes with a cart snapshot so the gateway
// dashboard shows what was being bought.
func buildOrderNotes(notes map[string]any, cart *CartDetails) map[string]any {
	merged := map[string]any{}
	for k, v := range notes {
		merged[k] = v
	}

	items := []CartLine{}
	totalItems := 0
	if cart != nil {
		if cart.Items != nil {
			items = cart.Items
		}
		totalItems = cart.TotalItems.Int()
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		encoded = []byte("[]")
	}
	merged["cart_items"] = string(encoded)
	merged["total_items"] = strconv.Itoa(totalItems)
	return merged
}
