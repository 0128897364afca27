package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mohansky/ecom-backend/internal/orders"
	dbpkg "github.com/mohansky/ecom-backend/pkg/db"
	"github.com/mohansky/ecom-backend/pkg/db/models"
	"github.com/mohansky/ecom-backend/pkg/enums"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/outbox"
	"github.com/mohansky/ecom-backend/pkg/razorpay"
	"github.com/mohansky/ecom-backend/pkg/types"
)

const defaultShippingCountry = "India"

// OrderCreatedEvent is emitted once per verified payment when the order
// row commits. The projector re-reads the order by id.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Email       string    `json:"email"`
}

// Verify authenticates a completed gateway payment and materializes the
// order. Validation happens first so a tampered or incomplete request
// never reaches the gateway; the order row and its created event commit
// in one transaction.
func (s *service) Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if err := validateVerifyInput(input); err != nil {
		return nil, err
	}

	if !SignatureMatches(input.RazorpayOrderID, input.RazorpayPaymentID, s.gateway.KeySecret(), input.RazorpaySignature) {
		return nil, pkgerrors.New(pkgerrors.CodeSignature, "Invalid payment signature")
	}

	payment, err := s.gateway.FetchPayment(ctx, input.RazorpayPaymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to process payment and create order").
			WithDetails(err.Error())
	}
	gatewayOrder, err := s.gateway.FetchOrder(ctx, input.RazorpayOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to process payment and create order").
			WithDetails(err.Error())
	}

	order := s.buildOrder(input, payment)

	created, err := s.persistOrder(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to process payment and create order").
			WithDetails(err.Error())
	}

	if s.logg != nil {
		fields := map[string]any{
			"order_id":           created.ID.String(),
			"order_number":       created.OrderNumber,
			"gateway_payment_id": payment.ID,
			"payment_status":     created.PaymentStatus,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "payment verified and order created")
	}

	return &VerifyResult{
		Success: true,
		Message: "Payment verified and order created successfully",
		Order: OrderView{
			ID:          created.ID,
			OrderNumber: created.OrderNumber,
			Status:      created.Status,
			Total:       created.Total,
		},
		Payment: PaymentView{
			ID:        payment.ID,
			Amount:    payment.Amount,
			Status:    payment.Status,
			Method:    payment.Method,
			CreatedAt: payment.CreatedAt,
		},
		RazorpayOrder: RazorpayOrderView{
			ID:      gatewayOrder.ID,
			Amount:  gatewayOrder.Amount,
			Status:  gatewayOrder.Status,
			Receipt: gatewayOrder.Receipt,
		},
	}, nil
}

// validateVerifyInput walks the request in submission order and fails on
// the first gap so the storefront can surface one actionable message.
func validateVerifyInput(input VerifyInput) error {
	if strings.TrimSpace(input.RazorpayOrderID) == "" ||
		strings.TrimSpace(input.RazorpayPaymentID) == "" ||
		strings.TrimSpace(input.RazorpaySignature) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required payment verification fields")
	}

	customer := input.ResolvedCustomer()
	if customer == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required customer details").
			WithDetails([]string{"customerDetails/customer object is missing"})
	}
	if missing := customer.MissingFields(); len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required customer details").
			WithDetails(missing)
	}

	if input.ShippingAddress == nil || len(input.ShippingAddress.MissingShippingFields()) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required shipping address details")
	}

	if input.CartDetails == nil || len(input.CartDetails.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Cart items are required")
	}
	for i, line := range input.CartDetails.Items {
		if line.ResolvedProductID() == "" {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("Cart item %d is missing product ID", i+1))
		}
		if !line.HasValidPrice() {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("Cart item %d is missing valid price", i+1))
		}
		if line.Quantity.Int() <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("Cart item %d is missing valid quantity", i+1))
		}
	}
	return nil
}

// buildOrder assembles the order row from the validated request and the
// fetched gateway payment.
func (s *service) buildOrder(input VerifyInput, payment *razorpay.Payment) *models.Order {
	customer := input.ResolvedCustomer()
	cart := input.CartDetails

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		quantity := line.Quantity.Int()
		unitPrice := line.UnitPrice()
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		subtotal = subtotal.Add(lineTotal)

		name := strings.TrimSpace(line.Name)
		if name == "" {
			name = "Product"
		}
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: line.ResolvedProductID(),
			Name:      name,
			Quantity:  quantity,
			Price:     unitPrice,
			Total:     lineTotal,
			Variants:  line.Variants,
		})
	}

	tax, shippingCost, discount := s.resolveCharges(subtotal, cart)
	total := subtotal.Add(tax).Add(shippingCost).Sub(discount)

	shipping := *input.ShippingAddress
	if strings.TrimSpace(shipping.Country) == "" {
		shipping.Country = defaultShippingCountry
	}

	billingSameAsShipping := true
	var billing *types.Address
	if input.BillingAddress != nil {
		billingSameAsShipping = input.BillingAddress.SameAsShipping
		if !billingSameAsShipping && !input.BillingAddress.Address.IsZero() {
			addr := input.BillingAddress.Address
			billing = &addr
		}
	}

	paymentStatus := enums.PaymentStatusFromGateway(payment.Status)
	orderStatus := enums.OrderStatusPending
	if paymentStatus == enums.PaymentStatusCaptured {
		orderStatus = enums.OrderStatusProcessing
	}

	notes := fmt.Sprintf("Payment completed via Razorpay. Method: %s", payment.Method)
	paymentDate := time.Unix(payment.CreatedAt, 0)

	order := &models.Order{
		ID:                uuid.New(),
		CustomerEmail:     strings.TrimSpace(customer.Email),
		CustomerFirstName: strings.TrimSpace(customer.FirstName),
		CustomerLastName:  strings.TrimSpace(customer.LastName),

		ShippingAddress:       shipping,
		BillingAddress:        billing,
		BillingSameAsShipping: billingSameAsShipping,

		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: shippingCost,
		Discount:     discount,
		Total:        total,

		PaymentMethod:    enums.PaymentMethodRazorpay,
		GatewayOrderID:   input.RazorpayOrderID,
		GatewayPaymentID: input.RazorpayPaymentID,
		GatewaySignature: input.RazorpaySignature,
		PaymentStatus:    paymentStatus,
		PaymentDate:      &paymentDate,
		PaymentAmount:    decimal.NewFromInt(payment.Amount).Shift(-2),

		Status: orderStatus,
		Notes:  &notes,
		Items:  items,
	}
	if phone := strings.TrimSpace(customer.Phone); phone != "" {
		order.CustomerPhone = &phone
	}
	if method := strings.TrimSpace(payment.Method); method != "" {
		order.PaymentDetail = &method
	}
	return order
}

// resolveCharges picks tax, shipping, and discount. The submitted values
// are honored when client charges are trusted; otherwise tax and shipping
// derive from configuration and discounts are ignored.
func (s *service) resolveCharges(subtotal decimal.Decimal, cart *CartDetails) (tax, shippingCost, discount decimal.Decimal) {
	if s.cfg.TrustClientCharges {
		return cart.Tax.Decimal, cart.ShippingCost.Decimal, cart.Discount.Decimal
	}
	tax = subtotal.Mul(s.cfg.TaxRateDecimal()).Round(2)
	shippingCost = s.cfg.FlatShippingFeeDecimal()
	discount = decimal.Zero
	return tax, shippingCost, discount
}

// persistOrder writes the order with a fresh order number, retrying with
// a new number when it collides with an existing one.
func (s *service) persistOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	retries := s.cfg.OrderNumberRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := retry.WithMaxRetries(uint64(retries), retry.NewConstant(5*time.Millisecond))

	var created *models.Order
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		order.OrderNumber = orders.NewOrderNumber()
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			row, err := s.repo.WithTx(tx).Create(ctx, order)
			if err != nil {
				if dbpkg.IsUniqueViolation(err, "idx_orders_order_number") {
					return retry.RetryableError(err)
				}
				return err
			}
			created = row
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   row.ID,
				Version:       1,
				Data: OrderCreatedEvent{
					OrderID:     row.ID,
					OrderNumber: row.OrderNumber,
					Email:       row.CustomerEmail,
				},
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
