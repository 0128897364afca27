package payments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mohansky/ecom-backend/internal/orders"
	"github.com/mohansky/ecom-backend/pkg/config"
	"github.com/mohansky/ecom-backend/pkg/db/models"
	"github.com/mohansky/ecom-backend/pkg/enums"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/outbox"
	"github.com/mohansky/ecom-backend/pkg/razorpay"
	"github.com/mohansky/ecom-backend/pkg/types"
)

var errFetchDown = errors.New("gateway timeout")

type fakeGateway struct {
	keySecret string
	widgetKey string
	payment   *razorpay.Payment
	order     *razorpay.Order
	created   []razorpay.OrderParams
	createErr error
	fetchErr  error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, params razorpay.OrderParams) (*razorpay.Order, error) {
	f.created = append(f.created, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.order != nil {
		return f.order, nil
	}
	return &razorpay.Order{
		ID:        "order_fake",
		Amount:    params.AmountPaise,
		AmountDue: params.AmountPaise,
		Currency:  params.Currency,
		Receipt:   params.Receipt,
		Status:    "created",
		CreatedAt: 1700000000,
	}, nil
}

func (f *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payment, nil
}

func (f *fakeGateway) FetchOrder(ctx context.Context, orderID string) (*razorpay.Order, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.order, nil
}

func (f *fakeGateway) KeyID() string       { return "rzp_test_key" }
func (f *fakeGateway) KeySecret() string   { return f.keySecret }
func (f *fakeGateway) WidgetKeyID() string { return f.widgetKey }

type fakeTxRunner struct {
	db *gorm.DB
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(f.db)
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_email TEXT NOT NULL,
  customer_first_name TEXT NOT NULL,
  customer_last_name TEXT NOT NULL,
  customer_phone TEXT,
  customer_ref TEXT,
  shipping_address TEXT,
  billing_address TEXT,
  billing_same_as_shipping INTEGER NOT NULL DEFAULT 1,
  subtotal NUMERIC NOT NULL,
  tax NUMERIC NOT NULL,
  shipping_cost NUMERIC NOT NULL,
  discount NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'razorpay',
  gateway_order_id TEXT NOT NULL,
  gateway_payment_id TEXT NOT NULL,
  gateway_signature TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_detail TEXT,
  payment_date DATETIME,
  payment_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  variants TEXT,
  created_at DATETIME
);`

	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItems).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM order_items")
		db.Exec("DELETE FROM orders")
	})

	return db
}

func amount(value string) *FlexAmount {
	return &FlexAmount{Decimal: decimal.RequireFromString(value)}
}

func newVerifyService(t *testing.T, db *gorm.DB, gateway *fakeGateway, sink *fakeOutbox) Service {
	t.Helper()
	cfg := config.PaymentConfig{
		Currency:           "INR",
		TrustClientCharges: true,
		OrderNumberRetries: 3,
	}
	svc, err := NewService(gateway, orders.NewRepository(db), &fakeTxRunner{db: db}, sink, cfg, nil)
	require.NoError(t, err)
	return svc
}

func validVerifyInput(secret string) VerifyInput {
	input := VerifyInput{
		RazorpayOrderID:   "order_ABC",
		RazorpayPaymentID: "pay_XYZ",
		CustomerDetails: &CustomerDetails{
			Email:     "asha@example.com",
			FirstName: "Asha",
			LastName:  "Rao",
			Phone:     "+919900112233",
		},
		ShippingAddress: &types.Address{
			Address1:   "12 MG Road",
			City:       "Bengaluru",
			State:      "KA",
			PostalCode: "560001",
		},
		CartDetails: &CartDetails{
			Items: []CartLine{
				{
					ProductID: types.ProductRef{ID: "prod-1"},
					Name:      "Mug",
					Quantity:  FlexInt(2),
					BasePrice: amount("100"),
					Price:     amount("120"),
				},
				{
					ProductID: types.ProductRef{ID: "prod-2"},
					Name:      "Tee",
					Quantity:  FlexInt(1),
					Price:     amount("50"),
				},
				{
					ProductID:  types.ProductRef{ID: "prod-3"},
					Name:       "Socks",
					Quantity:   FlexInt(3),
					TotalPrice: amount("90"),
				},
			},
			TotalItems:   FlexInt(6),
			Tax:          FlexAmount{Decimal: decimal.RequireFromString("10")},
			ShippingCost: FlexAmount{Decimal: decimal.RequireFromString("20")},
			Discount:     FlexAmount{Decimal: decimal.RequireFromString("5")},
		},
	}
	input.RazorpaySignature = ComputeSignature(input.RazorpayOrderID, input.RazorpayPaymentID, secret)
	return input
}

func requireValidationError(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, message, typed.Message())
}

func TestVerifyValidationFirstFailureWins(t *testing.T) {
	db := setupPaymentsTestDB(t)
	gateway := &fakeGateway{keySecret: "test_secret"}
	svc := newVerifyService(t, db, gateway, &fakeOutbox{})
	ctx := context.Background()

	_, err := svc.Verify(ctx, VerifyInput{})
	requireValidationError(t, err, "Missing required payment verification fields")

	input := validVerifyInput("test_secret")
	input.CustomerDetails = nil
	input.Customer = nil
	_, err = svc.Verify(ctx, input)
	requireValidationError(t, err, "Missing required customer details")
	require.Equal(t, []string{"customerDetails/customer object is missing"}, pkgerrors.As(err).Details())

	input = validVerifyInput("test_secret")
	input.CustomerDetails.LastName = ""
	_, err = svc.Verify(ctx, input)
	requireValidationError(t, err, "Missing required customer details")
	require.Equal(t, []string{"lastName"}, pkgerrors.As(err).Details())

	input = validVerifyInput("test_secret")
	input.ShippingAddress.PostalCode = ""
	_, err = svc.Verify(ctx, input)
	requireValidationError(t, err, "Missing required shipping address details")

	input = validVerifyInput("test_secret")
	input.CartDetails.Items = nil
	_, err = svc.Verify(ctx, input)
	requireValidationError(t, err, "Cart items are required")

	input = validVerifyInput("test_secret")
	input.CartDetails.Items[0].ProductID = types.ProductRef{}
	input.CartDetails.Items[0].ID = ""
	_, err = svc.Verify(ctx, input)
	requireValidationError(t, err, "Cart item 1 is missing product ID")

	input = validVerifyInput("test_secret")
	input.CartDetails.Items[1].Price = nil
	_, err = svc.Verify(ctx, input)
	requireValidationError(t, err, "Cart item 2 is missing valid price")

	input = validVerifyInput("test_secret")
	input.CartDetails.Items[2].Quantity = FlexInt(0)
	_, err = svc.Verify(ctx, input)
	requireValidationError(t, err, "Cart item 3 is missing valid quantity")

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count, "validation failures must not persist orders")
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	db := setupPaymentsTestDB(t)
	gateway := &fakeGateway{keySecret: "test_secret"}
	svc := newVerifyService(t, db, gateway, &fakeOutbox{})

	input := validVerifyInput("test_secret")
	mutated := []byte(input.RazorpaySignature)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	input.RazorpaySignature = string(mutated)

	_, err := svc.Verify(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeSignature, typed.Code())
	require.Equal(t, "Invalid payment signature", typed.Message())

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestVerifyCreatesOrderAndEmitsEvent(t *testing.T) {
	db := setupPaymentsTestDB(t)
	gateway := &fakeGateway{
		keySecret: "test_secret",
		payment: &razorpay.Payment{
			ID:        "pay_XYZ",
			OrderID:   "order_ABC",
			Status:    "captured",
			Method:    "upi",
			Amount:    36500,
			CreatedAt: 1700000000,
		},
		order: &razorpay.Order{
			ID:      "order_ABC",
			Amount:  36500,
			Status:  "paid",
			Receipt: "rcpt_1",
		},
	}
	sink := &fakeOutbox{}
	svc := newVerifyService(t, db, gateway, sink)

	result, err := svc.Verify(context.Background(), validVerifyInput("test_secret"))
	require.NoError(t, err)

	require.True(t, result.Success)
	require.Equal(t, "Payment verified and order created successfully", result.Message)
	require.Equal(t, enums.OrderStatusProcessing, result.Order.Status)
	require.True(t, result.Order.Total.Equal(decimal.RequireFromString("365")),
		"expected 340 subtotal + 10 tax + 20 shipping - 5 discount, got %s", result.Order.Total)
	require.Equal(t, "pay_XYZ", result.Payment.ID)
	require.Equal(t, "upi", result.Payment.Method)
	require.Equal(t, "rcpt_1", result.RazorpayOrder.Receipt)

	repo := orders.NewRepository(db)
	stored, err := repo.FindByID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	require.True(t, stored.Subtotal.Equal(decimal.RequireFromString("340")),
		"base price wins over display price, line totals divide back to units")
	require.Equal(t, enums.PaymentStatusCaptured, stored.PaymentStatus)
	require.Equal(t, "India", stored.ShippingAddress.Country, "country defaults when omitted")
	require.True(t, stored.BillingSameAsShipping)
	require.NotNil(t, stored.Notes)
	require.Contains(t, *stored.Notes, "Method: upi")
	require.Len(t, stored.Items, 3)
	require.True(t, stored.PaymentAmount.Equal(decimal.RequireFromString("365")))

	require.Len(t, sink.events, 1)
	require.Equal(t, enums.EventOrderCreated, sink.events[0].EventType)
	require.Equal(t, stored.ID, sink.events[0].AggregateID)
}

func TestVerifyUnknownGatewayStatusStaysPending(t *testing.T) {
	db := setupPaymentsTestDB(t)
	gateway := &fakeGateway{
		keySecret: "test_secret",
		payment: &razorpay.Payment{
			ID:     "pay_XYZ",
			Status: "created",
			Method: "card",
			Amount: 36500,
		},
		order: &razorpay.Order{ID: "order_ABC", Status: "attempted"},
	}
	svc := newVerifyService(t, db, gateway, &fakeOutbox{})

	result, err := svc.Verify(context.Background(), validVerifyInput("test_secret"))
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, result.Order.Status)

	stored, err := orders.NewRepository(db).FindByID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPending, stored.PaymentStatus)
}

func TestVerifyGatewayFailureSurfacesDetails(t *testing.T) {
	db := setupPaymentsTestDB(t)
	gateway := &fakeGateway{
		keySecret: "test_secret",
		fetchErr:  errFetchDown,
	}
	svc := newVerifyService(t, db, gateway, &fakeOutbox{})

	_, err := svc.Verify(context.Background(), validVerifyInput("test_secret"))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
	require.Equal(t, "Failed to process payment and create order", typed.Message())
	require.Equal(t, errFetchDown.Error(), typed.Details())
}

func TestCartDetailsDecodesLooseTypes(t *testing.T) {
	raw := `{
		"items": [
			{"id": "line-1", "productId": 42, "name": "Mug", "quantity": "2", "price": "120.50"}
		],
		"totalItems": "2",
		"tax": "18",
		"shippingCost": 40,
		"discount": "not-a-number"
	}`

	var cart CartDetails
	require.NoError(t, json.Unmarshal([]byte(raw), &cart))

	require.Len(t, cart.Items, 1)
	require.Equal(t, "42", cart.Items[0].ResolvedProductID())
	require.Equal(t, 2, cart.Items[0].Quantity.Int())
	require.True(t, cart.Items[0].Price.Equal(decimal.RequireFromString("120.5")))
	require.Equal(t, 2, cart.TotalItems.Int())
	require.True(t, cart.Tax.Equal(decimal.RequireFromString("18")))
	require.True(t, cart.ShippingCost.Equal(decimal.RequireFromString("40")))
	require.True(t, cart.Discount.IsZero(), "garbage charge fields collapse to zero")
}
