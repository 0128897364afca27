package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohansky/ecom-backend/internal/cart"
	"github.com/mohansky/ecom-backend/internal/payments"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/logger"
	"github.com/mohansky/ecom-backend/pkg/types"
)

// ErrWidgetDismissed is returned by a Widget when the payer closes the
// payment window without completing it.
var ErrWidgetDismissed = errors.New("payment widget dismissed")

// OrderCreator registers the checkout amount with the gateway.
type OrderCreator interface {
	CreateOrder(ctx context.Context, input payments.CreateOrderInput) (*payments.CreateOrderResult, error)
}

// Verifier confirms a completed payment and materializes the order.
type Verifier interface {
	Verify(ctx context.Context, input payments.VerifyInput) (*payments.VerifyResult, error)
}

// WidgetLoader makes the payment widget available before it is opened.
// A load failure aborts the attempt; there is no retry.
type WidgetLoader interface {
	Load(ctx context.Context) error
}

// WidgetPrefill seeds the payment form with the payer's details.
type WidgetPrefill struct {
	Name    string
	Email   string
	Contact string
}

// WidgetOptions configures one payment widget session.
type WidgetOptions struct {
	KeyID       string
	AmountPaise int64
	Currency    string
	OrderID     string
	Description string
	Prefill     WidgetPrefill
}

// WidgetResponse carries the gateway identifiers a completed payment hands
// back for verification.
type WidgetResponse struct {
	PaymentID string
	OrderID   string
	Signature string
}

// Widget runs the payment UI. Open blocks until the payment completes,
// the payer dismisses it (ErrWidgetDismissed), or it fails.
type Widget interface {
	Open(ctx context.Context, options WidgetOptions) (*WidgetResponse, error)
}

// FailureRedirect is the payload handed to the failure view.
type FailureRedirect struct {
	Code    string
	Message string
	Amount  decimal.Decimal
}

// Navigator moves the shopper to the terminal checkout views.
type Navigator interface {
	OrderConfirmation(ctx context.Context, orderID uuid.UUID)
	PaymentFailed(ctx context.Context, redirect FailureRedirect)
}

// CartClearer empties the shopper's cart after the server confirms the order.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// AddressForm is the shipping address block collected at checkout.
type AddressForm struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CustomerInfo is the customer block collected at checkout.
type CustomerInfo struct {
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Phone   string      `json:"phone"`
	Address AddressForm `json:"address"`
}

// SubmitInput is one checkout attempt.
type SubmitInput struct {
	CheckoutID string
	Cart       cart.Cart
	Customer   CustomerInfo
}

// Workflow drives a checkout attempt through its strict sequence: validate,
// snapshot, load widget, create gateway order, collect payment, verify.
// The cart is cleared only after the server confirms the order.
type Workflow struct {
	orders    OrderCreator
	verifier  Verifier
	loader    WidgetLoader
	widget    Widget
	navigator Navigator
	cart      CartClearer
	recovery  RecoveryStorage
	logg      *logger.Logger
}

// NewWorkflow builds a checkout workflow with the required collaborators.
func NewWorkflow(
	orders OrderCreator,
	verifier Verifier,
	loader WidgetLoader,
	widget Widget,
	navigator Navigator,
	cartClearer CartClearer,
	recovery RecoveryStorage,
	logg *logger.Logger,
) (*Workflow, error) {
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("verifier required")
	}
	if loader == nil {
		return nil, fmt.Errorf("widget loader required")
	}
	if widget == nil {
		return nil, fmt.Errorf("widget required")
	}
	if navigator == nil {
		return nil, fmt.Errorf("navigator required")
	}
	if cartClearer == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	if recovery == nil {
		return nil, fmt.Errorf("recovery storage required")
	}
	return &Workflow{
		orders:    orders,
		verifier:  verifier,
		loader:    loader,
		widget:    widget,
		navigator: navigator,
		cart:      cartClearer,
		recovery:  recovery,
		logg:      logg,
	}, nil
}

// Submit runs one checkout attempt end to end. On any failure after the
// snapshot the recovery data is deliberately kept so the attempt can resume.
func (w *Workflow) Submit(ctx context.Context, input SubmitInput) (*payments.VerifyResult, error) {
	if len(input.Cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Your cart is empty")
	}
	if !input.Customer.complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please fill in all required fields")
	}

	if err := w.recovery.Save(ctx, input.CheckoutID, Snapshot{
		Cart:      input.Cart,
		Customer:  input.Customer,
		Timestamp: time.Now(),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving checkout recovery data")
	}

	if err := w.loader.Load(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			"Payment widget failed to load. Please check your internet connection.")
	}

	amount := payments.FlexAmount{Decimal: input.Cart.TotalPrice}
	orderResult, err := w.orders.CreateOrder(ctx, payments.CreateOrderInput{
		Amount:  &amount,
		Receipt: fmt.Sprintf("order_%d", time.Now().UnixMilli()),
		Notes: map[string]any{
			"customer_name":  input.Customer.Name,
			"customer_email": input.Customer.Email,
			"customer_phone": input.Customer.Phone,
		},
		CartDetails: cartDetailsFromCart(input.Cart),
	})
	if err != nil {
		w.failPayment(ctx, input.Cart.TotalPrice, err)
		return nil, err
	}

	response, err := w.widget.Open(ctx, WidgetOptions{
		KeyID:       orderResult.KeyID,
		AmountPaise: orderResult.Order.Amount,
		Currency:    orderResult.Order.Currency,
		OrderID:     orderResult.Order.ID,
		Description: fmt.Sprintf("Order for %d items", input.Cart.TotalItems),
		Prefill: WidgetPrefill{
			Name:    input.Customer.Name,
			Email:   input.Customer.Email,
			Contact: input.Customer.Phone,
		},
	})
	if err != nil {
		if errors.Is(err, ErrWidgetDismissed) {
			w.navigator.PaymentFailed(ctx, FailureRedirect{
				Code:    FailureUnknown,
				Message: "Payment cancelled by user",
				Amount:  input.Cart.TotalPrice,
			})
			return nil, err
		}
		w.failPayment(ctx, input.Cart.TotalPrice, err)
		return nil, err
	}

	firstName, lastName := splitName(input.Customer.Name)
	verifyResult, err := w.verifier.Verify(ctx, payments.VerifyInput{
		RazorpayOrderID:   response.OrderID,
		RazorpayPaymentID: response.PaymentID,
		RazorpaySignature: response.Signature,
		CartDetails:       cartDetailsFromCart(input.Cart),
		CustomerDetails: &payments.CustomerDetails{
			Email:     input.Customer.Email,
			FirstName: firstName,
			LastName:  lastName,
			Phone:     input.Customer.Phone,
		},
		ShippingAddress: &types.Address{
			Address1:   input.Customer.Address.Line1,
			Address2:   input.Customer.Address.Line2,
			City:       input.Customer.Address.City,
			State:      input.Customer.Address.State,
			PostalCode: input.Customer.Address.PostalCode,
			Country:    input.Customer.Address.Country,
		},
		BillingAddress: &types.BillingAddress{SameAsShipping: true},
	})
	if err != nil {
		// Cart and recovery snapshot stay intact so the attempt can resume.
		return nil, err
	}

	if err := w.cart.Clear(ctx); err != nil && w.logg != nil {
		w.logg.Error(ctx, "clearing cart after confirmed order", err)
	}
	if err := w.recovery.Clear(ctx, input.CheckoutID); err != nil && w.logg != nil {
		w.logg.Error(ctx, "clearing recovery snapshot after confirmed order", err)
	}
	w.navigator.OrderConfirmation(ctx, verifyResult.Order.ID)

	if w.logg != nil {
		fields := map[string]any{
			"order_id":     verifyResult.Order.ID.String(),
			"order_number": verifyResult.Order.OrderNumber,
		}
		w.logg.Info(w.logg.WithFields(ctx, fields), "checkout completed")
	}
	return verifyResult, nil
}

func (w *Workflow) failPayment(ctx context.Context, amount decimal.Decimal, cause error) {
	w.navigator.PaymentFailed(ctx, FailureRedirect{
		Code:    FailureGateway,
		Message: cause.Error(),
		Amount:  amount,
	})
}

func (c CustomerInfo) complete() bool {
	required := []string{
		c.Name, c.Email, c.Phone,
		c.Address.Line1, c.Address.City, c.Address.State, c.Address.PostalCode,
	}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full, ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func cartDetailsFromCart(c cart.Cart) *payments.CartDetails {
	details := &payments.CartDetails{
		Items:      make([]payments.CartLine, 0, len(c.Items)),
		TotalItems: payments.FlexInt(c.TotalItems),
	}
	for _, item := range c.Items {
		basePrice := payments.FlexAmount{Decimal: item.BasePrice}
		totalPrice := payments.FlexAmount{Decimal: item.TotalPrice}
		line := payments.CartLine{
			ID:         item.ID,
			ProductID:  types.ProductRef{ID: item.ProductID},
			Name:       item.Product.Title,
			Quantity:   payments.FlexInt(item.Quantity),
			BasePrice:  &basePrice,
			TotalPrice: &totalPrice,
		}
		if len(item.Variants) > 0 {
			if raw, err := json.Marshal(item.Variants); err == nil {
				line.Variants = raw
			}
		}
		details.Items = append(details.Items, line)
	}
	return details
}
