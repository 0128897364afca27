package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	rzpsdk "github.com/razorpay/razorpay-go"

	"github.com/mohansky/ecom-backend/pkg/config"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

// OrderParams carries the inputs for a gateway order. Amount is in minor
// currency units (paise).
type OrderParams struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]any
}

// Order is the typed projection of a gateway order payload.
type Order struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

// Payment is the typed projection of a gateway payment payload.
type Payment struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	Amount    int64  `json:"amount"`
	Email     string `json:"email"`
	Contact   string `json:"contact"`
	CreatedAt int64  `json:"created_at"`
}

// Gateway is the payment gateway surface the services depend on.
type Gateway interface {
	CreateOrder(ctx context.Context, params OrderParams) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
	KeyID() string
	KeySecret() string
	WidgetKeyID() string
}

// Client exposes Razorpay primitives with centralized logging and error mapping.
type Client struct {
	sdk         *rzpsdk.Client
	keyID       string
	keySecret   string
	widgetKeyID string
	logger      *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	c := &Client{
		sdk:         rzpsdk.NewClient(keyID, keySecret),
		keyID:       keyID,
		keySecret:   keySecret,
		widgetKeyID: cfg.WidgetKeyID(),
		logger:      logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the configured key id.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// KeySecret returns the signing secret used for verification.
func (c *Client) KeySecret() string {
	if c == nil {
		return ""
	}
	return c.keySecret
}

// WidgetKeyID returns the key id handed to the storefront widget.
func (c *Client) WidgetKeyID() string {
	if c == nil {
		return ""
	}
	return c.widgetKeyID
}

// CreateOrder creates a gateway order for the given amount.
func (c *Client) CreateOrder(ctx context.Context, params OrderParams) (*Order, error) {
	data := map[string]interface{}{
		"amount":   params.AmountPaise,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   params.AmountPaise,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	})

	raw, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, c.mapGatewayError(err, "create order")
	}

	order := orderFromPayload(raw)
	c.log(ctx, "response", "create_order", map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

// FetchPayment retrieves a payment by gateway id.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	c.log(ctx, "request", "fetch_payment", map[string]any{"payment_id": paymentID})

	raw, err := c.sdk.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		c.log(ctx, "error", "fetch_payment", map[string]any{"error": err.Error()})
		return nil, c.mapGatewayError(err, "fetch payment")
	}

	payment := paymentFromPayload(raw)
	c.log(ctx, "response", "fetch_payment", map[string]any{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
	return payment, nil
}

// FetchOrder retrieves an order by gateway id.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	c.log(ctx, "request", "fetch_order", map[string]any{"order_id": orderID})

	raw, err := c.sdk.Order.Fetch(orderID, nil, nil)
	if err != nil {
		c.log(ctx, "error", "fetch_order", map[string]any{"error": err.Error()})
		return nil, c.mapGatewayError(err, "fetch order")
	}

	order := orderFromPayload(raw)
	c.log(ctx, "response", "fetch_order", map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "signature", "email", "contact", "card"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapGatewayError(err error, op string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("razorpay %s failed", op))
}

func orderFromPayload(raw map[string]interface{}) *Order {
	return &Order{
		ID:         stringField(raw, "id"),
		Amount:     intField(raw, "amount"),
		AmountPaid: intField(raw, "amount_paid"),
		AmountDue:  intField(raw, "amount_due"),
		Currency:   stringField(raw, "currency"),
		Receipt:    stringField(raw, "receipt"),
		Status:     stringField(raw, "status"),
		CreatedAt:  intField(raw, "created_at"),
	}
}

func paymentFromPayload(raw map[string]interface{}) *Payment {
	return &Payment{
		ID:        stringField(raw, "id"),
		OrderID:   stringField(raw, "order_id"),
		Status:    stringField(raw, "status"),
		Method:    stringField(raw, "method"),
		Amount:    intField(raw, "amount"),
		Email:     stringField(raw, "email"),
		Contact:   stringField(raw, "contact"),
		CreatedAt: intField(raw, "created_at"),
	}
}

func stringField(raw map[string]interface{}, key string) string {
	if raw == nil {
		return ""
	}
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func intField(raw map[string]interface{}, key string) int64 {
	if raw == nil {
		return 0
	}
	switch v := raw[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
