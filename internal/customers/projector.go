package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mohansky/ecom-backend/internal/orders"
	"github.com/mohansky/ecom-backend/pkg/db/models"
	"github.com/mohansky/ecom-backend/pkg/enums"
	"github.com/mohansky/ecom-backend/pkg/logger"
	"github.com/mohansky/ecom-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// orderEventData is the subset of order event payloads the projector needs;
// the order row itself is re-read so replayed events always project the
// current state.
type orderEventData struct {
	OrderID uuid.UUID `json:"order_id"`
}

// ProjectedEvent records that a customer aggregate absorbed an order.
type ProjectedEvent struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Email      string    `json:"email"`
	OrderID    uuid.UUID `json:"order_id"`
}

// Projector maintains the customer aggregate from order events. It is safe
// to replay: every projection recomputes the aggregate wholesale from the
// order history instead of incrementing counters.
type Projector struct {
	customers Repository
	orders    orders.Repository
	tx        txRunner
	outbox    outboxPublisher
	logg      *logger.Logger
}

// NewProjector builds the customer projector with the required dependencies.
func NewProjector(
	customersRepo Repository,
	ordersRepo orders.Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	logg *logger.Logger,
) (*Projector, error) {
	if customersRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Projector{
		customers: customersRepo,
		orders:    ordersRepo,
		tx:        tx,
		outbox:    outboxSvc,
		logg:      logg,
	}, nil
}

// Handle consumes an order event and projects it into the customer row.
// A missing order cannot succeed on retry, so it dead-letters directly.
func (p *Projector) Handle(ctx context.Context, envelope outbox.PayloadEnvelope, event models.OutboxEvent) error {
	var data orderEventData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return outbox.NewNonRetryableError(fmt.Errorf("decoding order event payload: %w", err))
	}
	if data.OrderID == uuid.Nil {
		return outbox.NewNonRetryableError(fmt.Errorf("order event %s carries no order id", envelope.EventID))
	}

	order, err := p.orders.FindByID(ctx, data.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return outbox.NewNonRetryableError(fmt.Errorf("order %s not found", data.OrderID))
		}
		return fmt.Errorf("fetching order %s: %w", data.OrderID, err)
	}

	return p.Project(ctx, order)
}

// Project upserts the customer keyed by the order email, merges the address
// book, and recomputes order aggregates from the full order history.
func (p *Projector) Project(ctx context.Context, order *models.Order) error {
	email := strings.TrimSpace(order.CustomerEmail)
	if email == "" {
		return outbox.NewNonRetryableError(fmt.Errorf("order %s has no customer email", order.ID))
	}

	err := p.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customersRepo := p.customers.WithTx(tx)
		ordersRepo := p.orders.WithTx(tx)

		customer, err := customersRepo.FindByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			customer = &models.Customer{
				ID:     uuid.New(),
				Email:  email,
				Status: "active",
			}
		}

		customer.FirstName = order.CustomerFirstName
		customer.LastName = order.CustomerLastName
		if order.CustomerPhone != nil && *order.CustomerPhone != "" {
			customer.Phone = order.CustomerPhone
		}
		customer.Addresses = mergeAddresses(customer.Addresses, order)

		history, err := ordersRepo.ListByCustomerEmail(ctx, email)
		if err != nil {
			return err
		}
		customer.TotalOrders = len(history)
		customer.TotalSpent = decimal.Zero
		var lastOrder *time.Time
		for i := range history {
			customer.TotalSpent = customer.TotalSpent.Add(history[i].Total)
			createdAt := history[i].CreatedAt
			if lastOrder == nil || createdAt.After(*lastOrder) {
				lastOrder = &createdAt
			}
		}
		customer.LastOrderDate = lastOrder

		if err := customersRepo.Save(ctx, customer); err != nil {
			return err
		}

		if order.CustomerRef == nil || *order.CustomerRef != customer.ID {
			if err := ordersRepo.LinkCustomerRef(ctx, order.ID, customer.ID); err != nil {
				return err
			}
		}

		return p.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCustomerProjected,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   customer.ID,
			Version:       1,
			Data: ProjectedEvent{
				CustomerID: customer.ID,
				Email:      email,
				OrderID:    order.ID,
			},
		})
	})
	if err != nil {
		return err
	}

	if p.logg != nil {
		fields := map[string]any{
			"order_id":       order.ID.String(),
			"customer_email": email,
		}
		p.logg.Info(p.logg.WithFields(ctx, fields), "customer projected")
	}
	return nil
}

// mergeAddresses appends the order's shipping (and standalone billing)
// addresses, deduplicated by type and first address line.
func mergeAddresses(existing []models.CustomerAddress, order *models.Order) []models.CustomerAddress {
	merged := existing

	shipping := models.CustomerAddress{Type: enums.AddressTypeShipping, Address: order.ShippingAddress}
	merged = appendIfNewAddress(merged, shipping)

	if !order.BillingSameAsShipping && order.BillingAddress != nil &&
		strings.TrimSpace(order.BillingAddress.Address1) != "" {
		billing := models.CustomerAddress{Type: enums.AddressTypeBilling, Address: *order.BillingAddress}
		merged = appendIfNewAddress(merged, billing)
	}
	return merged
}

func appendIfNewAddress(book []models.CustomerAddress, candidate models.CustomerAddress) []models.CustomerAddress {
	for _, entry := range book {
		if entry.Type == candidate.Type && entry.Address1 == candidate.Address1 {
			return book
		}
	}
	return append(book, candidate)
}
