package payments

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mohansky/ecom-backend/internal/orders"
	"github.com/mohansky/ecom-backend/pkg/config"
	"github.com/mohansky/ecom-backend/pkg/logger"
	"github.com/mohansky/ecom-backend/pkg/outbox"
	"github.com/mohansky/ecom-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service covers the payment surface: registering gateway orders and
// verifying completed payments into persisted orders.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error)
}

type service struct {
	gateway razorpay.Gateway
	repo    orders.Repository
	tx      txRunner
	outbox  outboxPublisher
	cfg     config.PaymentConfig
	logg    *logger.Logger
}

// NewService builds a payments service with the required dependencies.
func NewService(
	gateway razorpay.Gateway,
	repo orders.Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	cfg config.PaymentConfig,
	logg *logger.Logger,
) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		gateway: gateway,
		repo:    repo,
		tx:      tx,
		outbox:  outboxSvc,
		cfg:     cfg,
		logg:    logg,
	}, nil
}
