package outbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/mohansky/ecom-backend/pkg/db/models"
	"github.com/mohansky/ecom-backend/pkg/enums"
)

// Handler consumes one dispatched event.
type Handler interface {
	Handle(ctx context.Context, envelope PayloadEnvelope, event models.OutboxEvent) error
}

// NonRetryableError marks a handler failure that must go straight to the DLQ.
type NonRetryableError struct {
	cause error
}

func NewNonRetryableError(cause error) NonRetryableError {
	return NonRetryableError{cause: cause}
}

func (e NonRetryableError) Error() string {
	if e.cause == nil {
		return "non-retryable outbox failure"
	}
	return e.cause.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.cause
}

// HandlerRegistry routes event types to their consumers.
type HandlerRegistry struct {
	mtx      sync.RWMutex
	handlers map[enums.OutboxEventType]Handler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[enums.OutboxEventType]Handler)}
}

func (r *HandlerRegistry) Register(eventType enums.OutboxEventType, handler Handler) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.handlers[eventType] = handler
}

// Resolve returns the handler for the event type, or an error when no
// consumer is registered.
func (r *HandlerRegistry) Resolve(eventType enums.OutboxEventType) (Handler, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if handler, ok := r.handlers[eventType]; ok {
		return handler, nil
	}
	return nil, fmt.Errorf("handler not registered for %s", eventType)
}
