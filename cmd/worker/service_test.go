package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohansky/ecom-backend/pkg/config"
	"github.com/mohansky/ecom-backend/pkg/db/models"
	"github.com/mohansky/ecom-backend/pkg/enums"
	"github.com/mohansky/ecom-backend/pkg/logger"
	"github.com/mohansky/ecom-backend/pkg/outbox"
)

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForDispatch(_ *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeHandler struct {
	errs  []error
	calls int
}

func (f *fakeHandler) Handle(ctx context.Context, envelope outbox.PayloadEnvelope, event models.OutboxEvent) error {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func newTestService(t *testing.T, repo *fakeRepo, dlq *fakeDLQRepo, registry *outbox.HandlerRegistry) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard}),
		DB:         fakeDB{},
		Repository: repo,
		DLQ:        dlq,
		Handlers:   registry,
	})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	return service
}

func mustEnvelopePayload(t *testing.T, eventID string) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{"order_id":"` + uuid.NewString() + `"}`),
	})
	if err != nil {
		t.Fatalf("marshaling envelope: %v", err)
	}
	return payload
}

func orderEvent(t *testing.T) models.OutboxEvent {
	t.Helper()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelopePayload(t, uuid.NewString()),
	}
}

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{orderEvent(t), orderEvent(t)}}
	dlq := &fakeDLQRepo{}
	handler := &fakeHandler{errs: []error{errors.New("transient")}}
	registry := outbox.NewHandlerRegistry()
	registry.Register(enums.EventOrderCreated, handler)
	service := newTestService(t, repo, dlq, registry)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
	if len(dlq.entries) != 0 {
		t.Fatalf("transient failure must not dead-letter")
	}
}

func TestProcessBatchMarksUnregisteredEventDispatched(t *testing.T) {
	event := orderEvent(t)
	event.EventType = enums.EventCustomerProjected
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	service := newTestService(t, repo, dlq, outbox.NewHandlerRegistry())

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.published) != 1 {
		t.Fatalf("audit event should be marked dispatched, got %d", len(repo.published))
	}
	if len(dlq.entries) != 0 {
		t.Fatalf("audit event must not dead-letter")
	}
}

func TestProcessBatchDeadLettersNonRetryable(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{orderEvent(t)}}
	dlq := &fakeDLQRepo{}
	handler := &fakeHandler{errs: []error{outbox.NewNonRetryableError(errors.New("order missing"))}}
	registry := outbox.NewHandlerRegistry()
	registry.Register(enums.EventOrderCreated, handler)
	service := newTestService(t, repo, dlq, registry)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.terminal) != 1 {
		t.Fatalf("expected event marked terminal")
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("expected one dlq entry, got %d", len(dlq.entries))
	}
	if dlq.entries[0].ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("unexpected dlq reason %s", dlq.entries[0].ErrorReason)
	}
}

func TestProcessBatchDeadLettersAfterMaxAttempts(t *testing.T) {
	event := orderEvent(t)
	event.AttemptCount = defaultMaxAttempts - 1
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	handler := &fakeHandler{errs: []error{errors.New("still down")}}
	registry := outbox.NewHandlerRegistry()
	registry.Register(enums.EventOrderCreated, handler)
	service := newTestService(t, repo, dlq, registry)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("exhausted event must not be marked for retry")
	}
	if len(dlq.entries) != 1 || dlq.entries[0].ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("expected max-attempts dlq entry")
	}
}

func TestProcessBatchDeadLettersCorruptEnvelope(t *testing.T) {
	event := orderEvent(t)
	event.Payload = json.RawMessage(`{not json`)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	service := newTestService(t, repo, dlq, outbox.NewHandlerRegistry())

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(dlq.entries) != 1 || dlq.entries[0].ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("corrupt payload must dead-letter as non-retryable")
	}
}

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	base := 500 * time.Millisecond
	backoff := nextBackoff(0, base, maxBackoff)
	if backoff != time.Second {
		t.Fatalf("expected 1s got %v", backoff)
	}
	for i := 0; i < 10; i++ {
		backoff = nextBackoff(backoff, base, maxBackoff)
	}
	if backoff != maxBackoff {
		t.Fatalf("expected cap %v got %v", maxBackoff, backoff)
	}
}
