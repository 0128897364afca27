package orders

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/outbox"
)

type fakeTxRunner struct {
	db *gorm.DB
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(f.db)
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func TestNewOrderNumberShape(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d+-[0-9A-Z]{6}$`)
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		number := NewOrderNumber()
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected order number shape %q", number)
		}
		seen[number] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatal("order numbers should vary")
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, &fakeTxRunner{db: db}, &fakeOutbox{})
	require.NoError(t, err)

	order, err := repo.Create(context.Background(), newTestOrder("a@x.com", "ORD-5-AAAAAA", "10"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Status: "teleported"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateStatusAppendsTimestampedNote(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	sink := &fakeOutbox{}
	svc, err := NewService(repo, &fakeTxRunner{db: db}, sink)
	require.NoError(t, err)
	ctx := context.Background()

	existing := "order placed"
	order := newTestOrder("a@x.com", "ORD-5-BBBBBB", "10")
	order.Notes = &existing
	_, err = repo.Create(ctx, order)
	require.NoError(t, err)

	note := "handed to courier"
	updated, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: "shipped", Notes: &note})
	require.NoError(t, err)

	require.Equal(t, "shipped", string(updated.Status))
	require.NotNil(t, updated.Notes)
	require.True(t, strings.HasPrefix(*updated.Notes, "order placed\n\n["), "existing notes must be preserved above the stamp")
	require.Contains(t, *updated.Notes, "Status changed to shipped: handed to courier")
	require.Len(t, sink.events, 1)
}

func TestUpdateStatusMissingOrderIs404(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, &fakeTxRunner{db: db}, &fakeOutbox{})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: newTestOrder("x@x.com", "n", "1").ID, Status: "shipped"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
