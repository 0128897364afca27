package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreRestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	product := ProductSnapshot{ID: "p1", Price: dec("100")}

	first, err := NewStore(ctx, "cart-1", storage)
	require.NoError(t, err)
	_, err = first.Dispatch(ctx, Action{Type: ActionAdd, Product: product, Quantity: 2})
	require.NoError(t, err)

	second, err := NewStore(ctx, "cart-1", storage)
	require.NoError(t, err)
	require.Equal(t, 2, second.Cart().TotalItems)
	require.True(t, second.Cart().TotalPrice.Equal(dec("200")))
}

func TestStorePersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	product := ProductSnapshot{ID: "p1", Price: dec("100")}

	store, err := NewStore(ctx, "cart-1", storage)
	require.NoError(t, err)

	state, err := store.Dispatch(ctx, Action{Type: ActionAdd, Product: product, Quantity: 1})
	require.NoError(t, err)

	persisted, err := storage.Load(ctx, "cart-1")
	require.NoError(t, err)
	require.NotNil(t, persisted)
	require.Equal(t, state.TotalItems, persisted.TotalItems)

	_, err = store.Dispatch(ctx, Action{Type: ActionRemove, ItemID: state.Items[0].ID})
	require.NoError(t, err)
	persisted, err = storage.Load(ctx, "cart-1")
	require.NoError(t, err)
	require.Empty(t, persisted.Items)
}

func TestStoreClearRemovesBlob(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	product := ProductSnapshot{ID: "p1", Price: dec("100")}

	store, err := NewStore(ctx, "cart-1", storage)
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, Action{Type: ActionAdd, Product: product, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))
	require.Empty(t, store.Cart().Items)

	persisted, err := storage.Load(ctx, "cart-1")
	require.NoError(t, err)
	require.Nil(t, persisted)
}

func TestStoreHelpers(t *testing.T) {
	ctx := context.Background()
	product := ProductSnapshot{ID: "p1", Price: dec("100")}
	variants := []Variant{{Name: "size", Value: "M", PriceModifier: dec("0")}}

	store, err := NewStore(ctx, "cart-1", NewMemoryStorage())
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, Action{Type: ActionAdd, Product: product, Variants: variants, Quantity: 1})
	require.NoError(t, err)

	require.True(t, store.IsInCart("p1", variants))
	require.False(t, store.IsInCart("p1", nil))

	item, ok := store.GetItem(ItemID("p1", variants))
	require.True(t, ok)
	require.Equal(t, 1, item.Quantity)
}

func TestRedisStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	storage := NewRedisStorage(kv, 0, kv.isNil)

	missing, err := storage.Load(ctx, "cart-9")
	require.NoError(t, err)
	require.Nil(t, missing)

	state := Reduce(Empty(), Action{Type: ActionAdd, Product: ProductSnapshot{ID: "p1", Price: dec("10")}, Quantity: 2})
	require.NoError(t, storage.Save(ctx, "cart-9", state))

	loaded, err := storage.Load(ctx, "cart-9")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, 2, loaded.TotalItems)

	require.NoError(t, storage.Clear(ctx, "cart-9"))
	missing, err = storage.Load(ctx, "cart-9")
	require.NoError(t, err)
	require.Nil(t, missing)
}

type fakeKV struct {
	data map[string]string
}

type errKVMissing struct{}

func (errKVMissing) Error() string { return "key missing" }

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", errKVMissing{}
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeKV) CartKey(cartID string) string { return "ecom:cart:" + cartID }

func (f *fakeKV) isNil(err error) bool {
	_, ok := err.(errKVMissing)
	return ok
}
