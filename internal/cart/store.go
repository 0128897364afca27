package cart

import (
	"context"
	"fmt"
	"sync"
)

// Store wraps the pure reducer with durable storage. It is mutex-guarded but
// semantically single-owner: two stores sharing one storage key are not
// synchronized with each other.
type Store struct {
	mu      sync.Mutex
	cartID  string
	state   Cart
	storage Storage
}

// NewStore builds a store and restores any persisted state for the cart id.
// A missing blob starts the cart empty; a stored blob is loaded wholesale.
func NewStore(ctx context.Context, cartID string, storage Storage) (*Store, error) {
	if cartID == "" {
		return nil, fmt.Errorf("cart id required")
	}
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}

	s := &Store{cartID: cartID, state: Empty(), storage: storage}
	persisted, err := storage.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("loading cart %s: %w", cartID, err)
	}
	if persisted != nil {
		s.state = Reduce(s.state, Action{Type: ActionLoad, Cart: *persisted})
	}
	return s, nil
}

// Dispatch applies the action and persists the resulting state. The state
// only advances when the persist succeeds.
func (s *Store) Dispatch(ctx context.Context, action Action) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.state, action)
	if err := s.storage.Save(ctx, s.cartID, next); err != nil {
		return s.state, fmt.Errorf("persisting cart %s: %w", s.cartID, err)
	}
	s.state = next
	return next, nil
}

// Clear empties the cart and removes the persisted blob.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Clear(ctx, s.cartID); err != nil {
		return fmt.Errorf("clearing cart %s: %w", s.cartID, err)
	}
	s.state = Empty()
	return nil
}

// Cart returns a copy of the current state.
func (s *Store) Cart() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsInCart reports whether a line with the derived id exists.
func (s *Store) IsInCart(productID string, variants []Variant) bool {
	_, ok := s.GetItem(ItemID(productID, variants))
	return ok
}

// GetItem returns the line with the given id when present.
func (s *Store) GetItem(itemID string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.state.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}
