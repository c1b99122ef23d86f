package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/betbot/stockgate/internal/domain"
)

// MemoryStore is the default in-process Store. A single mutex serializes all
// mutations, which trivially satisfies the per-order atomicity requirement.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	seq    []string // insertion order for ListAll
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*domain.Order),
	}
}

// Create stores the order with status pending. An empty id gets a fresh uuid;
// a caller-supplied id that already exists is a conflict.
func (s *MemoryStore) Create(_ context.Context, order *domain.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *order
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	} else if _, exists := s.orders[stored.ID]; exists {
		return "", ErrConflict
	}
	stored.Status = domain.StatusPending
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	s.orders[stored.ID] = &stored
	s.seq = append(s.seq, stored.ID)
	return stored.ID, nil
}

// UpdateStatus mutates a single order's status under the store lock.
func (s *MemoryStore) UpdateStatus(_ context.Context, id string, status domain.StatusCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	if order.Status.IsTerminal() && order.Status != status {
		return ErrConflict
	}
	order.Status = status
	return nil
}

// ListAll returns value copies in insertion order.
func (s *MemoryStore) ListAll(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.seq))
	for _, id := range s.seq {
		out = append(out, *s.orders[id])
	}
	return out, nil
}
