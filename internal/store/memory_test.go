package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/betbot/stockgate/internal/domain"
)

func newOrder(isin string) *domain.Order {
	return &domain.Order{
		Side:     domain.SideBuy,
		ISIN:     isin,
		Shares:   10,
		Limit:    decimal.RequireFromString("42.10"),
		Exchange: "stuttgart",
	}
}

func TestMemoryStore_CreateDefaultsToPending(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	order := newOrder("DE0007164600")
	order.Status = domain.StatusSuccess // submitted status must be ignored

	id, err := s.Create(ctx, order)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	orders, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, domain.StatusPending, orders[0].Status)
	require.False(t, orders[0].CreatedAt.IsZero())
}

func TestMemoryStore_CreateDuplicateID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	order := newOrder("DE0007164600")
	order.ID = "fixed"
	_, err := s.Create(ctx, order)
	require.NoError(t, err)

	_, err = s.Create(ctx, order)
	require.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_UpdateStatus(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newOrder("DE0007164600"))
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, id, domain.StatusSuccess))

	orders, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, orders[0].Status)
}

func TestMemoryStore_UpdateStatus_NotFound(t *testing.T) {
	s := NewMemoryStore()
	err := s.UpdateStatus(context.Background(), "missing", domain.StatusSuccess)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateStatus_TerminalConflict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newOrder("DE0007164600"))
	require.NoError(t, err)
	require.NoError(t, s.UpdateStatus(ctx, id, domain.StatusSuccess))

	// Overwriting one terminal status with another is a conflict...
	require.ErrorIs(t, s.UpdateStatus(ctx, id, domain.StatusError), ErrConflict)
	// ...but re-applying the same terminal status is idempotent.
	require.NoError(t, s.UpdateStatus(ctx, id, domain.StatusSuccess))
}

func TestMemoryStore_ListAll_InsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := s.Create(ctx, newOrder(fmt.Sprintf("ISIN%d", i)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	orders, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 5)
	for i, o := range orders {
		require.Equal(t, ids[i], o.ID)
	}
}

func TestMemoryStore_ListAll_SnapshotIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newOrder("DE0007164600"))
	require.NoError(t, err)

	snapshot, err := s.ListAll(ctx)
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, id, domain.StatusError))
	require.Equal(t, domain.StatusPending, snapshot[0].Status)
}

func TestMemoryStore_ConcurrentUpdates_NoLostUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	idA, err := s.Create(ctx, newOrder("AAA"))
	require.NoError(t, err)
	idB, err := s.Create(ctx, newOrder("BBB"))
	require.NoError(t, err)

	errCh := make(chan error, 2)
	go func() { errCh <- s.UpdateStatus(ctx, idA, domain.StatusSuccess) }()
	go func() { errCh <- s.UpdateStatus(ctx, idB, domain.StatusError) }()
	for i := 0; i < 2; i++ {
		require.NoError(t, <-errCh)
	}

	orders, err := s.ListAll(ctx)
	require.NoError(t, err)
	byID := make(map[string]domain.StatusCode, len(orders))
	for _, o := range orders {
		byID[o.ID] = o.Status
	}
	require.Equal(t, domain.StatusSuccess, byID[idA])
	require.Equal(t, domain.StatusError, byID[idB])
}
