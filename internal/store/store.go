// Package store holds the current set of orders and their status.
//
// The bridge only talks to the Store interface; implementations must give
// atomic per-order read-modify-write semantics for status updates so that
// concurrent deliveries from multiple broker topics cannot lose updates.
package store

import (
	"context"
	"errors"

	"github.com/betbot/stockgate/internal/domain"
)

var (
	// ErrNotFound means the referenced order id is unknown to the store.
	ErrNotFound = errors.New("store: order not found")
	// ErrConflict means the update would overwrite a conflicting terminal
	// status. Terminal states stick; a later update carrying a different
	// outcome is reported instead of applied.
	ErrConflict = errors.New("store: conflicting status update")
)

// Store is the order storage collaborator.
type Store interface {
	// Create persists a new order and returns its id. The order is stored
	// with status pending regardless of what the submitted payload carried.
	Create(ctx context.Context, order *domain.Order) (string, error)

	// UpdateStatus sets the status of an existing order. Returns ErrNotFound
	// for unknown ids and ErrConflict when a different terminal status is
	// already set.
	UpdateStatus(ctx context.Context, id string, status domain.StatusCode) error

	// ListAll returns a snapshot of every known order in insertion order.
	ListAll(ctx context.Context) ([]domain.Order, error)
}
