package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/betbot/stockgate/internal/domain"
)

// SQLiteStore keeps orders in a local SQLite database so they survive gateway
// restarts. Selected via the store.driver config key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database file and runs the
// schema migration.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "mkdir db dir")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1) // SQLite: a single connection is more stable
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id         TEXT PRIMARY KEY,
			side       TEXT NOT NULL,
			isin       TEXT NOT NULL,
			shares     INTEGER NOT NULL,
			limit_val  TEXT NOT NULL,
			exchange   TEXT NOT NULL,
			status     TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`)
	return errors.Wrap(err, "migrate orders table")
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts the order with status pending.
func (s *SQLiteStore) Create(ctx context.Context, order *domain.Order) (string, error) {
	id := order.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, side, isin, shares, limit_val, exchange, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(order.Side), order.ISIN, order.Shares, order.Limit.String(),
		order.Exchange, string(domain.StatusPending), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrConflict
		}
		return "", errors.Wrap(err, "insert order")
	}
	return id, nil
}

// UpdateStatus applies a status change with the same terminal-status guard as
// the memory store. The guard lives inside a single conditional UPDATE, so two
// concurrent updates for the same order cannot both pass the check: the row is
// only touched when the current status is non-terminal or already equal to the
// new one (idempotent re-apply).
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status domain.StatusCode) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?
		 WHERE id = ? AND (status NOT IN (?, ?) OR status = ?)`,
		string(status), id,
		string(domain.StatusSuccess), string(domain.StatusError), string(status),
	)
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update order status result")
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: the order is either unknown or sits in a different
	// terminal status. Distinguishing after the fact is safe, the guard above
	// already decided the outcome.
	var one int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "read order status")
	}
	return ErrConflict
}

// ListAll returns all orders in insertion (rowid) order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, side, isin, shares, limit_val, exchange, status, created_at
		 FROM orders ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	out := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o         domain.Order
			side      string
			limitVal  string
			status    string
			createdAt string
		)
		if err := rows.Scan(&o.ID, &side, &o.ISIN, &o.Shares, &limitVal, &o.Exchange, &status, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		o.Side = domain.Side(side)
		o.Status = domain.StatusCode(status)
		if o.Limit, err = decimal.NewFromString(limitVal); err != nil {
			return nil, errors.Wrapf(err, "parse limit %q", limitVal)
		}
		if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, errors.Wrapf(err, "parse created_at %q", createdAt)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text;
	// matching the message avoids importing driver internals.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
