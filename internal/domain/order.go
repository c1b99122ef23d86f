package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Order is a client order as tracked by the gateway.
//
// The id is assigned on creation and is the key every later status update must
// reference. Status starts at StatusPending and is only mutated by status
// update events from the broker.
type Order struct {
	ID        string          `json:"id"`
	Side      Side            `json:"side"`
	ISIN      string          `json:"isin"`
	Shares    int64           `json:"shares"`
	Limit     decimal.Decimal `json:"limit"`
	Exchange  string          `json:"exchange"`
	Status    StatusCode      `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}
