// Package broadcast pushes full order snapshots to connected clients.
package broadcast

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/stockgate/internal/metrics"
	"github.com/betbot/stockgate/internal/ports"
	"github.com/betbot/stockgate/internal/store"
)

var publisherLog = logrus.WithField("component", "broadcast")

// Publisher sends the complete order list on the receiveOrders destination.
// There is deliberately no diffing: every successful mutation triggers a full
// snapshot, which keeps clients trivially consistent.
type Publisher struct {
	store  store.Store
	sender ports.Sender
}

// NewPublisher wires the publisher to its store and outbound channel.
func NewPublisher(s store.Store, sender ports.Sender) *Publisher {
	return &Publisher{store: s, sender: sender}
}

// PublishOrders takes a snapshot of all orders and broadcasts it. The
// snapshot is read after the triggering mutation completed, so each broadcast
// reflects at least that mutation.
func (p *Publisher) PublishOrders(ctx context.Context) error {
	orders, err := p.store.ListAll(ctx)
	if err != nil {
		metrics.StoreErrors.Add(1)
		return errors.Wrap(err, "list orders")
	}

	payload, err := json.Marshal(orders)
	if err != nil {
		return errors.Wrap(err, "encode order snapshot")
	}

	p.sender.Broadcast(ports.DestReceiveOrders, payload)
	metrics.OrderBroadcasts.Add(1)
	publisherLog.WithField("orders", len(orders)).Debug("published order snapshot")
	return nil
}
