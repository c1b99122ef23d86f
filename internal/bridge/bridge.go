// Package bridge couples the client-facing inbound channel with the broker
// status-update channel. Both paths funnel through the same sequence: mutate
// the order store, then broadcast the full snapshot.
package bridge

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/betbot/stockgate/internal/domain"
	"github.com/betbot/stockgate/internal/metrics"
	"github.com/betbot/stockgate/internal/ports"
	"github.com/betbot/stockgate/internal/store"
)

var bridgeLog = logrus.WithField("component", "bridge")

// Bridge routes order submissions to the store and exchange, folds broker
// status updates back into order state, and triggers a broadcast after every
// successful mutation. All dependencies are constructor-supplied.
type Bridge struct {
	store     store.Store
	forwarder ports.OrderForwarder
	publisher ports.OrderPublisher
}

// New creates a bridge. forwarder may be nil when no exchange backend is
// configured (orders are then only tracked locally).
func New(s store.Store, forwarder ports.OrderForwarder, publisher ports.OrderPublisher) *Bridge {
	return &Bridge{store: s, forwarder: forwarder, publisher: publisher}
}

// SubmitOrder validates the envelope, creates the order with pending status,
// forwards it to the exchange, and broadcasts the updated snapshot. A store
// rejection propagates to the caller and produces no broadcast.
func (b *Bridge) SubmitOrder(ctx context.Context, env *domain.OrderEnvelope) error {
	if err := env.Validate(); err != nil {
		metrics.DecodeFailures.Add(1)
		return err
	}

	order := env.Order()
	order.Side = env.Side()

	id, err := b.store.Create(ctx, order)
	if err != nil {
		metrics.StoreErrors.Add(1)
		return err
	}
	order.ID = id
	order.Status = domain.StatusPending
	metrics.OrderSubmits.Add(1)

	bridgeLog.WithFields(logrus.Fields{
		"order_id": id,
		"side":     order.Side,
		"isin":     order.ISIN,
		"exchange": order.Exchange,
	}).Info("order submitted")

	if b.forwarder != nil {
		if err := b.forwarder.Forward(ctx, env); err != nil {
			// The order is already tracked locally; forwarding and store
			// mutation are not transactional. The entry stays pending and
			// shows up in the next snapshot.
			bridgeLog.WithError(err).WithField("order_id", id).Error("forward to exchange failed")
			return err
		}
	}

	return b.publisher.PublishOrders(ctx)
}

// HandleStatusUpdate decodes a raw broker message into an order envelope,
// applies the carried status to the referenced order, and broadcasts. It is
// topic-agnostic: every subscribed status topic feeds the same logic.
//
// A decode failure is fatal for that message only: the error is surfaced, the
// message is not retried, and no broadcast fires. An unknown order id is
// reported but does not take the bridge down.
func (b *Bridge) HandleStatusUpdate(ctx context.Context, raw []byte) error {
	env, err := domain.DecodeEnvelope(raw)
	if err != nil {
		metrics.DecodeFailures.Add(1)
		return err
	}

	order := env.Order()
	if order.ID == "" {
		metrics.DecodeFailures.Add(1)
		return &domain.MalformedEnvelopeError{Reason: "status update without order id"}
	}

	// An absent status field survives decode as the zero value; re-parse so a
	// message carrying no recognizable outcome is rejected, never stored.
	status, err := domain.ParseStatusCode(string(order.Status))
	if err != nil {
		metrics.DecodeFailures.Add(1)
		return &domain.MalformedEnvelopeError{Reason: "status update without a valid status code", Err: err}
	}

	if err := b.store.UpdateStatus(ctx, order.ID, status); err != nil {
		metrics.StoreErrors.Add(1)
		switch {
		case errors.Is(err, store.ErrNotFound):
			bridgeLog.WithField("order_id", order.ID).Warn("status update for unknown order")
		case errors.Is(err, store.ErrConflict):
			bridgeLog.WithFields(logrus.Fields{
				"order_id": order.ID,
				"status":   order.Status,
			}).Warn("status update conflicts with terminal status")
		}
		return err
	}
	metrics.StatusUpdates.Add(1)

	bridgeLog.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("order status updated")

	return b.publisher.PublishOrders(ctx)
}
