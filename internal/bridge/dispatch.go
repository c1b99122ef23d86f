package bridge

import (
	"context"
	"fmt"

	"github.com/betbot/stockgate/internal/domain"
	"github.com/betbot/stockgate/internal/ports"
)

// HandlerFunc processes the payload of one inbound client frame.
type HandlerFunc func(ctx context.Context, payload []byte) error

// Dispatcher maps destination strings to handlers. The table is built once at
// startup, which keeps routing testable without a live messaging runtime.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

// NewDispatcher creates an empty dispatch table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register binds a destination to a handler, replacing any previous binding.
func (d *Dispatcher) Register(destination string, h HandlerFunc) {
	d.handlers[destination] = h
}

// Dispatch routes one frame. Unknown destinations are an error so clients get
// told instead of silently dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, destination string, payload []byte) error {
	h, ok := d.handlers[destination]
	if !ok {
		return fmt.Errorf("unknown destination %q", destination)
	}
	return h(ctx, payload)
}

// RegisterRoutes fills the inbound dispatch table for the client channel.
func (b *Bridge) RegisterRoutes(d *Dispatcher) {
	d.Register(ports.DestOrderBuy, b.handleSubmit)
	d.Register(ports.DestOrderSell, b.handleSubmit)
	d.Register(ports.DestOrderAll, func(ctx context.Context, _ []byte) error {
		return b.publisher.PublishOrders(ctx)
	})
}

func (b *Bridge) handleSubmit(ctx context.Context, payload []byte) error {
	env, err := domain.DecodeEnvelope(payload)
	if err != nil {
		return err
	}
	return b.SubmitOrder(ctx, env)
}
