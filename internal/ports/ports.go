package ports

import (
	"context"

	"github.com/betbot/stockgate/internal/domain"
)

// Logical destination names shared by the client channel and the dispatch
// table. Inbound destinations are routed to handlers; outbound destinations
// tag broadcast frames.
const (
	DestOrderBuy  = "order/buy"
	DestOrderSell = "order/sell"
	DestOrderAll  = "order/all"

	DestReceiveOrders      = "receiveOrders"
	DestReceiveStockPrices = "receiveStockPrices"
)

// Sender pushes one frame to every subscribed client.
//
// NOTE: these interfaces live in a neutral package to avoid circular
// dependencies between the bridge, the broadcast publisher, and the
// websocket infrastructure.
type Sender interface {
	Broadcast(destination string, payload []byte)
}

// OrderPublisher pushes the full order snapshot to all clients.
type OrderPublisher interface {
	PublishOrders(ctx context.Context) error
}

// OrderForwarder hands a freshly created order on to the exchange backend.
type OrderForwarder interface {
	Forward(ctx context.Context, env *domain.OrderEnvelope) error
}
