package bridge

import (
	"github.com/sirupsen/logrus"

	"github.com/betbot/stockgate/internal/metrics"
	"github.com/betbot/stockgate/internal/ports"
)

var relayLog = logrus.WithField("component", "price_relay")

// PriceRelay forwards raw price payloads from the broker to the client
// broadcast channel unmodified. No decoding, no state: the gateway stays
// decoupled from the price-message schema and adds no latency to the feed.
type PriceRelay struct {
	sender ports.Sender
}

// NewPriceRelay wires the relay to the outbound channel.
func NewPriceRelay(sender ports.Sender) *PriceRelay {
	return &PriceRelay{sender: sender}
}

// Relay pushes the payload byte-identical onto receiveStockPrices. Payload
// content is never inspected or validated.
func (r *PriceRelay) Relay(payload []byte) {
	r.sender.Broadcast(ports.DestReceiveStockPrices, payload)
	metrics.RelayedFrames.Add(1)
	relayLog.WithField("bytes", len(payload)).Debug("relayed price frame")
}
