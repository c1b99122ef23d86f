package websocket

import (
	"bytes"
	"encoding/json"

	"github.com/betbot/stockgate/internal/domain"
)

// Frame is the wire shape on the client channel, both directions. Inbound
// frames name one of the order/* destinations; outbound frames carry
// receiveOrders or receiveStockPrices.
type Frame struct {
	Destination string          `json:"destination"`
	Payload     json.RawMessage `json:"payload"`
}

// DecodeFrame parses an inbound client frame.
func DecodeFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &domain.MalformedEnvelopeError{Reason: "unparseable frame", Err: err}
	}
	if f.Destination == "" {
		return nil, &domain.MalformedEnvelopeError{Reason: "frame without destination"}
	}
	return &f, nil
}

// encodeErrorPayload builds the payload of an error frame sent back to the
// client whose message was rejected.
func encodeErrorPayload(destination string, cause error) ([]byte, error) {
	return json.Marshal(map[string]string{
		"destination": destination,
		"error":       cause.Error(),
	})
}

// EncodeFrame builds an outbound frame. The payload is embedded verbatim, not
// re-marshalled, so relayed broker payloads reach clients byte-identical. The
// flip side is deliberate: a non-JSON payload yields a non-JSON frame, because
// the price relay guarantees pass-through and never inspects what the broker
// sent. Clients see exactly what the feed produced, malformed or not.
func EncodeFrame(destination string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"destination":`)
	name, _ := json.Marshal(destination)
	buf.Write(name)
	buf.WriteString(`,"payload":`)
	buf.Write(payload)
	buf.WriteByte('}')
	return buf.Bytes()
}
