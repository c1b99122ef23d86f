package bridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/betbot/stockgate/internal/ports"
)

type recordingSender struct {
	mu     sync.Mutex
	frames []sentFrame
}

type sentFrame struct {
	destination string
	payload     []byte
}

func (s *recordingSender) Broadcast(destination string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, sentFrame{destination: destination, payload: payload})
}

func TestPriceRelay_ByteIdenticalPassThrough(t *testing.T) {
	sender := &recordingSender{}
	relay := NewPriceRelay(sender)

	payloads := [][]byte{
		[]byte(`{"isin":"DE0007164600","price":123.45}`),
		[]byte(`[1,2,3]`),
		[]byte(`  {"spaced": true}  `),
		[]byte("not even json"),
		{},
	}
	for _, p := range payloads {
		relay.Relay(p)
	}

	require.Len(t, sender.frames, len(payloads))
	for i, p := range payloads {
		require.Equal(t, ports.DestReceiveStockPrices, sender.frames[i].destination)
		require.Equal(t, p, sender.frames[i].payload)
	}
}
