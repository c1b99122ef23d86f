package websocket

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeFrame_PayloadEmbeddedVerbatim(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{"isin":"DE0007164600","price":123.45}`),
		[]byte(`[1, 2, 3]`),
		[]byte(`{"spaced" :  true}`),
	}
	for _, p := range payloads {
		frame := EncodeFrame("receiveStockPrices", p)
		require.True(t, bytes.Contains(frame, p), "frame %s must contain payload %s verbatim", frame, p)
		require.True(t, json.Valid(frame))
	}
}

func TestEncodeFrame_Shape(t *testing.T) {
	frame := EncodeFrame("receiveOrders", []byte(`[]`))
	require.Equal(t, `{"destination":"receiveOrders","payload":[]}`, string(frame))
}

func TestDecodeFrame(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"destination":"order/buy","payload":{"buyOrder":{}}}`))
	require.NoError(t, err)
	require.Equal(t, "order/buy", f.Destination)
	require.JSONEq(t, `{"buyOrder":{}}`, string(f.Payload))
}

func TestDecodeFrame_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "garbage"},
		{"missing destination", `{"payload":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}
