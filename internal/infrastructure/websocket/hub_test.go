package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	dests []string
	err   error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, destination string, _ []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dests = append(d.dests, destination)
	return d.err
}

func (d *recordingDispatcher) dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dests...)
}

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleUpgrade))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub(&recordingDispatcher{})
	conn := dialTestHub(t, hub)

	hub.Broadcast("receiveOrders", []byte(`[{"id":"abc"}]`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	require.Equal(t, "receiveOrders", frame.Destination)
	require.JSONEq(t, `[{"id":"abc"}]`, string(frame.Payload))
}

func TestHub_InboundFrameDispatched(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	hub := NewHub(dispatcher)
	conn := dialTestHub(t, hub)

	msg := []byte(`{"destination":"order/all","payload":null}`)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	require.Eventually(t, func() bool {
		d := dispatcher.dispatched()
		return len(d) == 1 && d[0] == "order/all"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectedFrameGetsErrorReply(t *testing.T) {
	dispatcher := &recordingDispatcher{err: context.DeadlineExceeded}
	hub := NewHub(dispatcher)
	conn := dialTestHub(t, hub)

	msg := []byte(`{"destination":"order/buy","payload":{}}`)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	require.Equal(t, "error", frame.Destination)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(&recordingDispatcher{})
	conn := dialTestHub(t, hub)

	hub.Close()
	require.Equal(t, 0, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}
