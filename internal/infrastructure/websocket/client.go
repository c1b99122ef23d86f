package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one connected websocket peer. The send channel is never closed;
// teardown is signalled through done so a concurrent Broadcast can never hit
// a closed channel.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

// readPump reads inbound frames and hands them to the dispatcher. Handler
// errors are fatal to the triggering message only; the connection stays up
// and the error goes back to the client as an error frame.
func (c *Client) readPump(ctx context.Context) {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hubLog.WithError(err).Debug("client read error")
			}
			return
		}

		frame, err := DecodeFrame(raw)
		if err != nil {
			hubLog.WithError(err).Warn("dropping unparseable client frame")
			c.sendError("", err)
			continue
		}

		if err := c.hub.dispatcher.Dispatch(ctx, frame.Destination, frame.Payload); err != nil {
			hubLog.WithError(err).WithField("destination", frame.Destination).Warn("client frame rejected")
			c.sendError(frame.Destination, err)
		}
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				hubLog.WithError(err).Debug("client write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) sendError(destination string, cause error) {
	payload, err := encodeErrorPayload(destination, cause)
	if err != nil {
		return
	}
	select {
	case c.send <- EncodeFrame("error", payload):
	default:
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
