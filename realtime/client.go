package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is the middleman between one WebSocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// send is the buffered channel of marshaled outbound frames. The hub
	// closes it exactly once on unregister, under mu; every send must go
	// through trySend so a disconnect racing a broadcast cannot hit a
	// closed channel.
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// HandleConnection registers an upgraded connection with the hub and starts
// its read and write pumps. The connection arrives with an empty
// subscription set; rooms are joined only via join-event messages.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	select {
	case h.Register <- client:
	case <-h.done:
		// Hub already shut down; the run loop will never take the client.
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// trySend queues a frame without blocking. It reports false when the frame
// was dropped, either because the client is closed or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump reads join-event/leave-event frames until the connection drops,
// then unregisters the client.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
			// Run loop already stopped; closeAllClients handles cleanup.
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", slog.Any("error", err))
			}
			return
		}
		c.handleMessage(raw)
	}
}

// handleMessage dispatches one inbound frame. Malformed frames and frames
// with a non-positive event id are dropped without closing the connection.
func (c *Client) handleMessage(raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.hub.logger.Warn("dropping malformed client message", slog.Any("error", err))
		return
	}

	switch msg.Type {
	case msgJoinEvent:
		if msg.EventID <= 0 {
			c.hub.logger.Warn("dropping join with invalid event id", slog.Int("event_id", msg.EventID))
			return
		}
		c.hub.joinRoom(c, msg.EventID)
	case msgLeaveEvent:
		if msg.EventID <= 0 {
			return
		}
		c.hub.leaveRoom(c, msg.EventID)
	default:
		c.hub.logger.Debug("ignoring unknown client message type", slog.String("type", msg.Type))
	}
}

// writePump forwards queued frames to the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
