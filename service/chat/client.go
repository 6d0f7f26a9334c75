package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"conecta/logger"
)

const (
	writeWait      = 10 * time.Second    // time allowed to write a frame to the peer
	pongWait       = 60 * time.Second    // time allowed to read the next pong
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 64 << 10

	defaultSendQueue = 256
)

// Client is one realtime session bound to exactly one authenticated
// identity. The identity is immutable for the connection's lifetime.
// Outbound frames go through a buffered queue consumed by a single
// writer goroutine; gorilla/websocket does not allow concurrent
// writes.
type Client struct {
	ConnID string
	UserID string

	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a client session. conn may be nil in tests; the
// send queue still accepts frames and can be inspected.
func NewClient(connID, userID string, conn *websocket.Conn, queue int) *Client {
	if queue <= 0 {
		queue = defaultSendQueue
	}
	return &Client{
		ConnID: connID,
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, queue),
		done:   make(chan struct{}),
	}
}

// TrySend enqueues an outbound frame without blocking. A full queue
// means a slow client; the frame is dropped (no retry of socket
// emits) and false is returned.
func (c *Client) TrySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close signals the writer goroutine to finish and closes the
// transport. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Outbox exposes the send queue for tests.
func (c *Client) Outbox() <-chan []byte { return c.send }

// writePump pumps queued frames to the websocket and keeps the
// connection alive with pings. It owns the transport: when it
// returns, the connection is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debug("write failed, dropping connection",
					zapConn(c.ConnID, c.UserID)...)
				c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
