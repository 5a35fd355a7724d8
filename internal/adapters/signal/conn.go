package signal

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// wsConn adapts a gorilla websocket to core.Conn. Outbound frames queue on
// a buffered channel drained by the write pump; a full queue drops the
// frame rather than blocking a room mutation.
type wsConn struct {
	conn *websocket.Conn
	send chan any

	mu     sync.RWMutex
	closed bool
}

func newWSConn(conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan any, buffer),
	}
}

func (c *wsConn) Send(frame any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- frame:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) IsLive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// Close tells the peer why and tears the socket down. Idempotent.
func (c *wsConn) Close(reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.conn.Close()
}
