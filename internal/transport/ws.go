package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatrelay/internal/chat"
)

// WSConn carries payloads over a WebSocket as JSON text frames. gorilla
// permits one concurrent writer, so writes serialize under wmu with a
// deadline (the teacher pattern for shared fan-out targets).
type WSConn struct {
	conn *websocket.Conn

	wmu       sync.Mutex
	writeWait time.Duration
}

func NewWSConn(conn *websocket.Conn, writeWait time.Duration) *WSConn {
	return &WSConn{conn: conn, writeWait: writeWait}
}

func (c *WSConn) ReadPayload() (chat.Payload, error) {
	var p chat.Payload
	err := c.conn.ReadJSON(&p)
	return p, err
}

func (c *WSConn) WritePayload(p chat.Payload) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteJSON(p)
}

// CloseRead is a no-op: WebSockets have no read half-close.
func (c *WSConn) CloseRead() error { return nil }

// CloseWrite sends the close handshake frame without tearing the socket down,
// the nearest WebSocket equivalent of a write half-close.
func (c *WSConn) CloseWrite() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeWait))
}

func (c *WSConn) Close() error { return c.conn.Close() }

func (c *WSConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }
