// Package transport adapts raw connections to the chat core's payload-granular
// Conn interface. Framing and encoding live here; the core never sees bytes.
package transport

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"chatrelay/internal/chat"
)

// TCPConn carries payloads over a stream socket as newline-delimited JSON
// objects, one payload per line.
type TCPConn struct {
	conn net.Conn
	dec  *json.Decoder

	wmu       sync.Mutex
	enc       *json.Encoder
	writeWait time.Duration
}

func NewTCPConn(conn net.Conn, writeWait time.Duration) *TCPConn {
	return &TCPConn{
		conn:      conn,
		dec:       json.NewDecoder(conn),
		enc:       json.NewEncoder(conn),
		writeWait: writeWait,
	}
}

func (c *TCPConn) ReadPayload() (chat.Payload, error) {
	var p chat.Payload
	err := c.dec.Decode(&p)
	return p, err
}

func (c *TCPConn) WritePayload(p chat.Payload) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.enc.Encode(p) // Encode appends the newline delimiter
}

// CloseRead half-closes the receive direction where the socket supports it.
func (c *TCPConn) CloseRead() error {
	if tc, ok := c.conn.(*net.TCPConn); ok {
		return tc.CloseRead()
	}
	return nil
}

// CloseWrite half-closes the send direction where the socket supports it.
func (c *TCPConn) CloseWrite() error {
	if tc, ok := c.conn.(*net.TCPConn); ok {
		return tc.CloseWrite()
	}
	return nil
}

func (c *TCPConn) Close() error { return c.conn.Close() }

func (c *TCPConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }
