package chat

import (
	"errors"
	"io"
	"sync"
)

// fakeConn is an in-memory Conn for driving sessions and rooms in tests.
// Reads are fed through a channel; writes are recorded for assertions and can
// be switched to fail to simulate a dead peer.
type fakeConn struct {
	reads chan Payload

	mu          sync.Mutex
	written     []Payload
	failWrites  bool
	readClosed  bool
	writeClosed bool
	closed      bool

	readsOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan Payload, 16)}
}

func (f *fakeConn) ReadPayload() (Payload, error) {
	p, ok := <-f.reads
	if !ok {
		return Payload{}, io.EOF
	}
	return p, nil
}

func (f *fakeConn) WritePayload(p Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites || f.closed {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, p)
	return nil
}

func (f *fakeConn) CloseRead() error {
	f.mu.Lock()
	f.readClosed = true
	f.mu.Unlock()
	f.readsOnce.Do(func() { close(f.reads) })
	return nil
}

func (f *fakeConn) CloseWrite() error {
	f.mu.Lock()
	f.writeClosed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.readsOnce.Do(func() { close(f.reads) })
	return nil
}

func (f *fakeConn) RemoteAddr() string { return "fake:0" }

func (f *fakeConn) fail() {
	f.mu.Lock()
	f.failWrites = true
	f.mu.Unlock()
}

func (f *fakeConn) payloads() []Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Payload, len(f.written))
	copy(out, f.written)
	return out
}

// messages filters recorded writes down to MESSAGE payloads.
func (f *fakeConn) messages() []Payload {
	var out []Payload
	for _, p := range f.payloads() {
		if p.Type == PayloadMessage {
			out = append(out, p)
		}
	}
	return out
}
