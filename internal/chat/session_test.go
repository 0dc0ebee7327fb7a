package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSetsNameAndAnnounces(t *testing.T) {
	reg := NewRegistry("Lobby")
	_, bobConn := newMember(t, reg, "bob")

	conn := newFakeConn()
	s := NewSession(conn, reg)
	require.NoError(t, reg.Lobby().AddClient(s))
	assert.Equal(t, StateConnecting, s.State())

	s.onReceive(Payload{Type: PayloadConnect, ClientName: "alice"})

	assert.Equal(t, "alice", s.Name())
	assert.Equal(t, StateActive, s.State())
	assert.Same(t, reg.Lobby(), s.Room())

	var status bool
	for _, p := range bobConn.payloads() {
		if p.Type == PayloadConnect && p.ClientName == "alice" {
			status = true
		}
	}
	assert.True(t, status, "other members get the connection-status announcement")
}

func TestConnectRenameOverwrites(t *testing.T) {
	reg := NewRegistry("Lobby")
	s, _ := newMember(t, reg, "alice")

	s.onReceive(Payload{Type: PayloadConnect, ClientName: "alicia"})
	assert.Equal(t, "alicia", s.Name())
}

func TestConnectWithoutNameIgnored(t *testing.T) {
	reg := NewRegistry("Lobby")
	s, _ := newMember(t, reg, "")

	s.onReceive(Payload{Type: PayloadConnect})
	assert.Equal(t, "", s.Name())
	assert.Equal(t, StateConnecting, s.State())
}

func TestMessageForwardedToCurrentRoom(t *testing.T) {
	reg := NewRegistry("Lobby")
	alice, _ := newMember(t, reg, "alice")
	_, bobConn := newMember(t, reg, "bob")

	alice.onReceive(Payload{Type: PayloadMessage, Message: "hello"})

	msgs := bobConn.messages()
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, "alice", last.ClientName)
	assert.Equal(t, "hello", last.Message)
}

func TestUnknownPayloadIsNotFatal(t *testing.T) {
	reg := NewRegistry("Lobby")
	s, _ := newMember(t, reg, "alice")

	keepRunning := s.onReceive(Payload{Type: PayloadType("telemetry")})
	assert.True(t, keepRunning)
	assert.Equal(t, StateActive, s.State())
	assert.Same(t, reg.Lobby(), s.Room())
}

func TestDisconnectStopsReadLoop(t *testing.T) {
	reg := NewRegistry("Lobby")
	s, conn := newMember(t, reg, "alice")

	conn.reads <- Payload{Type: PayloadConnect, ClientName: "alice"}
	conn.reads <- Payload{Type: PayloadDisconnect}

	done := make(chan struct{})
	go func() {
		s.Run(t.Context())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not stop on DISCONNECT")
	}

	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 0, reg.Lobby().Size())
	assert.True(t, conn.closed)
}

func TestReadFailureTriggersCleanup(t *testing.T) {
	reg := NewRegistry("Lobby")
	s, conn := newMember(t, reg, "alice")
	_, bobConn := newMember(t, reg, "bob")

	// EOF from the peer.
	require.NoError(t, conn.Close())
	s.Run(t.Context())

	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 1, reg.Lobby().Size())

	var left, status bool
	for _, p := range bobConn.payloads() {
		if p.Type == PayloadDisconnect && p.ClientName == "alice" {
			status = true
		}
		if p.Type == PayloadMessage && p.Message == "left the room" {
			left = true
		}
	}
	assert.True(t, status, "disconnect announced to the room")
	assert.True(t, left, "leave notice broadcast to remaining members")
}

func TestCleanupIdempotent(t *testing.T) {
	reg := NewRegistry("Lobby")
	s, conn := newMember(t, reg, "alice")

	s.Cleanup()
	s.Cleanup()

	assert.Equal(t, StateClosed, s.State())
	assert.True(t, conn.readClosed)
	assert.True(t, conn.writeClosed)
	assert.True(t, conn.closed)
	assert.Equal(t, 0, reg.Lobby().Size())
}

func TestSendAfterCleanupReportsClosed(t *testing.T) {
	reg := NewRegistry("Lobby")
	s, _ := newMember(t, reg, "alice")
	s.Cleanup()

	assert.ErrorIs(t, s.Send("bob", "too late"), ErrSessionClosed)
}

func TestSendFailureIsPeerGone(t *testing.T) {
	reg := NewRegistry("Lobby")
	s, conn := newMember(t, reg, "alice")
	conn.fail()

	assert.ErrorIs(t, s.Send("bob", "hello"), ErrPeerGone)
	assert.ErrorIs(t, s.SendConnectionStatus("bob", false), ErrPeerGone)
}
