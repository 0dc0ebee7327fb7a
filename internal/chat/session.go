package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionState tracks the session lifecycle. Transitions only move forward;
// StateClosed is terminal.
type SessionState int32

const (
	StateConnecting SessionState = iota // transport open, no name yet
	StateActive                         // named and placed in a room
	StateClosing                        // disconnect seen or read failed
	StateClosed                         // all resources released
)

// Session is the server-side representation of one connected client. It owns
// the read loop for its connection and is the unit a Room fans out to.
type Session struct {
	id       uuid.UUID
	conn     Conn
	registry *Registry

	mu    sync.Mutex
	name  string
	room  *Room
	state SessionState

	closeOnce sync.Once
}

func NewSession(conn Conn, registry *Registry) *Session {
	return &Session{
		id:       uuid.New(),
		conn:     conn,
		registry: registry,
		state:    StateConnecting,
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Room returns the session's current room, nil before the first join.
func (s *Session) Room() *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// setRoom is called by Room while holding the room lock. A session is always
// reassigned, never unset: a nil room here is a bug upstream.
func (s *Session) setRoom(r *Room) {
	if r == nil {
		zap.L().Error("session.set_nil_room", zap.Stringer("session_id", s.id))
		return
	}
	s.mu.Lock()
	s.room = r
	s.mu.Unlock()
}

func (s *Session) setState(st SessionState) {
	s.mu.Lock()
	if st > s.state {
		s.state = st
	}
	s.mu.Unlock()
}

// Run drives the blocking read loop. It returns when the peer disconnects,
// a read fails, or ctx is already done between reads; Cleanup always runs.
// There is no read timeout: liveness is discovered lazily at send time.
func (s *Session) Run(ctx context.Context) {
	defer s.Cleanup()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p, err := s.conn.ReadPayload()
		if err != nil {
			if !errors.Is(err, io.EOF) && s.State() < StateClosing {
				zap.L().Info("session.read_failed",
					zap.Stringer("session_id", s.id), zap.Error(err))
			}
			return
		}
		if !s.onReceive(p) {
			return
		}
	}
}

// onReceive dispatches one decoded payload. The returned bool keeps the read
// loop running; only DISCONNECT stops it.
func (s *Session) onReceive(p Payload) bool {
	switch p.Type {
	case PayloadConnect:
		s.handleConnect(p.ClientName)
		return true
	case PayloadMessage:
		if room := s.Room(); room != nil {
			room.SendMessage(s, p.Message)
		}
		return true
	case PayloadDisconnect:
		s.setState(StateClosing)
		return false
	default:
		zap.L().Warn("session.unhandled_payload",
			zap.Stringer("session_id", s.id), zap.Stringer("payload", p))
		return true
	}
}

// handleConnect sets (or overwrites, on rename) the display name, re-joins
// the Lobby so the newly named client is announced, and notifies the other
// members with a connection-status payload.
func (s *Session) handleConnect(name string) {
	if name == "" {
		zap.L().Warn("session.connect_without_name", zap.Stringer("session_id", s.id))
		return
	}

	s.mu.Lock()
	previous := s.name
	s.name = name
	if s.state == StateConnecting {
		s.state = StateActive
	}
	s.mu.Unlock()

	zap.L().Info("session.named",
		zap.Stringer("session_id", s.id),
		zap.String("name", name),
		zap.String("previous", previous))

	s.registry.JoinLobby(s)
	if room := s.Room(); room != nil {
		room.SendConnectionStatus(s, name, true)
	}
}

// Send delivers a MESSAGE payload to this session's peer. A write failure is
// reported as ErrPeerGone so the calling room can prune this member and keep
// broadcasting to the rest.
func (s *Session) Send(clientName, message string) error {
	return s.writePayload(Payload{
		Type:       PayloadMessage,
		ClientName: clientName,
		Message:    message,
	})
}

// SendConnectionStatus delivers a CONNECT or DISCONNECT announcement about
// clientName to this session's peer. Same failure contract as Send.
func (s *Session) SendConnectionStatus(clientName string, isConnect bool) error {
	t := PayloadDisconnect
	if isConnect {
		t = PayloadConnect
	}
	return s.writePayload(Payload{Type: t, ClientName: clientName})
}

func (s *Session) writePayload(p Payload) error {
	if s.State() >= StateClosing {
		return ErrSessionClosed
	}
	if err := s.conn.WritePayload(p); err != nil {
		return fmt.Errorf("%w: %v", ErrPeerGone, err)
	}
	return nil
}

// Cleanup tears the session down: announce and leave the current room, then
// close both halves of the connection, each attempt independent of the other.
// Safe to call from the read loop's exit path, an explicit DISCONNECT, and a
// room prune concurrently; only the first call does the work.
func (s *Session) Cleanup() {
	s.closeOnce.Do(func() {
		s.setState(StateClosing)

		room := s.Room()
		name := s.Name()
		if room != nil {
			if name != "" {
				room.SendConnectionStatus(s, name, false)
			}
			room.RemoveClient(s)
		}

		if err := s.conn.CloseRead(); err != nil {
			zap.L().Debug("session.close_read", zap.Stringer("session_id", s.id), zap.Error(err))
		}
		if err := s.conn.CloseWrite(); err != nil {
			zap.L().Debug("session.close_write", zap.Stringer("session_id", s.id), zap.Error(err))
		}
		if err := s.conn.Close(); err != nil {
			zap.L().Debug("session.close", zap.Stringer("session_id", s.id), zap.Error(err))
		}

		s.setState(StateClosed)
		zap.L().Info("session.closed",
			zap.Stringer("session_id", s.id), zap.String("name", name))
	})
}
