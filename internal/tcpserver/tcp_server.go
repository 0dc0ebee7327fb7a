// Package tcpserver runs the classic socket front door: every accepted
// connection becomes a chat session in the Lobby with its own read loop.
package tcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"chatrelay/internal/chat"
	"chatrelay/internal/transport"
)

type Server struct {
	listenPort uint16
	writeWait  time.Duration
	registry   *chat.Registry

	ln net.Listener
	wg sync.WaitGroup
}

func NewServer(listenPort uint16, writeWait time.Duration, registry *chat.Registry) *Server {
	return &Server{
		listenPort: listenPort,
		writeWait:  writeWait,
		registry:   registry,
	}
}

// Start blocks in the accept loop until ctx is canceled or the listener
// fails. Session failures never propagate; the server keeps accepting.
func (s *Server) Start(ctx context.Context) error {
	var err error
	listenAddr := fmt.Sprintf(":%d", s.listenPort)
	s.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	zap.L().Info("tcp.listening", zap.String("addr", listenAddr))

	go func() {
		<-ctx.Done()
		_ = s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			zap.L().Warn("tcp.accept", zap.Error(err))
			continue
		}
		s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	sess := chat.NewSession(transport.NewTCPConn(conn, s.writeWait), s.registry)
	zap.L().Info("tcp.client_connected",
		zap.Stringer("session_id", sess.ID()),
		zap.String("remote", conn.RemoteAddr().String()))

	if err := s.registry.Lobby().AddClient(sess); err != nil {
		zap.L().Error("tcp.lobby_join", zap.Error(err))
		_ = conn.Close()
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Reads have no timeout, so shutdown must close the connection to
		// unblock the loop.
		stop := context.AfterFunc(ctx, sess.Cleanup)
		defer stop()
		sess.Run(ctx)
	}()
}
