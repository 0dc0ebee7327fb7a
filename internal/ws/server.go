// Package ws is the WebSocket front door: it upgrades HTTP requests and hands
// each connection to the chat core as a Lobby session.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatrelay/internal/chat"
	"chatrelay/internal/transport"
)

type WsServer struct {
	registry       *chat.Registry
	upgrader       websocket.Upgrader
	writeWait      time.Duration
	maxMessageSize int64
	ctx            context.Context
}

func NewWsServer(ctx context.Context, registry *chat.Registry, writeWait time.Duration, maxMessageSize int64) *WsServer {
	return &WsServer{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true }, // dev-only
		},
		writeWait:      writeWait,
		maxMessageSize: maxMessageSize,
		ctx:            ctx,
	}
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(s.maxMessageSize)

	sess := chat.NewSession(transport.NewWSConn(rawConn, s.writeWait), s.registry)
	zap.L().Info("ws.client_connected",
		zap.Stringer("session_id", sess.ID()),
		zap.String("remote", rawConn.RemoteAddr().String()))

	if err := s.registry.Lobby().AddClient(sess); err != nil {
		zap.L().Error("ws.lobby_join", zap.Error(err))
		_ = rawConn.Close()
		return
	}

	// The read loop outlives this handler; the request context dies with it,
	// so the session runs on the server context instead. Shutdown closes the
	// connection to unblock the read.
	go func() {
		stop := context.AfterFunc(s.ctx, sess.Cleanup)
		defer stop()
		sess.Run(s.ctx)
	}()
}
