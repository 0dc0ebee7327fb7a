package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"chatrelay/internal/chat"
	"chatrelay/internal/config"
	"chatrelay/internal/http/http_server"
	"chatrelay/internal/tcpserver"
	"chatrelay/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Room registry with its permanent Lobby
	registry := chat.NewRegistry(cfg.LobbyName)
	Log.Info("Lobby ready", zap.String("lobby", registry.Lobby().Name()))

	// 4. Classic TCP socket server
	tcpSrv := tcpserver.NewServer(cfg.TcpServerPort, cfg.WriteWait, registry)
	go func() {
		if err := tcpSrv.Start(ctx); err != nil {
			Log.Fatal("Failed to start TCP server", zap.Error(err))
		}
	}()

	// 5. WebSocket entry point
	wsSrv := ws.NewWsServer(ctx, registry, cfg.WriteWait, cfg.MaxMessageSize)

	// 6. HTTP + WS server with graceful shutdown on signal
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, registry)
	go func() {
		<-ctx.Done()
		if err := httpServer.Dispose(); err != nil {
			Log.Error("http_shutdown", zap.Error(err))
		}
	}()
	if err := httpServer.Start(); err != nil && ctx.Err() == nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
