// Command chat-client is a thin duplex relay: stdin lines go to the server as
// MESSAGE payloads, payloads from the server are printed to stdout. Typing
// "quit" sends a DISCONNECT and exits.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"chatrelay/internal/chat"
	"chatrelay/internal/transport"
)

func main() {
	addr := flag.String("addr", "127.0.0.1", "server address")
	port := flag.Int("port", 3002, "server TCP port")
	name := flag.String("name", "", "display name announced on connect")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if *name == "" {
		log.Fatal("a -name is required")
	}

	raw, err := net.Dial("tcp", fmt.Sprintf("%s:%d", *addr, *port))
	if err != nil {
		log.Fatal("connect failed", zap.Error(err))
	}
	conn := transport.NewTCPConn(raw, 10*time.Second)
	defer conn.Close()

	if err := conn.WritePayload(chat.Payload{Type: chat.PayloadConnect, ClientName: *name}); err != nil {
		log.Fatal("connect handshake failed", zap.Error(err))
	}

	// Server-to-stdout relay. Exiting when the read fails covers both a
	// server shutdown and our own disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			p, err := conn.ReadPayload()
			if err != nil {
				return
			}
			printPayload(p)
		}
	}()

	// Stdin-to-server relay on the main goroutine.
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(line), "quit") {
			_ = conn.WritePayload(chat.Payload{Type: chat.PayloadDisconnect, ClientName: *name})
			break
		}
		err := conn.WritePayload(chat.Payload{
			Type:       chat.PayloadMessage,
			ClientName: *name,
			Message:    line,
		})
		if err != nil {
			log.Warn("send failed", zap.Error(err))
			break
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn("stdin read failed", zap.Error(err))
	}

	_ = conn.CloseWrite()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func printPayload(p chat.Payload) {
	switch p.Type {
	case chat.PayloadMessage:
		fmt.Printf("%s: %s\n", p.ClientName, p.Message)
	case chat.PayloadConnect:
		fmt.Printf("* %s connected\n", p.ClientName)
	case chat.PayloadDisconnect:
		fmt.Printf("* %s disconnected\n", p.ClientName)
	default:
		fmt.Printf("* unhandled payload: %s\n", p)
	}
}
