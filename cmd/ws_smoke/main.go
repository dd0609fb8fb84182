package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"todo_webapp/internal/logger"
	"todo_webapp/internal/ws"

	"github.com/gorilla/websocket"
)

// Connects to a running server's feed and prints frames until -for elapses.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	addr := flag.String("addr", "127.0.0.1:"+port, "server host:port")
	wait := flag.Duration("for", 5*time.Second, "how long to listen")
	flag.Parse()
	logger.Init("info", "pretty")

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	url := fmt.Sprintf("ws://%s/ws", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		logger.Fatal("dial failed", "url", url, "error", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(ws.Frame{Type: ws.MsgPing}); err != nil {
		logger.Fatal("ping failed", "error", err)
	}

	seen := map[string]int{}
	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var f struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(msg, &f); err != nil {
			logger.Warn("bad frame", "raw", string(msg))
			continue
		}
		seen[f.Type]++
		fmt.Printf("%-10s %s\n", f.Type, f.Payload)
	}

	for _, typ := range []string{ws.MsgReady, ws.MsgSnapshot, ws.MsgPong} {
		if seen[typ] == 0 {
			logger.Fatal("expected frame not received", "type", typ)
		}
	}
	logger.Info("ws smoke ok", "frames", seen)
}
