package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"todo_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 256
)

var clientSeq atomic.Int64

type Client struct {
	ID   int64
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
	Done chan struct{}
}

func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:   clientSeq.Add(1),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Hub:  hub,
		Done: make(chan struct{}),
	}
}

// Run registers the client, queues the welcome frames and pumps messages
// until the connection goes away.
func (c *Client) Run() {
	if !c.Hub.register(c) {
		c.Conn.Close()
		return
	}
	logger.Debug("ws client connected", "client", c.ID)

	go c.writePump()
	c.readPump()
	<-c.Done
}

//read
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister(c)
		logger.Debug("ws client disconnected", "client", c.ID)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "client", c.ID, "error", err)
			}
			return
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg []byte) {
	var in Frame
	if err := json.Unmarshal(msg, &in); err != nil {
		c.trySend(encode(MsgError, ErrorPayload{Message: "malformed frame"}))
		return
	}
	switch in.Type {
	case MsgPing:
		c.trySend(encode(MsgPong, nil))
	default:
		c.trySend(encode(MsgError, ErrorPayload{Message: "unknown frame type " + in.Type}))
	}
}

// trySend queues a direct reply; it gives up if the client is gone or full.
func (c *Client) trySend(msg []byte) {
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if _, ok := c.Hub.clients[c]; !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		close(c.Done)
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "client", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
