package ws

import (
	"encoding/json"
	"sync"

	"todo_webapp/internal/countdown"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"
)

// Hub fans board and countdown updates out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	// welcome builds the frames a new client gets before any broadcast.
	// It runs under mu.
	welcome func() [][]byte
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		welcome: func() [][]byte { return nil },
	}
}

func encode(typ string, payload any) []byte {
	b, err := json.Marshal(Frame{Type: typ, Payload: payload})
	if err != nil {
		logger.Error("ws encode failed", "type", typ, "error", err)
		return nil
	}
	return b
}

// Attach wires the hub to a board and its countdown engine. The returned
// func detaches both subscriptions.
func (h *Hub) Attach(board *service.Board, engine *countdown.Engine) (detach func()) {
	h.mu.Lock()
	h.welcome = func() [][]byte {
		done, total := board.Stats()
		return [][]byte{
			encode(MsgSnapshot, SnapshotPayload{Tasks: board.Snapshot(), Done: done, Total: total}),
			encode(MsgQuote, QuotePayload{Quote: board.Quote()}),
			encode(MsgCountdown, CountdownPayload{Labels: engine.Latest()}),
		}
	}
	h.mu.Unlock()

	stopBoard := board.Subscribe(func(ev service.Event) {
		switch {
		case ev.ChangesCollection():
			h.Broadcast(encode(MsgSnapshot, snapshotOf(ev)))
		case ev.Kind == service.EventCompleted:
			h.Broadcast(encode(MsgCelebrate, CelebratePayload{Task: ev.Task, Quote: ev.Quote, Effects: DefaultEffects}))
			h.Broadcast(encode(MsgQuote, QuotePayload{Quote: ev.Quote}))
		case ev.Kind == service.EventError:
			msg := "remote store error"
			if ev.Err != nil {
				msg = ev.Err.Error()
			}
			h.Broadcast(encode(MsgError, ErrorPayload{Message: msg, TaskID: ev.Task.ID}))
		}
	})
	stopEngine := engine.Subscribe(func(labels countdown.Labels) {
		h.Broadcast(encode(MsgCountdown, CountdownPayload{Labels: labels}))
	})

	return func() {
		stopBoard()
		stopEngine()
	}
}

func snapshotOf(ev service.Event) SnapshotPayload {
	done := 0
	for _, t := range ev.Tasks {
		if t.Completed {
			done++
		}
	}
	return SnapshotPayload{Tasks: ev.Tasks, Done: done, Total: len(ev.Tasks)}
}

// register queues the welcome frames and adds c in one step, so every
// broadcast after the welcome snapshot reaches c.
func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	c.Send <- encode(MsgReady, nil)
	for _, f := range h.welcome() {
		if f != nil {
			c.Send <- f
		}
	}
	h.clients[c] = struct{}{}
	ConnectedClients.Inc()
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		ConnectedClients.Dec()
	}
}

// Broadcast queues msg for every client. A client whose buffer is full is dropped.
func (h *Hub) Broadcast(msg []byte) {
	if msg == nil {
		return
	}
	h.mu.RLock()
	var slow []*Client
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("ws client too slow, dropping", "client", c.ID)
		DroppedClients.Inc()
		h.unregister(c)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects everyone and refuses new clients.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}
