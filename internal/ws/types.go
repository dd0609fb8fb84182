package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady     = "ready"
	MsgPong      = "pong"
	MsgSnapshot  = "snapshot"
	MsgCountdown = "countdown"
	MsgCelebrate = "celebrate"
	MsgQuote     = "quote"
	MsgError     = "error"
)

// Frame is the envelope of every message on the socket.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
