package ws

import "todo_webapp/internal/domain"

// server → client
type SnapshotPayload struct {
	Tasks []domain.Task `json:"tasks"`
	Done  int           `json:"done"`
	Total int           `json:"total"`
}

type CountdownPayload struct {
	Labels map[string]string `json:"labels"`
}

// Effects tells the page how to celebrate: a confetti burst and a sound.
type Effects struct {
	ParticleCount int     `json:"particle_count"`
	Spread        int     `json:"spread"`
	OriginY       float64 `json:"origin_y"`
	Sound         string  `json:"sound"`
}

var DefaultEffects = Effects{ParticleCount: 100, Spread: 70, OriginY: 0.6, Sound: "/success.mp3"}

type CelebratePayload struct {
	Task    domain.Task `json:"task"`
	Quote   string      `json:"quote"`
	Effects Effects     `json:"effects"`
}

type QuotePayload struct {
	Quote string `json:"quote"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id,omitempty"`
}
