package handlers

import (
	"time"

	"todo_webapp/internal/export"
	"todo_webapp/internal/service"
)

type Handler struct {
	Board    *service.Board
	Tokens   *service.ConfirmTokens
	Exporter *export.Exporter
	Location *time.Location

	now func() time.Time
}

func NewHandler(board *service.Board, tokens *service.ConfirmTokens, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		Board:    board,
		Tokens:   tokens,
		Exporter: export.New(loc),
		Location: loc,
		now:      time.Now,
	}
}
