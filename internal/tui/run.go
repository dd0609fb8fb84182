package tui

import (
	"context"
	"errors"
	"os"
	"sync"

	"todo_webapp/internal/countdown"
	"todo_webapp/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the board until the user quits. The countdown engine must be
// fed by the caller; Run only subscribes to it.
func Run(ctx context.Context, board *service.Board, engine *countdown.Engine) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, board, engine.Latest(), os.Stderr)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	stop := connect(ctx, p, board, engine)
	defer stop()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// connect forwards board events and countdown labels to p. Subscribers only
// queue; a relay goroutine does the blocking Send.
func connect(ctx context.Context, p *tea.Program, board *service.Board, engine *countdown.Engine) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	r := newRelay()
	go r.run(ctx, p.Send)

	stopBoard := board.Subscribe(func(ev service.Event) { r.push(boardMsg(ev)) })
	stopEngine := func() {}
	if engine != nil {
		stopEngine = engine.Subscribe(func(l countdown.Labels) { r.push(labelsMsg(l)) })
	}
	return func() {
		stopBoard()
		stopEngine()
		cancel()
	}
}

// relay is an unbounded FIFO between subscribers and the program.
type relay struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

func newRelay() *relay {
	return &relay{wake: make(chan struct{}, 1)}
}

func (r *relay) push(msg tea.Msg) {
	r.mu.Lock()
	r.queue = append(r.queue, msg)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *relay) run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
		}

		r.mu.Lock()
		batch := r.queue
		r.queue = nil
		r.mu.Unlock()

		for _, msg := range batch {
			if ctx.Err() != nil {
				return
			}
			send(msg)
		}
	}
}
