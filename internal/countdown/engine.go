package countdown

import (
	"context"
	"maps"
	"sync"
	"time"

	"todo_webapp/internal/domain"
)

// Snapshotter hands out the current task collection.
type Snapshotter interface {
	Snapshot() []domain.Task
}

// Labels maps task id to its remaining-time label. A published map is never mutated.
type Labels map[string]string

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the zone datetime-local deadlines are read in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// Engine recomputes labels for every task on each tick.
type Engine struct {
	source   Snapshotter
	interval time.Duration
	now      func() time.Time
	loc      *time.Location

	rebuild chan struct{}

	mu     sync.Mutex
	subs   map[int]func(Labels)
	nextID int
	last   Labels
}

func NewEngine(source Snapshotter, interval time.Duration, opts ...Option) *Engine {
	if interval <= 0 {
		interval = time.Second
	}
	e := &Engine{
		source:   source,
		interval: interval,
		now:      time.Now,
		loc:      time.Local,
		rebuild:  make(chan struct{}, 1),
		subs:     make(map[int]func(Labels)),
		last:     Labels{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers fn for every published label set. fn runs on the engine goroutine.
func (e *Engine) Subscribe(fn func(Labels)) (cancel func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Rebuild tells a running engine the collection changed. It never blocks.
func (e *Engine) Rebuild() {
	select {
	case e.rebuild <- struct{}{}:
	default:
	}
}

// Latest returns a copy of the last published labels.
func (e *Engine) Latest() Labels {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.last)
}

// Tick computes labels for the current snapshot at now and publishes them.
func (e *Engine) Tick(now time.Time) Labels {
	tasks := e.source.Snapshot()
	labels := make(Labels, len(tasks))
	for _, t := range tasks {
		labels[t.ID] = LabelFor(t, now, e.loc).String()
	}

	e.mu.Lock()
	e.last = labels
	fns := make([]func(Labels), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(labels)
	}
	return labels
}

// Run ticks until ctx is done. A rebuild recomputes at once and restarts the period.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.Tick(e.now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(e.now())
		case <-e.rebuild:
			ticker.Reset(e.interval)
			e.Tick(e.now())
		}
	}
}
