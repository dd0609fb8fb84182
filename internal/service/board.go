package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
)

type EventKind string

const (
	EventLoaded     EventKind = "loaded"
	EventAdded      EventKind = "added"
	EventUpdated    EventKind = "updated"
	EventRemoved    EventKind = "removed"
	EventRolledBack EventKind = "rolled_back"
	EventCompleted  EventKind = "completed"
	EventError      EventKind = "error"
)

// Event is published after every board change. Tasks is the collection as
// it stands right after the change.
type Event struct {
	Kind  EventKind
	Task  domain.Task
	Tasks []domain.Task
	Quote string
	Err   error
}

// ChangesCollection reports whether the event altered the task collection.
func (e Event) ChangesCollection() bool {
	switch e.Kind {
	case EventLoaded, EventAdded, EventUpdated, EventRemoved, EventRolledBack:
		return true
	}
	return false
}

// RemoteError is a failed call to the task store.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("remote %s: %v", e.Op, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

// Celebrator is told when a task gets completed. It must not block.
type Celebrator interface {
	Celebrate(task domain.Task, quote string)
}

type CelebratorFunc func(task domain.Task, quote string)

func (f CelebratorFunc) Celebrate(task domain.Task, quote string) { f(task, quote) }

type BoardOption func(*Board)

// WithRemoteTimeout bounds every store call. Zero disables the bound.
func WithRemoteTimeout(d time.Duration) BoardOption {
	return func(b *Board) { b.timeout = d }
}

func WithCelebrator(c Celebrator) BoardOption {
	return func(b *Board) { b.celebrator = c }
}

func WithQuotePicker(pick func() string) BoardOption {
	return func(b *Board) { b.pickQuote = pick }
}

// Board owns the session's in-memory task collection. Mutations are applied
// locally first, then mirrored to the store; a failed remote write is rolled
// back and reported as an EventError.
//
// Events are queued under the board lock in mutation order and delivered
// by whichever caller finds the queue idle, with no board lock held.
// Subscribers may read the board but must not call mutating methods.
type Board struct {
	store      repository.TaskStore
	timeout    time.Duration
	celebrator Celebrator
	pickQuote  func() string

	mu         sync.Mutex
	tasks      []domain.Task
	quote      string
	pending    []Event
	delivering bool

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func NewBoard(store repository.TaskStore, opts ...BoardOption) *Board {
	b := &Board{
		store:     store,
		timeout:   10 * time.Second,
		pickQuote: PickQuote,
		tasks:     []domain.Task{},
		subs:      make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.quote = b.pickQuote()
	return b
}

// Subscribe registers fn for every future event.
func (b *Board) Subscribe(fn func(Event)) (cancel func()) {
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.subMu.Unlock()

	return func() {
		b.subMu.Lock()
		delete(b.subs, id)
		b.subMu.Unlock()
	}
}

// Snapshot returns a copy of the collection in display order.
func (b *Board) Snapshot() []domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Task(nil), b.tasks...)
}

func (b *Board) Get(id string) (domain.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		return b.tasks[i], true
	}
	return domain.Task{}, false
}

// Quote is the quote picked at session start or at the last completion.
func (b *Board) Quote() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quote
}

// Stats counts completed and total tasks.
func (b *Board) Stats() (done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.Completed {
			done++
		}
	}
	return done, len(b.tasks)
}

// Load replaces the collection with the store contents.
func (b *Board) Load(ctx context.Context) error {
	var tasks []domain.Task
	err := b.remote(ctx, "list", func(ctx context.Context) error {
		var err error
		tasks, err = b.store.ListAll(ctx)
		return err
	})
	if err != nil {
		b.fail(domain.Task{}, err)
		return err
	}

	b.mu.Lock()
	b.tasks = tasks
	b.publishAndUnlock(Event{Kind: EventLoaded})
	logger.Info("board loaded", "tasks", len(tasks))
	return nil
}

// Add asks p for a name and deadline and creates the task. Nothing reaches
// the store when the dialog is dismissed or a value is missing.
func (b *Board) Add(ctx context.Context, p Prompter) (domain.Task, error) {
	d, err := b.ask(ctx, p, taskDialog(PromptAdd, "", ""))
	if err != nil {
		countMutation("add", err)
		return domain.Task{}, err
	}

	var id string
	err = b.remote(ctx, "create", func(ctx context.Context) error {
		var err error
		id, err = b.store.Create(ctx, d)
		return err
	})
	if err != nil {
		countMutation("add", err)
		b.fail(domain.Task{Text: d.Text, Deadline: d.Deadline}, err)
		return domain.Task{}, err
	}

	task := domain.Task{ID: id, Text: d.Text, Deadline: d.Deadline}
	b.mu.Lock()
	b.tasks = append(b.tasks, task)
	b.publishAndUnlock(Event{Kind: EventAdded, Task: task})
	countMutation("add", nil)
	return task, nil
}

// Toggle flips the completed flag of id.
func (b *Board) Toggle(ctx context.Context, id string) (domain.Task, error) {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		countMutation("toggle", domain.ErrTaskNotFound)
		return domain.Task{}, domain.ErrTaskNotFound
	}
	b.tasks[i].Completed = !b.tasks[i].Completed
	next := b.tasks[i]
	b.publishAndUnlock(Event{Kind: EventUpdated, Task: next})

	err := b.remote(ctx, "toggle", func(ctx context.Context) error {
		return b.store.SetCompleted(ctx, id, next.Completed)
	})
	if err != nil {
		countMutation("toggle", err)
		b.rollback(id, err, func(t *domain.Task) { t.Completed = !next.Completed })
		return domain.Task{}, err
	}
	countMutation("toggle", nil)

	if !next.Completed {
		return next, nil
	}
	quote := b.pickQuote()
	b.mu.Lock()
	// a later toggle may have flipped it back while the write was in flight
	if i := b.indexOf(id); i < 0 || !b.tasks[i].Completed {
		b.mu.Unlock()
		return next, nil
	}
	b.quote = quote
	b.publishAndUnlock(Event{Kind: EventCompleted, Task: next, Quote: quote})
	if b.celebrator != nil {
		b.celebrator.Celebrate(next, quote)
	}
	return next, nil
}

// Edit overwrites text and deadline of id with the values p returns.
// The id and completed flag are left untouched.
func (b *Board) Edit(ctx context.Context, id string, p Prompter) (domain.Task, error) {
	current, ok := b.Get(id)
	if !ok {
		countMutation("edit", domain.ErrTaskNotFound)
		return domain.Task{}, domain.ErrTaskNotFound
	}
	d, err := b.ask(ctx, p, taskDialog(PromptEdit, current.Text, current.Deadline))
	if err != nil {
		countMutation("edit", err)
		return domain.Task{}, err
	}

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		countMutation("edit", domain.ErrTaskNotFound)
		return domain.Task{}, domain.ErrTaskNotFound
	}
	prev := b.tasks[i]
	b.tasks[i].Text = d.Text
	b.tasks[i].Deadline = d.Deadline
	next := b.tasks[i]
	b.publishAndUnlock(Event{Kind: EventUpdated, Task: next})

	err = b.remote(ctx, "edit", func(ctx context.Context) error {
		return b.store.SetFields(ctx, id, d.Text, d.Deadline)
	})
	if err != nil {
		countMutation("edit", err)
		b.rollback(id, err, func(t *domain.Task) {
			t.Text = prev.Text
			t.Deadline = prev.Deadline
		})
		return domain.Task{}, err
	}
	countMutation("edit", nil)
	return next, nil
}

// Delete removes id once c confirms. A declined confirmation changes nothing.
func (b *Board) Delete(ctx context.Context, id string, c Confirmer) error {
	if _, ok := b.Get(id); !ok {
		countMutation("delete", domain.ErrTaskNotFound)
		return domain.ErrTaskNotFound
	}
	ok, err := c.Confirm(ctx, deleteDialog(id))
	if err != nil {
		countMutation("delete", err)
		return err
	}
	if !ok {
		countMutation("delete", ErrDeleteDeclined)
		return ErrDeleteDeclined
	}

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		countMutation("delete", domain.ErrTaskNotFound)
		return domain.ErrTaskNotFound
	}
	removed := b.tasks[i]
	b.tasks = append(b.tasks[:i:i], b.tasks[i+1:]...)
	b.publishAndUnlock(Event{Kind: EventRemoved, Task: removed})

	err = b.remote(ctx, "delete", func(ctx context.Context) error {
		return b.store.Remove(ctx, id)
	})
	// already gone remotely is the state we wanted
	if err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
		countMutation("delete", err)
		b.mu.Lock()
		if i > len(b.tasks) {
			i = len(b.tasks)
		}
		b.tasks = append(b.tasks[:i:i], append([]domain.Task{removed}, b.tasks[i:]...)...)
		b.publishAndUnlock(Event{Kind: EventRolledBack, Task: removed, Err: err})
		b.fail(removed, err)
		return err
	}
	countMutation("delete", nil)
	return nil
}

func (b *Board) ask(ctx context.Context, p Prompter, spec PromptSpec) (domain.Draft, error) {
	values, ok, err := p.Prompt(ctx, spec)
	if err != nil {
		return domain.Draft{}, err
	}
	if !ok {
		return domain.Draft{}, ErrPromptCancelled
	}
	for len(values) < 2 {
		values = append(values, "")
	}
	d := domain.Draft{Text: values[0], Deadline: values[1]}
	if err := d.Validate(); err != nil {
		return domain.Draft{}, err
	}
	return d, nil
}

// rollback undoes an optimistic change on id unless the task is gone by now.
func (b *Board) rollback(id string, cause error, undo func(*domain.Task)) {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		b.fail(domain.Task{ID: id}, cause)
		return
	}
	undo(&b.tasks[i])
	restored := b.tasks[i]
	b.publishAndUnlock(Event{Kind: EventRolledBack, Task: restored, Err: cause})
	b.fail(restored, cause)
}

// fail surfaces a remote error to subscribers.
func (b *Board) fail(task domain.Task, err error) {
	logger.Warn("remote store call failed", "task_id", task.ID, "error", err)
	b.mu.Lock()
	b.publishAndUnlock(Event{Kind: EventError, Task: task, Err: err})
}

// remote runs fn under the store timeout and wraps its failure.
func (b *Board) remote(ctx context.Context, op string, fn func(context.Context) error) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	start := time.Now()
	err := fn(ctx)
	observeStoreCall(op, time.Since(start), err)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	return nil
}

// publishAndUnlock must be called with b.mu held. It queues ev with a copy
// of the collection and releases b.mu. If no other caller is delivering, it
// drains the queue itself; otherwise the active deliverer picks ev up.
func (b *Board) publishAndUnlock(ev Event) {
	ev.Tasks = append([]domain.Task(nil), b.tasks...)
	b.pending = append(b.pending, ev)
	if b.delivering {
		b.mu.Unlock()
		return
	}
	b.delivering = true
	for len(b.pending) > 0 {
		batch := b.pending
		b.pending = nil
		b.mu.Unlock()
		b.deliver(batch)
		b.mu.Lock()
	}
	b.delivering = false
	b.mu.Unlock()
}

func (b *Board) deliver(events []Event) {
	b.subMu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func (b *Board) indexOf(id string) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
