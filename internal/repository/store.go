package repository

import (
	"context"
	"fmt"
	"regexp"

	"todo_webapp/internal/domain"
)

// TaskStore is the remote document collection holding task records.
// Records are keyed by a store-assigned id; updates are partial.
type TaskStore interface {
	ListAll(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, d domain.Draft) (string, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
	SetFields(ctx context.Context, id, text, deadline string) error
	Remove(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// document is the stored shape of a task, without its key.
type document struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Deadline  string `json:"deadline"`
}

func (d document) task(id string) domain.Task {
	return domain.Task{ID: id, Text: d.Text, Completed: d.Completed, Deadline: d.Deadline}
}

var collectionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// checkCollection guards names that end up inside SQL text or key prefixes.
func checkCollection(name string) error {
	if !collectionName.MatchString(name) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
}
