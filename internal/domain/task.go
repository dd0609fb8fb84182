package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrEmptyText       = errors.New("task text is empty")
	ErrMissingDeadline = errors.New("task deadline is missing")
)

// Task is one entry of the tasks collection.
// Deadline keeps the datetime-local string exactly as entered.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Deadline  string `json:"deadline"`
}

// Draft is a task without an id: the answer of the add/edit dialog.
type Draft struct {
	Text     string `json:"text" binding:"required"`
	Deadline string `json:"deadline" binding:"required"`
}

// Validate only checks presence.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return ErrEmptyText
	}
	if strings.TrimSpace(d.Deadline) == "" {
		return ErrMissingDeadline
	}
	return nil
}

// local deadline layouts; datetime-local input comes first
var deadlineLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDeadline reads a deadline string. Local forms are resolved in loc
// (time.Local when nil); RFC3339 strings carry their own offset.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range deadlineLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
