package service

import (
	"context"
	"errors"
)

var (
	ErrPromptCancelled = errors.New("prompt cancelled")
	ErrDeleteDeclined  = errors.New("delete not confirmed")
)

type PromptKind string

const (
	PromptAdd  PromptKind = "add"
	PromptEdit PromptKind = "edit"
)

// PromptField is one input of a dialog. Type follows HTML input types.
type PromptField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// PromptSpec describes the add/edit task dialog.
type PromptSpec struct {
	Kind   PromptKind    `json:"kind"`
	Title  string        `json:"title"`
	Fields []PromptField `json:"fields"`
}

// Prompter shows a dialog and returns one value per field, or ok=false when
// the user dismissed it.
type Prompter interface {
	Prompt(ctx context.Context, spec PromptSpec) (values []string, ok bool, err error)
}

type PromptFunc func(ctx context.Context, spec PromptSpec) ([]string, bool, error)

func (f PromptFunc) Prompt(ctx context.Context, spec PromptSpec) ([]string, bool, error) {
	return f(ctx, spec)
}

// Answer is a Prompter whose dialog was already filled in, e.g. by a request body.
func Answer(text, deadline string) Prompter {
	return PromptFunc(func(context.Context, PromptSpec) ([]string, bool, error) {
		return []string{text, deadline}, true, nil
	})
}

// Dismissed is a Prompter whose dialog is always cancelled.
var Dismissed Prompter = PromptFunc(func(context.Context, PromptSpec) ([]string, bool, error) {
	return nil, false, nil
})

// ConfirmSpec describes the yes/no dialog shown before a delete.
type ConfirmSpec struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

type Confirmer interface {
	Confirm(ctx context.Context, spec ConfirmSpec) (bool, error)
}

type ConfirmFunc func(ctx context.Context, spec ConfirmSpec) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, spec ConfirmSpec) (bool, error) {
	return f(ctx, spec)
}

// Confirmed answers every confirmation with ok.
func Confirmed(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, ConfirmSpec) (bool, error) { return ok, nil })
}

func taskDialog(kind PromptKind, text, deadline string) PromptSpec {
	title := "Add a new task"
	if kind == PromptEdit {
		title = "Edit task"
	}
	return PromptSpec{
		Kind:  kind,
		Title: title,
		Fields: []PromptField{
			{Name: "text", Label: "Task name", Type: "text", Value: text},
			{Name: "deadline", Label: "Deadline", Type: "datetime-local", Value: deadline},
		},
	}
}

func deleteDialog(id string) ConfirmSpec {
	return ConfirmSpec{
		TaskID: id,
		Title:  "Are you sure?",
		Text:   "This task will be deleted permanently.",
	}
}
