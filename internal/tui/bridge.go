package tui

import (
	"context"

	"todo_webapp/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

type promptReply struct {
	values []string
	ok     bool
}

// promptRequestMsg asks the UI to show the add/edit dialog.
type promptRequestMsg struct {
	spec  service.PromptSpec
	reply chan promptReply
}

// confirmRequestMsg asks the UI to show the delete confirmation.
type confirmRequestMsg struct {
	spec  service.ConfirmSpec
	reply chan bool
}

// bridge serves board dialogs from the UI. Board operations run in tea
// commands and block in Prompt/Confirm until the model answers.
type bridge struct {
	requests chan tea.Msg
}

func newBridge() *bridge {
	return &bridge{requests: make(chan tea.Msg)}
}

func (b *bridge) Prompt(ctx context.Context, spec service.PromptSpec) ([]string, bool, error) {
	req := promptRequestMsg{spec: spec, reply: make(chan promptReply, 1)}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.values, r.ok, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (b *bridge) Confirm(ctx context.Context, spec service.ConfirmSpec) (bool, error) {
	req := confirmRequestMsg{spec: spec, reply: make(chan bool, 1)}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// wait delivers the next dialog request to Update.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg { return <-b.requests }
}
