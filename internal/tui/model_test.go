package tui

import (
	"bytes"
	"context"
	"testing"
	"time"

	"todo_webapp/internal/countdown"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
)

func setupModel(t *testing.T, texts ...string) (Model, *service.Board, *bytes.Buffer) {
	t.Helper()
	logger.Discard()

	store, err := repository.NewSQLiteTaskRepository(":memory:", "tasks")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	for _, text := range texts {
		_, err := store.Create(context.Background(), domain.Draft{Text: text, Deadline: "2999-01-01T00:00"})
		require.NoError(t, err)
	}

	board := service.NewBoard(store, service.WithQuotePicker(func() string { return "onward" }))
	require.NoError(t, board.Load(context.Background()))

	var bell bytes.Buffer
	return New(context.Background(), board, nil, &bell), board, &bell
}

// step feeds msg to m and returns the updated model.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// start runs the board operation cmd in the background and returns the
// dialog request it produces plus a channel with its result.
func start(t *testing.T, m Model, cmd tea.Cmd) (tea.Msg, <-chan tea.Msg) {
	t.Helper()
	require.NotNil(t, cmd)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case req := <-m.bridge.requests:
		return req, done
	case <-time.After(2 * time.Second):
		t.Fatal("no dialog request")
		return nil, nil
	}
}

func result(t *testing.T, done <-chan tea.Msg) opDoneMsg {
	t.Helper()
	select {
	case msg := <-done:
		return msg.(opDoneMsg)
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not finish")
		return opDoneMsg{}
	}
}

func typeText(t *testing.T, m Model, s string) Model {
	for _, r := range s {
		m, _ = step(t, m, keyRunes(string(r)))
	}
	return m
}

func TestAddThroughPrompt(t *testing.T) {
	m, board, _ := setupModel(t)

	m, cmd := step(t, m, keyRunes("a"))
	req, done := start(t, m, cmd)
	m, _ = step(t, m, req)
	require.Equal(t, modePrompt, m.mode)
	assert.Contains(t, m.View(), "Add a new task")

	m = typeText(t, m, "water plants")
	m, _ = step(t, m, keyEnter)
	m = typeText(t, m, "2999-03-01T09:00")
	m, _ = step(t, m, keyEnter)
	assert.Equal(t, modeList, m.mode)

	res := result(t, done)
	require.NoError(t, res.err)
	tasks := board.Snapshot()
	require.Len(t, tasks, 1)
	assert.Equal(t, "water plants", tasks[0].Text)
	assert.Equal(t, "2999-03-01T09:00", tasks[0].Deadline)
}

func TestAddCancelled(t *testing.T) {
	m, board, _ := setupModel(t)

	m, cmd := step(t, m, keyRunes("a"))
	req, done := start(t, m, cmd)
	m, _ = step(t, m, req)
	m, _ = step(t, m, keyEsc)

	res := result(t, done)
	assert.ErrorIs(t, res.err, service.ErrPromptCancelled)
	m, _ = step(t, m, res)
	assert.Empty(t, m.status)
	assert.Empty(t, board.Snapshot())
}

func TestAddMissingDeadlineShowsStatus(t *testing.T) {
	m, board, _ := setupModel(t)

	m, cmd := step(t, m, keyRunes("a"))
	req, done := start(t, m, cmd)
	m, _ = step(t, m, req)
	m = typeText(t, m, "no deadline")
	m, _ = step(t, m, keyEnter)
	m, _ = step(t, m, keyEnter)

	res := result(t, done)
	assert.ErrorIs(t, res.err, domain.ErrMissingDeadline)
	m, _ = step(t, m, res)
	assert.Contains(t, m.View(), "deadline is missing")
	assert.Empty(t, board.Snapshot())
}

func TestEditPrefillsValues(t *testing.T) {
	m, board, _ := setupModel(t, "old name")

	m, cmd := step(t, m, keyRunes("e"))
	req, done := start(t, m, cmd)
	m, _ = step(t, m, req)
	assert.Equal(t, "old name", m.inputs[0].Value())
	assert.Equal(t, "2999-01-01T00:00", m.inputs[1].Value())

	m = typeText(t, m, "!")
	m, _ = step(t, m, keyEnter)
	_, _ = step(t, m, keyEnter)

	require.NoError(t, result(t, done).err)
	assert.Equal(t, "old name!", board.Snapshot()[0].Text)
}

func TestDeleteConfirm(t *testing.T) {
	m, board, _ := setupModel(t, "a", "b")

	// decline first
	m, cmd := step(t, m, keyRunes("d"))
	req, done := start(t, m, cmd)
	m, _ = step(t, m, req)
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Are you sure?")
	m, _ = step(t, m, keyRunes("n"))
	assert.ErrorIs(t, result(t, done).err, service.ErrDeleteDeclined)
	assert.Len(t, board.Snapshot(), 2)

	m, cmd = step(t, m, keyRunes("d"))
	req, done = start(t, m, cmd)
	m, _ = step(t, m, req)
	_, _ = step(t, m, keyRunes("y"))
	require.NoError(t, result(t, done).err)

	tasks := board.Snapshot()
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].Text)
}

func TestToggleCelebrates(t *testing.T) {
	m, board, bell := setupModel(t, "ship it")

	m, cmd := step(t, m, keySpace)
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(opDoneMsg).err)
	task := board.Snapshot()[0]
	require.True(t, task.Completed)

	m, tick := step(t, m, boardMsg(service.Event{Kind: service.EventCompleted, Task: task, Quote: "onward"}))
	assert.NotNil(t, tick)
	assert.Equal(t, "\a", bell.String())
	assert.Contains(t, m.View(), "ship it done!")

	m, _ = step(t, m, bannerExpiredMsg{seq: m.bannerSeq})
	assert.NotContains(t, m.View(), "done!")
}

func TestLabelsAndProgress(t *testing.T) {
	m, board, _ := setupModel(t, "a", "b")
	tasks := board.Snapshot()

	m, _ = step(t, m, labelsMsg(countdown.Labels{tasks[0].ID: "1h 0m 0s", tasks[1].ID: countdown.Expired}))
	view := m.View()
	assert.Contains(t, view, "1h 0m 0s")
	assert.Contains(t, view, countdown.Expired)
	assert.Contains(t, view, "0/2")
	assert.Contains(t, view, "onward")
}

func TestErrorEventShowsStatus(t *testing.T) {
	m, _, _ := setupModel(t)
	m, _ = step(t, m, boardMsg(service.Event{Kind: service.EventError, Err: &service.RemoteError{Op: "toggle", Err: context.DeadlineExceeded}}))
	assert.Contains(t, m.View(), "remote toggle")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[██░░] 1/2", ProgressBar(1, 2, 4))
	assert.Equal(t, "[░░░░] 0/0", ProgressBar(0, 0, 4))
}
