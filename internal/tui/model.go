package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"todo_webapp/internal/countdown"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const bannerFor = 3 * time.Second

type (
	boardMsg  service.Event
	labelsMsg countdown.Labels

	// opDoneMsg reports the end of a board operation started from the UI.
	opDoneMsg struct {
		op  string
		err error
	}

	bannerExpiredMsg struct{ seq int }
)

// taskItem adapts domain.Task to bubbles/list.Item.
type taskItem struct {
	task  domain.Task
	label string
}

func (i taskItem) Title() string       { return i.task.Text }
func (i taskItem) Description() string { return i.task.Deadline }
func (i taskItem) FilterValue() string { return i.task.Text }

type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(taskItem)

	box := MutedStyle.Render(BoxUnchecked)
	text := it.task.Text
	if it.task.Completed {
		box = SuccessStyle.Render(BoxChecked)
		text = doneStyle.Render(text)
	}
	label := PendingStyle.Render(it.label)
	if it.label == countdown.Expired {
		label = ErrorStyle.Render(it.label)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s  %s  %s", prefix, box, text, MutedStyle.Render(it.task.Deadline), label)
}

type mode int

const (
	modeList mode = iota
	modePrompt
	modeConfirm
)

// Model is the interactive board.
type Model struct {
	ctx    context.Context
	board  *service.Board
	bridge *bridge
	bell   io.Writer

	list   list.Model
	labels countdown.Labels
	width  int
	height int

	mode    mode
	prompt  *promptRequestMsg
	confirm *confirmRequestMsg
	inputs  []textinput.Model
	focus   int

	status    string
	banner    string
	bannerSeq int
}

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editKey   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	deleteKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	toggleKey = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done"))
)

// New builds the model. bell receives "\a" on every completion; nil mutes it.
func New(ctx context.Context, board *service.Board, labels countdown.Labels, bell io.Writer) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = TitleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	bindings := func() []key.Binding { return []key.Binding{addKey, editKey, deleteKey, toggleKey} }
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	if labels == nil {
		labels = countdown.Labels{}
	}
	m := Model{
		ctx:    ctx,
		board:  board,
		bridge: newBridge(),
		bell:   bell,
		list:   l,
		labels: labels,
		width:  80,
		height: 24,
	}
	m.list.SetSize(m.width-4, m.listHeight())
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd { return m.bridge.wait() }

func (m *Model) refresh() {
	tasks := m.board.Snapshot()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t, label: m.labels[t.ID]})
	}
	m.list.SetItems(items)

	done, total := m.board.Stats()
	m.list.Title = fmt.Sprintf("Todos   %s %d  %s %d",
		SuccessStyle.Render("✔"), done,
		PendingStyle.Render("•"), total-done)
}

func (m Model) selected() (domain.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	return it.task, ok
}

// run starts a board operation off the UI loop.
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, m.listHeight())
		return m, nil

	case boardMsg:
		return m.onEvent(service.Event(msg))

	case labelsMsg:
		m.labels = countdown.Labels(msg)
		m.refresh()
		return m, nil

	case promptRequestMsg:
		m.openPrompt(msg)
		return m, tea.Batch(textinput.Blink, m.bridge.wait())

	case confirmRequestMsg:
		m.mode = modeConfirm
		m.confirm = &msg
		return m, m.bridge.wait()

	case opDoneMsg:
		switch {
		case msg.err == nil:
			m.status = ""
		case errors.Is(msg.err, service.ErrPromptCancelled), errors.Is(msg.err, service.ErrDeleteDeclined):
			m.status = ""
		default:
			m.status = msg.op + ": " + msg.err.Error()
		}
		return m, nil

	case bannerExpiredMsg:
		if msg.seq == m.bannerSeq {
			m.banner = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) onEvent(ev service.Event) (tea.Model, tea.Cmd) {
	if ev.ChangesCollection() {
		m.refresh()
	}
	switch ev.Kind {
	case service.EventCompleted:
		m.bannerSeq++
		seq := m.bannerSeq
		m.banner = "🎉 " + ev.Task.Text + " done!"
		if m.bell != nil {
			fmt.Fprint(m.bell, "\a")
		}
		return m, tea.Tick(bannerFor, func(time.Time) tea.Msg { return bannerExpiredMsg{seq: seq} })
	case service.EventError:
		if ev.Err != nil {
			m.status = ev.Err.Error()
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case " ":
		if t, ok := m.selected(); ok {
			return m, m.run("toggle", func(ctx context.Context) error {
				_, err := m.board.Toggle(ctx, t.ID)
				return err
			})
		}
		return m, nil
	case "a":
		return m, m.run("add", func(ctx context.Context) error {
			_, err := m.board.Add(ctx, m.bridge)
			return err
		})
	case "e":
		if t, ok := m.selected(); ok {
			return m, m.run("edit", func(ctx context.Context) error {
				_, err := m.board.Edit(ctx, t.ID, m.bridge)
				return err
			})
		}
		return m, nil
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.run("delete", func(ctx context.Context) error {
				return m.board.Delete(ctx, t.ID, m.bridge)
			})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) openPrompt(req promptRequestMsg) {
	m.mode = modePrompt
	m.prompt = &req
	m.inputs = make([]textinput.Model, len(req.spec.Fields))
	for i, f := range req.spec.Fields {
		ti := textinput.New()
		ti.Prompt = f.Label + ": "
		ti.CharLimit = 200
		ti.SetValue(f.Value)
		if f.Type == "datetime-local" {
			ti.Placeholder = "YYYY-MM-DDTHH:MM"
			ti.CharLimit = 19
		}
		m.inputs[i] = ti
	}
	m.focus = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

func (m *Model) closePrompt(values []string, ok bool) {
	m.prompt.reply <- promptReply{values: values, ok: ok}
	m.prompt = nil
	m.inputs = nil
	m.mode = modeList
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.closePrompt(nil, false)
		return m, nil
	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		values := make([]string, len(m.inputs))
		for i, in := range m.inputs {
			values[i] = in.Value()
		}
		m.closePrompt(values, true)
		return m, nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[i].Focus()
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var ok bool
	switch msg.String() {
	case "y", "Y", "enter":
		ok = true
	case "n", "N", "esc", "ctrl+c":
	default:
		return m, nil
	}
	m.confirm.reply <- ok
	m.confirm = nil
	m.mode = modeList
	return m, nil
}

func (m Model) listHeight() int {
	h := m.height - 8
	if m.mode != modeList {
		h -= 5
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) View() string {
	done, total := m.board.Stats()
	var b strings.Builder
	b.WriteString(ProgressBar(done, total, 28))
	b.WriteString("\n")
	b.WriteString(QuoteStyle.Render("“" + m.board.Quote() + "”"))
	b.WriteString("\n\n")
	b.WriteString(m.list.View())

	switch m.mode {
	case modePrompt:
		lines := []string{TitleStyle.Render(m.prompt.spec.Title)}
		for _, in := range m.inputs {
			lines = append(lines, in.View())
		}
		lines = append(lines, helpStyle.Render("enter next/save • tab switch • esc cancel"))
		b.WriteString("\n" + Panel(strings.Join(lines, "\n")))
	case modeConfirm:
		lines := []string{
			ErrorStyle.Render(m.confirm.spec.Title),
			m.confirm.spec.Text,
			helpStyle.Render("y delete • n keep"),
		}
		b.WriteString("\n" + Panel(strings.Join(lines, "\n")))
	}

	if m.banner != "" {
		b.WriteString("\n" + bannerStyle.Render(m.banner))
	}
	if m.status != "" {
		b.WriteString("\n" + ErrorStyle.Render("✖ "+m.status))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}
