package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/countdown"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"
	"todo_webapp/internal/tui"
)

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, tui.SuccessStyle.Render("✔ "+msg))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, tui.ErrorStyle.Render("✖ "+msg))
}

func line(i int, t domain.Task, label string) string {
	box := tui.BoxUnchecked
	if t.Completed {
		box = tui.BoxChecked
	}
	return fmt.Sprintf("%2d. %s %s  %s  %s  %s", i+1, box, t.Text,
		tui.MutedStyle.Render(t.Deadline),
		tui.PendingStyle.Render(label),
		tui.MutedStyle.Render(t.ID))
}

// printBoard writes the list, optionally grouped into pending and done.
func printBoard(w io.Writer, board *service.Board, loc *time.Location, group bool) {
	tasks := board.Snapshot()
	done, total := board.Stats()
	now := time.Now()

	header := fmt.Sprintf("%s  %s", tui.TitleStyle.Render("Todos"), tui.ProgressBar(done, total, 20))
	lines := []string{header, tui.QuoteStyle.Render("“" + board.Quote() + "”"), ""}
	if len(tasks) == 0 {
		lines = append(lines, tui.MutedStyle.Render("nothing to do"))
	}

	render := func(filter func(domain.Task) bool) {
		for i, t := range tasks {
			if filter(t) {
				lines = append(lines, line(i, t, countdown.LabelFor(t, now, loc).String()))
			}
		}
	}
	if group && len(tasks) > 0 {
		lines = append(lines, tui.PendingStyle.Render("Pending"))
		render(func(t domain.Task) bool { return !t.Completed })
		lines = append(lines, "", tui.SuccessStyle.Render("Done"))
		render(func(t domain.Task) bool { return t.Completed })
	} else {
		render(func(domain.Task) bool { return true })
	}
	fmt.Fprintln(w, tui.Panel(strings.Join(lines, "\n")))
}

// resolve accepts a task id or a 1-based position as shown by ls.
func resolve(board *service.Board, ref string) (domain.Task, error) {
	if t, found := board.Get(ref); found {
		return t, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		tasks := board.Snapshot()
		if n >= 1 && n <= len(tasks) {
			return tasks[n-1], nil
		}
	}
	return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
}
