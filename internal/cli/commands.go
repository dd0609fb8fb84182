package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"todo_webapp/internal/countdown"
	"todo_webapp/internal/export"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"
	"todo_webapp/internal/tui"

	"github.com/spf13/cobra"
)

func (a *app) lsCmd() *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List tasks with the time left",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBoard(cmd.OutOrStdout(), a.board, a.cfg.Location(), group)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&group, "group", "g", false, "group into pending and done")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var text, deadline string
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				text = strings.Join(args, " ")
			}
			task, err := a.board.Add(cmd.Context(), service.Answer(text, deadline))
			if err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), fmt.Sprintf("added %q (%s)", task.Text, task.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "task name")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline, e.g. 2025-01-31T18:00")
	return cmd
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id|#>",
		Short: "Toggle a task between done and pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolve(a.board, args[0])
			if err != nil {
				return err
			}
			t, err = a.board.Toggle(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !t.Completed {
				ok(out, fmt.Sprintf("%q is pending again", t.Text))
				return nil
			}
			ok(out, fmt.Sprintf("🎉 %q done!", t.Text))
			fmt.Fprintln(out, tui.QuoteStyle.Render("“"+a.board.Quote()+"”"))
			fmt.Fprint(cmd.ErrOrStderr(), "\a")
			return nil
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	var text, deadline string
	cmd := &cobra.Command{
		Use:   "edit <id|#>",
		Short: "Change the name and/or deadline of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolve(a.board, args[0])
			if err != nil {
				return err
			}
			// unset flags keep the current values shown in the dialog
			keep := service.PromptFunc(func(_ context.Context, spec service.PromptSpec) ([]string, bool, error) {
				values := make([]string, len(spec.Fields))
				for i, f := range spec.Fields {
					values[i] = f.Value
				}
				if text != "" {
					values[0] = text
				}
				if deadline != "" {
					values[1] = deadline
				}
				return values, true, nil
			})
			t, err = a.board.Edit(cmd.Context(), t.ID, keep)
			if err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), fmt.Sprintf("updated %q, due %s", t.Text, t.Deadline))
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "new task name")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "new deadline")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id|#>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolve(a.board, args[0])
			if err != nil {
				return err
			}
			confirm := service.Confirmed(true)
			if !yes {
				in := bufio.NewReader(cmd.InOrStdin())
				confirm = service.ConfirmFunc(func(_ context.Context, spec service.ConfirmSpec) (bool, error) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s [y/N] ", spec.Title, spec.Text)
					answer, err := in.ReadString('\n')
					if err != nil && answer == "" {
						return false, nil
					}
					answer = strings.ToLower(strings.TrimSpace(answer))
					return answer == "y" || answer == "yes", nil
				})
			}

			err = a.board.Delete(cmd.Context(), t.ID, confirm)
			if errors.Is(err, service.ErrDeleteDeclined) {
				fmt.Fprintln(cmd.OutOrStdout(), tui.MutedStyle.Render("kept"))
				return nil
			}
			if err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), fmt.Sprintf("deleted %q", t.Text))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as json, csv or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := export.New(a.cfg.Location()).Render(a.board.Snapshot(), format)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			ok(cmd.ErrOrStderr(), "wrote "+out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "one of "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

// runTUI is swapped in tests, which have no terminal.
var runTUI = tui.Run

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive board with live countdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			// the board owns the terminal from here on
			logger.Discard()

			engine := countdown.NewEngine(a.board, a.cfg.CountdownInterval(), countdown.WithLocation(a.cfg.Location()))
			stop := a.board.Subscribe(func(ev service.Event) {
				if ev.ChangesCollection() {
					engine.Rebuild()
				}
			})
			defer stop()
			engine.Tick(time.Now())
			go engine.Run(ctx)

			return runTUI(ctx, a.board, engine)
		},
	}
}
