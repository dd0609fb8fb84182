// Package cli is the todo command line: one-shot board operations plus the
// interactive terminal board.
package cli

import (
	"context"
	"fmt"
	"io"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

type app struct {
	configPath string
	verbose    bool

	cfg   *config.Config
	store repository.TaskStore
	board *service.Board
}

// open loads config, connects the store and loads the board.
func (a *app) open(ctx context.Context, errOut io.Writer) error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	logger.InitWriter(errOut, level, "pretty")

	path := a.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	board := service.NewBoard(store, service.WithRemoteTimeout(cfg.RemoteTimeout()))
	if err := board.Load(ctx); err != nil {
		store.Close()
		return err
	}

	a.cfg, a.store, a.board = cfg, store, board
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

func newRoot() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "Tasks with deadlines, live countdowns and a little celebration",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}
			return a.open(cmd.Context(), cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML config file (default $TODO_CONFIG or ./todo.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.lsCmd(),
		a.addCmd(),
		a.doneCmd(),
		a.editCmd(),
		a.rmCmd(),
		a.exportCmd(),
		a.tuiCmd(),
		a.seedCmd(),
	)
	return root, a
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, a := newRoot()
	defer a.close()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fail(stderr, err.Error())
		return 1
	}
	return 0
}
