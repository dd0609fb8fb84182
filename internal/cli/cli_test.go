package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo_webapp/internal/config"
	"todo_webapp/internal/countdown"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempStore points the CLI at a fresh SQLite file.
func useTempStore(t *testing.T) {
	t.Helper()
	t.Setenv("TODO_CONFIG", "")
	t.Setenv("STORE_BACKEND", config.BackendSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "todo.db"))
	t.Setenv("TZ_NAME", "UTC")
}

func run(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestAddListDone(t *testing.T) {
	useTempStore(t)

	out, _, code := run(t, "", "add", "--deadline", "2999-01-01T10:00", "write", "tests")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `added "write tests"`)

	_, _, code = run(t, "", "add", "-t", "second", "-d", "2999-01-02T10:00")
	require.Equal(t, 0, code)

	out, _, code = run(t, "", "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "write tests")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "0/2")

	out, errOut, code := run(t, "", "done", "1")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"write tests" done!`)
	assert.Contains(t, errOut, "\a")

	out, _, _ = run(t, "", "ls", "--group")
	pending := strings.Index(out, "Pending")
	done := strings.Index(out, "Done")
	require.True(t, pending >= 0 && done > pending, out)
	assert.Greater(t, strings.Index(out, "write tests"), done)
	assert.Less(t, strings.Index(out, "second"), done)
}

func TestAddMissingDeadline(t *testing.T) {
	useTempStore(t)

	_, errOut, code := run(t, "", "add", "nothing due")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "deadline is missing")

	out, _, _ := run(t, "", "ls")
	assert.Contains(t, out, "nothing to do")
}

func TestEditKeepsUnsetFields(t *testing.T) {
	useTempStore(t)
	run(t, "", "add", "-t", "draft", "-d", "2999-01-01T10:00")

	out, errOut, code := run(t, "", "edit", "1", "--text", "final")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `updated "final", due 2999-01-01T10:00`)
}

func TestRemoveAsksFirst(t *testing.T) {
	useTempStore(t)
	run(t, "", "add", "-t", "doomed", "-d", "2999-01-01T10:00")

	out, _, code := run(t, "n\n", "rm", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Are you sure?")
	assert.Contains(t, out, "kept")

	out, _, code = run(t, "y\n", "rm", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `deleted "doomed"`)

	_, errOut, code := run(t, "", "rm", "--yes", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "task not found")
}

func TestExportJSON(t *testing.T) {
	useTempStore(t)
	run(t, "", "add", "-t", "report", "-d", "2999-01-01T10:00")

	out, _, code := run(t, "", "export", "--format", "json")
	require.Equal(t, 0, code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "report", rows[0]["text"])

	file := filepath.Join(t.TempDir(), "tasks.pdf")
	_, _, code = run(t, "", "export", "-f", "pdf", "-o", file)
	require.Equal(t, 0, code)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestSeed(t *testing.T) {
	useTempStore(t)
	file := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"text": "one", "deadline": "2999-01-01T10:00"},
		{"text": "two", "deadline": "2999-01-02 10:00", "completed": true}
	]`), 0o644))

	out, errOut, code := run(t, "", "seed", file)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "seeded 2 tasks")

	out, _, _ = run(t, "", "ls")
	assert.Contains(t, out, "1/2")
}

func TestBadConfig(t *testing.T) {
	useTempStore(t)
	t.Setenv("STORE_BACKEND", "etcd")

	_, errOut, code := run(t, "", "ls")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown STORE_BACKEND")
}

func TestTUIKeepsLogsOffTheTerminal(t *testing.T) {
	useTempStore(t)

	orig := runTUI
	t.Cleanup(func() { runTUI = orig })
	var tasks int
	runTUI = func(ctx context.Context, board *service.Board, engine *countdown.Engine) error {
		logger.Warn("remote store call failed", "error", "boom")
		tasks = len(board.Snapshot())
		return nil
	}

	_, _, code := run(t, "", "add", "-t", "one", "-d", "2999-01-01T10:00")
	require.Equal(t, 0, code)

	out, errOut, code := run(t, "", "-v", "tui")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, 1, tasks)
	assert.NotContains(t, out+errOut, "remote store call failed")
}
