package db

import (
	"context"
	"path/filepath"
	"testing"

	"todo_webapp/internal/config"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStoreSQLite(t *testing.T) {
	logger.Discard()
	cfg := &config.Config{
		StoreBackend: config.BackendSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "todo.db"),
		Collection:   "tasks",
	}

	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Create(context.Background(), domain.Draft{Text: "x", Deadline: "2030-01-01T00:00"})
	require.NoError(t, err)
	tasks, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreBackend: "etcd", Collection: "tasks"})
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestRedisEmptyAddr(t *testing.T) {
	assert.Nil(t, Redis("", "", 0))
}
