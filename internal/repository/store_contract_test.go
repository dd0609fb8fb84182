package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"todo_webapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCollection returns a collection name unique to this run.
func testCollection() string {
	return fmt.Sprintf("tasks_test_%d", time.Now().UnixNano())
}

// runStoreContract exercises every TaskStore operation against a fresh, empty collection.
func runStoreContract(t *testing.T, store TaskStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	idA, err := store.Create(ctx, domain.Draft{Text: "write report", Deadline: "2025-05-01T10:00"})
	require.NoError(t, err)
	require.NotEmpty(t, idA)
	idB, err := store.Create(ctx, domain.Draft{Text: "buy milk", Deadline: "2025-05-02T08:30"})
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)

	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.Task{ID: idA, Text: "write report", Deadline: "2025-05-01T10:00"}, all[0])
	assert.Equal(t, idB, all[1].ID)

	require.NoError(t, store.SetCompleted(ctx, idA, true))
	require.NoError(t, store.SetFields(ctx, idB, "buy oat milk", "2025-05-03T09:00"))
	// identical values still match the record
	require.NoError(t, store.SetFields(ctx, idB, "buy oat milk", "2025-05-03T09:00"))

	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Completed)
	assert.Equal(t, "write report", all[0].Text, "partial update keeps other fields")
	assert.Equal(t, domain.Task{ID: idB, Text: "buy oat milk", Deadline: "2025-05-03T09:00"}, all[1])

	require.NoError(t, store.Remove(ctx, idA))
	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, idB, all[0].ID)

	err = store.Remove(ctx, idA)
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound), "got %v", err)
	err = store.SetCompleted(ctx, idA, true)
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound), "got %v", err)

	require.NoError(t, store.Remove(ctx, idB))
}

func TestCheckCollection(t *testing.T) {
	assert.NoError(t, checkCollection("tasks"))
	assert.NoError(t, checkCollection("tasks_2025"))
	assert.Error(t, checkCollection(""))
	assert.Error(t, checkCollection("tasks; DROP TABLE x"))
	assert.Error(t, checkCollection("9tasks"))
}
