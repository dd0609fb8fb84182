package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmTokens(t *testing.T) {
	tokens := NewConfirmTokens("test-secret", time.Minute)

	tok, exp, err := tokens.Issue("task-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	assert.NoError(t, tokens.Verify(tok, "task-1"))
	assert.ErrorIs(t, tokens.Verify(tok, "task-2"), ErrBadConfirmToken, "bound to one task")
	assert.ErrorIs(t, tokens.Verify("", "task-1"), ErrBadConfirmToken)
	assert.ErrorIs(t, tokens.Verify(tok+"x", "task-1"), ErrBadConfirmToken)

	other := NewConfirmTokens("other-secret", time.Minute)
	assert.ErrorIs(t, other.Verify(tok, "task-1"), ErrBadConfirmToken)
}

func TestConfirmTokensExpire(t *testing.T) {
	tokens := NewConfirmTokens("test-secret", time.Minute)
	issued := time.Now()
	tokens.now = func() time.Time { return issued }

	tok, _, err := tokens.Issue("task-1")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	assert.ErrorIs(t, tokens.Verify(tok, "task-1"), ErrBadConfirmToken)
}

func TestConfirmTokensConfirmer(t *testing.T) {
	tokens := NewConfirmTokens("", 0)
	tok, _, err := tokens.Issue("task-1")
	require.NoError(t, err)

	ok, err := tokens.Confirmer(tok).Confirm(context.Background(), ConfirmSpec{TaskID: "task-1"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tokens.Confirmer("garbage").Confirm(context.Background(), ConfirmSpec{TaskID: "task-1"})
	require.NoError(t, err)
	assert.False(t, ok)
}
