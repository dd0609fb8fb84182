package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeadline(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	want := time.Date(2030, 1, 2, 15, 4, 0, 0, loc)

	for _, in := range []string{
		"2030-01-02T15:04",
		"2030-01-02T15:04:00",
		"2030-01-02 15:04",
		" 2030-01-02 15:04:00 ",
		"2030-01-02T15:04:00+02:00",
	} {
		got, err := ParseDeadline(in, loc)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
	}

	_, err := ParseDeadline("tomorrow", loc)
	assert.Error(t, err)
}

func TestDraftValidate(t *testing.T) {
	assert.ErrorIs(t, Draft{Text: " ", Deadline: "2030-01-02T15:04"}.Validate(), ErrEmptyText)
	assert.ErrorIs(t, Draft{Text: "x", Deadline: "\t"}.Validate(), ErrMissingDeadline)
	assert.NoError(t, Draft{Text: " x ", Deadline: "2030-01-02T15:04"}.Validate())
}
