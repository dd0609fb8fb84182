package countdown

import (
	"testing"
	"time"

	"todo_webapp/internal/domain"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func TestRemainingLabel(t *testing.T) {
	cases := []struct {
		name     string
		offset   time.Duration
		want     string
		expired  bool
		wantSecs int64
	}{
		{"one of each", 3661 * time.Second, "1h 1m 1s", false, 3661},
		{"past", -5 * time.Second, Expired, true, 0},
		{"exactly now", 0, Expired, true, 0},
		{"sub second", 900 * time.Millisecond, Expired, true, 0},
		{"rounds down", 59*time.Second + 999*time.Millisecond, "0h 0m 59s", false, 59},
		{"more than a day", 49*time.Hour + 30*time.Second, "49h 0m 30s", false, 49*3600 + 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := RemainingLabel(base.Add(tc.offset), base)
			assert.Equal(t, tc.want, l.String())
			assert.Equal(t, tc.expired, l.Expired)
			assert.Equal(t, tc.wantSecs, l.Total())
		})
	}
}

func TestRemainingLabelComponents(t *testing.T) {
	for secs := int64(1); secs < 200000; secs += 997 {
		l := RemainingLabel(base.Add(time.Duration(secs)*time.Second), base)
		assert.False(t, l.Expired)
		assert.GreaterOrEqual(t, l.Hours, int64(0))
		assert.True(t, l.Minutes >= 0 && l.Minutes < 60)
		assert.True(t, l.Seconds >= 0 && l.Seconds < 60)
		assert.Equal(t, secs, l.Total())
	}
}

func TestRemainingLabelIsPure(t *testing.T) {
	deadline := base.Add(90 * time.Minute)
	assert.Equal(t, RemainingLabel(deadline, base), RemainingLabel(deadline, base))
}

func TestLabelFor(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, jakarta)

	task := domain.Task{ID: "a", Text: "report", Deadline: "2025-05-01T11:01"}
	assert.Equal(t, "1h 1m 0s", LabelFor(task, now, jakarta).String())

	task.Deadline = "not a date"
	assert.Equal(t, Expired, LabelFor(task, now, jakarta).String())
}
