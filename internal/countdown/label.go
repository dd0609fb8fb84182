// Package countdown turns task deadlines into "time remaining" labels and
// republishes them on a fixed interval.
package countdown

import (
	"fmt"
	"time"

	"todo_webapp/internal/domain"
)

// Expired is the label shown once a deadline has passed.
const Expired = "Time's up!"

// Label is the remaining time split into whole hours, minutes and seconds.
type Label struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Expired bool  `json:"expired"`
}

func (l Label) String() string {
	if l.Expired {
		return Expired
	}
	return fmt.Sprintf("%dh %dm %ds", l.Hours, l.Minutes, l.Seconds)
}

// Total is the label length in seconds; zero when expired.
func (l Label) Total() int64 {
	if l.Expired {
		return 0
	}
	return l.Hours*3600 + l.Minutes*60 + l.Seconds
}

// RemainingLabel computes the label for deadline as seen at now.
// Sub-second remainders are dropped.
func RemainingLabel(deadline, now time.Time) Label {
	delta := int64(deadline.Sub(now) / time.Second)
	if delta <= 0 {
		return Label{Expired: true}
	}
	return Label{
		Hours:   delta / 3600,
		Minutes: delta % 3600 / 60,
		Seconds: delta % 60,
	}
}

// LabelFor parses the task deadline in loc. An unreadable deadline counts as expired.
func LabelFor(t domain.Task, now time.Time, loc *time.Location) Label {
	deadline, err := domain.ParseDeadline(t.Deadline, loc)
	if err != nil {
		return Label{Expired: true}
	}
	return RemainingLabel(deadline, now)
}
