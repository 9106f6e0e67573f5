// Package status derives a reminder's lifecycle status from its due instant.
package status

import (
	"time"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/timemath"
)

// OverdueGrace is how far past due a reminder may be before it counts as
// overdue.
const OverdueGrace = 60 * time.Second

// Derive returns overdue, today or upcoming for dueAt relative to
// reference. It never returns completed; that status is owned by the
// completion lifecycle.
func Derive(dueAt, reference time.Time) model.Status {
	if dueAt.Sub(reference) < -OverdueGrace {
		return model.StatusOverdue
	}
	if timemath.IsSameDay(reference, dueAt) {
		return model.StatusToday
	}
	return model.StatusUpcoming
}

// Of returns the effective status of r at reference: completed records stay
// completed, everything else is derived from the due instant.
func Of(r model.Reminder, reference time.Time) model.Status {
	if r.IsCompleted() {
		return model.StatusCompleted
	}
	return Derive(r.Due(), reference)
}
