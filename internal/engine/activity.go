package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/timemath"
)

// Activity labels written by the lifecycle operations.
const (
	activityCreated     = "Reminder created"
	activityCompleted   = "Marked complete"
	activityReopened    = "Marked active"
	activityRescheduled = "Schedule updated"
)

func newActivity(at, now time.Time, label string) model.ActivityEntry {
	return model.ActivityEntry{
		ID:        "act-" + uuid.NewString()[:8],
		Label:     label,
		Timestamp: timemath.FormatActivityTimestamp(at, now),
	}
}

// prependActivity adds an entry at the head and applies the activity limit.
func (e *Engine) prependActivity(r *model.Reminder, now time.Time, label string) {
	entries := make([]model.ActivityEntry, 0, len(r.Activity)+1)
	entries = append(entries, newActivity(now, now, label))
	entries = append(entries, r.Activity...)
	if e.activityLimit > 0 && len(entries) > e.activityLimit {
		entries = entries[:e.activityLimit]
	}
	r.Activity = entries
}

// SnoozeActivityLabel renders "Snoozed +2d", "Snoozed +3h", "Snoozed +45m",
// or plain "Snoozed" for non-positive minutes.
func SnoozeActivityLabel(minutes int) string {
	switch {
	case minutes <= 0:
		return "Snoozed"
	case minutes%1440 == 0:
		return fmt.Sprintf("Snoozed +%dd", minutes/1440)
	case minutes%60 == 0:
		return fmt.Sprintf("Snoozed +%dh", minutes/60)
	default:
		return fmt.Sprintf("Snoozed +%dm", minutes)
	}
}
