package model

import "slices"

// ReminderPatch is a partial update. Nil fields are left unchanged.
// CompletedAtISO pointing at an empty string clears the completion stamp.
type ReminderPatch struct {
	Title          *string
	Note           *string
	DueEpoch       *int64
	DueISO         *string
	DueLabel       *string
	Status         *Status
	Countdown      *string
	CompletedAtISO *string
	Attachments    []Attachment
	Activity       []ActivityEntry
}

// Empty reports whether the patch changes nothing.
func (p ReminderPatch) Empty() bool {
	return p.Title == nil && p.Note == nil &&
		p.DueEpoch == nil && p.DueISO == nil && p.DueLabel == nil &&
		p.Status == nil && p.Countdown == nil && p.CompletedAtISO == nil &&
		p.Attachments == nil && p.Activity == nil
}

// Apply returns r with the patch applied.
func (p ReminderPatch) Apply(r Reminder) Reminder {
	out := r.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Note != nil {
		out.Note = *p.Note
	}
	if p.DueEpoch != nil {
		out.DueEpoch = *p.DueEpoch
	}
	if p.DueISO != nil {
		out.DueISO = *p.DueISO
	}
	if p.DueLabel != nil {
		out.DueLabel = *p.DueLabel
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Countdown != nil {
		out.Countdown = *p.Countdown
	}
	if p.CompletedAtISO != nil {
		out.CompletedAtISO = *p.CompletedAtISO
	}
	if p.Attachments != nil {
		out.Attachments = slices.Clone(p.Attachments)
	}
	if p.Activity != nil {
		out.Activity = slices.Clone(p.Activity)
	}
	return out
}

// Diff builds the patch that turns before into after.
func Diff(before, after Reminder) ReminderPatch {
	var p ReminderPatch
	if before.Title != after.Title {
		p.Title = &after.Title
	}
	if before.Note != after.Note {
		p.Note = &after.Note
	}
	if before.DueEpoch != after.DueEpoch {
		p.DueEpoch = &after.DueEpoch
	}
	if before.DueISO != after.DueISO {
		p.DueISO = &after.DueISO
	}
	if before.DueLabel != after.DueLabel {
		p.DueLabel = &after.DueLabel
	}
	if before.Status != after.Status {
		p.Status = &after.Status
	}
	if before.Countdown != after.Countdown {
		p.Countdown = &after.Countdown
	}
	if before.CompletedAtISO != after.CompletedAtISO {
		p.CompletedAtISO = &after.CompletedAtISO
	}
	if !slices.Equal(before.Attachments, after.Attachments) {
		p.Attachments = nonNil(after.Attachments)
	}
	if !slices.Equal(before.Activity, after.Activity) {
		p.Activity = nonNil(after.Activity)
	}
	return p
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
