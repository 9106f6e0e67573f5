package engine

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/status"
	"github.com/nhle/followup/internal/timemath"
)

// Project derives the display view of r against now. Stored labels are
// ignored; status, due label and countdown are always recomputed. A record
// without a readable due instant is shown at defaultDueTime.
func Project(r model.Reminder, now time.Time, defaultDueTime string) model.ViewModel {
	loc := now.Location()
	due, ok := dueOf(r, loc)
	if !ok {
		due = timemath.BuildDueDate("", "", now, defaultDueTime)
	}

	vm := model.ViewModel{
		ID:             r.ID,
		Title:          r.Title,
		Note:           r.Note,
		MediaType:      r.MediaType,
		Glyph:          r.MediaType.Glyph(),
		Source:         r.Source,
		SourceLabel:    r.Source.Label(),
		DueLabel:       timemath.FormatDueLabel(due, now),
		Due:            due,
		CreatedAtLabel: r.CreatedAtLabel,
		Attachments:    slices.Clone(r.Attachments),
		Activity:       slices.Clone(r.Activity),
	}

	if r.IsCompleted() {
		vm.Status = model.StatusCompleted
		completedAt, ok := timemath.ParseDueDate(r.CompletedAtISO, loc)
		if !ok {
			completedAt = now
		} else {
			vm.CompletedAt = &completedAt
		}
		vm.Countdown = timemath.FormatCompletionCountdown(completedAt, now)
		return vm
	}

	vm.Status = status.Derive(due, now)
	vm.Countdown = timemath.FormatCountdown(due, now)
	return vm
}

// Filter selects projected reminders. Zero fields match everything.
type Filter struct {
	Status    model.Status
	MediaType model.MediaType

	// Query is matched case-insensitively against title and note.
	Query string
}

// Match reports whether vm passes the filter.
func (f Filter) Match(vm model.ViewModel) bool {
	if f.Status != "" && vm.Status != f.Status {
		return false
	}
	if f.MediaType != "" && vm.MediaType != f.MediaType {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(vm.Title), q) ||
		strings.Contains(strings.ToLower(vm.Note), q)
}

// Views projects the collection against now and returns the entries
// passing f, in collection order.
func (e *Engine) Views(now time.Time, f Filter) []model.ViewModel {
	def := e.settings.DefaultDueTime()
	var out []model.ViewModel
	for _, r := range e.reminders {
		vm := Project(r, now, def)
		if f.Match(vm) {
			out = append(out, vm)
		}
	}
	return out
}

// Project projects r against now with the engine's default due time.
func (e *Engine) Project(r model.Reminder, now time.Time) model.ViewModel {
	return Project(r, now, e.settings.DefaultDueTime())
}

// UpcomingSoon returns up to n open reminders due today or later, soonest
// first.
func (e *Engine) UpcomingSoon(now time.Time, n int) []model.ViewModel {
	def := e.settings.DefaultDueTime()
	var out []model.ViewModel
	for _, r := range e.reminders {
		vm := Project(r, now, def)
		if vm.Status == model.StatusToday || vm.Status == model.StatusUpcoming {
			out = append(out, vm)
		}
	}
	slices.SortStableFunc(out, func(a, b model.ViewModel) int {
		return a.Due.Compare(b.Due)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Completed returns completed reminders, most recently completed first.
func (e *Engine) Completed(now time.Time) []model.ViewModel {
	def := e.settings.DefaultDueTime()
	var out []model.ViewModel
	for _, r := range e.reminders {
		if r.IsCompleted() {
			out = append(out, Project(r, now, def))
		}
	}
	slices.SortStableFunc(out, func(a, b model.ViewModel) int {
		return cmp.Compare(completedMillis(b), completedMillis(a))
	})
	return out
}

func completedMillis(vm model.ViewModel) int64 {
	if vm.CompletedAt == nil {
		return 0
	}
	return vm.CompletedAt.UnixMilli()
}
