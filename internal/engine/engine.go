// Package engine owns the reminder collection and every lifecycle
// mutation over it: create, remove, complete, undo, snooze and reschedule.
//
// An Engine is not safe for concurrent use. Callers serialize access; the
// persisted session in internal/sync does so with its own mutex.
package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/followup/internal/completionlog"
	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/settings"
	"github.com/nhle/followup/internal/status"
	"github.com/nhle/followup/internal/timemath"
)

// MaxSnoozeMinutes caps a single snooze at 366 days.
const MaxSnoozeMinutes = 366 * 24 * 60

// Clock returns the current time.
type Clock func() time.Time

// Engine holds the reminder collection, the active selection and the
// derived completion log.
type Engine struct {
	now           Clock
	settings      *settings.Store
	activityLimit int

	reminders []model.Reminder
	activeID  string
	log       completionlog.Log
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.now = c }
}

// WithSettings shares a settings store with the engine.
func WithSettings(s *settings.Store) Option {
	return func(e *Engine) { e.settings = s }
}

// WithActivityLimit keeps only the newest n activity entries per
// reminder. n <= 0 leaves the log unbounded.
func WithActivityLimit(n int) Option {
	return func(e *Engine) { e.activityLimit = max(n, 0) }
}

// New returns an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
		log: completionlog.Log{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.settings == nil {
		e.settings = settings.NewDefault()
	}
	return e
}

// Settings returns the settings store the engine reads defaults from.
func (e *Engine) Settings() *settings.Store {
	return e.settings
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// CreateInput describes a new reminder. Everything is optional.
type CreateInput struct {
	Title     string
	Note      string
	DueDate   string // "YYYY-MM-DD"
	DueTime   string // "HH:MM"
	MediaType model.MediaType
	Source    model.Source

	// Attachments are carried over by share intake; manual creates leave
	// this empty.
	Attachments []model.Attachment
}

// ScheduleInput is the new schedule for Reschedule.
type ScheduleInput struct {
	DueDate string
	DueTime string
}

// Create builds a reminder from in, prepends it to the collection and
// makes it active.
func (e *Engine) Create(in CreateInput) model.Reminder {
	now := e.now()
	source := model.ParseSource(string(in.Source))
	dueAt := timemath.BuildDueDate(in.DueDate, in.DueTime, now, e.settings.DefaultDueTime())

	r := model.Reminder{
		ID:             uuid.NewString(),
		Title:          orDefault(in.Title, model.DefaultTitle),
		Note:           orDefault(in.Note, model.DefaultNote),
		MediaType:      model.ParseMediaType(string(in.MediaType)),
		Source:         source,
		CreatedAtLabel: timemath.FormatCreatedAtLabel(source == model.SourceShare, now, now),
		Attachments:    append([]model.Attachment{}, in.Attachments...),
		Activity:       []model.ActivityEntry{newActivity(now, now, activityCreated)},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	setDue(&r, dueAt, now)

	e.reminders = append([]model.Reminder{r}, e.reminders...)
	e.activeID = r.ID
	e.refreshLog(now)
	return r.Clone()
}

// Remove deletes the reminder with id. When the removed reminder was
// active, the first remaining reminder becomes active. nextActiveID is the
// first remaining reminder's ID, or empty when none is left.
func (e *Engine) Remove(id string) (nextActiveID string, removed bool) {
	i := e.index(id)
	if i < 0 {
		return "", false
	}
	e.reminders = slices.Delete(e.reminders, i, i+1)
	if len(e.reminders) > 0 {
		nextActiveID = e.reminders[0].ID
	}
	if e.activeID == id {
		e.activeID = nextActiveID
	}
	e.refreshLog(e.now())
	return nextActiveID, true
}

// Complete marks the reminder completed. The due fields are kept so the
// completion can be undone.
func (e *Engine) Complete(id string) (model.Reminder, bool) {
	return e.mutate(id, func(r *model.Reminder, now time.Time) bool {
		if r.IsCompleted() {
			return false
		}
		r.Status = model.StatusCompleted
		r.CompletedAtISO = timemath.FormatISO(now)
		r.Countdown = timemath.FormatCompletionCountdown(now, now)
		e.prependActivity(r, now, activityCompleted)
		return true
	})
}

// Undo returns a completed reminder to its derived status against now.
func (e *Engine) Undo(id string) (model.Reminder, bool) {
	return e.mutate(id, func(r *model.Reminder, now time.Time) bool {
		if !r.IsCompleted() {
			return false
		}
		dueAt, ok := dueOf(*r, now.Location())
		if !ok {
			dueAt = timemath.BuildDueDate("", "", now, e.settings.DefaultDueTime())
		}
		r.CompletedAtISO = ""
		setDue(r, dueAt, now)
		e.prependActivity(r, now, activityReopened)
		return true
	})
}

// Snooze pushes the reminder back by the first configured preset.
func (e *Engine) Snooze(id string) (model.Reminder, bool) {
	return e.SnoozeBy(id, e.settings.DefaultSnoozeMinutes())
}

// SnoozeBy pushes the reminder back by minutes, counted from its current
// due instant or from now, whichever is later. Completed reminders are not
// snoozed. Non-positive minutes leave the due instant at that base; minutes
// above MaxSnoozeMinutes are clamped.
func (e *Engine) SnoozeBy(id string, minutes int) (model.Reminder, bool) {
	return e.mutate(id, func(r *model.Reminder, now time.Time) bool {
		if r.IsCompleted() {
			return false
		}
		base, ok := dueOf(*r, now.Location())
		if !ok {
			base = timemath.BuildDueDate("", "", now, e.settings.DefaultDueTime())
		}
		if !base.After(now) {
			base = now
		}
		minutes = min(minutes, MaxSnoozeMinutes)
		offset := time.Duration(max(minutes, 0)) * time.Minute
		setDue(r, base.Add(offset), now)
		e.prependActivity(r, now, SnoozeActivityLabel(minutes))
		return true
	})
}

// Reschedule moves the reminder to the given date and time. A completed
// reminder stays completed and keeps its completion countdown.
func (e *Engine) Reschedule(id string, in ScheduleInput) (model.Reminder, bool) {
	return e.mutate(id, func(r *model.Reminder, now time.Time) bool {
		next := timemath.BuildDueDate(in.DueDate, in.DueTime, now, e.settings.DefaultDueTime())
		if r.IsCompleted() {
			r.DueEpoch = next.UnixMilli()
			r.DueISO = timemath.FormatISO(next)
			r.DueLabel = timemath.FormatDueLabel(next, now)
		} else {
			setDue(r, next, now)
		}
		e.prependActivity(r, now, activityRescheduled)
		return true
	})
}

// Get returns a copy of the reminder with id.
func (e *Engine) Get(id string) (model.Reminder, bool) {
	i := e.index(id)
	if i < 0 {
		return model.Reminder{}, false
	}
	return e.reminders[i].Clone(), true
}

// Index returns the position of id in the collection, or -1.
func (e *Engine) Index(id string) int {
	return e.index(id)
}

// Reminders returns a copy of the collection, newest first.
func (e *Engine) Reminders() []model.Reminder {
	out := make([]model.Reminder, len(e.reminders))
	for i, r := range e.reminders {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of reminders.
func (e *Engine) Len() int {
	return len(e.reminders)
}

// ActiveID returns the active reminder's ID, or empty.
func (e *Engine) ActiveID() string {
	return e.activeID
}

// SetActive selects id. Unknown IDs are ignored.
func (e *Engine) SetActive(id string) bool {
	if e.index(id) < 0 {
		return false
	}
	e.activeID = id
	return true
}

// CompletionLog returns a copy of the current completion log.
func (e *Engine) CompletionLog() completionlog.Log {
	out := make(completionlog.Log, len(e.log))
	for k, v := range e.log {
		out[k] = v
	}
	return out
}

// Load replaces the collection with normalized copies of records and
// selects the first one.
func (e *Engine) Load(records []model.Reminder) {
	e.Replace(records)
	e.activeID = ""
	if len(e.reminders) > 0 {
		e.activeID = e.reminders[0].ID
	}
}

// Replace swaps in normalized copies of records, keeping the active
// selection when it is still present.
func (e *Engine) Replace(records []model.Reminder) {
	now := e.now()
	def := e.settings.DefaultDueTime()
	next := make([]model.Reminder, 0, len(records))
	for _, r := range records {
		next = append(next, normalize(r, now, def))
	}
	e.reminders = next
	if e.index(e.activeID) < 0 {
		e.activeID = ""
		if len(next) > 0 {
			e.activeID = next[0].ID
		}
	}
	e.refreshLog(now)
}

// Restore puts r back into the collection. An existing record with the
// same ID is replaced in place; otherwise r is inserted at index, clamped
// to the collection bounds.
func (e *Engine) Restore(r model.Reminder, index int) {
	r = r.Clone()
	if i := e.index(r.ID); i >= 0 {
		e.reminders[i] = r
	} else {
		index = min(max(index, 0), len(e.reminders))
		e.reminders = slices.Insert(e.reminders, index, r)
	}
	if e.activeID == "" {
		e.activeID = r.ID
	}
	e.refreshLog(e.now())
}

// Discard drops id without the active-selection bookkeeping of Remove
// beyond clearing a dangling selection.
func (e *Engine) Discard(id string) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	e.reminders = slices.Delete(e.reminders, i, i+1)
	if e.activeID == id {
		e.activeID = ""
		if len(e.reminders) > 0 {
			e.activeID = e.reminders[0].ID
		}
	}
	e.refreshLog(e.now())
	return true
}

func (e *Engine) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(e.reminders, func(r model.Reminder) bool { return r.ID == id })
}

// mutate applies fn to the reminder with id using a single reading of the
// clock. fn reports whether it changed anything.
func (e *Engine) mutate(id string, fn func(r *model.Reminder, now time.Time) bool) (model.Reminder, bool) {
	i := e.index(id)
	if i < 0 {
		return model.Reminder{}, false
	}
	now := e.now()
	r := e.reminders[i].Clone()
	if !fn(&r, now) {
		return e.reminders[i].Clone(), false
	}
	r.UpdatedAt = now
	e.reminders[i] = r
	e.refreshLog(now)
	return r.Clone(), true
}

// refreshLog rebuilds the completion log in now's location and swaps it in
// only when the counts changed.
func (e *Engine) refreshLog(now time.Time) bool {
	next := completionlog.Build(e.reminders, now.Location())
	if completionlog.Equal(e.log, next) {
		return false
	}
	e.log = next
	return true
}

// setDue rewrites every due-derived field from dueAt against now.
func setDue(r *model.Reminder, dueAt, now time.Time) {
	r.DueEpoch = dueAt.UnixMilli()
	r.DueISO = timemath.FormatISO(dueAt)
	r.DueLabel = timemath.FormatDueLabel(dueAt, now)
	r.Status = status.Derive(dueAt, now)
	r.Countdown = timemath.FormatCountdown(dueAt, now)
}

// dueOf reads the due instant from DueEpoch, falling back to DueISO.
func dueOf(r model.Reminder, loc *time.Location) (time.Time, bool) {
	if r.DueEpoch > 0 {
		return time.UnixMilli(r.DueEpoch).In(loc), true
	}
	return timemath.ParseDueDate(r.DueISO, loc)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
