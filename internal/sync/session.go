// Package sync runs the persisted variant of the reminder engine: every
// mutation is applied locally first, tagged pending, written through the
// store, then confirmed or rolled back. The store's subscription feed is
// the authoritative list and is reconciled into the engine.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/followup/internal/completionlog"
	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/logging"
	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/store"
)

// RecordState tags a record as confirmed by the store or awaiting a write.
type RecordState int

const (
	Confirmed RecordState = iota
	Pending
)

// Listener receives the reminder collection after every change.
type Listener func(reminders []model.Reminder)

// Session binds an engine to a store for one owner. It is safe for
// concurrent use; store I/O never runs under the session lock.
type Session struct {
	engine *engine.Engine
	store  store.Store
	owner  string
	log    logrus.FieldLogger

	mu          gosync.Mutex
	pending     map[string]int
	listeners   []Listener
	unsubscribe func()
	running     bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = logging.Component(l, "sync") }
}

// NewSession creates a session for owner. Call Start before use.
func NewSession(eng *engine.Engine, st store.Store, owner string, opts ...Option) *Session {
	s := &Session{
		engine:  eng,
		store:   st,
		owner:   owner,
		log:     logging.Component(nil, "sync"),
		pending: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Owner returns the owner key the session is bound to.
func (s *Session) Owner() string {
	return s.owner
}

// Start loads the owner's settings and reminders and subscribes to store
// changes. Starting a running session is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.engine.Settings().Load(ctx, s.store, s.owner); err != nil {
		return err
	}

	list, err := s.store.ListReminders(ctx, s.owner, store.ReminderFilter{})
	if err != nil {
		return fmt.Errorf("loading reminders for %s: %w", s.owner, err)
	}

	s.mu.Lock()
	s.engine.Load(list)
	s.unsubscribe = s.store.Subscribe(s.owner, s.onStoreChange)
	s.running = true
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"owner":     s.owner,
		"reminders": len(list),
	}).Info("session started")
	s.emit()
	return nil
}

// Stop drops the store subscription. The in-memory collection is kept.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.running = false
	s.log.WithField("owner", s.owner).Info("session stopped")
}

// OnChange registers fn to run after every change to the collection.
func (s *Session) OnChange(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) onStoreChange(list []model.Reminder, err error) {
	if err != nil {
		s.log.WithError(err).Warn("subscription delivered an error")
		return
	}
	s.Reconcile(list)
}

// Reconcile folds the authoritative list into the engine. Confirmed
// records take the store's version; pending records keep their local
// version, and a pending delete stays deleted.
func (s *Session) Reconcile(records []model.Reminder) {
	s.mu.Lock()
	merged := make([]model.Reminder, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		seen[r.ID] = true
		if s.pending[r.ID] == 0 {
			merged = append(merged, r)
			continue
		}
		if local, ok := s.engine.Get(r.ID); ok {
			merged = append(merged, local)
		}
	}
	for _, local := range s.engine.Reminders() {
		if s.pending[local.ID] > 0 && !seen[local.ID] {
			merged = append(merged, local)
		}
	}
	s.engine.Replace(merged)
	s.mu.Unlock()

	s.emit()
}

// Create adds a reminder and writes it through. On failure the reminder
// is removed again and the error returned.
func (s *Session) Create(ctx context.Context, in engine.CreateInput) (model.Reminder, error) {
	s.mu.Lock()
	r := s.engine.Create(in)
	s.pending[r.ID]++
	s.mu.Unlock()
	s.emit()

	_, err := s.store.CreateReminder(ctx, s.owner, r)

	s.mu.Lock()
	s.settle(r.ID)
	if err != nil {
		s.engine.Discard(r.ID)
	}
	s.mu.Unlock()
	s.emit()

	if err != nil {
		s.log.WithError(err).WithField("id", r.ID).Warn("create rolled back")
		return model.Reminder{}, fmt.Errorf("persisting new reminder: %w", err)
	}
	return r, nil
}

// Remove deletes a reminder and writes it through. A reminder the store
// no longer has counts as removed; other failures put it back.
func (s *Session) Remove(ctx context.Context, id string) (nextActiveID string, removed bool, err error) {
	s.mu.Lock()
	prev, ok := s.engine.Get(id)
	if !ok {
		s.mu.Unlock()
		return "", false, nil
	}
	index := s.engine.Index(id)
	nextActiveID, _ = s.engine.Remove(id)
	s.pending[id]++
	s.mu.Unlock()
	s.emit()

	err = s.store.DeleteReminder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		err = nil
	}

	s.mu.Lock()
	s.settle(id)
	if err != nil {
		s.engine.Restore(prev, index)
	}
	s.mu.Unlock()
	s.emit()

	if err != nil {
		s.log.WithError(err).WithField("id", id).Warn("delete rolled back")
		return "", false, fmt.Errorf("deleting reminder %s: %w", id, err)
	}
	return nextActiveID, true, nil
}

// Complete marks a reminder completed.
func (s *Session) Complete(ctx context.Context, id string) (model.Reminder, bool, error) {
	return s.update(ctx, id, func() (model.Reminder, bool) { return s.engine.Complete(id) })
}

// Undo reopens a completed reminder.
func (s *Session) Undo(ctx context.Context, id string) (model.Reminder, bool, error) {
	return s.update(ctx, id, func() (model.Reminder, bool) { return s.engine.Undo(id) })
}

// Snooze pushes a reminder back by the default preset.
func (s *Session) Snooze(ctx context.Context, id string) (model.Reminder, bool, error) {
	return s.update(ctx, id, func() (model.Reminder, bool) { return s.engine.Snooze(id) })
}

// SnoozeBy pushes a reminder back by minutes.
func (s *Session) SnoozeBy(ctx context.Context, id string, minutes int) (model.Reminder, bool, error) {
	return s.update(ctx, id, func() (model.Reminder, bool) { return s.engine.SnoozeBy(id, minutes) })
}

// Reschedule moves a reminder to a new date and time.
func (s *Session) Reschedule(ctx context.Context, id string, in engine.ScheduleInput) (model.Reminder, bool, error) {
	return s.update(ctx, id, func() (model.Reminder, bool) { return s.engine.Reschedule(id, in) })
}

// update runs op optimistically, writes the resulting diff and rolls the
// record back to its previous version if the write fails.
func (s *Session) update(
	ctx context.Context,
	id string,
	op func() (model.Reminder, bool),
) (model.Reminder, bool, error) {
	s.mu.Lock()
	before, ok := s.engine.Get(id)
	if !ok {
		s.mu.Unlock()
		return model.Reminder{}, false, nil
	}
	after, changed := op()
	if !changed {
		s.mu.Unlock()
		return after, false, nil
	}
	s.pending[id]++
	s.mu.Unlock()
	s.emit()

	err := s.store.UpdateReminder(ctx, id, model.Diff(before, after))

	s.mu.Lock()
	s.settle(id)
	if err != nil {
		s.engine.Restore(before, -1)
	}
	s.mu.Unlock()
	s.emit()

	if err != nil {
		s.log.WithError(err).WithField("id", id).Warn("update rolled back")
		return before, false, fmt.Errorf("persisting reminder %s: %w", id, err)
	}
	return after, true, nil
}

// settle ends one in-flight write for id. Callers hold s.mu.
func (s *Session) settle(id string) {
	if s.pending[id] <= 1 {
		delete(s.pending, id)
		return
	}
	s.pending[id]--
}

// State reports whether id has an unconfirmed write in flight.
func (s *Session) State(id string) RecordState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] > 0 {
		return Pending
	}
	return Confirmed
}

// UpdateDefaultDueTime validates and persists a new default due time.
func (s *Session) UpdateDefaultDueTime(ctx context.Context, value string) error {
	if err := s.engine.Settings().UpdateDefaultDueTime(value); err != nil {
		return err
	}
	return s.engine.Settings().Save(ctx, s.store, s.owner)
}

// UpdateSnoozePresets normalizes, stores and persists the preset list.
func (s *Session) UpdateSnoozePresets(ctx context.Context, presets []model.SnoozePreset) ([]model.SnoozePreset, error) {
	stored := s.engine.Settings().UpdateSnoozePresets(presets)
	if err := s.engine.Settings().Save(ctx, s.store, s.owner); err != nil {
		return nil, err
	}
	return stored, nil
}

// Settings returns a copy of the current settings.
func (s *Session) Settings() model.ReminderSettings {
	return s.engine.Settings().Snapshot()
}

// Get returns a copy of the reminder with id.
func (s *Session) Get(id string) (model.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Get(id)
}

// Reminders returns a copy of the collection.
func (s *Session) Reminders() []model.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Reminders()
}

// ActiveID returns the active reminder's ID.
func (s *Session) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ActiveID()
}

// SetActive selects id.
func (s *Session) SetActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetActive(id)
}

// Views projects the collection against now, marking pending records.
func (s *Session) Views(now time.Time, f engine.Filter) []model.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := s.engine.Views(now, f)
	for i := range views {
		views[i].Pending = s.pending[views[i].ID] > 0
	}
	return views
}

// Project derives the view of r against now, marking it pending when a
// write for it is in flight.
func (s *Session) Project(r model.Reminder, now time.Time) model.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	vm := s.engine.Project(r, now)
	vm.Pending = s.pending[r.ID] > 0
	return vm
}

// UpcomingSoon returns up to n open reminders due soonest.
func (s *Session) UpcomingSoon(now time.Time, n int) []model.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.UpcomingSoon(now, n)
}

// Completed returns completed reminders, most recent first.
func (s *Session) Completed(now time.Time) []model.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Completed(now)
}

// CompletionLog returns the current completion log.
func (s *Session) CompletionLog() completionlog.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.CompletionLog()
}

// Progress summarizes the completion log over window days ending at now.
func (s *Session) Progress(now time.Time, window int) completionlog.Summary {
	return completionlog.Progress(s.CompletionLog(), now, window)
}

func (s *Session) emit() {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	var snapshot []model.Reminder
	if len(listeners) > 0 {
		snapshot = s.engine.Reminders()
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
