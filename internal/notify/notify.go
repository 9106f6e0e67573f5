// Package notify schedules local due-time notifications for open
// reminders. Delivery is best effort; failures are logged and never reach
// the engine.
package notify

import (
	"context"
	"sort"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/followup/internal/logging"
	"github.com/nhle/followup/internal/model"
)

// Permission mirrors the platform notification permission states.
type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionDefault     Permission = "default"
	PermissionUnsupported Permission = "unsupported"
)

// ParsePermission maps a raw value to a Permission; unknown values are
// treated as not yet decided.
func ParsePermission(s string) Permission {
	switch p := Permission(s); p {
	case PermissionGranted, PermissionDenied, PermissionUnsupported:
		return p
	}
	return PermissionDefault
}

// DefaultMaxLead is the furthest ahead a notification is scheduled.
const DefaultMaxLead = 2147483647 * time.Millisecond

// deliverTimeout bounds a single Notify call.
const deliverTimeout = 10 * time.Second

// Notifier delivers one notification.
type Notifier interface {
	Notify(ctx context.Context, p model.DuePayload) error
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type entry struct {
	timer Timer
	due   int64
}

// Scheduler keeps one timer per open reminder due in the future.
type Scheduler struct {
	notifier  Notifier
	log       logrus.FieldLogger
	now       func() time.Time
	afterFunc AfterFunc
	maxLead   time.Duration

	mu         gosync.Mutex
	permission Permission
	entries    map[string]entry
	stopped    bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithAfterFunc overrides how timers are created.
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = f }
}

// WithMaxLead skips reminders due further out than d.
func WithMaxLead(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.maxLead = d
		}
	}
}

// WithLogger sets the scheduler's logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scheduler) { s.log = logging.Component(l, "notify") }
}

// WithPermission sets the initial permission.
func WithPermission(p Permission) Option {
	return func(s *Scheduler) { s.permission = p }
}

// NewScheduler returns a scheduler delivering through n. Until permission
// is granted nothing is scheduled.
func NewScheduler(n Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier:   n,
		log:        logging.Component(nil, "notify"),
		now:        time.Now,
		afterFunc:  realAfterFunc,
		maxLead:    DefaultMaxLead,
		permission: PermissionDefault,
		entries:    make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Permission returns the current permission.
func (s *Scheduler) Permission() Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// SetPermission updates the permission. Losing it cancels every timer.
func (s *Scheduler) SetPermission(p Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permission = p
	if p != PermissionGranted {
		s.cancelAllLocked()
	}
}

// Sync reconciles timers with reminders: new or moved due instants are
// (re)scheduled, completed, past-due, too-distant and vanished reminders
// lose their timers. It returns how many timers are armed afterwards.
func (s *Scheduler) Sync(reminders []model.Reminder) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.permission != PermissionGranted {
		s.cancelAllLocked()
		return 0
	}

	now := s.now()
	keep := make(map[string]bool, len(reminders))

	for _, r := range reminders {
		if r.IsCompleted() {
			continue
		}
		wait := r.Due().Sub(now)
		if wait < 0 {
			s.log.WithField("id", r.ID).Debug("already past due, skipping")
			continue
		}
		if wait > s.maxLead {
			s.log.WithField("id", r.ID).Debug("too far in future, skipping")
			continue
		}
		keep[r.ID] = true

		if e, ok := s.entries[r.ID]; ok {
			if e.due == r.DueEpoch {
				continue
			}
			e.timer.Stop()
		}

		payload := r.Payload()
		due := r.DueEpoch
		s.entries[r.ID] = entry{
			due:   due,
			timer: s.afterFunc(wait, func() { s.fire(payload, due) }),
		}
		s.log.WithFields(logrus.Fields{
			"id":   r.ID,
			"wait": wait.Round(time.Second).String(),
		}).Debug("scheduled notification")
	}

	for id, e := range s.entries {
		if !keep[id] {
			e.timer.Stop()
			delete(s.entries, id)
		}
	}

	return len(s.entries)
}

// Cancel stops the timer for id.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, id)
	return true
}

// Scheduled returns the IDs with an armed timer, sorted.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stop cancels every timer and refuses further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cancelAllLocked()
}

func (s *Scheduler) cancelAllLocked() {
	for id, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, id)
	}
}

// fire delivers p if its timer is still the current one for that due
// instant.
func (s *Scheduler) fire(p model.DuePayload, due int64) {
	s.mu.Lock()
	e, ok := s.entries[p.ID]
	if !ok || e.due != due || s.permission != PermissionGranted {
		s.mu.Unlock()
		return
	}
	delete(s.entries, p.ID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, p); err != nil {
		s.log.WithError(err).WithField("id", p.ID).Warn("delivering notification")
	}
}
