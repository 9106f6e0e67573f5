package store

import (
	"context"
	"sync"

	"github.com/nhle/followup/internal/model"
)

type subscriber struct {
	owner string
	fn    ChangeFunc
}

type subscriptions struct {
	mu   sync.Mutex
	next int
	subs map[int]subscriber
}

func newSubscriptions() *subscriptions {
	return &subscriptions{subs: make(map[int]subscriber)}
}

func (s *subscriptions) add(owner string, fn ChangeFunc) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = subscriber{owner: owner, fn: fn}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *subscriptions) forOwner(owner string) []ChangeFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fns []ChangeFunc
	for _, sub := range s.subs {
		if sub.owner == owner {
			fns = append(fns, sub.fn)
		}
	}
	return fns
}

// Subscribe registers fn for owner. fn runs synchronously on the writing
// goroutine after each committed write, so it must not call back into a
// write on the same goroutine while holding its own locks.
func (s *SQLiteStore) Subscribe(owner string, fn ChangeFunc) func() {
	return s.subs.add(owner, fn)
}

// notify re-reads owner's reminders and hands them to every subscriber.
func (s *SQLiteStore) notify(ctx context.Context, owner string) {
	fns := s.subs.forOwner(owner)
	if len(fns) == 0 {
		return
	}

	list, err := s.ListReminders(context.WithoutCancel(ctx), owner, ReminderFilter{})
	if err != nil {
		s.log.WithError(err).WithField("owner", owner).Warn("reading reminders for subscribers")
	}
	for _, fn := range fns {
		var snapshot []model.Reminder
		if err == nil {
			snapshot = make([]model.Reminder, len(list))
			for i, r := range list {
				snapshot[i] = r.Clone()
			}
		}
		fn(snapshot, err)
	}
}
