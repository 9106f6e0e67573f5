package store

import (
	"context"
	"errors"

	"github.com/nhle/followup/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ReminderFilter controls filtering, sorting, and pagination for reminder
// queries.
type ReminderFilter struct {
	MediaType *string // one of model.MediaType, or nil (all)
	Source    *string // "manual", "share", or nil (all)
	Completed *bool   // true: completed only, false: open only, nil: all
	Query     *string // search title + note
	SortBy    string  // "due_epoch" (default), "created_at", "updated_at", "title"
	SortDesc  bool
	Limit     int
	Offset    int
}

// ChangeFunc receives an owner's full reminder list after a write, or the
// error that prevented reading it.
type ChangeFunc func(reminders []model.Reminder, err error)

// Store defines the persistence interface for reminders and per-owner
// reminder settings.
type Store interface {
	// === Reminders ===

	CreateReminder(ctx context.Context, owner string, r model.Reminder) (string, error)
	UpdateReminder(ctx context.Context, id string, patch model.ReminderPatch) error
	DeleteReminder(ctx context.Context, id string) error
	GetReminder(ctx context.Context, id string) (*model.Reminder, error)
	ListReminders(ctx context.Context, owner string, filter ReminderFilter) ([]model.Reminder, error)

	// Subscribe registers fn for every successful write to owner's
	// reminders. The returned func removes the subscription.
	Subscribe(owner string, fn ChangeFunc) (unsubscribe func())

	// === Settings ===

	LoadSettings(ctx context.Context, owner string) (*model.ReminderSettings, error)
	SaveSettings(ctx context.Context, owner string, s model.ReminderSettings) error

	Close() error
}
