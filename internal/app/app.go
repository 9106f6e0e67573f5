// Package app wires configuration, persistence, the reminder session,
// notifications and share intake into one runtime for the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/logging"
	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/notify"
	"github.com/nhle/followup/internal/settings"
	"github.com/nhle/followup/internal/share"
	"github.com/nhle/followup/internal/store"
	appsync "github.com/nhle/followup/internal/sync"
)

// App is a started reminder session together with its collaborators.
type App struct {
	Config  *model.AppConfig
	Log     *logrus.Logger
	Store   *store.SQLiteStore
	Engine  *engine.Engine
	Session *appsync.Session

	clock     engine.Clock
	scheduler *notify.Scheduler
	poller    *share.Poller
}

// Option configures an App.
type Option func(*App)

// WithClock overrides the engine clock.
func WithClock(c engine.Clock) Option {
	return func(a *App) { a.clock = c }
}

// New opens the configured database and starts a session for the
// configured owner. Close releases everything New acquired.
func New(ctx context.Context, cfg *model.AppConfig, log *logrus.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}
	a := &App{Config: cfg, Log: log, clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.Database != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	st, err := store.NewSQLiteStore(cfg.Database, store.WithLogger(log))
	if err != nil {
		return nil, err
	}
	a.Store = st

	a.Engine = engine.New(
		engine.WithClock(a.clock),
		engine.WithSettings(settings.New(cfg.Settings())),
		engine.WithActivityLimit(cfg.Reminders.ActivityLimit),
	)
	a.Session = appsync.NewSession(a.Engine, st, cfg.Owner, appsync.WithLogger(log))

	if err := a.Session.Start(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	return a, nil
}

// Now returns the engine clock's current time.
func (a *App) Now() time.Time {
	return a.Engine.Now()
}

// StartNotifications schedules due-time notifications through n and keeps
// them in step with the session. Permission follows notifications.enabled.
func (a *App) StartNotifications(n notify.Notifier) *notify.Scheduler {
	if a.scheduler != nil {
		return a.scheduler
	}

	perm := notify.PermissionDenied
	if a.Config.Notifications.Enabled {
		perm = notify.PermissionGranted
	}

	opts := []notify.Option{
		notify.WithClock(a.clock),
		notify.WithLogger(a.Log),
		notify.WithPermission(perm),
	}
	if h := a.Config.Notifications.MaxLeadHours; h > 0 {
		opts = append(opts, notify.WithMaxLead(time.Duration(h)*time.Hour))
	}

	a.scheduler = notify.NewScheduler(n, opts...)
	a.Session.OnChange(func(list []model.Reminder) {
		a.scheduler.Sync(list)
	})
	a.scheduler.Sync(a.Session.Reminders())
	return a.scheduler
}

// Close stops background work, ends the session and closes the store.
func (a *App) Close() error {
	if a.poller != nil {
		a.poller.Stop()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	a.Session.Stop()
	return a.Store.Close()
}
