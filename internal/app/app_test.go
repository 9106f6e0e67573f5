package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/share"
	"github.com/nhle/followup/internal/store"
)

func testConfig() *model.AppConfig {
	return &model.AppConfig{
		Database: ":memory:",
		Owner:    "tester",
		Reminders: model.ReminderConfig{
			DefaultDueTime: "17:00",
			SnoozePresets:  model.DefaultSnoozePresets(),
		},
		Notifications: model.NotificationConfig{Enabled: true, MaxLeadHours: 48},
		Share:         model.ShareConfig{PollIntervalSec: 60},
	}
}

func newTestApp(t *testing.T, now time.Time) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(), nil, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

type memSource struct {
	items []share.Item
	seen  []uint32
}

func (m *memSource) Fetch(context.Context, int) ([]share.Item, error) { return m.items, nil }

func (m *memSource) MarkSeen(_ context.Context, uids []uint32) error {
	m.seen = append(m.seen, uids...)
	return nil
}

type countingNotifier struct{}

func (countingNotifier) Notify(context.Context, model.DuePayload) error { return nil }

func TestNewPersistsThroughSession(t *testing.T) {
	now := time.Date(2024, 1, 1, 16, 0, 0, 0, time.Local)
	a := newTestApp(t, now)
	ctx := context.Background()

	r, err := a.Session.Create(ctx, engine.CreateInput{Title: "Pay rent"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), r.DueEpoch)

	stored, err := a.Store.ListReminders(ctx, "tester", store.ReminderFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Pay rent", stored[0].Title)
	assert.Equal(t, now, a.Now())
}

func TestStartNotificationsFollowsSession(t *testing.T) {
	now := time.Date(2024, 1, 1, 16, 0, 0, 0, time.Local)
	a := newTestApp(t, now)
	ctx := context.Background()

	sched := a.StartNotifications(countingNotifier{})
	assert.Same(t, sched, a.StartNotifications(countingNotifier{}))
	assert.Empty(t, sched.Scheduled())

	r, err := a.Session.Create(ctx, engine.CreateInput{Title: "Call back"})
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, sched.Scheduled())

	_, _, err = a.Session.Complete(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, sched.Scheduled())
}

func TestSharePollerCreatesReminders(t *testing.T) {
	now := time.Date(2024, 1, 1, 16, 0, 0, 0, time.Local)
	a := newTestApp(t, now)

	src := &memSource{items: []share.Item{
		{UID: 9, Input: engine.CreateInput{Title: "Shared article", Source: model.SourceShare, MediaType: model.MediaLink}},
	}}
	res := a.NewSharePoller(src).PollOnce(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []uint32{9}, src.seen)

	list := a.Session.Reminders()
	require.Len(t, list, 1)
	assert.Equal(t, model.SourceShare, list[0].Source)
	assert.Equal(t, model.MediaLink, list[0].MediaType)
}

func TestShareDisabled(t *testing.T) {
	a := newTestApp(t, time.Now())

	_, err := a.ShareInbox()
	assert.True(t, errors.Is(err, ErrShareDisabled))

	_, err = a.ImportShared(context.Background(), 10)
	assert.ErrorIs(t, err, ErrShareDisabled)

	_, err = a.StartShareIntake()
	assert.ErrorIs(t, err, ErrShareDisabled)
}
