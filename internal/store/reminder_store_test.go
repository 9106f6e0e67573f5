package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/store"
	"github.com/nhle/followup/tests/testutil"
)

func sampleReminder(title string, due time.Time) model.Reminder {
	return model.Reminder{
		Title:     title,
		Note:      "note for " + title,
		MediaType: model.MediaText,
		Source:    model.SourceManual,
		DueEpoch:  due.UnixMilli(),
		DueISO:    due.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DueLabel:  "label",
		Status:    model.StatusUpcoming,
		Countdown: "In 1h",
		Activity: []model.ActivityEntry{
			{ID: "act-1", Label: "Reminder created", Timestamp: "Today • 4:00 PM"},
		},
	}
}

func TestCreateAndGetReminder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	due := time.Date(2024, 1, 2, 17, 0, 0, 0, time.UTC)

	r := sampleReminder("Call Sam", due)
	r.Attachments = []model.Attachment{{Type: model.MediaLink, Label: "doc", Href: "https://example.com"}}

	id, err := s.CreateReminder(ctx, "alice", r)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.GetReminder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, "Call Sam", got.Title)
	assert.Equal(t, due.UnixMilli(), got.DueEpoch)
	assert.Equal(t, model.StatusUpcoming, got.Status)
	assert.Equal(t, r.Attachments, got.Attachments)
	assert.Equal(t, r.Activity, got.Activity)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateReminderKeepsID(t *testing.T) {
	s := testutil.NewTestStore(t)
	r := sampleReminder("x", time.Now())
	r.ID = "fixed-id"

	id, err := s.CreateReminder(context.Background(), "alice", r)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestCreateReminderRejectsEmptyTitle(t *testing.T) {
	s := testutil.NewTestStore(t)
	_, err := s.CreateReminder(context.Background(), "alice", sampleReminder("  ", time.Now()))
	assert.Error(t, err)
}

func TestGetReminderNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)
	_, err := s.GetReminder(context.Background(), "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUpdateReminderPartial(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	id, err := s.CreateReminder(ctx, "alice", sampleReminder("before", time.Now()))
	require.NoError(t, err)

	status := model.StatusCompleted
	stamp := "2024-01-01T10:00:00.000Z"
	activity := []model.ActivityEntry{
		{ID: "act-2", Label: "Marked complete", Timestamp: "Today • 10:00 AM"},
		{ID: "act-1", Label: "Reminder created", Timestamp: "Today • 4:00 PM"},
	}
	require.NoError(t, s.UpdateReminder(ctx, id, model.ReminderPatch{
		Status:         &status,
		CompletedAtISO: &stamp,
		Activity:       activity,
	}))

	got, err := s.GetReminder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "before", got.Title)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, stamp, got.CompletedAtISO)
	assert.Equal(t, activity, got.Activity)

	cleared := ""
	open := model.StatusToday
	require.NoError(t, s.UpdateReminder(ctx, id, model.ReminderPatch{Status: &open, CompletedAtISO: &cleared}))
	got, err = s.GetReminder(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.CompletedAtISO)
}

func TestUpdateReminderNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)
	title := "x"
	err := s.UpdateReminder(context.Background(), "missing", model.ReminderPatch{Title: &title})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteReminder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	id, err := s.CreateReminder(ctx, "alice", sampleReminder("gone", time.Now()))
	require.NoError(t, err)

	require.NoError(t, s.DeleteReminder(ctx, id))
	_, err = s.GetReminder(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteReminder(ctx, id), store.ErrNotFound)
}

func TestListReminders(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	late := sampleReminder("Late", base.Add(48*time.Hour))
	early := sampleReminder("Early", base)
	shared := sampleReminder("Shared link", base.Add(24*time.Hour))
	shared.Source = model.SourceShare
	shared.MediaType = model.MediaLink
	done := sampleReminder("Done", base.Add(time.Hour))
	done.Status = model.StatusCompleted
	done.CompletedAtISO = "2024-01-01T10:00:00.000Z"
	other := sampleReminder("Someone else", base)

	for _, r := range []model.Reminder{late, early, shared, done} {
		_, err := s.CreateReminder(ctx, "alice", r)
		require.NoError(t, err)
	}
	_, err := s.CreateReminder(ctx, "bob", other)
	require.NoError(t, err)

	titles := func(list []model.Reminder) []string {
		var out []string
		for _, r := range list {
			out = append(out, r.Title)
		}
		return out
	}

	all, err := s.ListReminders(ctx, "alice", store.ReminderFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Early", "Done", "Shared link", "Late"}, titles(all))

	desc, err := s.ListReminders(ctx, "alice", store.ReminderFilter{SortDesc: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Late", "Shared link"}, titles(desc))

	page, err := s.ListReminders(ctx, "alice", store.ReminderFilter{Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Late"}, titles(page))

	src := "share"
	byShare, err := s.ListReminders(ctx, "alice", store.ReminderFilter{Source: &src})
	require.NoError(t, err)
	assert.Equal(t, []string{"Shared link"}, titles(byShare))

	media := "link"
	byMedia, err := s.ListReminders(ctx, "alice", store.ReminderFilter{MediaType: &media})
	require.NoError(t, err)
	assert.Equal(t, []string{"Shared link"}, titles(byMedia))

	yes, no := true, false
	completed, err := s.ListReminders(ctx, "alice", store.ReminderFilter{Completed: &yes})
	require.NoError(t, err)
	assert.Equal(t, []string{"Done"}, titles(completed))
	open, err := s.ListReminders(ctx, "alice", store.ReminderFilter{Completed: &no})
	require.NoError(t, err)
	assert.Len(t, open, 3)

	q := "note for late"
	byQuery, err := s.ListReminders(ctx, "alice", store.ReminderFilter{Query: &q})
	require.NoError(t, err)
	assert.Equal(t, []string{"Late"}, titles(byQuery))

	byTitle, err := s.ListReminders(ctx, "alice", store.ReminderFilter{SortBy: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Done", "Early", "Late", "Shared link"}, titles(byTitle))

	none, err := s.ListReminders(ctx, "carol", store.ReminderFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSubscribe(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	var calls [][]model.Reminder
	unsubscribe := s.Subscribe("alice", func(list []model.Reminder, err error) {
		require.NoError(t, err)
		calls = append(calls, list)
	})

	var bobCalls int
	s.Subscribe("bob", func([]model.Reminder, error) { bobCalls++ })

	id, err := s.CreateReminder(ctx, "alice", sampleReminder("one", time.Now()))
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Len(t, calls[0], 1)

	title := "renamed"
	require.NoError(t, s.UpdateReminder(ctx, id, model.ReminderPatch{Title: &title}))
	require.Len(t, calls, 2)
	assert.Equal(t, "renamed", calls[1][0].Title)

	require.NoError(t, s.DeleteReminder(ctx, id))
	require.Len(t, calls, 3)
	assert.Empty(t, calls[2])

	unsubscribe()
	unsubscribe()
	_, err = s.CreateReminder(ctx, "alice", sampleReminder("two", time.Now()))
	require.NoError(t, err)
	assert.Len(t, calls, 3)
	assert.Zero(t, bobCalls)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	got, err := s.LoadSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := model.ReminderSettings{
		DefaultDueTime: "08:15",
		SnoozePresets:  []model.SnoozePreset{{ID: "p", Label: "+45 min", Minutes: 45}},
	}
	require.NoError(t, s.SaveSettings(ctx, "alice", want))

	got, err = s.LoadSettings(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	want.DefaultDueTime = "09:00"
	require.NoError(t, s.SaveSettings(ctx, "alice", want))
	got, err = s.LoadSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.DefaultDueTime)
}
