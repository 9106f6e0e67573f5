package timemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func local(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.Local)
}

func TestIsSameDay(t *testing.T) {
	a := local(2024, 1, 1, 0, 0)
	assert.True(t, IsSameDay(a, local(2024, 1, 1, 23, 59)))
	assert.False(t, IsSameDay(a, local(2024, 1, 2, 0, 0)))
	assert.False(t, IsSameDay(a, local(2023, 1, 1, 0, 0)))
}

func TestTimeValue(t *testing.T) {
	tests := []struct {
		in     string
		valid  bool
		hour   int
		minute int
	}{
		{"00:00", true, 0, 0},
		{"09:05", true, 9, 5},
		{"23:59", true, 23, 59},
		{"24:00", false, 0, 0},
		{"25:00", false, 0, 0},
		{"9:00", false, 0, 0},
		{"12:60", false, 0, 0},
		{"", false, 0, 0},
		{" 12:00", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidTimeValue(tt.in))
			h, m, ok := ParseTimeValue(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.hour, h)
			assert.Equal(t, tt.minute, m)
		})
	}
}

func TestBuildDueDate(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		timeInput string
		ref       time.Time
		def       string
		want      time.Time
	}{
		{
			name: "default later same day",
			ref:  local(2024, 1, 1, 16, 0),
			def:  "17:00",
			want: local(2024, 1, 1, 17, 0),
		},
		{
			name: "default already passed rolls to tomorrow",
			ref:  local(2024, 1, 1, 18, 0),
			def:  "17:00",
			want: local(2024, 1, 2, 17, 0),
		},
		{
			name: "default exactly now rolls to tomorrow",
			ref:  local(2024, 1, 1, 17, 0),
			def:  "17:00",
			want: local(2024, 1, 2, 17, 0),
		},
		{
			name:      "explicit date and time",
			date:      "2024-03-10",
			timeInput: "08:30",
			ref:       local(2024, 1, 1, 12, 0),
			def:       "17:00",
			want:      local(2024, 3, 10, 8, 30),
		},
		{
			name: "explicit date with default time",
			date: "2024-03-10",
			ref:  local(2024, 1, 1, 12, 0),
			def:  "17:00",
			want: local(2024, 3, 10, 17, 0),
		},
		{
			name: "explicit date in the past is kept",
			date: "2023-12-25",
			ref:  local(2024, 1, 1, 12, 0),
			def:  "17:00",
			want: local(2023, 12, 25, 17, 0),
		},
		{
			name:      "invalid time falls back to default",
			date:      "2024-03-10",
			timeInput: "99:99",
			ref:       local(2024, 1, 1, 12, 0),
			def:       "07:15",
			want:      local(2024, 3, 10, 7, 15),
		},
		{
			name: "impossible date falls back to reference day",
			date: "2024-02-30",
			ref:  local(2024, 1, 1, 12, 0),
			def:  "17:00",
			want: local(2024, 1, 1, 17, 0),
		},
		{
			name: "garbage date falls back to reference day",
			date: "soon",
			ref:  local(2024, 1, 1, 12, 0),
			def:  "17:00",
			want: local(2024, 1, 1, 17, 0),
		},
		{
			name: "no usable time rounds to next hour",
			ref:  local(2024, 1, 1, 12, 34),
			def:  "bad",
			want: local(2024, 1, 1, 13, 0),
		},
		{
			name: "next hour crosses midnight",
			ref:  local(2024, 1, 1, 23, 10),
			def:  "",
			want: local(2024, 1, 2, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildDueDate(tt.date, tt.timeInput, tt.ref, tt.def)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"utc zulu", "2024-01-01T10:00:00.000Z", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"offset", "2024-01-01T10:00:00+02:00", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), true},
		{"zulu without seconds", "2024-01-01T10:00Z", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"local with time", "2024-01-01T14:30", local(2024, 1, 1, 14, 30), true},
		{"local with seconds", "2024-01-01T14:30:15", local(2024, 1, 1, 14, 30), true},
		{"local hour only", "2024-01-01T14", local(2024, 1, 1, 14, 0), true},
		{"date only defaults to nine", "2024-01-01", local(2024, 1, 1, 9, 0), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "tomorrow-ish", time.Time{}, false},
		{"bad zoned", "not-a-dateZ", time.Time{}, false},
		{"bad time", "2024-01-01Tnoon", time.Time{}, false},
		{"impossible date", "2024-13-01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDueDate(tt.in, time.Local)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFormatISORoundTrip(t *testing.T) {
	at := local(2024, 6, 15, 17, 45)
	iso := FormatISO(at)
	assert.Regexp(t, `^\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d\.\d{3}Z$`, iso)

	back, ok := ParseDueDate(iso, time.Local)
	require.True(t, ok)
	assert.Equal(t, at.UnixMilli(), back.UnixMilli())
}

func TestFormatDueLabel(t *testing.T) {
	ref := local(2024, 1, 10, 12, 0)

	assert.Equal(t, "Today • 5:00 PM", FormatDueLabel(local(2024, 1, 10, 17, 0), ref))
	assert.Equal(t, "Tomorrow • 9:05 AM", FormatDueLabel(local(2024, 1, 11, 9, 5), ref))
	assert.Equal(t, "Fri, Jan 12 • 9:00 AM", FormatDueLabel(local(2024, 1, 12, 9, 0), ref))
	assert.Equal(t, "Tue, Jan 9 • 9:00 AM", FormatDueLabel(local(2024, 1, 9, 9, 0), ref))
	assert.Equal(t, "Jan 3, 2025 • 12:00 AM", FormatDueLabel(local(2025, 1, 3, 0, 0), ref))
}

func TestFormatCountdown(t *testing.T) {
	ref := local(2024, 1, 1, 12, 0)

	tests := []struct {
		name string
		due  time.Time
		want string
	}{
		{"same instant", ref, "In 0m"},
		{"ninety seconds overdue rounds up", ref.Add(-90 * time.Second), "Overdue by 2m"},
		{"thirty seconds overdue", ref.Add(-30 * time.Second), "Overdue by 1m"},
		{"twenty seconds overdue", ref.Add(-20 * time.Second), "Overdue by 0m"},
		{"minutes only", ref.Add(45 * time.Minute), "In 45m"},
		{"exact hours omit minutes", ref.Add(2 * time.Hour), "In 2h"},
		{"hours and minutes", ref.Add(26*time.Hour + 5*time.Minute), "In 26h 5m"},
		{"overdue hours", ref.Add(-3*time.Hour - 30*time.Minute), "Overdue by 3h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCountdown(tt.due, ref))
		})
	}
}

func TestFormatCompletionCountdown(t *testing.T) {
	ref := local(2024, 1, 1, 12, 0)

	tests := []struct {
		name      string
		completed time.Time
		want      string
	}{
		{"same instant", ref, "Completed just now"},
		{"59 seconds", ref.Add(-59 * time.Second), "Completed just now"},
		{"in the future", ref.Add(time.Hour), "Completed just now"},
		{"one minute", ref.Add(-time.Minute), "Completed 1m ago"},
		{"exact hours", ref.Add(-2 * time.Hour), "Completed 2h ago"},
		{"hours and minutes", ref.Add(-(75 * time.Minute)), "Completed 1h 15m ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCompletionCountdown(tt.completed, ref))
		})
	}
}

func TestCreatedAndActivityLabels(t *testing.T) {
	now := local(2024, 1, 10, 12, 0)

	assert.Equal(t, "Created manually • Today 9:30 AM",
		FormatCreatedAtLabel(false, local(2024, 1, 10, 9, 30), now))
	assert.Equal(t, "Shared • Yesterday 9:30 AM",
		FormatCreatedAtLabel(true, local(2024, 1, 9, 9, 30), now))
	assert.Equal(t, "Shared • Jan 2 9:30 AM",
		FormatCreatedAtLabel(true, local(2024, 1, 2, 9, 30), now))

	assert.Equal(t, "Today • 12:00 PM", FormatActivityTimestamp(now, now))
	assert.Equal(t, "Jan 9 • 8:00 PM", FormatActivityTimestamp(local(2024, 1, 9, 20, 0), now))
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2024-03-05", DateKey(local(2024, 3, 5, 23, 59), time.Local))
}
