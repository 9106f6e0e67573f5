// Package timemath holds the pure date/time helpers behind reminder due
// dates, labels and countdowns. All calendar arithmetic is done in the
// location of the reference time passed in; nothing here reads the clock.
package timemath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeValuePattern matches a strict 24-hour "HH:MM" value.
var timeValuePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// zonePattern matches an explicit UTC offset or Z suffix.
var zonePattern = regexp.MustCompile(`([+-]\d\d:\d\d|Z)$`)

// Layouts accepted for zoned ISO strings, most specific first.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

const (
	clockLayout = "3:04 PM"

	// ISOLayout renders instants the way dueISO stores them.
	ISOLayout = "2006-01-02T15:04:05.000Z07:00"

	// DateKeyLayout is the "YYYY-MM-DD" calendar key.
	DateKeyLayout = "2006-01-02"
)

// IsSameDay reports whether a and b fall on the same calendar day in a's
// location.
func IsSameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsValidTimeValue reports whether v is a strict "HH:MM" 24-hour value.
func IsValidTimeValue(v string) bool {
	return timeValuePattern.MatchString(v)
}

// ParseTimeValue splits a strict "HH:MM" value into hour and minute.
// ok is false for anything IsValidTimeValue rejects.
func ParseTimeValue(v string) (hour, minute int, ok bool) {
	m := timeValuePattern.FindStringSubmatch(v)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, true
}

// BuildDueDate constructs a due instant from optional "YYYY-MM-DD" and
// "HH:MM" inputs. An invalid or empty timeInput falls back to
// defaultDueTime. Without a usable date the time is applied to the
// reference day, rolling to the next day when that is not after reference.
// Without any usable time the result is the top of the hour after reference.
func BuildDueDate(dateInput, timeInput string, reference time.Time, defaultDueTime string) time.Time {
	hour, minute, ok := ParseTimeValue(timeInput)
	if !ok {
		hour, minute, ok = ParseTimeValue(defaultDueTime)
	}

	loc := reference.Location()

	if dateInput != "" && ok {
		if y, m, d, valid := parseCalendarDate(dateInput); valid {
			return time.Date(y, time.Month(m), d, hour, minute, 0, 0, loc)
		}
	}

	if ok {
		y, m, d := reference.Date()
		candidate := time.Date(y, m, d, hour, minute, 0, 0, loc)
		if !candidate.After(reference) {
			candidate = time.Date(y, m, d+1, hour, minute, 0, 0, loc)
		}
		return candidate
	}

	y, m, d := reference.Date()
	return time.Date(y, m, d, reference.Hour()+1, 0, 0, 0, loc)
}

// parseCalendarDate parses "YYYY-MM-DD" and rejects dates that do not exist.
func parseCalendarDate(s string) (year, month, day int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	year, month, day = nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 {
		return 0, 0, 0, false
	}
	probe := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if probe.Day() != day {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// ParseDueDate is a tolerant ISO parser. Strings with an explicit offset
// or Z suffix are absolute instants. Otherwise the components are local
// wall-clock values in loc; a missing hour defaults to 9 and a missing
// minute to 0. ok is false for anything unparseable.
func ParseDueDate(iso string, loc *time.Location) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}

	if HasZone(iso) {
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, iso); err == nil {
				return t.In(loc), true
			}
		}
		return time.Time{}, false
	}

	datePart, timePart, _ := strings.Cut(iso, "T")
	year, month, day, ok := parseCalendarDate(datePart)
	if !ok {
		return time.Time{}, false
	}

	hour, minute := 9, 0
	if timePart != "" {
		fields := strings.Split(timePart, ":")
		h, err := strconv.Atoi(fields[0])
		if err != nil || h < 0 || h > 23 {
			return time.Time{}, false
		}
		hour = h
		if len(fields) > 1 {
			m, err := strconv.Atoi(fields[1])
			if err != nil || m < 0 || m > 59 {
				return time.Time{}, false
			}
			minute = m
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), true
}

// HasZone reports whether iso ends with an explicit offset or Z.
func HasZone(iso string) bool {
	return zonePattern.MatchString(iso)
}

// FormatISO renders t in UTC with millisecond precision and a Z suffix.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// FormatClock renders the wall-clock part, e.g. "5:00 PM".
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// FormatDueLabel renders "Today • 5:00 PM", "Tomorrow • 5:00 PM",
// "Mon, Jan 2 • 5:00 PM" within the reference year, or
// "Jan 2, 2006 • 5:00 PM" otherwise.
func FormatDueLabel(dueAt, reference time.Time) string {
	dueAt = dueAt.In(reference.Location())
	clock := FormatClock(dueAt)

	if IsSameDay(reference, dueAt) {
		return "Today • " + clock
	}
	if IsSameDay(reference.AddDate(0, 0, 1), dueAt) {
		return "Tomorrow • " + clock
	}
	if dueAt.Year() == reference.Year() {
		return dueAt.Format("Mon, Jan 2") + " • " + clock
	}
	return dueAt.Format("Jan 2, 2006") + " • " + clock
}

// roundMinutes rounds a non-negative duration to the nearest minute,
// halves rounding up.
func roundMinutes(d time.Duration) int64 {
	return int64(math.Floor(d.Minutes() + 0.5))
}

// FormatCountdown renders the signed distance from reference to dueAt,
// e.g. "In 1h 5m" or "Overdue by 2m". Zero renders as "In 0m".
func FormatCountdown(dueAt, reference time.Time) string {
	diff := dueAt.Sub(reference)
	prefix := "In"
	if diff < 0 {
		prefix = "Overdue by"
		diff = -diff
	}

	total := roundMinutes(diff)
	hours, minutes := total/60, total%60

	var segments []string
	if hours > 0 {
		segments = append(segments, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(segments) == 0 {
		segments = append(segments, fmt.Sprintf("%dm", minutes))
	}
	return prefix + " " + strings.Join(segments, " ")
}

// FormatCompletionCountdown renders how long ago a reminder was completed.
func FormatCompletionCountdown(completedAt, reference time.Time) string {
	diff := reference.Sub(completedAt)
	if diff < time.Minute {
		return "Completed just now"
	}

	total := roundMinutes(diff)
	hours, minutes := total/60, total%60

	var segments []string
	if hours > 0 {
		segments = append(segments, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		segments = append(segments, fmt.Sprintf("%dm", minutes))
	}
	suffix := strings.Join(segments, " ")
	if suffix == "" {
		suffix = fmt.Sprintf("%dm", total)
	}
	return "Completed " + suffix + " ago"
}

// dayLabel returns "Today", "Yesterday" (when allowed) or "Jan 2".
func dayLabel(at, now time.Time, withYesterday bool) string {
	if IsSameDay(now, at) {
		return "Today"
	}
	if withYesterday && IsSameDay(now.AddDate(0, 0, -1), at) {
		return "Yesterday"
	}
	return at.Format("Jan 2")
}

// FormatCreatedAtLabel renders "Created manually • Today 5:00 PM" or
// "Shared • Yesterday 9:15 AM".
func FormatCreatedAtLabel(shared bool, at, now time.Time) string {
	at = at.In(now.Location())
	prefix := "Created manually"
	if shared {
		prefix = "Shared"
	}
	return fmt.Sprintf("%s • %s %s", prefix, dayLabel(at, now, true), FormatClock(at))
}

// FormatActivityTimestamp renders "Today • 5:00 PM" or "Jan 2 • 5:00 PM".
func FormatActivityTimestamp(at, now time.Time) string {
	at = at.In(now.Location())
	return dayLabel(at, now, false) + " • " + FormatClock(at)
}

// DateKey returns the "YYYY-MM-DD" calendar key of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}
