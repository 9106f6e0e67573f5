// Package completionlog aggregates completed reminders into per-day counts
// and derives the streak and weekly series shown on the progress card.
package completionlog

import (
	"time"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/timemath"
)

// Log maps a "YYYY-MM-DD" local date key to the number of reminders
// completed that day.
type Log map[string]int

// Build recomputes the log from scratch. Only completed reminders with a
// parsable completion stamp count; input order does not matter.
func Build(reminders []model.Reminder, loc *time.Location) Log {
	log := Log{}
	for _, r := range reminders {
		if !r.IsCompleted() || r.CompletedAtISO == "" {
			continue
		}
		at, ok := timemath.ParseDueDate(r.CompletedAtISO, loc)
		if !ok {
			continue
		}
		log[timemath.DateKey(at, loc)]++
	}
	return log
}

// Equal reports whether a and b hold the same counts.
func Equal(a, b Log) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// Total returns the sum of all counts.
func (l Log) Total() int {
	total := 0
	for _, n := range l {
		total += n
	}
	return total
}

// DefaultWindow is the number of days in the progress series.
const DefaultWindow = 7

// Point is one day in the progress series.
type Point struct {
	Key   string
	Label string
	Count int
}

// Summary is the progress card data.
type Summary struct {
	// Series runs oldest to newest and ends with today.
	Series            []Point
	CompletedThisWeek int
	TotalCompleted    int
	MaxCount          int

	// Streak counts consecutive days with completions ending today,
	// bounded by the window.
	Streak int
}

// Progress summarizes log over the window days ending on now's date.
// A non-positive window uses DefaultWindow.
func Progress(log Log, now time.Time, window int) Summary {
	if window <= 0 {
		window = DefaultWindow
	}

	loc := now.Location()
	y, m, d := now.Date()
	sum := Summary{TotalCompleted: log.Total()}

	for offset := window - 1; offset >= 0; offset-- {
		day := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		key := timemath.DateKey(day, loc)
		count := log[key]
		sum.CompletedThisWeek += count
		sum.MaxCount = max(sum.MaxCount, count)
		sum.Series = append(sum.Series, Point{
			Key:   key,
			Label: day.Format("Mon"),
			Count: count,
		})
	}

	for i := len(sum.Series) - 1; i >= 0 && sum.Series[i].Count > 0; i-- {
		sum.Streak++
	}

	return sum
}
