package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/status"
	"github.com/nhle/followup/internal/timemath"
)

// normalize fills in whatever an externally loaded record is missing so the
// engine can always render it. The due instant comes from DueEpoch, then
// DueISO, then the default due time against now.
func normalize(r model.Reminder, now time.Time, defaultDueTime string) model.Reminder {
	r = r.Clone()
	loc := now.Location()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if strings.TrimSpace(r.Title) == "" {
		r.Title = model.DefaultTitle
	}
	if strings.TrimSpace(r.Note) == "" {
		r.Note = model.DefaultNote
	}
	r.MediaType = model.ParseMediaType(string(r.MediaType))
	r.Source = model.ParseSource(string(r.Source))

	dueAt, ok := dueOf(r, loc)
	if !ok {
		dueAt = timemath.BuildDueDate("", "", now, defaultDueTime)
	}
	r.DueEpoch = dueAt.UnixMilli()
	r.DueISO = normalizeISO(r.DueISO, dueAt, loc)

	if r.DueLabel == "" {
		r.DueLabel = timemath.FormatDueLabel(dueAt, now)
	}
	if !r.Status.Valid() {
		r.Status = status.Derive(dueAt, now)
	}

	if r.IsCompleted() {
		if r.CompletedAtISO == "" {
			r.CompletedAtISO = timemath.FormatISO(now)
		}
		if r.Countdown == "" {
			completedAt, ok := timemath.ParseDueDate(r.CompletedAtISO, loc)
			if !ok {
				completedAt = now
			}
			r.Countdown = timemath.FormatCompletionCountdown(completedAt, now)
		}
	} else {
		r.CompletedAtISO = ""
		if r.Countdown == "" {
			r.Countdown = timemath.FormatCountdown(dueAt, now)
		}
	}

	if r.CreatedAtLabel == "" {
		created := r.CreatedAt
		if created.IsZero() {
			created = now
		}
		r.CreatedAtLabel = timemath.FormatCreatedAtLabel(r.Source == model.SourceShare, created, now)
	}
	if r.Attachments == nil {
		r.Attachments = []model.Attachment{}
	}
	if r.Activity == nil {
		r.Activity = []model.ActivityEntry{}
	}
	return r
}

// normalizeISO keeps a zoned ISO string that denotes dueAt and otherwise
// replaces it with the canonical UTC form.
func normalizeISO(iso string, dueAt time.Time, loc *time.Location) string {
	if iso != "" {
		if parsed, ok := timemath.ParseDueDate(iso, loc); ok &&
			parsed.UnixMilli() == dueAt.UnixMilli() && timemath.HasZone(iso) {
			return iso
		}
	}
	return timemath.FormatISO(dueAt)
}
