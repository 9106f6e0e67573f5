package model

import (
	"slices"
	"time"
)

// Status is the lifecycle state of a reminder relative to a reference time.
type Status string

// Status constants. Overdue, Today and Upcoming are derived from the due
// instant; Completed is only ever set by the completion lifecycle.
const (
	StatusOverdue   Status = "overdue"
	StatusToday     Status = "today"
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOverdue, StatusToday, StatusUpcoming, StatusCompleted:
		return true
	}
	return false
}

// MediaType describes what kind of content a reminder refers to.
type MediaType string

const (
	MediaText  MediaType = "text"
	MediaLink  MediaType = "link"
	MediaFile  MediaType = "file"
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaVoice MediaType = "voice"
)

// ParseMediaType maps a raw value to a MediaType, falling back to MediaText.
func ParseMediaType(s string) MediaType {
	switch m := MediaType(s); m {
	case MediaLink, MediaFile, MediaImage, MediaVideo, MediaVoice:
		return m
	}
	return MediaText
}

// Glyph returns the display glyph for the media type.
func (m MediaType) Glyph() string {
	switch m {
	case MediaLink:
		return "🔗"
	case MediaFile:
		return "📄"
	case MediaImage:
		return "🖼️"
	case MediaVideo:
		return "🎥"
	case MediaVoice:
		return "🎙️"
	default:
		return "📝"
	}
}

// Source records how a reminder entered the system.
type Source string

const (
	SourceManual Source = "manual"
	SourceShare  Source = "share"
)

// ParseSource maps a raw value to a Source; anything but "share" is manual.
func ParseSource(s string) Source {
	if Source(s) == SourceShare {
		return SourceShare
	}
	return SourceManual
}

// Label returns the short human label for the source.
func (s Source) Label() string {
	if s == SourceShare {
		return "Shared"
	}
	return "Manual"
}

// Default text for blank fields at creation.
const (
	DefaultTitle = "Untitled follow-up"
	DefaultNote  = "No notes yet."
)

// Attachment is a reference carried by a reminder.
type Attachment struct {
	Type  MediaType `json:"type"`
	Label string    `json:"label"`
	Href  string    `json:"href"`
}

// ActivityEntry is one line of a reminder's history.
type ActivityEntry struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Timestamp string `json:"timestamp"`
}

// Reminder is a single follow-up task.
type Reminder struct {
	// ID is the opaque identifier assigned at creation.
	ID string `json:"id" db:"id"`

	// OwnerID scopes the record to a user in persisted sessions.
	OwnerID string `json:"owner_id,omitempty" db:"owner_id"`

	Title     string    `json:"title" db:"title"`
	Note      string    `json:"note" db:"note"`
	MediaType MediaType `json:"media_type" db:"media_type"`
	Source    Source    `json:"source" db:"source"`

	// DueEpoch is the canonical due instant in milliseconds since the epoch.
	DueEpoch int64 `json:"due_epoch" db:"due_epoch"`

	// DueISO mirrors DueEpoch as an ISO-8601 string.
	DueISO string `json:"due_iso" db:"due_iso"`

	DueLabel  string `json:"due_label" db:"due_label"`
	Status    Status `json:"status" db:"status"`
	Countdown string `json:"countdown" db:"countdown"`

	// CompletedAtISO is set only while Status is StatusCompleted.
	CompletedAtISO string `json:"completed_at_iso,omitempty" db:"completed_at_iso"`

	CreatedAtLabel string          `json:"created_at_label" db:"created_at_label"`
	Attachments    []Attachment    `json:"attachments" db:"-"`
	Activity       []ActivityEntry `json:"activity" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsCompleted reports whether the reminder is in the completed state.
func (r Reminder) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// Due returns the due instant in local time.
func (r Reminder) Due() time.Time {
	return time.UnixMilli(r.DueEpoch)
}

// Clone returns a deep copy so callers cannot alias the owner's slices.
func (r Reminder) Clone() Reminder {
	c := r
	c.Attachments = slices.Clone(r.Attachments)
	c.Activity = slices.Clone(r.Activity)
	return c
}

// DuePayload is what the notification collaborator needs for one reminder.
type DuePayload struct {
	ID    string
	Title string
	Note  string
	Due   time.Time
}

// Payload extracts the notification payload.
func (r Reminder) Payload() DuePayload {
	return DuePayload{ID: r.ID, Title: r.Title, Note: r.Note, Due: r.Due()}
}
