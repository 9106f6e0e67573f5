package model

import "time"

// ViewModel is a reminder projected against a reference time for display.
// It is recomputed on every render and never stored.
type ViewModel struct {
	ID             string
	Title          string
	Note           string
	MediaType      MediaType
	Glyph          string
	Source         Source
	SourceLabel    string
	Status         Status
	DueLabel       string
	Countdown      string
	Due            time.Time
	CompletedAt    *time.Time
	CreatedAtLabel string
	Attachments    []Attachment
	Activity       []ActivityEntry

	// Pending is set by persisted sessions while a write is unconfirmed.
	Pending bool
}
