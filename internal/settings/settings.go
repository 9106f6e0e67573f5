// Package settings holds the validated reminder settings: the default due
// time and the ordered snooze presets.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/timemath"
)

// ErrInvalidDueTime is returned when a default due time is not "HH:MM".
var ErrInvalidDueTime = errors.New("invalid due time")

// fallbackSnoozeMinutes is used when no preset is configured.
const fallbackSnoozeMinutes = 60

// Persister loads and saves settings for an owner. LoadSettings returns nil
// when nothing has been saved yet.
type Persister interface {
	LoadSettings(ctx context.Context, owner string) (*model.ReminderSettings, error)
	SaveSettings(ctx context.Context, owner string, s model.ReminderSettings) error
}

// Store owns the current settings. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current model.ReminderSettings
}

// New returns a store seeded from initial. An invalid due time falls back to
// the built-in default and presets are normalized.
func New(initial model.ReminderSettings) *Store {
	s := &Store{current: model.DefaultReminderSettings()}
	s.apply(initial)
	return s
}

// NewDefault returns a store with the built-in settings.
func NewDefault() *Store {
	return New(model.DefaultReminderSettings())
}

func (s *Store) apply(in model.ReminderSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timemath.IsValidTimeValue(in.DefaultDueTime) {
		s.current.DefaultDueTime = in.DefaultDueTime
	}
	s.current.SnoozePresets = NormalizePresets(in.SnoozePresets)
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() model.ReminderSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// DefaultDueTime returns the current "HH:MM" default.
func (s *Store) DefaultDueTime() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.DefaultDueTime
}

// DefaultSnoozeMinutes returns the first preset's minutes, or 60 when the
// list is empty.
func (s *Store) DefaultSnoozeMinutes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.current.SnoozePresets) == 0 {
		return fallbackSnoozeMinutes
	}
	return s.current.SnoozePresets[0].Minutes
}

// Preset finds a preset by ID or case-insensitive label.
func (s *Store) Preset(key string) (model.SnoozePreset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.current.SnoozePresets {
		if p.ID == key || strings.EqualFold(p.Label, key) {
			return p, true
		}
	}
	return model.SnoozePreset{}, false
}

// UpdateDefaultDueTime sets the default due time. Anything other than a
// strict 24-hour "HH:MM" value is rejected and leaves the store unchanged.
func (s *Store) UpdateDefaultDueTime(value string) error {
	if !timemath.IsValidTimeValue(value) {
		return fmt.Errorf("default due time %q: %w", value, ErrInvalidDueTime)
	}
	s.mu.Lock()
	s.current.DefaultDueTime = value
	s.mu.Unlock()
	return nil
}

// UpdateSnoozePresets replaces the preset list with its normalized form and
// returns what was stored.
func (s *Store) UpdateSnoozePresets(list []model.SnoozePreset) []model.SnoozePreset {
	normalized := NormalizePresets(list)
	s.mu.Lock()
	s.current.SnoozePresets = normalized
	s.mu.Unlock()
	return append([]model.SnoozePreset(nil), normalized...)
}

// Load replaces the settings with what p has stored for owner. Nothing
// stored leaves the current settings in place.
func (s *Store) Load(ctx context.Context, p Persister, owner string) error {
	saved, err := p.LoadSettings(ctx, owner)
	if err != nil {
		return fmt.Errorf("loading settings for %s: %w", owner, err)
	}
	if saved != nil {
		s.apply(*saved)
	}
	return nil
}

// Save writes the current settings for owner through p.
func (s *Store) Save(ctx context.Context, p Persister, owner string) error {
	if err := p.SaveSettings(ctx, owner, s.Snapshot()); err != nil {
		return fmt.Errorf("saving settings for %s: %w", owner, err)
	}
	return nil
}

// NormalizePresets drops presets without positive minutes, fills in missing
// labels and IDs, and falls back to the built-in presets when nothing
// usable is left.
func NormalizePresets(list []model.SnoozePreset) []model.SnoozePreset {
	out := make([]model.SnoozePreset, 0, len(list))
	for i, p := range list {
		if p.Minutes <= 0 {
			continue
		}
		label := strings.TrimSpace(p.Label)
		if label == "" {
			label = PresetLabel(p.Minutes)
		}
		id := p.ID
		if id == "" {
			id = newPresetID(i)
		}
		out = append(out, model.SnoozePreset{ID: id, Label: label, Minutes: p.Minutes})
	}
	if len(out) == 0 {
		return model.DefaultSnoozePresets()
	}
	return out
}

// PresetLabel synthesizes a label such as "+1 day", "+3 hours" or "+45 min".
func PresetLabel(minutes int) string {
	switch {
	case minutes%1440 == 0:
		return fmt.Sprintf("+%d %s", minutes/1440, plural(minutes/1440, "day"))
	case minutes%60 == 0:
		return fmt.Sprintf("+%d %s", minutes/60, plural(minutes/60, "hour"))
	default:
		return fmt.Sprintf("+%d min", minutes)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

func newPresetID(index int) string {
	return fmt.Sprintf("preset-%s-%d", uuid.NewString()[:4], index)
}
