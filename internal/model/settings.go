package model

// SnoozePreset is a named snooze offset.
type SnoozePreset struct {
	ID      string `json:"id" mapstructure:"id" yaml:"id"`
	Label   string `json:"label" mapstructure:"label" yaml:"label"`
	Minutes int    `json:"minutes" mapstructure:"minutes" yaml:"minutes"`
}

// ReminderSettings is the process-wide reminder configuration.
type ReminderSettings struct {
	// DefaultDueTime is an "HH:MM" 24-hour value used when no time is given.
	DefaultDueTime string `json:"default_due_time" mapstructure:"default_due_time" yaml:"default_due_time"`

	// SnoozePresets is ordered; the first entry is the default snooze.
	SnoozePresets []SnoozePreset `json:"snooze_presets" mapstructure:"snooze_presets" yaml:"snooze_presets"`
}

// DefaultDueTime is the built-in default due time.
const DefaultDueTime = "17:00"

// DefaultSnoozePresets returns a fresh copy of the built-in presets.
func DefaultSnoozePresets() []SnoozePreset {
	return []SnoozePreset{
		{ID: "preset-1h", Label: "+1h", Minutes: 60},
		{ID: "preset-3h", Label: "+3h", Minutes: 180},
		{ID: "preset-tomorrow", Label: "Tomorrow 9 AM", Minutes: 1020},
		{ID: "preset-nextmon", Label: "Next Mon 9 AM", Minutes: 4320},
	}
}

// DefaultReminderSettings returns the settings a fresh process starts with.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		DefaultDueTime: DefaultDueTime,
		SnoozePresets:  DefaultSnoozePresets(),
	}
}

// Clone returns a copy with its own preset slice.
func (s ReminderSettings) Clone() ReminderSettings {
	c := s
	c.SnoozePresets = append([]SnoozePreset(nil), s.SnoozePresets...)
	return c
}
