package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/followup/internal/model"
)

// LoadSettings returns owner's saved settings, or nil when none were saved.
func (s *SQLiteStore) LoadSettings(ctx context.Context, owner string) (*model.ReminderSettings, error) {
	var row struct {
		DefaultDueTime string `db:"default_due_time"`
		SnoozePresets  string `db:"snooze_presets"`
	}
	err := s.db.GetContext(ctx, &row,
		"SELECT default_due_time, snooze_presets FROM reminder_settings WHERE owner_id = ?", owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading settings for %s: %w", owner, err)
	}

	out := &model.ReminderSettings{DefaultDueTime: row.DefaultDueTime}
	if row.SnoozePresets != "" {
		if err := json.Unmarshal([]byte(row.SnoozePresets), &out.SnoozePresets); err != nil {
			return nil, fmt.Errorf("unmarshaling snooze presets for %s: %w", owner, err)
		}
	}
	return out, nil
}

// SaveSettings inserts or replaces owner's settings.
func (s *SQLiteStore) SaveSettings(ctx context.Context, owner string, settings model.ReminderSettings) error {
	presets, err := marshalList(settings.SnoozePresets)
	if err != nil {
		return fmt.Errorf("marshaling snooze presets for %s: %w", owner, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reminder_settings (owner_id, default_due_time, snooze_presets, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			default_due_time = excluded.default_due_time,
			snooze_presets = excluded.snooze_presets,
			updated_at = excluded.updated_at`,
		owner, settings.DefaultDueTime, presets, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving settings for %s: %w", owner, err)
	}
	return nil
}
