package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Owner)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DefaultDueTime, cfg.Reminders.DefaultDueTime)
	assert.Equal(t, DefaultSnoozePresets(), cfg.Reminders.SnoozePresets)
	assert.Equal(t, 0, cfg.Reminders.ActivityLimit)
	assert.True(t, cfg.Notifications.Enabled)
	assert.False(t, cfg.Share.Enabled)
	assert.Equal(t, "INBOX", cfg.Share.Mailbox)
	assert.Equal(t, 300, cfg.Share.PollIntervalSec)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `owner: alice
reminders:
  default_due_time: "08:15"
  activity_limit: 20
  snooze_presets:
    - id: quick
      label: Quick
      minutes: 10
share:
  poll_interval_sec: -5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("FOLLOWUP_OWNER", "bob")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bob", cfg.Owner)
	assert.Equal(t, "08:15", cfg.Reminders.DefaultDueTime)
	assert.Equal(t, 20, cfg.Reminders.ActivityLimit)
	assert.Equal(t, []SnoozePreset{{ID: "quick", Label: "Quick", Minutes: 10}}, cfg.Reminders.SnoozePresets)
	assert.Equal(t, 300, cfg.Share.PollIntervalSec)

	s := cfg.Settings()
	assert.Equal(t, "08:15", s.DefaultDueTime)
	s.SnoozePresets[0].Minutes = 99
	assert.Equal(t, 10, cfg.Reminders.SnoozePresets[0].Minutes)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Owner = "carol"
	cfg.Reminders.DefaultDueTime = "07:00"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "carol", loaded.Owner)
	assert.Equal(t, "07:00", loaded.Reminders.DefaultDueTime)
}
