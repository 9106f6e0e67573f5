package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// ReminderConfig seeds the reminder settings and engine options.
type ReminderConfig struct {
	DefaultDueTime string         `mapstructure:"default_due_time" yaml:"default_due_time"`
	SnoozePresets  []SnoozePreset `mapstructure:"snooze_presets" yaml:"snooze_presets"`

	// ActivityLimit caps each reminder's activity log; 0 keeps it unbounded.
	ActivityLimit int `mapstructure:"activity_limit" yaml:"activity_limit"`
}

// NotificationConfig controls local due-time notifications.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// MaxLeadHours skips scheduling reminders due further out than this.
	MaxLeadHours int `mapstructure:"max_lead_hours" yaml:"max_lead_hours"`
}

// ShareConfig describes the IMAP mailbox that shared items are sent to.
// The password lives in the system keyring, never in the file.
type ShareConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Host            string `mapstructure:"host" yaml:"host"`
	Port            string `mapstructure:"port" yaml:"port"`
	Username        string `mapstructure:"username" yaml:"username"`
	TLS             bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox         string `mapstructure:"mailbox" yaml:"mailbox"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database      string             `mapstructure:"database" yaml:"database"`
	Owner         string             `mapstructure:"owner" yaml:"owner"`
	Log           LogConfig          `mapstructure:"log" yaml:"log"`
	Reminders     ReminderConfig     `mapstructure:"reminders" yaml:"reminders"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Share         ShareConfig        `mapstructure:"share" yaml:"share"`
}

// Settings returns the reminder settings seeded by the config. Validation
// happens when they are applied to a settings store.
func (c *AppConfig) Settings() ReminderSettings {
	return ReminderSettings{
		DefaultDueTime: c.Reminders.DefaultDueTime,
		SnoozePresets:  append([]SnoozePreset(nil), c.Reminders.SnoozePresets...),
	}
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/followup/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "followup", "config.yaml")
}

// DefaultDatabasePath returns ~/.local/share/followup/reminders.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "reminders.db"
	}
	return filepath.Join(home, ".local", "share", "followup", "reminders.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DefaultDatabasePath(),
		Owner:    "local",
		Log:      LogConfig{Level: "warn"},
		Reminders: ReminderConfig{
			DefaultDueTime: DefaultDueTime,
			SnoozePresets:  DefaultSnoozePresets(),
		},
		Notifications: NotificationConfig{
			Enabled:      true,
			MaxLeadHours: 24 * 24,
		},
		Share: ShareConfig{
			Port:            "993",
			TLS:             true,
			Mailbox:         "INBOX",
			PollIntervalSec: 300,
		},
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FOLLOWUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration with
// environment overrides applied.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	// Set defaults so missing keys resolve to sensible values.
	def := defaultAppConfig()
	v.SetDefault("database", def.Database)
	v.SetDefault("owner", def.Owner)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("reminders.default_due_time", def.Reminders.DefaultDueTime)
	v.SetDefault("reminders.activity_limit", 0)
	v.SetDefault("notifications.enabled", def.Notifications.Enabled)
	v.SetDefault("notifications.max_lead_hours", def.Notifications.MaxLeadHours)
	v.SetDefault("share.enabled", false)
	v.SetDefault("share.host", "")
	v.SetDefault("share.username", "")
	v.SetDefault("share.port", def.Share.Port)
	v.SetDefault("share.tls", def.Share.TLS)
	v.SetDefault("share.mailbox", def.Share.Mailbox)
	v.SetDefault("share.poll_interval_sec", def.Share.PollIntervalSec)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if len(cfg.Reminders.SnoozePresets) == 0 {
		cfg.Reminders.SnoozePresets = DefaultSnoozePresets()
	}
	if cfg.Share.PollIntervalSec <= 0 {
		cfg.Share.PollIntervalSec = def.Share.PollIntervalSec
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("owner", cfg.Owner)
	v.Set("log", cfg.Log)
	v.Set("reminders", cfg.Reminders)
	v.Set("notifications", cfg.Notifications)
	v.Set("share", cfg.Share)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
