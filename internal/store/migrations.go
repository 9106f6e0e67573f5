package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
	id               TEXT PRIMARY KEY,
	owner_id         TEXT NOT NULL,
	title            TEXT NOT NULL,
	note             TEXT NOT NULL DEFAULT '',
	media_type       TEXT NOT NULL DEFAULT 'text'
		CHECK(media_type IN ('text', 'link', 'file', 'image', 'video', 'voice')),
	source           TEXT NOT NULL DEFAULT 'manual' CHECK(source IN ('manual', 'share')),
	due_epoch        INTEGER NOT NULL,
	due_iso          TEXT NOT NULL,
	due_label        TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL
		CHECK(status IN ('overdue', 'today', 'upcoming', 'completed')),
	countdown        TEXT NOT NULL DEFAULT '',
	completed_at_iso TEXT NOT NULL DEFAULT '',
	created_at_label TEXT NOT NULL DEFAULT '',
	attachments      TEXT NOT NULL DEFAULT '[]',
	activity         TEXT NOT NULL DEFAULT '[]',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reminders_owner_due ON reminders(owner_id, due_epoch);
CREATE INDEX IF NOT EXISTS idx_reminders_status ON reminders(status);
CREATE INDEX IF NOT EXISTS idx_reminders_updated_at ON reminders(updated_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS reminder_settings (
	owner_id         TEXT PRIMARY KEY,
	default_due_time TEXT NOT NULL,
	snooze_presets   TEXT NOT NULL DEFAULT '[]',
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
