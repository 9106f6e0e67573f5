package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/followup/internal/app"
	"github.com/nhle/followup/internal/credential"
)

// testConfigFile writes a config pointing at a database in a temp dir.
// extra is appended verbatim as more YAML.
func testConfigFile(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "database: " + filepath.Join(dir, "reminders.db") + "\nowner: tester\nnotifications:\n  enabled: false\n"
	body += strings.Join(extra, "")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, configPath, nil, args...)
}

func runWithInput(t *testing.T, configPath string, in io.Reader, args ...string) (string, error) {
	t.Helper()

	var a *app.App
	root := newRootCmd(&a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	if in != nil {
		root.SetIn(in)
	}
	root.SetArgs(append([]string{"--config", configPath}, args...))

	err := root.ExecuteContext(context.Background())
	if a != nil {
		require.NoError(t, a.Close())
	}
	return out.String(), err
}

func TestAddListAndComplete(t *testing.T) {
	cfg := testConfigFile(t)

	out, err := run(t, cfg, "add", "Call", "the", "bank", "--date", "2030-05-01", "--time", "10:15")
	require.NoError(t, err)
	assert.Contains(t, out, "Call the bank")
	assert.Contains(t, out, "10:15 AM")

	out, err = run(t, cfg, "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Title": "Call the bank"`)

	out, err = run(t, cfg, "list", "--status", "upcoming")
	require.NoError(t, err)
	assert.Contains(t, out, "UPCOMING")

	_, err = run(t, cfg, "list", "--status", "someday")
	assert.Error(t, err)
}

func TestSettingsCommands(t *testing.T) {
	cfg := testConfigFile(t)

	out, err := run(t, cfg, "settings", "due-time", "08:30")
	require.NoError(t, err)
	assert.Contains(t, out, "Default due time: 08:30")

	out, err = run(t, cfg, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Default due time: 08:30")

	_, err = run(t, cfg, "settings", "due-time", "25:00")
	assert.Error(t, err)

	out, err = run(t, cfg, "settings", "presets", "90=After lunch", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "After lunch")
	assert.Contains(t, out, "+2 hours")
}

func TestUnknownIDFails(t *testing.T) {
	cfg := testConfigFile(t)

	_, err := run(t, cfg, "done", "nope")
	assert.ErrorContains(t, err, `no reminder matches "nope"`)
}

func TestParsePresets(t *testing.T) {
	got, err := parsePresets([]string{"30", " 60 = Hour "})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 30, got[0].Minutes)
	assert.Equal(t, "", got[0].Label)
	assert.Equal(t, 60, got[1].Minutes)
	assert.Equal(t, "Hour", got[1].Label)

	_, err = parsePresets([]string{"soon"})
	assert.Error(t, err)
}

func TestReadSecret(t *testing.T) {
	got, err := readSecret(strings.NewReader("hunter2\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	got, err = readSecret(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", got)

	_, err = readSecret(strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "12345678", shortID("1234567890"))
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")
	t.Setenv("FOLLOWUP_DATABASE", filepath.Join(dir, "reminders.db"))

	out, err := run(t, path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "reminders.db")

	_, err = run(t, path, "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, path, "init", "--force")
	assert.NoError(t, err)
}

func TestSnoozeMinutesBounds(t *testing.T) {
	cfg := testConfigFile(t)

	_, err := run(t, cfg, "add", "Call", "back", "--date", "2030-05-01", "--time", "10:00")
	require.NoError(t, err)
	out, err := run(t, cfg, "list", "--json")
	require.NoError(t, err)
	var views []struct{ ID string }
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	id := views[0].ID

	_, err = run(t, cfg, "snooze", id, "--minutes", "0")
	assert.ErrorContains(t, err, "--minutes must be between 1 and")

	_, err = run(t, cfg, "snooze", id, "--minutes", "153722867280912930")
	assert.ErrorContains(t, err, "--minutes must be between 1 and")

	out, err = run(t, cfg, "snooze", id, "--minutes", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "10:30 AM")
}

func TestInboxPasswordStoreAndDelete(t *testing.T) {
	t.Cleanup(credential.UseKeyring(keyring.NewArrayKeyring(nil)))
	cfg := testConfigFile(t, "share:\n  username: me@example.com\n")
	key := credential.ShareInboxKey("me@example.com")

	out, err := runWithInput(t, cfg, strings.NewReader("s3cret\n"), "inbox", "password")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored password for me@example.com")
	got, err := credential.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	out, err = run(t, cfg, "inbox", "password", "--delete")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed password for me@example.com")
	_, err = credential.Get(key)
	assert.ErrorIs(t, err, credential.ErrNotFound)
}

func TestInboxPasswordNeedsUsername(t *testing.T) {
	cfg := testConfigFile(t)

	_, err := runWithInput(t, cfg, strings.NewReader("s3cret\n"), "inbox", "password")
	assert.ErrorContains(t, err, "share.username is not configured")
}

func TestSnoozeHelpDescribesBase(t *testing.T) {
	long := newSnoozeCmd(nil).Long
	assert.Contains(t, long, "from its due time or from now, whichever")
	assert.NotContains(t, long, "Snooze a reminder from now")
}
