package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nhle/followup/internal/app"
	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/theme"
)

// shortIDLen is how much of an ID list output shows.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveID accepts a full ID or a unique prefix of one.
func resolveID(a *app.App, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("reminder id is required")
	}
	if _, ok := a.Session.Get(arg); ok {
		return arg, nil
	}

	var matches []string
	for _, r := range a.Session.Reminders() {
		if strings.HasPrefix(r.ID, arg) {
			matches = append(matches, r.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no reminder matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous: %d reminders match", arg, len(matches))
	}
}

func renderLine(vm model.ViewModel) string {
	title := theme.TitleStyle.Render(vm.Title)
	if vm.Status == model.StatusCompleted {
		title = theme.CompletedTitleStyle.Render(vm.Title)
	}

	parts := []string{
		theme.StatusStyle(vm.Status).Render(theme.StatusLabel(vm.Status)),
		vm.Glyph,
		title,
		theme.MutedStyle.Render(vm.DueLabel + " · " + vm.Countdown),
		theme.MutedStyle.Render(shortID(vm.ID)),
	}
	if vm.Source == model.SourceShare {
		parts = append(parts, theme.SourceLabelStyle(vm.Source).Render(vm.SourceLabel))
	}
	if vm.Pending {
		parts = append(parts, theme.PendingStyle.Render("saving…"))
	}
	return strings.Join(parts, " ")
}

func renderList(w io.Writer, views []model.ViewModel) {
	if len(views) == 0 {
		fmt.Fprintln(w, theme.MutedStyle.Render("No reminders."))
		return
	}
	for _, vm := range views {
		fmt.Fprintln(w, renderLine(vm))
	}
}

func renderDetail(vm model.ViewModel) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", vm.Glyph, theme.TitleStyle.Render(vm.Title))
	fmt.Fprintf(&b, "%s %s\n", theme.StatusStyle(vm.Status).Render(theme.StatusLabel(vm.Status)), vm.Countdown)
	fmt.Fprintf(&b, "Due: %s\n", vm.DueLabel)
	fmt.Fprintf(&b, "%s\n", theme.MutedStyle.Render(vm.CreatedAtLabel))
	fmt.Fprintf(&b, "ID: %s\n\n", vm.ID)
	fmt.Fprintln(&b, vm.Note)

	if len(vm.Attachments) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, theme.HeaderStyle.Render("Attachments"))
		for _, att := range vm.Attachments {
			fmt.Fprintf(&b, "%s %s %s\n", att.Type.Glyph(), att.Label, theme.MutedStyle.Render(att.Href))
		}
	}

	if len(vm.Activity) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, theme.HeaderStyle.Render("Activity"))
		for _, act := range vm.Activity {
			fmt.Fprintf(&b, "%s %s\n", act.Label, theme.MutedStyle.Render(act.Timestamp))
		}
	}

	return theme.DetailPanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
