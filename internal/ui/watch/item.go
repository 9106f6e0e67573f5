package watch

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/theme"
)

// Item wraps a projected reminder so it can be used in a bubbles/list.
type Item struct {
	View model.ViewModel
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.View.Title + " " + i.View.Note }

// ItemDelegate renders one reminder per line.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single reminder line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(it.View, index == m.Index()))
}

func renderLine(vm model.ViewModel, selected bool) string {
	prefix := " "
	if selected {
		prefix = "▸"
	}

	title := theme.TitleStyle.Render(vm.Title)
	if vm.Status == model.StatusCompleted {
		title = theme.CompletedTitleStyle.Render(vm.Title)
	}

	parts := []string{
		prefix,
		theme.StatusStyle(vm.Status).Render(theme.StatusLabel(vm.Status)),
		vm.Glyph,
		title,
		theme.MutedStyle.Render(vm.DueLabel + " · " + vm.Countdown),
	}
	if vm.Source == model.SourceShare {
		parts = append(parts, theme.SourceLabelStyle(vm.Source).Render(vm.SourceLabel))
	}
	if vm.Pending {
		parts = append(parts, theme.PendingStyle.Render("saving…"))
	}
	return strings.Join(parts, " ")
}
