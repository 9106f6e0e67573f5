package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/followup/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for section headers such as "Upcoming" or "Progress".
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// DetailPanelStyle wraps the single-reminder detail view.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle renders reminder titles in lists.
var TitleStyle = lipgloss.NewStyle().Bold(true)

// CompletedTitleStyle renders titles of completed reminders.
var CompletedTitleStyle = lipgloss.NewStyle().
	Strikethrough(true).
	Foreground(ColorGray)

// MutedStyle is used for ids, notes and secondary labels.
var MutedStyle = lipgloss.NewStyle().Foreground(ColorGray)

// PendingStyle marks records whose write has not been confirmed yet.
var PendingStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta).
	Italic(true)

// ErrorStyle renders error lines.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// StatusStyle returns a color-coded style for the given reminder status.
func StatusStyle(status model.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusOverdue:
		return base.Foreground(ColorRed)
	case model.StatusToday:
		return base.Foreground(ColorYellow)
	case model.StatusUpcoming:
		return base.Foreground(ColorBlue)
	case model.StatusCompleted:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// StatusLabel returns the short badge text for a status.
func StatusLabel(status model.Status) string {
	switch status {
	case model.StatusOverdue:
		return "OVERDUE"
	case model.StatusToday:
		return "TODAY"
	case model.StatusUpcoming:
		return "UPCOMING"
	case model.StatusCompleted:
		return "DONE"
	default:
		return string(status)
	}
}

// SourceLabelStyle returns a color-coded style for the reminder source.
func SourceLabelStyle(source model.Source) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)

	if source == model.SourceShare {
		return base.Foreground(ColorMagenta)
	}
	return base.Foreground(ColorGray)
}

// Bar renders a horizontal bar of count cells scaled against maxCount, at most
// width cells wide. Used by the weekly progress chart.
func Bar(count, maxCount, width int) string {
	if maxCount <= 0 || count <= 0 || width <= 0 {
		return ""
	}
	n := min(count*width/maxCount, width)
	if n == 0 {
		n = 1
	}
	cells := make([]rune, n)
	for i := range cells {
		cells[i] = '█'
	}
	return lipgloss.NewStyle().Foreground(ColorGreen).Render(string(cells))
}
