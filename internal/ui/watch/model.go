// Package watch is the long-running terminal view: it re-projects the
// reminder collection on every tick and shows due notifications and share
// intake results as they arrive.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/share"
	"github.com/nhle/followup/internal/theme"
)

// maxNotices is how many recent notices stay on screen.
const maxNotices = 5

// Reminders is the slice of the persisted session the view needs.
type Reminders interface {
	Views(now time.Time, f engine.Filter) []model.ViewModel
	Complete(ctx context.Context, id string) (model.Reminder, bool, error)
	Snooze(ctx context.Context, id string) (model.Reminder, bool, error)
}

// TickMsg re-projects the collection against the current time.
type TickMsg time.Time

// DueMsg is sent when a reminder comes due.
type DueMsg model.DuePayload

// IntakeMsg carries one share intake pass.
type IntakeMsg share.Result

type keyMap struct {
	Complete key.Binding
	Snooze   key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Snooze, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Complete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "complete")),
	Snooze:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snooze")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the watch view.
type Model struct {
	ctx       context.Context
	reminders Reminders
	events    Events
	now       func() time.Time
	interval  time.Duration
	header    string

	list    list.Model
	help    help.Model
	keys    keyMap
	notices []string
	width   int
	height  int
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the time source used for projection.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithTickInterval sets how often the collection is re-projected.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithEvents feeds background messages (DueMsg, IntakeMsg) into the view.
func WithEvents(events Events) Option {
	return func(m *Model) { m.events = events }
}

// WithHeader sets the status line shown above the list.
func WithHeader(s string) Option {
	return func(m *Model) { m.header = s }
}

// New builds the view and takes a first projection.
func New(ctx context.Context, r Reminders, opts ...Option) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, 80, 20)
	l.Title = "Reminders"
	l.Styles.Title = theme.HeaderStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	m := Model{
		ctx:       ctx,
		reminders: r,
		now:       time.Now,
		interval:  time.Second,
		list:      l,
		help:      help.New(),
		keys:      defaultKeys,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	return m
}

// Init starts the tick and, when wired, the event feed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForEvent())
}

// Update handles messages for the watch view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, max(msg.Height-maxNotices-4, 3))
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.refresh(), m.tick())

	case DueMsg:
		m.notice(theme.StatusStyle(model.StatusToday).Render("DUE") + " " + msg.Title)
		return m, tea.Batch(m.refresh(), m.waitForEvent())

	case IntakeMsg:
		if msg.Err != nil {
			m.notice(theme.ErrorStyle.Render("share intake: " + msg.Err.Error()))
		}
		if msg.Created > 0 {
			m.notice(fmt.Sprintf("Imported %d shared item(s)", msg.Created))
		}
		return m, tea.Batch(m.refresh(), m.waitForEvent())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Complete):
			m.apply("Completed", m.reminders.Complete)
			return m, m.refresh()
		case key.Matches(msg, m.keys.Snooze):
			m.apply("Snoozed", m.reminders.Snooze)
			return m, m.refresh()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the header, the list, recent notices and key help.
func (m Model) View() string {
	var b strings.Builder
	if m.header != "" {
		b.WriteString(theme.MutedStyle.Render(m.header))
		b.WriteString("\n")
	}
	if len(m.list.Items()) == 0 {
		b.WriteString(theme.MutedStyle.Render("No reminders."))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")
	for _, n := range m.notices {
		b.WriteString(n)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Notices returns the recent notices, oldest first.
func (m Model) Notices() []string {
	return append([]string(nil), m.notices...)
}

// Selected returns the highlighted reminder.
func (m Model) Selected() (model.ViewModel, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.ViewModel{}, false
	}
	return it.View, true
}

func (m *Model) refresh() tea.Cmd {
	views := m.reminders.Views(m.now(), engine.Filter{})
	items := make([]list.Item, len(views))
	for i, vm := range views {
		items[i] = Item{View: vm}
	}
	return m.list.SetItems(items)
}

func (m *Model) apply(verb string, fn func(context.Context, string) (model.Reminder, bool, error)) {
	vm, ok := m.Selected()
	if !ok {
		return
	}
	_, changed, err := fn(m.ctx, vm.ID)
	switch {
	case err != nil:
		m.notice(theme.ErrorStyle.Render(strings.ToLower(verb) + ": " + err.Error()))
	case changed:
		m.notice(verb + " " + vm.Title)
	}
}

func (m *Model) notice(s string) {
	stamp := theme.MutedStyle.Render(m.now().Format("3:04 PM"))
	m.notices = append(m.notices, stamp+" "+s)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
