// Package daily provides the daily report tab.
package daily

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/app"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/services"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/components"
)

// keyMap defines the key bindings specific to the daily tab.
type keyMap struct {
	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the daily tab.
func defaultKeyMap() keyMap {
	return keyMap{
		PrevDay: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the daily tab state.
type Model struct {
	state    *app.State
	today    func() models.Date
	loc      *time.Location
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new daily model. svc may be nil, in which case "today" and
// times follow the local zone.
func New(state *app.State, svc *services.Manager) *Model {
	m := &Model{
		state:    state,
		loc:      time.Local,
		today:    func() models.Date { return models.DateOf(time.Now(), time.Local) },
		spinner:  components.NewReportSpinner(models.KindDaily),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
	if svc != nil {
		m.today = svc.Ledger().Today
		m.loc = svc.Reports().Location()
	}
	return m
}

// Init initializes the daily tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the daily tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.DailyReportLoadedMsg:
		m.viewport.GotoTop()
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.PrevDay):
		return load(m.state.ShiftDate(-1))

	case key.Matches(msg, m.keys.NextDay):
		// Nothing is recorded for days that have not happened yet.
		next := m.state.GetSelectedDate().AddDays(1)
		if next.After(m.today()) {
			return nil
		}
		m.state.SetSelectedDate(next)
		return load(next)

	case key.Matches(msg, m.keys.Today):
		today := m.today()
		m.state.SetSelectedDate(today)
		return load(today)

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

func load(date models.Date) tea.Cmd {
	return func() tea.Msg {
		return app.LoadDailyMsg{Date: date}
	}
}

// SetSize sets the available size for the daily tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.PrevDay,
		m.keys.NextDay,
		m.keys.Today,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevDay, m.keys.NextDay, m.keys.Today},
		{m.keys.Up, m.keys.Down},
	}
}
