// Package monthly provides the monthly report tab.
package monthly

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

const animationDuration = 1.5 // seconds

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the monthly tab.
type keyMap struct {
	PrevMonth key.Binding
	NextMonth key.Binding
	ThisMonth key.Binding
	Up        key.Binding
	Down      key.Binding
}

// defaultKeyMap returns the default key bindings for the monthly tab.
func defaultKeyMap() keyMap {
	return keyMap{
		PrevMonth: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next month"),
		),
		ThisMonth: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "this month"),
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

// AnimationState eases the completion bar from one month's value to the next.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the monthly tab state.
type Model struct {
	state      *app.State
	today      func() models.Date
	spinner    components.LoadingSpinner
	animation  AnimationState
	keys       keyMap
	viewport   viewport.Model
	completion components.CompletionBar
	width      int
	height     int
}

// New creates a new monthly model. svc may be nil.
func New(state *app.State, svc *services.Manager) *Model {
	m := &Model{
		state:      state,
		today:      func() models.Date { return models.DateOf(time.Now(), time.Local) },
		spinner:    components.NewReportSpinner(models.KindMonthly),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
		completion: components.NewCompletionBar(),
	}
	if svc != nil {
		m.today = svc.Ledger().Today
	}
	return m
}

// Init initializes the monthly tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the monthly tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case animationTickMsg:
		if m.stepAnimation(time.Time(msg)) {
			cmds = append(cmds, animationTickCmd())
		}

	case app.MonthlyReportLoadedMsg, app.TabSwitchMsg:
		m.viewport.GotoTop()
		if m.syncAnimationTarget(time.Now()) {
			cmds = append(cmds, animationTickCmd())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.PrevMonth):
		return load(m.state.ShiftMonth(-1))

	case key.Matches(msg, m.keys.NextMonth):
		next := m.state.GetSelectedMonth().AddMonths(1)
		if next.FirstDay().After(m.today()) {
			return nil
		}
		m.state.SetSelectedMonth(next)
		return load(next)

	case key.Matches(msg, m.keys.ThisMonth):
		ym := m.today().YearMonth()
		m.state.SetSelectedMonth(ym)
		return load(ym)

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

func load(ym models.YearMonth) tea.Cmd {
	return func() tea.Msg {
		return app.LoadMonthlyMsg{Month: ym}
	}
}

// syncAnimationTarget points the animation at the stored report's completion
// and reports whether the bar still has to move.
func (m *Model) syncAnimationTarget(now time.Time) bool {
	r := m.state.GetMonthlyReport()
	if r == nil {
		return false
	}
	target := components.Percent(r.DoneCount, r.TotalIssuesCreated)
	if target != m.animation.TargetPercent {
		m.animation.StartPercent = m.animation.CurrentPercent
		m.animation.TargetPercent = target
		m.animation.StartTime = now
	}
	return m.animation.CurrentPercent != m.animation.TargetPercent
}

// stepAnimation advances the bar with an ease-out curve and reports whether
// another frame is needed.
func (m *Model) stepAnimation(now time.Time) bool {
	a := &m.animation
	if a.CurrentPercent == a.TargetPercent {
		return false
	}

	elapsed := now.Sub(a.StartTime).Seconds()
	if elapsed >= animationDuration {
		a.CurrentPercent = a.TargetPercent
		return false
	}

	progress := elapsed / animationDuration
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	a.CurrentPercent = a.StartPercent + (a.TargetPercent-a.StartPercent)*ease
	return true
}

// SetSize sets the available size for the monthly tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.PrevMonth,
		m.keys.NextMonth,
		m.keys.ThisMonth,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevMonth, m.keys.NextMonth, m.keys.ThisMonth},
		{m.keys.Up, m.keys.Down},
	}
}
