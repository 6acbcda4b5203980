// Package info provides the info tab: configuration, credentials and exports.
package info

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/app"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/services"
)

const recentExportLimit = 5

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload exports"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// exportsLoadedMsg carries the export history read from the database.
type exportsLoadedMsg struct {
	err     error
	exports []models.ExportRecord
}

// Model represents the info tab state.
type Model struct {
	state     *app.State
	services  *services.Manager
	exports   []models.ExportRecord
	exportErr error
	width     int
	height    int
	keys      keyMap
	viewport  viewport.Model
}

// New creates a new info model. svc may be nil.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return m.loadExportsCmd()
}

func (m *Model) loadExportsCmd() tea.Cmd {
	if m.services == nil {
		return nil
	}
	svc := m.services
	return func() tea.Msg {
		exports, err := svc.RecentExports(context.Background(), recentExportLimit)
		return exportsLoadedMsg{exports: exports, err: err}
	}
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case exportsLoadedMsg:
		m.exports = msg.exports
		m.exportErr = msg.err

	case app.ExportResultMsg:
		if msg.Error == nil {
			return m, m.loadExportsCmd()
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabInfo {
			return m, m.loadExportsCmd()
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.loadExportsCmd()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
