package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/config"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/styles"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var cfg *config.Config
	if m.services != nil {
		cfg = m.services.Config()
	}

	sections := []string{
		m.renderTitle(),
		m.renderCredentialsCard(cfg),
		m.renderConfigCard(cfg),
		m.renderActivityCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, exports and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

func (m *Model) renderCredentialsCard(cfg *config.Config) string {
	rows := []string{styles.CardTitleStyle.Render("Credentials"), ""}

	switch {
	case cfg == nil:
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	case len(cfg.MissingCredentials()) == 0:
		rows = append(rows, styles.SuccessTextStyle.Render("✓ Backlog and Gemini are configured"))
	default:
		rows = append(rows, styles.WarningTextStyle.Render("Missing settings:"))
		for _, name := range cfg.MissingCredentials() {
			rows = append(rows, "  "+styles.ErrorTextStyle.Render("✗ "+name))
		}
		rows = append(rows, "", styles.HelpStyle.Render("Set them in .env or the environment and restart."))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigCard renders the settings in effect.
func (m *Model) renderConfigCard(cfg *config.Config) string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if cfg == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		project := "all"
		if cfg.DefaultProjectID != nil {
			project = strconv.FormatInt(*cfg.DefaultProjectID, 10)
		}
		logFile := cfg.LogFile
		if logFile == "" {
			logFile = "stderr"
		}
		rows = append(rows,
			m.renderConfigRow("Backlog Space", orDash(cfg.SpaceURL)),
			m.renderConfigRow("Project Filter", project),
			m.renderConfigRow("Gemini Model", cfg.GeminiModel),
			m.renderConfigRow("Time Zone", cfg.Location.String()),
			m.renderConfigRow("Database", cfg.DatabasePath),
			m.renderConfigRow("Export Dir", cfg.ExportDir),
			m.renderConfigRow("CSV Prefix", cfg.CSVPrefix),
			m.renderConfigRow("HTTP Timeout", cfg.HTTPTimeout.String()),
			m.renderConfigRow("Log", cfg.LogLevel+" → "+logFile),
			m.renderConfigRow("Notifications", strconv.FormatBool(cfg.NotificationsEnabled)),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderActivityCard() string {
	rows := []string{styles.CardTitleStyle.Render("Activity"), ""}

	today := m.state.GetTodaySummary()
	rows = append(rows,
		m.renderConfigRow("Drafts Today", strconv.Itoa(today.DraftsGenerated)),
		m.renderConfigRow("Items Today", strconv.Itoa(len(today.ItemsCreated))),
		"",
		styles.HelpStyle.Render("Recent exports"),
	)

	switch {
	case m.exportErr != nil:
		rows = append(rows, styles.ErrorTextStyle.Render(m.exportErr.Error()))
	case len(m.exports) == 0:
		rows = append(rows, styles.HelpStyle.Render("  none yet (press e on a report tab)"))
	default:
		for _, e := range m.exports {
			rows = append(rows, fmt.Sprintf("  %s %-7s %-10s %4d rows  %s",
				e.CreatedAt.Format("01-02 15:04"), e.Kind, e.Period, e.Rows,
				styles.HelpStyle.Render(e.Path)))
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About bwd"),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}
	if !m.state.GetLastUpdated().IsZero() {
		rows = append(rows, m.renderConfigRow("Last Report", m.state.GetLastUpdated().Format("15:04:05")))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
