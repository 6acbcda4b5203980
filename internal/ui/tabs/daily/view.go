package daily

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/app"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/report"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/components"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/styles"
)

const (
	keyWidth      = 12
	statusWidth   = 10
	assigneeWidth = 12
	timeWidth     = 5
)

// View renders the daily tab.
func (m *Model) View() string {
	r := m.state.GetDailyReport()
	if r == nil && (m.state.IsLoading(app.ResourceInitial) || m.state.IsLoading(app.ResourceDaily)) {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{m.renderHeader(r)}
	if r == nil {
		sections = append(sections, styles.HelpStyle.Render("No report loaded. Press r to load."))
	} else {
		sections = append(sections, m.renderLedgerCard(r), m.renderIssuesCard(r))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderHeader(r *models.DailyReport) string {
	date := m.state.GetSelectedDate()
	title := styles.TitleStyle.Render("Daily Report")

	label := fmt.Sprintf("◀ %s (%s) ▶", date, date.Start(m.loc).Weekday().String()[:3])
	if date == m.today() {
		label = fmt.Sprintf("◀ %s (today)", date)
	}
	indicator := styles.PeriodStyle.Render(label)

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", indicator)

	var status string
	switch {
	case m.state.IsLoading(app.ResourceDaily):
		status = m.spinner.View() + " " + styles.HelpStyle.Render(
			strings.ToLower(m.state.GetReportState(models.KindDaily).String())+"...")
	case r != nil && r.Date != date:
		status = styles.WarningTextStyle.Render("Showing " + r.Date.String())
	case r != nil && r.State == models.ReportReady:
		status = styles.HelpStyle.Render("Updated " + m.state.GetLastUpdated().Format("15:04:05"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, status, "")
}

func (m *Model) renderLedgerCard(r *models.DailyReport) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Ledger).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Workflow Ledger")),
		"",
		stat("Drafts generated", r.DraftsGenerated),
		stat("Items created", len(r.ItemsCreated)),
	}

	if len(r.ItemsCreated) > 0 {
		keys := ansi.Truncate(strings.Join(r.ItemsCreated, ", "), cardWidth-8, "…")
		rows = append(rows, "  "+styles.HelpStyle.Render(keys))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func stat(label string, n int) string {
	return fmt.Sprintf("  %s %s",
		styles.StatLabelStyle.Width(18).Render(label),
		styles.StatValueStyle.Render(fmt.Sprintf("%d", n)),
	)
}

func (m *Model) renderIssuesCard(r *models.DailyReport) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Tracker).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Issues Created")),
		"",
	}

	switch {
	case r.FetchErr != nil:
		rows = append(rows,
			fmt.Sprintf("  %s %s", styles.ErrorTextStyle.Render("Error:"), report.Describe(r.FetchErr)),
			styles.HelpStyle.Render("  Ledger numbers above are still current."),
		)
	case len(r.Issues) == 0:
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No issues created on this day")))
	default:
		done := len(r.Issues) - r.IncompleteCount
		rows = append(rows,
			stat("Total", len(r.Issues)),
			stat("Incomplete", r.IncompleteCount),
			"  "+components.SimpleCompletionBar(done, len(r.Issues), "Done", cardWidth-8),
			"",
		)
		rows = append(rows, m.renderTable(r.Issues, cardWidth-4)...)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTable(issues []models.Issue, width int) []string {
	summaryWidth := max(width-keyWidth-statusWidth-assigneeWidth-timeWidth-4, 10)

	header := strings.Join([]string{
		cell("課題番号", keyWidth),
		cell("タイトル", summaryWidth),
		cell("ステータス", statusWidth),
		cell("担当者", assigneeWidth),
		cell("作成", timeWidth),
	}, " ")
	lines := []string{styles.TableHeaderStyle.Render(header)}

	for _, issue := range issues {
		statusStyle := styles.GetStatusStyle(issue.Status.Or(""), report.IsDone(issue))
		line := strings.Join([]string{
			cell(issue.Key, keyWidth),
			cell(issue.Summary, summaryWidth),
			statusStyle.Render(cell(issue.Status.Or("-"), statusWidth)),
			cell(issue.Assignee.Or("未割当"), assigneeWidth),
			styles.HelpStyle.Render(cell(issue.Created.In(m.loc).Format("15:04"), timeWidth)),
		}, " ")
		lines = append(lines, line)
	}
	return lines
}

// cell fits s into exactly width terminal cells.
func cell(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
