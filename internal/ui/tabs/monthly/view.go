package monthly

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/app"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/report"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/components"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/styles"
)

// View renders the monthly tab.
func (m *Model) View() string {
	r := m.state.GetMonthlyReport()
	if r == nil && (m.state.IsLoading(app.ResourceInitial) || m.state.IsLoading(app.ResourceMonthly)) {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{m.renderHeader(r)}
	if r == nil {
		sections = append(sections, styles.HelpStyle.Render("No report loaded. Press r to load."))
	} else {
		sections = append(sections,
			m.renderSummaryCard(r),
			m.renderDailyChart(r),
			m.renderProjectCard(r),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderHeader(r *models.MonthlyReport) string {
	ym := m.state.GetSelectedMonth()
	title := styles.TitleStyle.Render("Monthly Report")
	indicator := styles.PeriodStyle.Render(fmt.Sprintf("◀ %s ▶", ym))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", indicator)

	var status string
	switch {
	case m.state.IsLoading(app.ResourceMonthly):
		status = m.spinner.View() + " " + styles.HelpStyle.Render(
			strings.ToLower(m.state.GetReportState(models.KindMonthly).String())+"...")
	case r != nil && r.YearMonth != ym:
		status = styles.WarningTextStyle.Render("Showing " + r.YearMonth.String())
	case r != nil:
		spark := components.RenderSparkline(ledgerSeries(r), r.YearMonth.DaysInMonth())
		status = styles.HelpStyle.Render("Items per day ") +
			lipgloss.NewStyle().Foreground(styles.Ledger).Render(spark)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, status, "")
}

func (m *Model) renderSummaryCard(r *models.MonthlyReport) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Summary")),
		"",
		stat("Drafts generated", r.TotalDraftsGenerated),
		stat("Items recorded", r.TotalItemsRecorded),
	}

	if r.FetchErr != nil {
		rows = append(rows,
			"",
			fmt.Sprintf("  %s %s", styles.ErrorTextStyle.Render("Error:"), report.Describe(r.FetchErr)),
			styles.HelpStyle.Render("  Only ledger numbers are available for this month."),
		)
	} else {
		rows = append(rows,
			stat("Issues created", r.TotalIssuesCreated),
			stat("Done", r.DoneCount),
			"",
			"  "+m.completion.ViewAt(m.animation.CurrentPercent, r.DoneCount, r.TotalIssuesCreated, "Completion", cardWidth-8),
		)
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

func (m *Model) renderDailyChart(r *models.MonthlyReport) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Per Day")),
		"",
	}

	chartWidth := max(cardWidth-12, 30)
	chart := components.RenderDualLineChart(
		report.DaySeries(r.CountsByDayOfMonth),
		ledgerSeries(r),
		chartWidth, 8,
		fmt.Sprintf("%s - issues (blue) vs recorded items (red)", r.YearMonth),
	)
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	rows = append(rows, "", "  "+components.RenderLegend([]components.LegendItem{
		{Label: "Backlog issues", Color: components.ChartTrackerColor},
		{Label: "Ledger items", Color: components.ChartLedgerColor},
	}))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderProjectCard(r *models.MonthlyReport) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("▤")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("By Project")),
		"",
	}

	labels, values := report.ProjectSeries(r.CountsByProject)
	if len(values) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No issues this month"))
	} else {
		chart := components.RenderBarChart(values, labels, cardWidth-8)
		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// ledgerSeries spreads the ledger's per-date item counts over the days of
// the report's month.
func ledgerSeries(r *models.MonthlyReport) []float64 {
	return report.LedgerSeries(r.YearMonth, r.CountsByDate)
}
