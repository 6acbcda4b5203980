package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/drafts"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/report"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/components"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/styles"
)

const chartWidth = 62

// printer writes reports as plain text, or with the dashboard's styles when
// writing to a terminal.
type printer struct {
	w      io.Writer
	loc    *time.Location
	styled bool
}

func (p printer) title(s string) {
	if p.styled {
		s = styles.TitleStyle.Render(s)
	}
	fmt.Fprintln(p.w, s)
}

func (p printer) section(s string) {
	if p.styled {
		s = styles.CardTitleStyle.Render(s)
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, s)
}

func (p printer) stat(label string, value any) {
	v := fmt.Sprint(value)
	if p.styled {
		v = styles.StatValueStyle.Render(v)
	}
	fmt.Fprintf(p.w, "  %-18s %s\n", label, v)
}

func (p printer) fetchError(err error) {
	msg := "Issues unavailable: " + report.Describe(err)
	if p.styled {
		msg = styles.ErrorTextStyle.Render(msg)
	}
	fmt.Fprintln(p.w, "  "+msg)
}

func (p printer) daily(r *models.DailyReport) {
	p.title(fmt.Sprintf("Daily report %s (%s)", r.Date, r.State))

	p.section("Ledger")
	p.stat("Drafts generated", r.DraftsGenerated)
	p.stat("Items recorded", len(r.ItemsCreated))
	if len(r.ItemsCreated) > 0 {
		fmt.Fprintln(p.w, "  "+strings.Join(r.ItemsCreated, ", "))
	}

	p.section("Issues created")
	if r.FetchErr != nil {
		p.fetchError(r.FetchErr)
		return
	}
	p.stat("Total", len(r.Issues))
	p.stat("Incomplete", r.IncompleteCount)
	if len(r.Issues) == 0 {
		return
	}
	fmt.Fprintln(p.w)
	for _, issue := range r.Issues {
		fmt.Fprintf(p.w, "  %-12s %-8s %s  %s  [%s]\n",
			issue.Key,
			issue.Status.Or("-"),
			issue.Created.In(p.loc).Format("15:04"),
			issue.Summary,
			issue.Assignee.Or("未割当"),
		)
	}
}

func (p printer) monthly(r *models.MonthlyReport) {
	p.title(fmt.Sprintf("Monthly report %s (%s)", r.YearMonth, r.State))

	p.section("Ledger")
	p.stat("Drafts generated", r.TotalDraftsGenerated)
	p.stat("Items recorded", r.TotalItemsRecorded)

	p.section("Issues created")
	if r.FetchErr != nil {
		p.fetchError(r.FetchErr)
	} else {
		p.stat("Total", r.TotalIssuesCreated)
		p.stat("Done", fmt.Sprintf("%d (%.0f%%)", r.DoneCount, components.Percent(r.DoneCount, r.TotalIssuesCreated)))

		if len(r.CountsByProject) > 0 {
			p.section("By project")
			labels, values := report.ProjectSeries(r.CountsByProject)
			for i, label := range labels {
				fmt.Fprintf(p.w, "  %-12s %.0f\n", label, values[i])
			}
		}
	}

	p.section("Per day")
	fmt.Fprintln(p.w, p.chart(r))
}

// chart plots tracker issues against ledger items per day. Without a
// terminal the series are drawn without colors.
func (p printer) chart(r *models.MonthlyReport) string {
	ledger := report.LedgerSeries(r.YearMonth, r.CountsByDate)
	issues := report.DaySeries(r.CountsByDayOfMonth)
	if len(issues) == 0 {
		issues = make([]float64, len(ledger))
	}
	caption := fmt.Sprintf("%s - issues vs recorded items", r.YearMonth)

	if p.styled {
		return components.RenderDualLineChart(issues, ledger, chartWidth, 8, caption)
	}
	return asciigraph.PlotMany([][]float64{issues, ledger},
		asciigraph.Height(8),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

func (p printer) ledgerRecords(records []models.LedgerRecord) {
	if len(records) == 0 {
		fmt.Fprintln(p.w, "No ledger records.")
		return
	}
	for _, rec := range records {
		fmt.Fprintf(p.w, "%s  drafts %-3d items %-3d %s\n",
			rec.Date, rec.DraftsGenerated, len(rec.ItemsCreated), strings.Join(rec.ItemsCreated, ","))
	}
}

func (p printer) draft(res *drafts.DraftResult) {
	p.title(res.Draft.Title)
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, res.Draft.Description)
	for _, w := range res.Warnings {
		if p.styled {
			w = styles.WarningTextStyle.Render(w)
		}
		fmt.Fprintln(p.w, "warning: "+w)
	}
}

func (p printer) codingPlan(plan *models.CodingPlan) {
	p.title("Coding plan " + plan.IssueKey)

	p.section("Tasks")
	for i, task := range plan.Tasks {
		fmt.Fprintf(p.w, "  %d. %s\n", i+1, task)
	}

	p.section("Branch")
	fmt.Fprintln(p.w, "  "+plan.BranchName)
	p.section("Commit message")
	fmt.Fprintln(p.w, "  "+plan.CommitMessage)
	if plan.Notes != "" {
		p.section("Notes")
		fmt.Fprintln(p.w, "  "+plan.Notes)
	}

	p.section("Git")
	for _, c := range plan.GitCommands {
		fmt.Fprintln(p.w, "  "+c)
	}
}
