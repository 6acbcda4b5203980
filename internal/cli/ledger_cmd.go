package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// monthFlag is a YYYY-MM flag value.
type monthFlag struct {
	ym  models.YearMonth
	set bool
}

var _ pflag.Value = (*monthFlag)(nil)

func (f *monthFlag) String() string {
	if !f.set {
		return ""
	}
	return f.ym.String()
}

func (f *monthFlag) Set(s string) error {
	ym, err := models.ParseYearMonth(s)
	if err != nil {
		return fmt.Errorf("want YYYY-MM: %w", err)
	}
	f.ym = ym
	f.set = true
	return nil
}

func (f *monthFlag) Type() string { return "YYYY-MM" }

func newLedgerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the local activity ledger",
	}

	cmd.AddCommand(newLedgerShowCmd(app))

	return cmd
}

func newLedgerShowCmd(app *App) *cobra.Command {
	var month monthFlag
	var all bool

	cmd := &cobra.Command{
		Use:   "show [YYYY-MM-DD]",
		Short: "Show ledger records for a date, a month, or everything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app.services(false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			l := mgr.Ledger()
			p := newPrinter(cmd, app, mgr)

			// The store reads as empty when it cannot be parsed; say so.
			if err := l.Check(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			switch {
			case all:
				p.ledgerRecords(sortedRecords(l.All(ctx)))
			case month.set:
				summary := l.GetMonthlySummary(ctx, month.ym)
				p.title("Ledger " + month.ym.String())
				p.ledgerRecords(sortedRecords(l.GetRecordsForMonth(ctx, month.ym)))
				p.section("Totals")
				p.stat("Drafts generated", summary.TotalDrafts)
				p.stat("Items recorded", summary.TotalItems)
			default:
				date, err := dateArg(args, mgr)
				if err != nil {
					return err
				}
				summary := l.GetDailySummary(ctx, date)
				p.title("Ledger " + date.String())
				p.stat("Drafts generated", summary.DraftsGenerated)
				p.stat("Items recorded", len(summary.ItemsCreated))
				if len(summary.ItemsCreated) > 0 {
					fmt.Fprintln(p.w, "  "+strings.Join(summary.ItemsCreated, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().Var(&month, "month", "Show every record of a month")
	cmd.Flags().BoolVar(&all, "all", false, "Show every record")
	cmd.MarkFlagsMutuallyExclusive("month", "all")

	return cmd
}

// sortedRecords orders records by date; the ledger itself keeps no order.
func sortedRecords(records []models.LedgerRecord) []models.LedgerRecord {
	slices.SortFunc(records, func(a, b models.LedgerRecord) int {
		return strings.Compare(a.Date, b.Date)
	})
	return records
}
