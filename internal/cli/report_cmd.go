package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/services"
)

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print daily and monthly reports",
	}

	cmd.AddCommand(
		newReportDailyCmd(app),
		newReportMonthlyCmd(app),
	)

	return cmd
}

func newReportDailyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "daily [YYYY-MM-DD]",
		Short: "Print the report for a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app.services(false)
			if err != nil {
				return err
			}
			date, err := dateArg(args, mgr)
			if err != nil {
				return err
			}

			r := mgr.BuildDailyReport(cmd.Context(), date)
			newPrinter(cmd, app, mgr).daily(r)
			return nil
		},
	}
}

func newReportMonthlyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "monthly [YYYY-MM]",
		Short: "Print the report for a month (default this month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app.services(false)
			if err != nil {
				return err
			}
			ym, err := monthArg(args, mgr)
			if err != nil {
				return err
			}

			r := mgr.BuildMonthlyReport(cmd.Context(), ym)
			newPrinter(cmd, app, mgr).monthly(r)
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write report issues to a CSV file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "daily [YYYY-MM-DD]",
			Short: "Export the issues created on a date (default today)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := app.services(false)
				if err != nil {
					return err
				}
				date, err := dateArg(args, mgr)
				if err != nil {
					return err
				}

				r := mgr.BuildDailyReport(cmd.Context(), date)
				rec, err := mgr.ExportDaily(cmd.Context(), r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", rec.Rows, rec.Path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "monthly [YYYY-MM]",
			Short: "Export the issues created in a month (default this month)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := app.services(false)
				if err != nil {
					return err
				}
				ym, err := monthArg(args, mgr)
				if err != nil {
					return err
				}

				r := mgr.BuildMonthlyReport(cmd.Context(), ym)
				rec, err := mgr.ExportMonthly(cmd.Context(), r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", rec.Rows, rec.Path)
				return nil
			},
		},
	)

	return cmd
}

func newPrinter(cmd *cobra.Command, app *App, mgr *services.Manager) printer {
	return printer{
		w:      cmd.OutOrStdout(),
		loc:    mgr.Reports().Location(),
		styled: app.styled(),
	}
}

// dateArg parses an optional YYYY-MM-DD argument, defaulting to today.
func dateArg(args []string, mgr *services.Manager) (models.Date, error) {
	if len(args) == 0 {
		return mgr.Ledger().Today(), nil
	}
	d, err := models.ParseDate(args[0])
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", args[0], err)
	}
	return d, nil
}

// monthArg parses an optional YYYY-MM argument, defaulting to this month.
func monthArg(args []string, mgr *services.Manager) (models.YearMonth, error) {
	if len(args) == 0 {
		return mgr.Ledger().Today().YearMonth(), nil
	}
	ym, err := models.ParseYearMonth(args[0])
	if err != nil {
		return models.YearMonth{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", args[0], err)
	}
	return ym, nil
}
