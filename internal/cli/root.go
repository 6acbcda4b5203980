// Package cli implements the bwd command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/config"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/services"
)

// App holds what CLI commands need to reach the services.
type App struct {
	Config *config.Config

	// Options are passed to every Manager the commands open.
	Options []services.Option

	// IsTerminal reports whether stdout is a terminal. Reports are plain
	// text when it returns false or is nil.
	IsTerminal func() bool

	// RunTUI runs the dashboard. Defaults to the Bubble Tea program.
	RunTUI func(mgr *services.Manager) error

	mgr *services.Manager
}

// services opens the Manager on first use. The ledger watcher is only
// started when watch is set.
func (a *App) services(watch bool) (*services.Manager, error) {
	if a.mgr != nil {
		return a.mgr, nil
	}
	opts := append([]services.Option(nil), a.Options...)
	if !watch {
		opts = append(opts, services.WithoutWatcher())
	}
	mgr, err := services.NewManager(a.Config, opts...)
	if err != nil {
		return nil, err
	}
	a.mgr = mgr
	return mgr, nil
}

// Close releases the Manager if one was opened.
func (a *App) Close() error {
	if a.mgr == nil {
		return nil
	}
	err := a.mgr.Close()
	a.mgr = nil
	return err
}

func (a *App) styled() bool {
	return a.IsTerminal != nil && a.IsTerminal()
}

// NewRootCmd creates the top-level "bwd" command. Without a subcommand it
// starts the dashboard.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "bwd",
		Short: "Backlog workflow dashboard",
		Long: `Turn chat messages into Backlog issues and report on daily and
monthly activity.

Run without a subcommand to open the dashboard.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(app)
		},
	}

	root.AddCommand(
		newTUICmd(app),
		newReportCmd(app),
		newExportCmd(app),
		newDraftCmd(app),
		newSubmitCmd(app),
		newPrepCmd(app),
		newLedgerCmd(app),
		newVersionCmd(),
	)

	return root
}
