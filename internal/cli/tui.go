package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/app"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/services"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/tabs/daily"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/tabs/info"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/tabs/monthly"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(app)
		},
	}
}

func runDashboard(a *App) error {
	mgr, err := a.services(true)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	run := a.RunTUI
	if run == nil {
		run = runProgram
	}
	return run(mgr)
}

// runProgram runs the Bubble Tea dashboard until the user quits.
func runProgram(mgr *services.Manager) error {
	// The TUI owns the terminal; logs go to LOG_FILE or nowhere.
	logOut := io.Discard
	if path := mgr.Config().LogFile; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.SetOutput(logOut)
	defer logger.SetOutput(os.Stderr)

	model := app.NewModel(mgr)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		daily.New(state, mgr),   // Tab 0: Daily report
		monthly.New(state, mgr), // Tab 1: Monthly report
		info.New(state, mgr),    // Tab 2: Configuration and exports
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
