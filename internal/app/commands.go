package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// errNoReport is returned when an export is requested before a report exists.
var errNoReport = errors.New("no report loaded yet")

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData loads today's daily report and the current month.
func loadInitialData(mgr *services.Manager, date models.Date, ym models.YearMonth) tea.Cmd {
	return tea.Batch(
		loadDailyReportCmd(mgr, date),
		loadMonthlyReportCmd(mgr, ym),
	)
}

// loadDailyReportCmd builds a daily report in the background.
func loadDailyReportCmd(mgr *services.Manager, date models.Date) tea.Cmd {
	return func() tea.Msg {
		return DailyReportLoadedMsg{Report: mgr.BuildDailyReport(context.Background(), date)}
	}
}

// loadMonthlyReportCmd builds a monthly report in the background.
func loadMonthlyReportCmd(mgr *services.Manager, ym models.YearMonth) tea.Cmd {
	return func() tea.Msg {
		return MonthlyReportLoadedMsg{Report: mgr.BuildMonthlyReport(context.Background(), ym)}
	}
}

// refreshLedgerCmd re-reads ledger numbers only; the tracker is not contacted.
func refreshLedgerCmd(mgr *services.Manager, date models.Date, ym models.YearMonth) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		l := mgr.Ledger()
		return LedgerRefreshedMsg{
			Today:   l.GetDailySummary(ctx, l.Today()),
			Daily:   l.GetDailySummary(ctx, date),
			Monthly: l.GetMonthlySummary(ctx, ym),
			Month:   ym,
		}
	}
}

// exportDailyCmd writes the daily report's issues as CSV.
func exportDailyCmd(mgr *services.Manager, r *models.DailyReport) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return ExportResultMsg{Error: errNoReport}
		}
		rec, err := mgr.ExportDaily(context.Background(), r)
		return ExportResultMsg{Record: rec, Error: err}
	}
}

// exportMonthlyCmd writes the monthly report's issues as CSV.
func exportMonthlyCmd(mgr *services.Manager, r *models.MonthlyReport) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return ExportResultMsg{Error: errNoReport}
		}
		rec, err := mgr.ExportMonthly(context.Background(), r)
		return ExportResultMsg{Record: rec, Error: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadDaily asks the root model to load a daily report.
func (c *Commands) LoadDaily(date models.Date) tea.Cmd {
	return func() tea.Msg { return LoadDailyMsg{Date: date} }
}

// LoadMonthly asks the root model to load a monthly report.
func (c *Commands) LoadMonthly(ym models.YearMonth) tea.Cmd {
	return func() tea.Msg { return LoadMonthlyMsg{Month: ym} }
}

// Export asks the root model to export the report of the given kind.
func (c *Commands) Export(kind models.ReportKind) tea.Cmd {
	return func() tea.Msg { return ExportMsg{Kind: kind} }
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
