package app

import (
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// LoadDailyMsg requests a daily report for Date.
type LoadDailyMsg struct {
	Date models.Date
}

// LoadMonthlyMsg requests a monthly report for Month.
type LoadMonthlyMsg struct {
	Month models.YearMonth
}

// DailyReportLoadedMsg carries a finished daily report, failed or not.
type DailyReportLoadedMsg struct {
	Report *models.DailyReport
}

// MonthlyReportLoadedMsg carries a finished monthly report, failed or not.
type MonthlyReportLoadedMsg struct {
	Report *models.MonthlyReport
}

// LedgerRefreshedMsg carries ledger numbers re-read after the ledger changed.
type LedgerRefreshedMsg struct {
	Today   models.DailySummary
	Daily   models.DailySummary
	Monthly models.MonthlySummary
	Month   models.YearMonth
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // ResourceDaily or ResourceMonthly
}

// ExportMsg requests a CSV export of the report shown on a tab.
type ExportMsg struct {
	Kind models.ReportKind
}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Error  error
	Record models.ExportRecord
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
