// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// Loading resources.
const (
	ResourceInitial = "initial"
	ResourceDaily   = "daily"
	ResourceMonthly = "monthly"
	ResourceExport  = "export"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Daily   bool
	Monthly bool
	Export  bool
}

// State is shared between the root model and the tabs.
type State struct {
	LastUpdated time.Time

	Daily   *models.DailyReport
	Monthly *models.MonthlyReport

	LastExport *models.ExportRecord

	reportStates  map[models.ReportKind]models.ReportState
	notifications []Notification

	TodaySummary models.DailySummary

	SelectedDate  models.Date
	SelectedMonth models.YearMonth

	Loading LoadingState

	mu sync.RWMutex
}

// NewState creates the initial state with date and month set to today.
func NewState() *State {
	today := models.DateOf(time.Now(), time.Local)
	return &State{
		SelectedDate:  today,
		SelectedMonth: today.YearMonth(),
		reportStates:  make(map[models.ReportKind]models.ReportState),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceDaily:
		s.Loading.Daily = loading
	case ResourceMonthly:
		s.Loading.Monthly = loading
	case ResourceExport:
		s.Loading.Export = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Daily ||
		s.Loading.Monthly ||
		s.Loading.Export
}

// IsLoading reports whether resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case ResourceInitial:
		return s.Loading.Initial
	case ResourceDaily:
		return s.Loading.Daily
	case ResourceMonthly:
		return s.Loading.Monthly
	case ResourceExport:
		return s.Loading.Export
	}
	return false
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, ResourceInitial)
	}
	if s.Loading.Daily {
		resources = append(resources, ResourceDaily)
	}
	if s.Loading.Monthly {
		resources = append(resources, ResourceMonthly)
	}
	if s.Loading.Export {
		resources = append(resources, ResourceExport)
	}
	return resources
}

// SetDailyReport stores the latest daily report. The most recent result
// wins even if it was requested earlier than the one it replaces.
func (s *State) SetDailyReport(r *models.DailyReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Daily = r
	s.LastUpdated = time.Now()
}

// GetDailyReport returns the latest daily report, or nil.
func (s *State) GetDailyReport() *models.DailyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Daily
}

// SetMonthlyReport stores the latest monthly report.
func (s *State) SetMonthlyReport(r *models.MonthlyReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Monthly = r
	s.LastUpdated = time.Now()
}

// GetMonthlyReport returns the latest monthly report, or nil.
func (s *State) GetMonthlyReport() *models.MonthlyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Monthly
}

// ApplyLedger replaces the ledger half of the stored reports, leaving the
// tracker half untouched. Summaries for another date or month are ignored.
func (s *State) ApplyLedger(daily models.DailySummary, monthly models.MonthlySummary, ym models.YearMonth) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Daily != nil && s.Daily.Date.String() == daily.Date {
		updated := *s.Daily
		updated.DraftsGenerated = daily.DraftsGenerated
		updated.ItemsCreated = daily.ItemsCreated
		s.Daily = &updated
	}
	if s.Monthly != nil && s.Monthly.YearMonth == ym {
		updated := *s.Monthly
		updated.TotalDraftsGenerated = monthly.TotalDrafts
		updated.TotalItemsRecorded = monthly.TotalItems
		updated.CountsByDate = monthly.CountsByDate
		s.Monthly = &updated
	}
}

// SetSelectedDate changes the date shown on the daily tab.
func (s *State) SetSelectedDate(d models.Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedDate = d
}

// GetSelectedDate returns the date shown on the daily tab.
func (s *State) GetSelectedDate() models.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SelectedDate
}

// ShiftDate moves the selected date by days and returns it.
func (s *State) ShiftDate(days int) models.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedDate = s.SelectedDate.AddDays(days)
	return s.SelectedDate
}

// SetSelectedMonth changes the month shown on the monthly tab.
func (s *State) SetSelectedMonth(ym models.YearMonth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedMonth = ym
}

// GetSelectedMonth returns the month shown on the monthly tab.
func (s *State) GetSelectedMonth() models.YearMonth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SelectedMonth
}

// ShiftMonth moves the selected month by months and returns it.
func (s *State) ShiftMonth(months int) models.YearMonth {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedMonth = s.SelectedMonth.AddMonths(months)
	return s.SelectedMonth
}

// SetReportState records the latest state of a report build.
func (s *State) SetReportState(kind models.ReportKind, state models.ReportState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportStates[kind] = state
}

// GetReportState returns the latest state of a report build.
func (s *State) GetReportState(kind models.ReportKind) models.ReportState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reportStates[kind]
}

// SetTodaySummary stores today's ledger numbers.
func (s *State) SetTodaySummary(sum models.DailySummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TodaySummary = sum
}

// GetTodaySummary returns today's ledger numbers.
func (s *State) GetTodaySummary() models.DailySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TodaySummary
}

// SetLastExport records the most recent CSV export.
func (s *State) SetLastExport(rec models.ExportRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastExport = &rec
}

// GetLastExport returns the most recent CSV export, or nil.
func (s *State) GetLastExport() *models.ExportRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastExport
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time a report was stored.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
