package app

import (
	"testing"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.GetDailyReport() != nil || s.GetMonthlyReport() != nil {
		t.Error("Reports should be empty")
	}
	if !s.Loading.Initial {
		t.Error("Initial loading should be true")
	}
	if s.GetSelectedDate().IsZero() {
		t.Error("Selected date should default to today")
	}
	if s.GetSelectedMonth() != s.GetSelectedDate().YearMonth() {
		t.Error("Selected month should contain the selected date")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading(ResourceDaily, true)
	if !s.Loading.Daily || !s.IsLoading(ResourceDaily) {
		t.Error("Daily loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading(ResourceDaily, false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading(ResourceInitial, false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	if resources := s.GetLoadingResources(); len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetLoading(ResourceExport, true)
	resources := s.GetLoadingResources()
	if len(resources) != 1 || resources[0] != ResourceExport {
		t.Errorf("GetLoadingResources should contain export, got %v", resources)
	}

	s.SetLoading("unknown", true)
	if s.IsLoading("unknown") {
		t.Error("Unknown resources are never loading")
	}
}

func TestState_Reports(t *testing.T) {
	s := NewState()
	date := models.NewDate(2026, time.March, 4)

	s.SetDailyReport(&models.DailyReport{Date: date, DraftsGenerated: 2})
	if got := s.GetDailyReport(); got == nil || got.DraftsGenerated != 2 {
		t.Errorf("GetDailyReport = %+v", got)
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set")
	}

	// A later result replaces an earlier one regardless of its date.
	s.SetDailyReport(&models.DailyReport{Date: date.AddDays(-1)})
	if got := s.GetDailyReport(); got.Date != date.AddDays(-1) {
		t.Errorf("Date = %s, want %s", got.Date, date.AddDays(-1))
	}

	s.SetMonthlyReport(&models.MonthlyReport{YearMonth: date.YearMonth(), DoneCount: 3})
	if got := s.GetMonthlyReport(); got == nil || got.DoneCount != 3 {
		t.Errorf("GetMonthlyReport = %+v", got)
	}
}

func TestState_ApplyLedger(t *testing.T) {
	date := models.NewDate(2026, time.March, 4)
	ym := date.YearMonth()

	tests := []struct {
		name        string
		daily       models.DailySummary
		month       models.YearMonth
		wantDrafts  int
		wantMonthly int
	}{
		{
			name:        "matching date and month",
			daily:       models.DailySummary{Date: "2026-03-04", DraftsGenerated: 5, ItemsCreated: []string{"A-1"}},
			month:       ym,
			wantDrafts:  5,
			wantMonthly: 9,
		},
		{
			name:        "other date and month",
			daily:       models.DailySummary{Date: "2026-03-05", DraftsGenerated: 5},
			month:       ym.AddMonths(1),
			wantDrafts:  1,
			wantMonthly: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.SetDailyReport(&models.DailyReport{Date: date, DraftsGenerated: 1, Issues: []models.Issue{{Key: "A-1"}}})
			s.SetMonthlyReport(&models.MonthlyReport{YearMonth: ym, TotalDraftsGenerated: 1, TotalIssuesCreated: 4})

			s.ApplyLedger(tt.daily, models.MonthlySummary{TotalDrafts: 9, TotalItems: 2}, tt.month)

			daily := s.GetDailyReport()
			if daily.DraftsGenerated != tt.wantDrafts {
				t.Errorf("DraftsGenerated = %d, want %d", daily.DraftsGenerated, tt.wantDrafts)
			}
			if len(daily.Issues) != 1 {
				t.Error("Tracker issues should be kept")
			}
			monthly := s.GetMonthlyReport()
			if monthly.TotalDraftsGenerated != tt.wantMonthly {
				t.Errorf("TotalDraftsGenerated = %d, want %d", monthly.TotalDraftsGenerated, tt.wantMonthly)
			}
			if monthly.TotalIssuesCreated != 4 {
				t.Error("Tracker totals should be kept")
			}
		})
	}
}

func TestState_ApplyLedgerWithoutReports(t *testing.T) {
	s := NewState()
	s.ApplyLedger(models.DailySummary{Date: "2026-03-04"}, models.MonthlySummary{}, models.YearMonth{Year: 2026, Month: time.March})
	if s.GetDailyReport() != nil || s.GetMonthlyReport() != nil {
		t.Error("ApplyLedger should not create reports")
	}
}

func TestState_Selection(t *testing.T) {
	s := NewState()
	s.SetSelectedDate(models.NewDate(2024, time.March, 1))

	if got := s.ShiftDate(-1); got.String() != "2024-02-29" {
		t.Errorf("ShiftDate(-1) = %s, want 2024-02-29", got)
	}
	if got := s.GetSelectedDate(); got.String() != "2024-02-29" {
		t.Errorf("GetSelectedDate = %s", got)
	}

	s.SetSelectedMonth(models.YearMonth{Year: 2025, Month: time.December})
	if got := s.ShiftMonth(1); got.String() != "2026-01" {
		t.Errorf("ShiftMonth(1) = %s, want 2026-01", got)
	}
	if got := s.ShiftMonth(-2); got.String() != "2025-11" {
		t.Errorf("ShiftMonth(-2) = %s, want 2025-11", got)
	}
}

func TestState_ReportStateAndSummaries(t *testing.T) {
	s := NewState()

	if got := s.GetReportState(models.KindDaily); got != models.ReportIdle {
		t.Errorf("initial state = %v, want Idle", got)
	}
	s.SetReportState(models.KindDaily, models.ReportFetching)
	s.SetReportState(models.KindMonthly, models.ReportFailed)
	if got := s.GetReportState(models.KindDaily); got != models.ReportFetching {
		t.Errorf("daily state = %v", got)
	}
	if got := s.GetReportState(models.KindMonthly); got != models.ReportFailed {
		t.Errorf("monthly state = %v", got)
	}

	s.SetTodaySummary(models.DailySummary{Date: "2026-03-04", DraftsGenerated: 3})
	if got := s.GetTodaySummary(); got.DraftsGenerated != 3 {
		t.Errorf("TodaySummary = %+v", got)
	}

	if s.GetLastExport() != nil {
		t.Error("LastExport should be nil")
	}
	s.SetLastExport(models.ExportRecord{Path: "/tmp/x.csv", Rows: 2})
	if got := s.GetLastExport(); got == nil || got.Rows != 2 {
		t.Errorf("LastExport = %+v", got)
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "Test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].Message != "Test" {
		t.Errorf("Message = %s, want Test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification not removed")
	}

	// Expiration
	s.AddNotification(NotificationInfo, "Expired", time.Nanosecond)
	time.Sleep(time.Millisecond)
	s.ClearExpiredNotifications()
	if len(s.GetNotifications()) != 0 {
		t.Error("Expired notification not cleared")
	}

	// Max notifications
	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "Spam", time.Minute)
	}
	if len(s.GetNotifications()) != maxNotifications {
		t.Errorf("Expected max %d notifications, got %d", maxNotifications, len(s.GetNotifications()))
	}

	s.ClearAllNotifications()
	if len(s.GetNotifications()) != 0 {
		t.Error("ClearAllNotifications failed")
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Still loading...")

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected a single loading notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID || notifs[0].Message != "Still loading..." {
		t.Errorf("unexpected notification %+v", notifs[0])
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification not cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%d.String() = %s, want %s", tt.t, got, tt.want)
		}
	}
}

func TestState_TimeSinceUpdate(t *testing.T) {
	s := NewState()
	if s.TimeSinceUpdate() != 0 {
		t.Error("TimeSinceUpdate should be 0 before any report")
	}
	s.SetMonthlyReport(&models.MonthlyReport{})
	if s.TimeSinceUpdate() < 0 {
		t.Error("TimeSinceUpdate should not be negative")
	}
}
