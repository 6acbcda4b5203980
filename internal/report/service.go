package report

import (
	"context"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// Tracker is what the report service needs from the issue tracker.
type Tracker interface {
	IssueLister
	ProjectLister
}

// LedgerReader is what the report service needs from the local ledger.
type LedgerReader interface {
	GetDailySummary(ctx context.Context, date models.Date) models.DailySummary
	GetMonthlySummary(ctx context.Context, ym models.YearMonth) models.MonthlySummary
}

// StateObserver is told about every state a report passes through.
type StateObserver func(kind models.ReportKind, state models.ReportState)

// Service builds reports.
type Service struct {
	fetcher  *Fetcher
	ledger   LedgerReader
	projects *ProjectCache
	loc      *time.Location
	observer StateObserver
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the zone used to bucket creation times.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithObserver registers a state observer.
func WithObserver(obs StateObserver) Option {
	return func(s *Service) { s.observer = obs }
}

// NewService creates a report service.
func NewService(tr Tracker, ledger LedgerReader, opts ...Option) *Service {
	s := &Service{
		fetcher:  NewFetcher(tr),
		ledger:   ledger,
		projects: NewProjectCache(tr),
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Projects returns the service's project cache.
func (s *Service) Projects() *ProjectCache {
	return s.projects
}

// Location returns the zone reports are bucketed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) transition(kind models.ReportKind, state *models.ReportState, next models.ReportState) {
	*state = next
	if s.observer != nil {
		s.observer(kind, next)
	}
}

// BuildDailyReport reports on date. It never returns an error: a failed fetch
// leaves the ledger fields populated, sets FetchErr and ends in ReportFailed.
func (s *Service) BuildDailyReport(ctx context.Context, date models.Date, projectID *int64) *models.DailyReport {
	r := &models.DailyReport{Date: date, State: models.ReportIdle}

	summary := s.ledger.GetDailySummary(ctx, date)
	r.DraftsGenerated = summary.DraftsGenerated
	r.ItemsCreated = summary.ItemsCreated

	s.transition(models.KindDaily, &r.State, models.ReportFetching)
	issues, err := s.fetcher.FetchAll(ctx, date, date, projectID)
	if err != nil {
		logger.Warn("Daily report fetch failed", "date", date.String(), "error", err)
		r.FetchErr = err
		s.transition(models.KindDaily, &r.State, models.ReportFailed)
		return r
	}

	s.transition(models.KindDaily, &r.State, models.ReportAggregating)
	r.Issues = issues
	r.IncompleteCount = CountIncomplete(issues)

	s.transition(models.KindDaily, &r.State, models.ReportReady)
	return r
}

// BuildMonthlyReport reports on ym with the same failure behavior as
// BuildDailyReport.
func (s *Service) BuildMonthlyReport(ctx context.Context, ym models.YearMonth, projectID *int64) *models.MonthlyReport {
	r := &models.MonthlyReport{
		YearMonth:          ym,
		State:              models.ReportIdle,
		CountsByDayOfMonth: make([]int, ym.DaysInMonth()),
		CountsByProject:    map[string]int{},
	}

	summary := s.ledger.GetMonthlySummary(ctx, ym)
	r.TotalDraftsGenerated = summary.TotalDrafts
	r.TotalItemsRecorded = summary.TotalItems
	r.CountsByDate = summary.CountsByDate

	s.transition(models.KindMonthly, &r.State, models.ReportFetching)
	issues, err := s.fetcher.FetchAll(ctx, ym.FirstDay(), ym.LastDay(), projectID)
	if err != nil {
		logger.Warn("Monthly report fetch failed", "month", ym.String(), "error", err)
		r.FetchErr = err
		s.transition(models.KindMonthly, &r.State, models.ReportFailed)
		return r
	}

	s.transition(models.KindMonthly, &r.State, models.ReportAggregating)
	r.Issues = issues
	r.TotalIssuesCreated = len(issues)
	r.DoneCount = CountDone(issues)
	r.CountsByDayOfMonth = BucketByDayOfMonth(issues, ym, s.loc)
	r.CountsByProject = BucketByProject(issues, s.projects.Directory(ctx))

	s.transition(models.KindMonthly, &r.State, models.ReportReady)
	return r
}
