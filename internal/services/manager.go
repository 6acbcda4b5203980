// Package services provides service orchestration for the TUI and CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/config"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/db"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/drafts"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/genai"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ledger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/report"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

type (
	// LedgerChangedEvent is emitted when the ledger database changes on disk,
	// whether written by this process or another one.
	LedgerChangedEvent struct {
		Today models.DailySummary
	}

	// ReportStateEvent is emitted for every state a report build passes through.
	ReportStateEvent struct {
		Kind  models.ReportKind
		State models.ReportState
	}

	// IssueCreatedEvent is emitted after a draft is submitted.
	IssueCreatedEvent struct {
		Issue *models.Issue
		URL   string
	}

	// ExportedEvent is emitted after a CSV file is written.
	ExportedEvent struct {
		Record models.ExportRecord
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (LedgerChangedEvent) isServiceEvent() {}
func (ReportStateEvent) isServiceEvent()   {}
func (IssueCreatedEvent) isServiceEvent()  {}
func (ExportedEvent) isServiceEvent()      {}
func (ErrorEvent) isServiceEvent()         {}

// ErrNothingToExport means a report's tracker fetch failed, so it has no
// issues to write.
var ErrNothingToExport = errors.New("nothing to export")

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(title, body string) error
}

type beeepNotifier struct{}

func (beeepNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) error { return nil }

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithoutWatcher disables the ledger file watcher. The CLI uses this since
// it exits before any change could matter.
func WithoutWatcher() Option {
	return func(m *Manager) { m.watch = false }
}

// WithClock sets the clock used for "today" in the ledger.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the database, clients and workflow services, and routes their
// events to subscribers.
type Manager struct {
	cfg         *config.Config
	database    *db.DB
	ledger      *ledger.Ledger
	watcher     *ledger.Watcher
	tracker     *tracker.Client
	generator   *genai.Client
	reports     *report.Service
	drafts      *drafts.Service
	notifier    Notifier
	now         func() time.Time
	subscribers []chan<- ServiceEvent
	mu          sync.RWMutex
	watch       bool
	closeOnce   sync.Once
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:   cfg,
		now:   time.Now,
		watch: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.notifier == nil {
		if cfg.NotificationsEnabled {
			m.notifier = beeepNotifier{}
		} else {
			m.notifier = nopNotifier{}
		}
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.ledger = ledger.New(m.database, ledger.WithLocation(cfg.Location), ledger.WithClock(m.now))
	m.buildClients(cfg)

	if m.watch {
		m.watcher, err = ledger.Watch(cfg.DatabasePath, m.onLedgerChanged, func(err error) {
			m.broadcast(ErrorEvent{Service: "ledger", Error: err})
		})
		if err != nil {
			// Reports still work without live updates.
			logger.Warn("Ledger watcher unavailable", "error", err)
		}
	}

	return m, nil
}

// buildClients creates the remote clients and the services that use them.
func (m *Manager) buildClients(cfg *config.Config) {
	tr := tracker.New(cfg.SpaceURL, cfg.BacklogAPIKey, tracker.WithTimeout(cfg.HTTPTimeout))
	gen := genai.New(cfg.GeminiAPIKey, cfg.GeminiModel, genai.WithTimeout(cfg.HTTPTimeout))

	reports := report.NewService(tr, m.ledger,
		report.WithLocation(cfg.Location),
		report.WithObserver(m.onReportState),
	)
	wf := drafts.NewService(gen, tr, m.ledger, drafts.GitSettings{
		SpaceID:    cfg.SpaceID(),
		RepoName:   cfg.RepoName,
		RemoteName: cfg.GitRemoteName,
	})

	m.mu.Lock()
	m.cfg = cfg
	m.tracker = tr
	m.generator = gen
	m.reports = reports
	m.drafts = wf
	m.mu.Unlock()
}

// ApplySettings swaps in new credentials. Cached tracker data from the old
// settings is dropped.
func (m *Manager) ApplySettings(cfg *config.Config) {
	if old := m.Reports(); old != nil {
		old.Projects().Invalidate()
	}
	m.buildClients(cfg)
	logger.Info("Settings applied", "tracker", cfg.TrackerConfigured(), "generator", cfg.GeneratorConfigured())
}

func (m *Manager) onLedgerChanged() {
	m.broadcast(LedgerChangedEvent{
		Today: m.ledger.GetDailySummary(context.Background(), m.ledger.Today()),
	})
}

func (m *Manager) onReportState(kind models.ReportKind, state models.ReportState) {
	m.broadcast(ReportStateEvent{Kind: kind, State: state})
}

// BuildDailyReport builds a report for date, narrowed to the configured
// default project when there is one.
func (m *Manager) BuildDailyReport(ctx context.Context, date models.Date) *models.DailyReport {
	r := m.Reports().BuildDailyReport(ctx, date, m.Config().DefaultProjectID)
	if r.FetchErr != nil && !errors.Is(r.FetchErr, tracker.ErrNotConfigured) {
		m.notify("日報の取得に失敗しました", report.Describe(r.FetchErr))
	}
	return r
}

// BuildMonthlyReport builds a report for ym.
func (m *Manager) BuildMonthlyReport(ctx context.Context, ym models.YearMonth) *models.MonthlyReport {
	r := m.Reports().BuildMonthlyReport(ctx, ym, m.Config().DefaultProjectID)
	if r.FetchErr != nil && !errors.Is(r.FetchErr, tracker.ErrNotConfigured) {
		m.notify("月報の取得に失敗しました", report.Describe(r.FetchErr))
	}
	return r
}

// ExportDaily writes the issues of a daily report as CSV.
func (m *Manager) ExportDaily(ctx context.Context, r *models.DailyReport) (models.ExportRecord, error) {
	if r.FetchErr != nil {
		return models.ExportRecord{}, fmt.Errorf("%w: %s", ErrNothingToExport, report.Describe(r.FetchErr))
	}
	name := report.DailyFileName(m.Config().CSVPrefix, r.Date)
	return m.export(ctx, models.KindDaily, r.Date.String(), name, r.Issues)
}

// ExportMonthly writes the issues of a monthly report as CSV.
func (m *Manager) ExportMonthly(ctx context.Context, r *models.MonthlyReport) (models.ExportRecord, error) {
	if r.FetchErr != nil {
		return models.ExportRecord{}, fmt.Errorf("%w: %s", ErrNothingToExport, report.Describe(r.FetchErr))
	}
	name := report.MonthlyFileName(m.Config().CSVPrefix, r.YearMonth)
	return m.export(ctx, models.KindMonthly, r.YearMonth.String(), name, r.Issues)
}

func (m *Manager) export(ctx context.Context, kind models.ReportKind, period, name string, issues []models.Issue) (models.ExportRecord, error) {
	reports := m.Reports()
	columns := report.DefaultColumns(reports.Projects().Directory(ctx), reports.Location())

	path, err := report.WriteCSVFile(m.Config().ExportDir, name, report.ToCSV(issues, columns))
	if err != nil {
		return models.ExportRecord{}, err
	}

	rec := models.ExportRecord{
		CreatedAt: m.now(),
		Kind:      kind.String(),
		Period:    period,
		Path:      path,
		Rows:      len(issues),
	}
	if err := m.database.InsertExport(ctx, &rec); err != nil {
		// The file exists; only the history entry is missing.
		logger.Warn("Failed to log export", "path", path, "error", err)
	}

	logger.Info("CSV exported", "path", path, "rows", rec.Rows)
	m.broadcast(ExportedEvent{Record: rec})
	return rec, nil
}

// RecentExports lists the latest CSV exports.
func (m *Manager) RecentExports(ctx context.Context, limit int) ([]models.ExportRecord, error) {
	return m.database.RecentExports(ctx, limit)
}

// GenerateDraft runs draft generation.
func (m *Manager) GenerateDraft(ctx context.Context, req drafts.DraftRequest) (*drafts.DraftResult, error) {
	return m.Drafts().GenerateDraft(ctx, req)
}

// SubmitDraft creates the issue and announces it.
func (m *Manager) SubmitDraft(ctx context.Context, p tracker.CreateIssueParams) (*models.Issue, error) {
	issue, err := m.Drafts().SubmitDraft(ctx, p)
	if err != nil {
		m.broadcast(ErrorEvent{Service: "tracker", Error: err})
		return nil, err
	}

	url := m.Tracker().IssueURL(issue.Key)
	m.notify("課題を登録しました", issue.Key+" "+issue.Summary)
	m.broadcast(IssueCreatedEvent{Issue: issue, URL: url})
	return issue, nil
}

// PrepareCoding runs coding preparation for an issue.
func (m *Manager) PrepareCoding(ctx context.Context, issueKey string) (*models.CodingPlan, error) {
	return m.Drafts().PrepareCoding(ctx, issueKey)
}

func (m *Manager) notify(title, body string) {
	if err := m.notifier.Notify(title, body); err != nil {
		logger.Debug("Notification failed", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the settings currently in effect.
func (m *Manager) Config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Reports returns the report service.
func (m *Manager) Reports() *report.Service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reports
}

// Drafts returns the draft workflow service.
func (m *Manager) Drafts() *drafts.Service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drafts
}

// Tracker returns the issue tracker client.
func (m *Manager) Tracker() *tracker.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracker
}

// Ledger returns the event ledger.
func (m *Manager) Ledger() *ledger.Ledger {
	return m.ledger
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		if m.watcher != nil {
			if err := m.watcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
