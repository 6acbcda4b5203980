package models

import "time"

// ReportState tracks a report through a single build.
type ReportState int

const (
	// ReportIdle is the state before a build starts.
	ReportIdle ReportState = iota
	// ReportFetching means issues are being read from the tracker.
	ReportFetching
	// ReportAggregating means fetched issues are being counted.
	ReportAggregating
	// ReportReady means every field is populated.
	ReportReady
	// ReportFailed means the fetch failed; only ledger fields are populated.
	ReportFailed
)

// String returns the display name for a report state.
func (s ReportState) String() string {
	switch s {
	case ReportIdle:
		return "Idle"
	case ReportFetching:
		return "Fetching"
	case ReportAggregating:
		return "Aggregating"
	case ReportReady:
		return "Ready"
	case ReportFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s ReportState) Terminal() bool {
	return s == ReportReady || s == ReportFailed
}

// ReportKind distinguishes daily from monthly builds.
type ReportKind int

const (
	// KindDaily is a single-date report.
	KindDaily ReportKind = iota
	// KindMonthly is a calendar-month report.
	KindMonthly
)

// String returns the display name for a report kind.
func (k ReportKind) String() string {
	if k == KindMonthly {
		return "monthly"
	}
	return "daily"
}

// DailyReport combines the ledger and the tracker for one date.
type DailyReport struct {
	FetchErr        error
	Date            Date
	ItemsCreated    []string
	Issues          []Issue
	DraftsGenerated int
	IncompleteCount int
	State           ReportState
}

// MonthlyReport combines the ledger and the tracker for one month.
type MonthlyReport struct {
	FetchErr             error
	CountsByDate         map[string]int
	CountsByProject      map[string]int
	Issues               []Issue
	CountsByDayOfMonth   []int
	YearMonth            YearMonth
	TotalDraftsGenerated int
	TotalItemsRecorded   int
	TotalIssuesCreated   int
	DoneCount            int
	State                ReportState
}

// ExportRecord is one CSV file written by an export.
type ExportRecord struct {
	CreatedAt time.Time
	Kind      string
	Period    string
	Path      string
	ID        int64
	Rows      int
}
