// Package report builds daily and monthly activity reports from the local
// ledger and the issue tracker, and exports them as CSV.
package report

import (
	"context"
	"fmt"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

// PageSize is the number of issues requested per page, the tracker's maximum.
const PageSize = 100

// IssueLister reads one page of issues.
type IssueLister interface {
	ListIssues(ctx context.Context, q tracker.IssueQuery) ([]models.Issue, error)
}

// Fetcher reads every issue in a creation-date range page by page.
type Fetcher struct {
	lister   IssueLister
	pageSize int
}

// NewFetcher creates a Fetcher over lister.
func NewFetcher(lister IssueLister) *Fetcher {
	return &Fetcher{lister: lister, pageSize: PageSize}
}

// FetchAll requests offsets 0, PageSize, 2*PageSize, ... one at a time and
// stops after the first short page. A range holding an exact multiple of
// PageSize issues therefore costs one extra, empty request. The first error
// aborts the fetch and discards what was already read.
func (f *Fetcher) FetchAll(ctx context.Context, start, end models.Date, projectID *int64) ([]models.Issue, error) {
	q := tracker.IssueQuery{
		CreatedSince: start,
		CreatedUntil: end,
		Count:        f.pageSize,
	}
	if projectID != nil {
		q.ProjectIDs = []int64{*projectID}
	}

	var all []models.Issue
	for page := 0; ; page++ {
		q.Offset = page * f.pageSize
		issues, err := f.lister.ListIssues(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch issues at offset %d: %w", q.Offset, err)
		}
		logger.Debug("Fetched issue page", "from", start.String(), "to", end.String(), "offset", q.Offset, "count", len(issues))

		all = append(all, issues...)
		if len(issues) < f.pageSize {
			break
		}
	}
	return all, nil
}
