package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

// fakeTracker serves a fixed issue list in pages and records every query.
type fakeTracker struct {
	issues       []models.Issue
	projects     []models.Project
	failAtOffset int
	projectsErr  error
	queries      []tracker.IssueQuery
	projectCalls int
	mu           sync.Mutex
}

func newFakeTracker(issues []models.Issue) *fakeTracker {
	return &fakeTracker{issues: issues, failAtOffset: -1}
}

func (f *fakeTracker) ListIssues(_ context.Context, q tracker.IssueQuery) ([]models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)

	if f.failAtOffset >= 0 && q.Offset == f.failAtOffset {
		return nil, fmt.Errorf("%w: connection reset", tracker.ErrRequestFailed)
	}
	if q.Offset >= len(f.issues) {
		return []models.Issue{}, nil
	}
	end := min(q.Offset+q.Count, len(f.issues))
	return append([]models.Issue(nil), f.issues[q.Offset:end]...), nil
}

func (f *fakeTracker) ListProjects(context.Context) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectCalls++
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	return f.projects, nil
}

func (f *fakeTracker) offsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.queries))
	for i, q := range f.queries {
		out[i] = q.Offset
	}
	return out
}

// fakeLedger returns canned summaries.
type fakeLedger struct {
	daily   models.DailySummary
	monthly models.MonthlySummary
}

func (f *fakeLedger) GetDailySummary(_ context.Context, date models.Date) models.DailySummary {
	s := f.daily
	s.Date = date.String()
	return s
}

func (f *fakeLedger) GetMonthlySummary(context.Context, models.YearMonth) models.MonthlySummary {
	return f.monthly
}

func makeIssues(n int, created time.Time) []models.Issue {
	issues := make([]models.Issue, n)
	for i := range issues {
		issues[i] = models.Issue{Key: fmt.Sprintf("PRJ-%d", i+1), Created: created}
	}
	return issues
}
