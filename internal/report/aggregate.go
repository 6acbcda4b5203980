package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// UnknownProjectLabel buckets issues that carry no project id.
const UnknownProjectLabel = "その他"

// closedStatuses are the status names that count as done.
var closedStatuses = map[string]bool{
	"完了":   true,
	"処理済み": true,
}

// IsDone reports whether the issue has a closed status. A missing status is open.
func IsDone(issue models.Issue) bool {
	return issue.Status.Valid && closedStatuses[issue.Status.Name]
}

// CountDone counts issues with a closed status.
func CountDone(issues []models.Issue) int {
	n := 0
	for _, issue := range issues {
		if IsDone(issue) {
			n++
		}
	}
	return n
}

// CountIncomplete counts issues that are not done.
func CountIncomplete(issues []models.Issue) int {
	return len(issues) - CountDone(issues)
}

// BucketByDayOfMonth counts issues per creation day of ym, reading each
// creation time in loc. Index 0 is day 1. Issues created outside ym are
// skipped.
func BucketByDayOfMonth(issues []models.Issue, ym models.YearMonth, loc *time.Location) []int {
	buckets := make([]int, ym.DaysInMonth())
	for _, issue := range issues {
		if issue.Created.IsZero() {
			continue
		}
		d := models.DateOf(issue.Created, loc)
		if !ym.Contains(d) {
			continue
		}
		buckets[d.Day-1]++
	}
	return buckets
}

// BucketByProject counts issues per project key. Unknown project ids fall
// back to their decimal form; issues with no project id (or id 0) go to
// UnknownProjectLabel.
func BucketByProject(issues []models.Issue, dir ProjectDirectory) map[string]int {
	buckets := make(map[string]int)
	for _, issue := range issues {
		buckets[projectBucket(issue, dir)]++
	}
	return buckets
}

// projectID reports an issue's project id. A zero id counts as missing.
func projectID(issue models.Issue) (int64, bool) {
	if issue.ProjectID == nil || *issue.ProjectID == 0 {
		return 0, false
	}
	return *issue.ProjectID, true
}

func projectBucket(issue models.Issue, dir ProjectDirectory) string {
	id, ok := projectID(issue)
	if !ok {
		return UnknownProjectLabel
	}
	if p, ok := dir.Lookup(id); ok && p.Key != "" {
		return p.Key
	}
	return strconv.FormatInt(id, 10)
}

// DaySeries converts day buckets to a plottable series.
func DaySeries(buckets []int) []float64 {
	series := make([]float64, len(buckets))
	for i, n := range buckets {
		series[i] = float64(n)
	}
	return series
}

// LedgerSeries spreads per-date ledger counts over the days of ym.
func LedgerSeries(ym models.YearMonth, counts map[string]int) []float64 {
	days := ym.DaysInMonth()
	series := make([]float64, days)
	first := ym.FirstDay()
	for i := range days {
		series[i] = float64(counts[first.AddDays(i).String()])
	}
	return series
}

// ProjectSeries orders project buckets by count, largest first, then label.
func ProjectSeries(buckets map[string]int) ([]string, []float64) {
	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if buckets[labels[i]] != buckets[labels[j]] {
			return buckets[labels[i]] > buckets[labels[j]]
		}
		return labels[i] < labels[j]
	})

	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = float64(buckets[label])
	}
	return labels, values
}
