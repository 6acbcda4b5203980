package models

// LedgerRecord holds one day of locally recorded activity.
type LedgerRecord struct {
	Date            string   `json:"date"`
	DraftsGenerated int      `json:"draftsGenerated"`
	ItemsCreated    []string `json:"itemsCreated"`
}

// DailySummary is the ledger view of a single date.
type DailySummary struct {
	Date            string
	DraftsGenerated int
	ItemsCreated    []string
}

// MonthlySummary totals the ledger records of one month.
type MonthlySummary struct {
	// CountsByDate maps YYYY-MM-DD to the number of items recorded that day.
	CountsByDate map[string]int
	TotalDrafts  int
	TotalItems   int
}
