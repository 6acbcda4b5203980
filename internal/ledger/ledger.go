// Package ledger keeps the local, append-only record of workflow activity:
// drafts generated and tracker items created, bucketed by calendar date.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/db"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// HistoryKey is the store key holding the whole ledger.
const HistoryKey = "workflowHistory"

var (
	// ErrMalformedState means the stored ledger could not be decoded.
	// Reads treat it as an empty ledger.
	ErrMalformedState = errors.New("malformed ledger state")
	// ErrEmptyItemKey is returned when recording an item without a key.
	ErrEmptyItemKey = errors.New("item key is empty")
)

// Store is the key-value persistence the ledger is kept in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Update(ctx context.Context, key string, fn db.UpdateFunc) error
}

type historyDocument struct {
	History []models.LedgerRecord `json:"history"`
}

// Ledger records and summarizes local activity.
type Ledger struct {
	store Store
	now   func() time.Time
	loc   *time.Location
	mu    sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the zone that decides which date "today" is.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// New creates a ledger over store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today returns the current date in the ledger's zone.
func (l *Ledger) Today() models.Date {
	return models.DateOf(l.now(), l.loc)
}

// RecordDraftGenerated increments today's draft counter.
func (l *Ledger) RecordDraftGenerated(ctx context.Context) error {
	return l.mutate(ctx, func(rec *models.LedgerRecord) {
		rec.DraftsGenerated++
	})
}

// RecordItemCreated appends itemKey to today's created items.
func (l *Ledger) RecordItemCreated(ctx context.Context, itemKey string) error {
	itemKey = strings.TrimSpace(itemKey)
	if itemKey == "" {
		return ErrEmptyItemKey
	}
	return l.mutate(ctx, func(rec *models.LedgerRecord) {
		rec.ItemsCreated = append(rec.ItemsCreated, itemKey)
	})
}

// GetRecord returns the record for date, if any.
func (l *Ledger) GetRecord(ctx context.Context, date models.Date) (models.LedgerRecord, bool) {
	key := date.String()
	for _, rec := range l.read(ctx) {
		if rec.Date == key {
			return rec, true
		}
	}
	return models.LedgerRecord{}, false
}

// GetRecordsForMonth returns every record dated inside ym, in stored order.
func (l *Ledger) GetRecordsForMonth(ctx context.Context, ym models.YearMonth) []models.LedgerRecord {
	prefix := ym.String() + "-"
	var out []models.LedgerRecord
	for _, rec := range l.read(ctx) {
		if strings.HasPrefix(rec.Date, prefix) {
			out = append(out, rec)
		}
	}
	return out
}

// GetDailySummary never fails; a date with no record yields zero counts.
func (l *Ledger) GetDailySummary(ctx context.Context, date models.Date) models.DailySummary {
	summary := models.DailySummary{Date: date.String(), ItemsCreated: []string{}}
	if rec, ok := l.GetRecord(ctx, date); ok {
		summary.DraftsGenerated = rec.DraftsGenerated
		if len(rec.ItemsCreated) > 0 {
			summary.ItemsCreated = append(summary.ItemsCreated, rec.ItemsCreated...)
		}
	}
	return summary
}

// GetMonthlySummary totals the records of ym.
func (l *Ledger) GetMonthlySummary(ctx context.Context, ym models.YearMonth) models.MonthlySummary {
	summary := models.MonthlySummary{CountsByDate: make(map[string]int)}
	for _, rec := range l.GetRecordsForMonth(ctx, ym) {
		summary.TotalDrafts += rec.DraftsGenerated
		summary.TotalItems += len(rec.ItemsCreated)
		summary.CountsByDate[rec.Date] += len(rec.ItemsCreated)
	}
	return summary
}

// All returns every stored record.
func (l *Ledger) All(ctx context.Context) []models.LedgerRecord {
	return l.read(ctx)
}

// Check reports whether the stored ledger is readable. It returns
// ErrMalformedState for undecodable data and nil for a missing ledger.
func (l *Ledger) Check(ctx context.Context) error {
	_, err := l.load(ctx)
	return err
}

// read is the fail-open boundary over load.
func (l *Ledger) read(ctx context.Context) []models.LedgerRecord {
	records, err := l.load(ctx)
	if err != nil {
		logger.Warn("Ignoring unreadable ledger", "key", HistoryKey, "error", err)
		return nil
	}
	return records
}

func (l *Ledger) load(ctx context.Context) ([]models.LedgerRecord, error) {
	raw, found, err := l.store.Get(ctx, HistoryKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return decode(raw)
}

// mutate applies fn to today's record in one read-modify-write.
func (l *Ledger) mutate(ctx context.Context, fn func(*models.LedgerRecord)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.Today().String()

	err := l.store.Update(ctx, HistoryKey, func(current string, found bool) (string, error) {
		var records []models.LedgerRecord
		if found {
			decoded, err := decode(current)
			if err != nil {
				logger.Warn("Replacing unreadable ledger", "key", HistoryKey, "error", err)
			} else {
				records = decoded
			}
		}

		idx := -1
		for i := range records {
			if records[i].Date == today {
				idx = i
				break
			}
		}
		if idx < 0 {
			records = append(records, models.LedgerRecord{Date: today, ItemsCreated: []string{}})
			idx = len(records) - 1
		}
		fn(&records[idx])

		return encode(records)
	})
	if err != nil {
		return fmt.Errorf("failed to update ledger: %w", err)
	}
	return nil
}

func decode(raw string) ([]models.LedgerRecord, error) {
	var doc historyDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	for i := range doc.History {
		if doc.History[i].ItemsCreated == nil {
			doc.History[i].ItemsCreated = []string{}
		}
	}
	return doc.History, nil
}

func encode(records []models.LedgerRecord) (string, error) {
	if records == nil {
		records = []models.LedgerRecord{}
	}
	data, err := json.Marshal(historyDocument{History: records})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ledger: %w", err)
	}
	return string(data), nil
}
