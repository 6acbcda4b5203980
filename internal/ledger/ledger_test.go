package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/db"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	values    map[string]string
	getErr    error
	updateErr error
	mu        sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Update(_ context.Context, key string, fn db.UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	cur, ok := m.values[key]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	m.values[key] = next
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var march4 = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestRecordDraftGenerated_Counts(t *testing.T) {
	l := New(newTestDB(t), WithClock(fixedClock(march4)), WithLocation(time.UTC))
	ctx := context.Background()

	for range 5 {
		if err := l.RecordDraftGenerated(ctx); err != nil {
			t.Fatalf("RecordDraftGenerated() failed: %v", err)
		}
	}

	rec, ok := l.GetRecord(ctx, models.NewDate(2026, time.March, 4))
	if !ok {
		t.Fatal("expected a record for today")
	}
	if rec.DraftsGenerated != 5 {
		t.Errorf("DraftsGenerated = %d, want 5", rec.DraftsGenerated)
	}
	if len(rec.ItemsCreated) != 0 {
		t.Errorf("ItemsCreated = %v, want empty", rec.ItemsCreated)
	}
}

func TestRecordItemCreated_AppendsInOrder(t *testing.T) {
	l := New(newMemStore(), WithClock(fixedClock(march4)), WithLocation(time.UTC))
	ctx := context.Background()

	for _, key := range []string{"PRJ-1", "PRJ-2", "PRJ-1"} {
		if err := l.RecordItemCreated(ctx, key); err != nil {
			t.Fatalf("RecordItemCreated(%s) failed: %v", key, err)
		}
	}

	summary := l.GetDailySummary(ctx, models.NewDate(2026, time.March, 4))
	want := []string{"PRJ-1", "PRJ-2", "PRJ-1"}
	if len(summary.ItemsCreated) != len(want) {
		t.Fatalf("ItemsCreated = %v, want %v", summary.ItemsCreated, want)
	}
	for i := range want {
		if summary.ItemsCreated[i] != want[i] {
			t.Errorf("ItemsCreated[%d] = %s, want %s", i, summary.ItemsCreated[i], want[i])
		}
	}
}

func TestRecordItemCreated_EmptyKey(t *testing.T) {
	l := New(newMemStore())
	if err := l.RecordItemCreated(context.Background(), "  "); !errors.Is(err, ErrEmptyItemKey) {
		t.Errorf("RecordItemCreated(blank) error = %v, want ErrEmptyItemKey", err)
	}
}

func TestOneRecordPerDate(t *testing.T) {
	now := march4
	l := New(newMemStore(), WithClock(func() time.Time { return now }), WithLocation(time.UTC))
	ctx := context.Background()

	_ = l.RecordDraftGenerated(ctx)
	_ = l.RecordItemCreated(ctx, "A-1")
	now = now.Add(24 * time.Hour)
	_ = l.RecordDraftGenerated(ctx)

	all := l.All(ctx)
	if len(all) != 2 {
		t.Fatalf("All() returned %d records, want 2", len(all))
	}
	seen := make(map[string]bool)
	for _, rec := range all {
		if seen[rec.Date] {
			t.Errorf("duplicate record for %s", rec.Date)
		}
		seen[rec.Date] = true
	}
}

func TestToday_UsesLocation(t *testing.T) {
	evening := time.Date(2026, time.March, 4, 20, 0, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)
	l := New(newMemStore(), WithClock(fixedClock(evening)), WithLocation(tokyo))

	if got := l.Today().String(); got != "2026-03-05" {
		t.Errorf("Today() = %s, want 2026-03-05", got)
	}

	_ = l.RecordDraftGenerated(context.Background())
	if _, ok := l.GetRecord(context.Background(), models.NewDate(2026, time.March, 5)); !ok {
		t.Error("record should be stored under the local date")
	}
}

func TestMalformedState(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"NotJSON", "{not json"},
		{"WrongShape", `[1, 2, 3]`},
		{"WrongFieldType", `{"history":[{"date":"2026-03-04","draftsGenerated":"two"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.values[HistoryKey] = tt.raw
			l := New(store)
			ctx := context.Background()

			if _, err := l.load(ctx); !errors.Is(err, ErrMalformedState) {
				t.Errorf("load() error = %v, want ErrMalformedState", err)
			}
			if err := l.Check(ctx); !errors.Is(err, ErrMalformedState) {
				t.Errorf("Check() error = %v, want ErrMalformedState", err)
			}

			date := models.NewDate(2026, time.March, 4)
			if _, ok := l.GetRecord(ctx, date); ok {
				t.Error("GetRecord() should behave as empty")
			}
			summary := l.GetDailySummary(ctx, date)
			if summary.DraftsGenerated != 0 || len(summary.ItemsCreated) != 0 {
				t.Errorf("GetDailySummary() = %+v, want zero", summary)
			}
			if got := l.GetRecordsForMonth(ctx, date.YearMonth()); len(got) != 0 {
				t.Errorf("GetRecordsForMonth() = %v, want empty", got)
			}
		})
	}
}

func TestMissingState_IsNotMalformed(t *testing.T) {
	l := New(newMemStore())
	records, err := l.load(context.Background())
	if err != nil {
		t.Errorf("load() error = %v, want nil", err)
	}
	if len(records) != 0 {
		t.Errorf("load() = %v, want empty", records)
	}
}

func TestMutationOnMalformedStateStartsFresh(t *testing.T) {
	store := newMemStore()
	store.values[HistoryKey] = "garbage"
	l := New(store, WithClock(fixedClock(march4)), WithLocation(time.UTC))
	ctx := context.Background()

	if err := l.RecordDraftGenerated(ctx); err != nil {
		t.Fatalf("RecordDraftGenerated() failed: %v", err)
	}
	if err := l.Check(ctx); err != nil {
		t.Errorf("ledger should be readable after a write, got %v", err)
	}
	rec, ok := l.GetRecord(ctx, models.NewDate(2026, time.March, 4))
	if !ok || rec.DraftsGenerated != 1 {
		t.Errorf("GetRecord() = %+v, %v", rec, ok)
	}
}

func TestUnknownFieldsTolerated(t *testing.T) {
	store := newMemStore()
	store.values[HistoryKey] = `{"version":3,"history":[{"date":"2026-03-04","draftsGenerated":2,"itemsCreated":["A-1"],"source":"slack"}]}`
	l := New(store)

	rec, ok := l.GetRecord(context.Background(), models.NewDate(2026, time.March, 4))
	if !ok {
		t.Fatal("record with extra fields should be readable")
	}
	if rec.DraftsGenerated != 2 || len(rec.ItemsCreated) != 1 {
		t.Errorf("GetRecord() = %+v", rec)
	}
}

func TestMissingItemsCreated_IsEmpty(t *testing.T) {
	store := newMemStore()
	store.values[HistoryKey] = `{"history":[{"date":"2026-03-04","draftsGenerated":1}]}`
	l := New(store)

	rec, _ := l.GetRecord(context.Background(), models.NewDate(2026, time.March, 4))
	if rec.ItemsCreated == nil {
		t.Error("ItemsCreated should decode to an empty slice")
	}
}

func TestGetMonthlySummary(t *testing.T) {
	store := newMemStore()
	store.values[HistoryKey] = `{"history":[
		{"date":"2026-02-28","draftsGenerated":9,"itemsCreated":["OLD-1"]},
		{"date":"2026-03-01","draftsGenerated":2,"itemsCreated":["A-1","A-2"]},
		{"date":"2026-03-15","draftsGenerated":1,"itemsCreated":[]},
		{"date":"2026-03-31","draftsGenerated":0,"itemsCreated":["A-3"]},
		{"date":"2026-04-01","draftsGenerated":4,"itemsCreated":["NEW-1"]}
	]}`
	l := New(store)
	ctx := context.Background()
	ym := models.YearMonth{Year: 2026, Month: time.March}

	if got := len(l.GetRecordsForMonth(ctx, ym)); got != 3 {
		t.Errorf("GetRecordsForMonth() returned %d records, want 3", got)
	}

	summary := l.GetMonthlySummary(ctx, ym)
	if summary.TotalDrafts != 3 {
		t.Errorf("TotalDrafts = %d, want 3", summary.TotalDrafts)
	}
	if summary.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", summary.TotalItems)
	}
	if summary.CountsByDate["2026-03-01"] != 2 || summary.CountsByDate["2026-03-31"] != 1 {
		t.Errorf("CountsByDate = %v", summary.CountsByDate)
	}
	if _, ok := summary.CountsByDate["2026-02-28"]; ok {
		t.Error("CountsByDate should not include other months")
	}
}

func TestReadFailureFailsOpen(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("disk gone")
	l := New(store)

	if got := l.All(context.Background()); len(got) != 0 {
		t.Errorf("All() = %v, want empty", got)
	}
	if err := l.Check(context.Background()); err == nil {
		t.Error("Check() should surface the read error")
	}
}

func TestWriteFailureIsReturned(t *testing.T) {
	store := newMemStore()
	store.updateErr = errors.New("read-only")
	l := New(store)

	if err := l.RecordDraftGenerated(context.Background()); err == nil {
		t.Error("RecordDraftGenerated() should return the store error")
	}
}

func TestConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	database := newTestDB(t)
	clock := WithClock(fixedClock(march4))
	// Two ledgers over one database stand in for two processes.
	first := New(database, clock, WithLocation(time.UTC))
	second := New(database, clock, WithLocation(time.UTC))
	ctx := context.Background()

	const perWriter = 15
	var wg sync.WaitGroup
	for _, l := range []*Ledger{first, second} {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range perWriter {
				if err := l.RecordDraftGenerated(ctx); err != nil {
					t.Errorf("RecordDraftGenerated() failed: %v", err)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for range perWriter {
				if err := l.RecordItemCreated(ctx, "K-1"); err != nil {
					t.Errorf("RecordItemCreated() failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	summary := first.GetDailySummary(ctx, models.NewDate(2026, time.March, 4))
	if summary.DraftsGenerated != 2*perWriter {
		t.Errorf("DraftsGenerated = %d, want %d", summary.DraftsGenerated, 2*perWriter)
	}
	if len(summary.ItemsCreated) != 2*perWriter {
		t.Errorf("ItemsCreated = %d, want %d", len(summary.ItemsCreated), 2*perWriter)
	}
}
