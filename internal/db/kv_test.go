package db

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

func TestGetSet(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if _, ok, err := db.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := db.Set(ctx, "key", "one"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := db.Set(ctx, "key", "two"); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}

	got, ok, err := db.Get(ctx, "key")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if got != "two" {
		t.Errorf("Get() = %q, want two", got)
	}

	if _, ok, _ := db.UpdatedAt(ctx, "key"); !ok {
		t.Error("UpdatedAt() should be set after a write")
	}

	if err := db.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := db.Get(ctx, "key"); ok {
		t.Error("key should be gone after Delete()")
	}
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	err := db.Update(ctx, "counter", func(current string, found bool) (string, error) {
		if found {
			t.Errorf("first Update should see no value, got %q", current)
		}
		return "1", nil
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	got, _, _ := db.Get(ctx, "counter")
	if got != "1" {
		t.Errorf("counter = %q, want 1", got)
	}
}

func TestUpdate_ErrorRollsBack(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if err := db.Set(ctx, "key", "keep"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	boom := errors.New("boom")
	err := db.Update(ctx, "key", func(string, bool) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	got, _, _ := db.Get(ctx, "key")
	if got != "keep" {
		t.Errorf("value = %q after failed update, want keep", got)
	}
}

func TestUpdate_Concurrent(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Update(ctx, "counter", func(current string, found bool) (string, error) {
				n := 0
				if found {
					n, _ = strconv.Atoi(current)
				}
				return strconv.Itoa(n + 1), nil
			})
			if err != nil {
				t.Errorf("Update() failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _, _ := db.Get(ctx, "counter")
	if got != strconv.Itoa(workers) {
		t.Errorf("counter = %s, want %d", got, workers)
	}
}

func TestExports(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	older := &models.ExportRecord{
		Kind:      "daily",
		Period:    "2026-03-01",
		Path:      "/tmp/backlog_daily_2026-03-01.csv",
		Rows:      3,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	newer := &models.ExportRecord{
		Kind:      "monthly",
		Period:    "2026-03",
		Path:      "/tmp/backlog_daily_2026-03.csv",
		Rows:      40,
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	for _, rec := range []*models.ExportRecord{older, newer} {
		if err := db.InsertExport(ctx, rec); err != nil {
			t.Fatalf("InsertExport() failed: %v", err)
		}
		if rec.ID == 0 {
			t.Error("InsertExport() should set the id")
		}
	}

	got, err := db.RecentExports(ctx, 10)
	if err != nil {
		t.Fatalf("RecentExports() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentExports() returned %d records, want 2", len(got))
	}
	if got[0].Period != "2026-03" || got[1].Period != "2026-03-01" {
		t.Errorf("order = %s, %s; want newest first", got[0].Period, got[1].Period)
	}
	if got[0].Rows != 40 || !got[0].CreatedAt.Equal(newer.CreatedAt) {
		t.Errorf("unexpected record %+v", got[0])
	}

	limited, _ := db.RecentExports(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored, got %d records", len(limited))
	}
}
