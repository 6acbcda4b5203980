package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// InsertExport records a written CSV file.
func (db *DB) InsertExport(ctx context.Context, rec *models.ExportRecord) error {
	query := `
		INSERT INTO export_log (kind, period, path, row_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		rec.Kind,
		rec.Period,
		rec.Path,
		rec.Rows,
		createdAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// RecentExports returns the latest exports, newest first.
func (db *DB) RecentExports(ctx context.Context, limit int) ([]models.ExportRecord, error) {
	query := `
		SELECT id, kind, period, path, row_count, created_at
		FROM export_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.ExportRecord
	for rows.Next() {
		var rec models.ExportRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Period, &rec.Path, &rec.Rows, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		if t, ok := parseTimeString(createdAt); ok {
			rec.CreatedAt = t
		} else {
			logger.Warn("Unparseable export timestamp", "id", rec.ID, "value", createdAt)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
