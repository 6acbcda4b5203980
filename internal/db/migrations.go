package db

import (
	"context"
	"fmt"
)

// migrate brings older databases up to schemaVersion.
func (db *DB) migrate() error {
	var version int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version < 2 {
		// Version 1 wrote timestamps with Go's default time.Time format,
		// which SQLite's date functions cannot read.
		query := `UPDATE kv_store
			SET updated_at = SUBSTR(updated_at, 1, 19)
			WHERE length(updated_at) > 19 AND updated_at LIKE '% UTC'`
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to fix legacy time formats: %w", err)
		}
	}

	if version != schemaVersion {
		if _, err := db.ExecContext(context.Background(), fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("failed to write schema version: %w", err)
		}
	}

	return nil
}
