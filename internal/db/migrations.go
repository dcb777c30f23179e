package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: at most one pending transfer per item.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_transfers_one_pending
	     ON transfers(item_id) WHERE status = 'pending'`,
}

// Migrate runs the database migrations.
func Migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
