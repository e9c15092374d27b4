package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations
// at the end.
var migrations = []string{
	// Migration 1: the reminder scan and availability check both filter
	// by request start date; index it.
	`CREATE INDEX IF NOT EXISTS idx_requests_start_date ON requests(start_date)`,
	// Migration 2: line items are aggregated per article on every
	// availability check.
	`CREATE INDEX IF NOT EXISTS idx_request_items_article ON request_items(article_id)`,
	`CREATE INDEX IF NOT EXISTS idx_loading_windows_article ON loading_windows(article_id)`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
