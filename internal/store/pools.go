package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aguilarm/mobiliario/internal/model"
)

// AddPoolEntry adds a recipient address to a notification pool.
func AddPoolEntry(ctx context.Context, db *sql.DB, kind, email string) (*model.PoolEntry, error) {
	if !model.ValidPool(kind) {
		return nil, fmt.Errorf("unknown pool %q", kind)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO notification_pools (kind, email) VALUES (?, ?)`,
		kind, email,
	)
	if err != nil {
		return nil, fmt.Errorf("adding pool entry: %w", err)
	}

	id, _ := result.LastInsertId()
	e := &model.PoolEntry{ID: id, Kind: kind, Email: email}
	return e, nil
}

// ListPoolEntries returns all pool entries across kinds.
func ListPoolEntries(ctx context.Context, db *sql.DB) ([]model.PoolEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, kind, email, created_at FROM notification_pools ORDER BY kind, email`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pool entries: %w", err)
	}
	defer rows.Close()

	var entries []model.PoolEntry
	for rows.Next() {
		var e model.PoolEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Email, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pool entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeletePoolEntry removes a recipient from a pool.
func DeletePoolEntry(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM notification_pools WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting pool entry: %w", err)
	}
	return nil
}

// LoadPools returns every pool's recipients keyed by kind.
func LoadPools(ctx context.Context, db *sql.DB) (map[string][]string, error) {
	entries, err := ListPoolEntries(ctx, db)
	if err != nil {
		return nil, err
	}

	pools := make(map[string][]string)
	for _, e := range entries {
		pools[e.Kind] = append(pools[e.Kind], e.Email)
	}
	return pools, nil
}
