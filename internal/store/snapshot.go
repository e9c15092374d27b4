package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aguilarm/mobiliario/internal/availability"
	"github.com/aguilarm/mobiliario/internal/model"
)

// LoadAvailabilitySnapshot performs the one-shot read the availability
// engine computes over: every article (soft-deleted included, since
// existing requests may still reference them), every request with its
// line items, every loading window and the repair holdbacks.
func LoadAvailabilitySnapshot(ctx context.Context, db *sql.DB) (availability.Snapshot, error) {
	var snap availability.Snapshot

	rows, err := db.QueryContext(ctx, `SELECT id, name, category_id, quantity FROM articles`)
	if err != nil {
		return snap, fmt.Errorf("loading articles: %w", err)
	}
	defer rows.Close()

	snap.Articles = make(map[int64]model.Article)
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Name, &a.CategoryID, &a.Quantity); err != nil {
			return snap, fmt.Errorf("scanning article: %w", err)
		}
		snap.Articles[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	snap.Requests, err = ListRequests(ctx, db, "", 0)
	if err != nil {
		return snap, err
	}

	snap.Windows, err = ListLoadingWindows(ctx, db, 0)
	if err != nil {
		return snap, err
	}

	snap.Holdback, err = ArticleHoldbacks(ctx, db)
	if err != nil {
		return snap, err
	}

	return snap, nil
}

// CheckAvailability loads a snapshot and runs the engine for one
// candidate request. Convenience wrapper used by the API handlers.
func CheckAvailability(ctx context.Context, db *sql.DB, candidate *model.Request) (availability.Result, error) {
	snap, err := LoadAvailabilitySnapshot(ctx, db)
	if err != nil {
		return availability.Result{}, err
	}
	return availability.Check(candidate, snap)
}
