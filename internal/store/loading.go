package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aguilarm/mobiliario/internal/model"
)

// CreateLoadingWindow creates a blackout window for an article.
func CreateLoadingWindow(ctx context.Context, db *sql.DB, articleID int64, startAt, endAt time.Time, notes string, createdBy *int64) (*model.LoadingWindow, error) {
	if !endAt.After(startAt) {
		return nil, fmt.Errorf("window must end after it starts")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO loading_windows (article_id, start_at, end_at, notes, created_by)
		 VALUES (?, ?, ?, ?, ?)`,
		articleID, startAt, endAt, notes, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating loading window: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting loading window id: %w", err)
	}

	return GetLoadingWindow(ctx, db, id)
}

// GetLoadingWindow returns a loading window by ID.
func GetLoadingWindow(ctx context.Context, db *sql.DB, id int64) (*model.LoadingWindow, error) {
	w := &model.LoadingWindow{}
	err := db.QueryRowContext(ctx,
		`SELECT w.id, w.article_id, w.start_at, w.end_at, w.notes, w.created_by, w.created_at,
		        a.name AS article_name
		 FROM loading_windows w JOIN articles a ON a.id = w.article_id
		 WHERE w.id = ?`, id,
	).Scan(&w.ID, &w.ArticleID, &w.StartAt, &w.EndAt, &w.Notes, &w.CreatedBy, &w.CreatedAt, &w.ArticleName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting loading window: %w", err)
	}
	return w, nil
}

// ListLoadingWindows returns loading windows, optionally filtered by article.
func ListLoadingWindows(ctx context.Context, db *sql.DB, articleID int64) ([]model.LoadingWindow, error) {
	query := `SELECT w.id, w.article_id, w.start_at, w.end_at, w.notes, w.created_by, w.created_at,
	                 a.name AS article_name
	          FROM loading_windows w JOIN articles a ON a.id = w.article_id
	          WHERE 1=1`
	var args []any

	if articleID > 0 {
		query += ` AND w.article_id = ?`
		args = append(args, articleID)
	}
	query += ` ORDER BY w.start_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing loading windows: %w", err)
	}
	defer rows.Close()

	var windows []model.LoadingWindow
	for rows.Next() {
		var w model.LoadingWindow
		if err := rows.Scan(&w.ID, &w.ArticleID, &w.StartAt, &w.EndAt, &w.Notes, &w.CreatedBy, &w.CreatedAt, &w.ArticleName); err != nil {
			return nil, fmt.Errorf("scanning loading window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// DeleteLoadingWindow removes a loading window.
func DeleteLoadingWindow(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM loading_windows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting loading window: %w", err)
	}
	return nil
}
