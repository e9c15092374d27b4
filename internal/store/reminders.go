package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aguilarm/mobiliario/internal/model"
)

// MarkReminderSent persists the sent marker for a request+milestone+pool
// combination together with the recipient list actually used. It
// reports false without error when the marker already existed, which
// makes the reminder job idempotent across restarts.
func MarkReminderSent(ctx context.Context, db *sql.DB, requestID int64, milestone, pool string, recipients []string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reminders (request_id, milestone, pool, recipients) VALUES (?, ?, ?, ?)`,
		requestID, milestone, pool, strings.Join(recipients, ","),
	)
	if err != nil {
		return false, fmt.Errorf("marking reminder sent: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking reminder mark: %w", err)
	}
	return n > 0, nil
}

// ReminderSent reports whether a reminder has already been sent for
// the given request+milestone+pool combination.
func ReminderSent(ctx context.Context, db *sql.DB, requestID int64, milestone, pool string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminders WHERE request_id = ? AND milestone = ? AND pool = ?`,
		requestID, milestone, pool,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking reminder mark: %w", err)
	}
	return count > 0, nil
}

// ListReminderMarks returns the sent markers of a request.
func ListReminderMarks(ctx context.Context, db *sql.DB, requestID int64) ([]model.ReminderMark, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT request_id, milestone, pool, sent_at, recipients
		 FROM reminders WHERE request_id = ? ORDER BY pool`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reminder marks: %w", err)
	}
	defer rows.Close()

	var marks []model.ReminderMark
	for rows.Next() {
		var m model.ReminderMark
		if err := rows.Scan(&m.RequestID, &m.Milestone, &m.Pool, &m.SentAt, &m.Recipients); err != nil {
			return nil, fmt.Errorf("scanning reminder mark: %w", err)
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}
