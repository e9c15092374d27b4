package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/aguilarm/mobiliario/internal/model"
)

// CreateRequest inserts a request and its line items. The caller is
// expected to have run the availability check first; no lock spans the
// check and this write (accepted race, see DESIGN.md). A public
// reference code is generated if the request carries none.
func CreateRequest(ctx context.Context, db *sql.DB, r *model.Request) (*model.Request, error) {
	if len(r.Items) == 0 {
		return nil, fmt.Errorf("request needs at least one line item")
	}
	if r.Reference == "" {
		r.Reference = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = model.StatusPending
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO requests (reference, event_name, requester_id, start_date, start_time,
		                       end_date, end_time, delivery_contact, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Reference, r.EventName, r.RequesterID, r.StartDate, r.StartTime,
		r.EndDate, r.EndTime, r.DeliveryContact, r.Notes, r.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting request id: %w", err)
	}

	if err := insertItems(ctx, tx, id, r.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing request: %w", err)
	}

	return GetRequest(ctx, db, id)
}

func insertItems(ctx context.Context, tx *sql.Tx, requestID int64, items []model.LineItem) error {
	for _, it := range items {
		if it.Quantity <= 0 {
			// Zero or negative quantity is no request at all.
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO request_items (request_id, article_id, quantity, observations, released)
			 VALUES (?, ?, ?, ?, ?)`,
			requestID, it.ArticleID, it.Quantity, it.Observations, it.Released,
		)
		if err != nil {
			return fmt.Errorf("creating line item: %w", err)
		}
	}
	return nil
}

// GetRequest returns a request with its line items.
func GetRequest(ctx context.Context, db *sql.DB, id int64) (*model.Request, error) {
	r := &model.Request{}
	var email sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT r.id, r.reference, r.event_name, r.requester_id, r.start_date, r.start_time,
		        r.end_date, r.end_time, r.delivery_contact, r.notes, r.status,
		        r.decided_by, r.decided_at, r.decision_comment, r.created_at,
		        u.username AS requester_name, u.email AS requester_email
		 FROM requests r JOIN users u ON u.id = r.requester_id
		 WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.Reference, &r.EventName, &r.RequesterID, &r.StartDate, &r.StartTime,
		&r.EndDate, &r.EndTime, &r.DeliveryContact, &r.Notes, &r.Status,
		&r.DecidedBy, &r.DecidedAt, &r.DecisionComment, &r.CreatedAt,
		&r.RequesterName, &email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	r.RequesterEmail = email.String

	items, err := listItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	r.Items = items
	return r, nil
}

func listItems(ctx context.Context, db *sql.DB, requestID int64) ([]model.LineItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.request_id, i.article_id, i.quantity, i.observations, i.released,
		        a.name AS article_name, a.category_id
		 FROM request_items i JOIN articles a ON a.id = i.article_id
		 WHERE i.request_id = ? ORDER BY i.id`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing line items: %w", err)
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		var it model.LineItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.ArticleID, &it.Quantity, &it.Observations,
			&it.Released, &it.ArticleName, &it.CategoryID); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListRequests returns requests with their line items, newest first,
// optionally filtered by status or requester.
func ListRequests(ctx context.Context, db *sql.DB, status string, requesterID int64) ([]model.Request, error) {
	query := `SELECT r.id, r.reference, r.event_name, r.requester_id, r.start_date, r.start_time,
	                 r.end_date, r.end_time, r.delivery_contact, r.notes, r.status,
	                 r.decided_by, r.decided_at, r.decision_comment, r.created_at,
	                 u.username AS requester_name, u.email AS requester_email
	          FROM requests r JOIN users u ON u.id = r.requester_id
	          WHERE 1=1`
	var args []any

	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}
	if requesterID > 0 {
		query += ` AND r.requester_id = ?`
		args = append(args, requesterID)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		var r model.Request
		var email sql.NullString
		if err := rows.Scan(&r.ID, &r.Reference, &r.EventName, &r.RequesterID, &r.StartDate, &r.StartTime,
			&r.EndDate, &r.EndTime, &r.DeliveryContact, &r.Notes, &r.Status,
			&r.DecidedBy, &r.DecidedAt, &r.DecisionComment, &r.CreatedAt,
			&r.RequesterName, &email); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		r.RequesterEmail = email.String
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range requests {
		items, err := listItems(ctx, db, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Items = items
	}
	return requests, nil
}

// UpdateRequest updates a request's window and details and replaces
// its line items. Only pending requests can be edited.
func UpdateRequest(ctx context.Context, db *sql.DB, r *model.Request) (*model.Request, error) {
	if len(r.Items) == 0 {
		return nil, fmt.Errorf("request needs at least one line item")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM requests WHERE id = ?`, r.ID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("checking request status: %w", err)
	}
	if status != model.StatusPending {
		return nil, fmt.Errorf("only pending requests can be edited")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE requests SET event_name = ?, start_date = ?, start_time = ?, end_date = ?,
		        end_time = ?, delivery_contact = ?, notes = ?
		 WHERE id = ?`,
		r.EventName, r.StartDate, r.StartTime, r.EndDate, r.EndTime,
		r.DeliveryContact, r.Notes, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating request: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM request_items WHERE request_id = ?`, r.ID); err != nil {
		return nil, fmt.Errorf("clearing line items: %w", err)
	}
	if err := insertItems(ctx, tx, r.ID, r.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing request update: %w", err)
	}

	return GetRequest(ctx, db, r.ID)
}

// ApproveRequest marks a request approved, recording the decider,
// timestamp and optional comment. Released flags are left untouched.
func ApproveRequest(ctx context.Context, db *sql.DB, id, deciderID int64, comment string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE requests SET status = ?, decided_by = ?, decided_at = CURRENT_TIMESTAMP, decision_comment = ?
		 WHERE id = ?`,
		model.StatusApproved, deciderID, comment, id,
	)
	if err != nil {
		return fmt.Errorf("approving request: %w", err)
	}
	return nil
}

// RejectRequest marks a request rejected and releases every line item,
// freeing the held inventory immediately.
func RejectRequest(ctx context.Context, db *sql.DB, id, deciderID int64, reason string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE requests SET status = ?, decided_by = ?, decided_at = CURRENT_TIMESTAMP, decision_comment = ?
		 WHERE id = ?`,
		model.StatusRejected, deciderID, reason, id,
	)
	if err != nil {
		return fmt.Errorf("rejecting request: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE request_items SET released = 1 WHERE request_id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("releasing line items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rejection: %w", err)
	}
	return nil
}

// DeleteRequest removes a request entirely (administrative action).
// Line items, delivery records and reminder marks cascade.
func DeleteRequest(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}
	return nil
}

// ReleaseLineItem sets the released flag on one article's line items
// within a request (early release during delivery handoff).
func ReleaseLineItem(ctx context.Context, db *sql.DB, requestID, articleID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE request_items SET released = 1 WHERE request_id = ? AND article_id = ?`,
		requestID, articleID,
	)
	if err != nil {
		return fmt.Errorf("releasing line item: %w", err)
	}
	return nil
}
