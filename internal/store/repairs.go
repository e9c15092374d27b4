package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aguilarm/mobiliario/internal/model"
)

// CreateRepair opens a repair batch, pulling revision units of an
// article out of effective availability.
func CreateRepair(ctx context.Context, db *sql.DB, articleID int64, assetTag, workOrder string, revision int, createdBy *int64) (*model.Repair, error) {
	if revision <= 0 {
		return nil, fmt.Errorf("revision count must be positive")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO repairs (article_id, asset_tag, work_order, revision, created_by)
		 VALUES (?, ?, ?, ?, ?)`,
		articleID, assetTag, workOrder, revision, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating repair: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting repair id: %w", err)
	}

	return GetRepair(ctx, db, id)
}

// GetRepair returns a repair by ID.
func GetRepair(ctx context.Context, db *sql.DB, id int64) (*model.Repair, error) {
	r := &model.Repair{}
	err := db.QueryRowContext(ctx,
		`SELECT r.id, r.article_id, r.asset_tag, r.work_order, r.status, r.revision,
		        r.repaired_count, r.discarded_count, r.created_by, r.created_at, r.finalized_at,
		        a.name AS article_name
		 FROM repairs r JOIN articles a ON a.id = r.article_id
		 WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.ArticleID, &r.AssetTag, &r.WorkOrder, &r.Status, &r.Revision,
		&r.RepairedCount, &r.DiscardedCount, &r.CreatedBy, &r.CreatedAt, &r.FinalizedAt,
		&r.ArticleName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting repair: %w", err)
	}
	return r, nil
}

// ListRepairs returns repairs, optionally filtered by article or status.
func ListRepairs(ctx context.Context, db *sql.DB, articleID int64, status string) ([]model.Repair, error) {
	query := `SELECT r.id, r.article_id, r.asset_tag, r.work_order, r.status, r.revision,
	                 r.repaired_count, r.discarded_count, r.created_by, r.created_at, r.finalized_at,
	                 a.name AS article_name
	          FROM repairs r JOIN articles a ON a.id = r.article_id
	          WHERE 1=1`
	var args []any

	if articleID > 0 {
		query += ` AND r.article_id = ?`
		args = append(args, articleID)
	}
	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing repairs: %w", err)
	}
	defer rows.Close()

	var repairs []model.Repair
	for rows.Next() {
		var r model.Repair
		if err := rows.Scan(&r.ID, &r.ArticleID, &r.AssetTag, &r.WorkOrder, &r.Status, &r.Revision,
			&r.RepairedCount, &r.DiscardedCount, &r.CreatedBy, &r.CreatedAt, &r.FinalizedAt,
			&r.ArticleName); err != nil {
			return nil, fmt.Errorf("scanning repair: %w", err)
		}
		repairs = append(repairs, r)
	}
	return repairs, rows.Err()
}

// FinalizeRepair moves a repair from evaluation to finalized with the
// repaired/discarded outcome counts filled in.
func FinalizeRepair(ctx context.Context, db *sql.DB, id int64, repaired, discarded int) error {
	if repaired < 0 || discarded < 0 {
		return fmt.Errorf("outcome counts must not be negative")
	}

	repair, err := GetRepair(ctx, db, id)
	if err != nil {
		return err
	}
	if repair == nil {
		return fmt.Errorf("repair not found")
	}
	if repair.Status != model.RepairStatusEvaluation {
		return fmt.Errorf("only repairs under evaluation can be finalized")
	}
	if repaired+discarded > repair.Revision {
		return fmt.Errorf("outcome exceeds revision count: %d + %d > %d", repaired, discarded, repair.Revision)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE repairs SET status = ?, repaired_count = ?, discarded_count = ?, finalized_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		model.RepairStatusFinalized, repaired, discarded, id,
	)
	if err != nil {
		return fmt.Errorf("finalizing repair: %w", err)
	}
	return nil
}

// ApproveRepair closes out a finalized repair: one handover row is
// spawned per repaired and discarded unit, and the repair either
// shrinks to the outstanding count (back under evaluation) or is
// deleted when nothing remains outstanding.
func ApproveRepair(ctx context.Context, db *sql.DB, id int64) ([]model.Handover, error) {
	repair, err := GetRepair(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if repair == nil {
		return nil, fmt.Errorf("repair not found")
	}
	if repair.Status != model.RepairStatusFinalized {
		return nil, fmt.Errorf("only finalized repairs can be approved")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	spawn := func(disposition string, count int) error {
		for i := 0; i < count; i++ {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO handovers (repair_id, article_id, asset_tag, disposition)
				 VALUES (?, ?, ?, ?)`,
				repair.ID, repair.ArticleID, repair.AssetTag, disposition,
			)
			if err != nil {
				return fmt.Errorf("creating handover: %w", err)
			}
		}
		return nil
	}
	if err := spawn(model.DispositionRepaired, repair.RepairedCount); err != nil {
		return nil, err
	}
	if err := spawn(model.DispositionDiscarded, repair.DiscardedCount); err != nil {
		return nil, err
	}

	outstanding := repair.Revision - repair.RepairedCount - repair.DiscardedCount
	if outstanding <= 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM repairs WHERE id = ?`, repair.ID); err != nil {
			return nil, fmt.Errorf("closing repair: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`UPDATE repairs SET revision = ?, status = ?, repaired_count = 0, discarded_count = 0, finalized_at = NULL
			 WHERE id = ?`,
			outstanding, model.RepairStatusEvaluation, repair.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("shrinking repair: %w", err)
		}
	}

	// Discarded units permanently leave the owned stock.
	if repair.DiscardedCount > 0 {
		_, err := tx.ExecContext(ctx,
			`UPDATE articles SET quantity = MAX(quantity - ?, 0), updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			repair.DiscardedCount, repair.ArticleID,
		)
		if err != nil {
			return nil, fmt.Errorf("shrinking article stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing repair approval: %w", err)
	}

	return ListHandovers(ctx, db, repair.ID)
}

// ListHandovers returns handover records, optionally filtered by repair.
func ListHandovers(ctx context.Context, db *sql.DB, repairID int64) ([]model.Handover, error) {
	query := `SELECT h.id, h.repair_id, h.article_id, h.asset_tag, h.disposition, h.notes, h.created_at,
	                 a.name AS article_name
	          FROM handovers h JOIN articles a ON a.id = h.article_id
	          WHERE 1=1`
	var args []any

	if repairID > 0 {
		query += ` AND h.repair_id = ?`
		args = append(args, repairID)
	}
	query += ` ORDER BY h.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing handovers: %w", err)
	}
	defer rows.Close()

	var handovers []model.Handover
	for rows.Next() {
		var h model.Handover
		if err := rows.Scan(&h.ID, &h.RepairID, &h.ArticleID, &h.AssetTag, &h.Disposition, &h.Notes, &h.CreatedAt, &h.ArticleName); err != nil {
			return nil, fmt.Errorf("scanning handover: %w", err)
		}
		handovers = append(handovers, h)
	}
	return handovers, rows.Err()
}

// SetHandoverNotes records the inspection outcome for one handed-over unit.
func SetHandoverNotes(ctx context.Context, db *sql.DB, id int64, notes string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE handovers SET notes = ? WHERE id = ?`, notes, id,
	)
	if err != nil {
		return fmt.Errorf("updating handover notes: %w", err)
	}
	return nil
}
