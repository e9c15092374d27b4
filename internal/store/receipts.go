package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aguilarm/mobiliario/internal/model"
)

// GetDeliveryRecord returns the stored sub-record for one phase of one
// article on a request.
func GetDeliveryRecord(ctx context.Context, db *sql.DB, requestID, articleID int64, phase string) (*model.DeliveryRecord, error) {
	rec := &model.DeliveryRecord{}
	var checklist string
	err := db.QueryRowContext(ctx,
		`SELECT d.id, d.request_id, d.article_id, d.phase, d.recipient_name, d.operator_name,
		        d.operator_phone, d.checklist, d.early_release, d.created_by, d.created_at,
		        a.name AS article_name
		 FROM delivery_records d JOIN articles a ON a.id = d.article_id
		 WHERE d.request_id = ? AND d.article_id = ? AND d.phase = ?`,
		requestID, articleID, phase,
	).Scan(&rec.ID, &rec.RequestID, &rec.ArticleID, &rec.Phase, &rec.RecipientName, &rec.OperatorName,
		&rec.OperatorPhone, &checklist, &rec.EarlyRelease, &rec.CreatedBy, &rec.CreatedAt,
		&rec.ArticleName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting delivery record: %w", err)
	}

	if err := json.Unmarshal([]byte(checklist), &rec.Checklist); err != nil {
		return nil, fmt.Errorf("decoding checklist: %w", err)
	}
	return rec, nil
}

// ListDeliveryRecords returns all delivery records of a request.
func ListDeliveryRecords(ctx context.Context, db *sql.DB, requestID int64) ([]model.DeliveryRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT d.id, d.request_id, d.article_id, d.phase, d.recipient_name, d.operator_name,
		        d.operator_phone, d.checklist, d.early_release, d.created_by, d.created_at,
		        a.name AS article_name
		 FROM delivery_records d JOIN articles a ON a.id = d.article_id
		 WHERE d.request_id = ? ORDER BY d.article_id, d.phase`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing delivery records: %w", err)
	}
	defer rows.Close()

	var records []model.DeliveryRecord
	for rows.Next() {
		var rec model.DeliveryRecord
		var checklist string
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.ArticleID, &rec.Phase, &rec.RecipientName,
			&rec.OperatorName, &rec.OperatorPhone, &checklist, &rec.EarlyRelease,
			&rec.CreatedBy, &rec.CreatedAt, &rec.ArticleName); err != nil {
			return nil, fmt.Errorf("scanning delivery record: %w", err)
		}
		if err := json.Unmarshal([]byte(checklist), &rec.Checklist); err != nil {
			return nil, fmt.Errorf("decoding checklist: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveDeliveryRecord stores one phase sub-record with its signatures.
// Once a phase exists it is immutable unless overwrite is set (admin
// override). Saving a handoff clears any stored receipt for the same
// article: a receipt is meaningless against a stale handoff.
func SaveDeliveryRecord(ctx context.Context, db *sql.DB, rec *model.DeliveryRecord, signature []byte, signatureMime string, operatorSignature []byte, operatorSignatureMime string, overwrite bool) (*model.DeliveryRecord, error) {
	checklist, err := json.Marshal(rec.Checklist)
	if err != nil {
		return nil, fmt.Errorf("encoding checklist: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM delivery_records WHERE request_id = ? AND article_id = ? AND phase = ?`,
		rec.RequestID, rec.ArticleID, rec.Phase,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("checking existing record: %w", err)
	}
	if existing > 0 && !overwrite {
		return nil, fmt.Errorf("%s already recorded for this article", rec.Phase)
	}
	if existing > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM delivery_records WHERE request_id = ? AND article_id = ? AND phase = ?`,
			rec.RequestID, rec.ArticleID, rec.Phase,
		)
		if err != nil {
			return nil, fmt.Errorf("replacing existing record: %w", err)
		}
	}

	if rec.Phase == model.PhaseHandoff {
		// A new handoff invalidates any previously entered receipt.
		_, err = tx.ExecContext(ctx,
			`DELETE FROM delivery_records WHERE request_id = ? AND article_id = ? AND phase = ?`,
			rec.RequestID, rec.ArticleID, model.PhaseReceipt,
		)
		if err != nil {
			return nil, fmt.Errorf("clearing stale receipt: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO delivery_records (request_id, article_id, phase, recipient_name, operator_name,
		                               operator_phone, checklist, signature, signature_mime,
		                               operator_signature, operator_signature_mime, early_release, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.ArticleID, rec.Phase, rec.RecipientName, rec.OperatorName,
		rec.OperatorPhone, string(checklist), signature, signatureMime,
		operatorSignature, operatorSignatureMime, rec.EarlyRelease, rec.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("saving delivery record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delivery record: %w", err)
	}

	return GetDeliveryRecord(ctx, db, rec.RequestID, rec.ArticleID, rec.Phase)
}

// GetDeliverySignature returns a stored signature image. Which of the
// two signatures is selected by operator.
func GetDeliverySignature(ctx context.Context, db *sql.DB, requestID, articleID int64, phase string, operator bool) ([]byte, string, error) {
	column := "signature, signature_mime"
	if operator {
		column = "operator_signature, operator_signature_mime"
	}

	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+column+` FROM delivery_records WHERE request_id = ? AND article_id = ? AND phase = ?`,
		requestID, articleID, phase,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting delivery signature: %w", err)
	}
	return data, mime.String, nil
}
