package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// -----------------------------------------------------------------------------
// Classification Methods
// -----------------------------------------------------------------------------

// ClassificationRecord is a stored classifier verdict for one document.
// Like stage logs, records are append-only: each successful classify stage
// adds a row and the newest row is the current verdict.
type ClassificationRecord struct {
	ID       string `json:"id"`
	EmailID  string `json:"email_id"`
	Filename string `json:"filename"`
	types.Classification
	ProcessedAt time.Time `json:"processed_at"`
}

// SaveClassification appends a classifier verdict for a document
func (db *DB) SaveClassification(ctx context.Context, emailID, filename string, c types.Classification) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO document_classifications (email_id, filename, is_receipt, confidence, document_type)
		 VALUES ($1, $2, $3, $4, $5)`,
		emailID, filename, c.IsReceipt, c.Confidence, c.DocumentType,
	)
	if err != nil {
		return &PersistenceError{Op: "save_classification", Message: "insert failed", Cause: err}
	}
	return nil
}

// LatestClassification retrieves the most recent classifier verdict for a
// document, or nil when the document has never been classified.
func (db *DB) LatestClassification(ctx context.Context, emailID, filename string) (*ClassificationRecord, error) {
	var rec ClassificationRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, email_id, filename, is_receipt, confidence, document_type, processed_at
		 FROM document_classifications
		 WHERE email_id = $1 AND filename = $2
		 ORDER BY processed_at DESC, id DESC
		 LIMIT 1`,
		emailID, filename,
	).Scan(&rec.ID, &rec.EmailID, &rec.Filename, &rec.IsReceipt,
		&rec.Confidence, &rec.DocumentType, &rec.ProcessedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "latest_classification", Message: "query failed", Cause: err}
	}
	return &rec, nil
}
