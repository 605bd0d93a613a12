package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// -----------------------------------------------------------------------------
// Receipt Methods
// -----------------------------------------------------------------------------

// SaveReceipt stores the extracted receipt data for a document. Each document
// has one current receipt row; reprocessing replaces it in place.
func (db *DB) SaveReceipt(ctx context.Context, r *types.ReceiptRecord) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO receipts (source_email_id, filename, merchant_name, total_amount, transaction_date)
		 VALUES ($1, $2, $3, $4::numeric, $5)
		 ON CONFLICT (source_email_id, filename) DO UPDATE
		 SET merchant_name = EXCLUDED.merchant_name,
		     total_amount = EXCLUDED.total_amount,
		     transaction_date = EXCLUDED.transaction_date,
		     created_at = NOW()
		 RETURNING id, created_at`,
		r.SourceEmailID, r.Filename, r.MerchantName, r.TotalAmount.String(), r.TransactionDate,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return &PersistenceError{Op: "save_receipt", Message: "upsert failed", Cause: err}
	}
	return nil
}

// GetReceipt retrieves the current receipt row for a document, or nil when
// no receipt has been persisted for it.
func (db *DB) GetReceipt(ctx context.Context, emailID, filename string) (*types.ReceiptRecord, error) {
	var r types.ReceiptRecord
	var amount string
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_email_id, filename, merchant_name, total_amount::text, transaction_date, created_at
		 FROM receipts
		 WHERE source_email_id = $1 AND filename = $2`,
		emailID, filename,
	).Scan(&r.ID, &r.SourceEmailID, &r.Filename, &r.MerchantName, &amount, &r.TransactionDate, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "get_receipt", Message: "query failed", Cause: err}
	}

	r.TotalAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, &PersistenceError{Op: "get_receipt", Message: fmt.Sprintf("bad amount %q", amount), Cause: err}
	}
	return &r, nil
}

// ListReceiptsOptions contains filters for listing stored receipts
type ListReceiptsOptions struct {
	From   *time.Time // Earliest transaction date, inclusive
	To     *time.Time // Latest transaction date, inclusive
	Limit  int
	Offset int
}

// ListReceipts retrieves stored receipts ordered by transaction date
func (db *DB) ListReceipts(ctx context.Context, opts ListReceiptsOptions) ([]types.ReceiptRecord, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if opts.From != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_date >= $%d", argIndex))
		args = append(args, *opts.From)
		argIndex++
	}

	if opts.To != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_date <= $%d", argIndex))
		args = append(args, *opts.To)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(
		`SELECT id, source_email_id, filename, merchant_name, total_amount::text, transaction_date, created_at
		 FROM receipts %s
		 ORDER BY transaction_date ASC, created_at ASC
		 LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "list_receipts", Message: "query failed", Cause: err}
	}
	defer rows.Close()

	var receipts []types.ReceiptRecord
	for rows.Next() {
		var r types.ReceiptRecord
		var amount string
		if err := rows.Scan(&r.ID, &r.SourceEmailID, &r.Filename, &r.MerchantName,
			&amount, &r.TransactionDate, &r.CreatedAt); err != nil {
			return nil, &PersistenceError{Op: "list_receipts", Message: "scan failed", Cause: err}
		}
		r.TotalAmount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, &PersistenceError{Op: "list_receipts", Message: fmt.Sprintf("bad amount %q", amount), Cause: err}
		}
		receipts = append(receipts, r)
	}
	return receipts, nil
}
