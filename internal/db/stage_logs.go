package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// -----------------------------------------------------------------------------
// Stage Log Methods
// -----------------------------------------------------------------------------

// AppendStageLog inserts one stage outcome row. The audit trail is
// append-only, so this is the only write path for stage logs; the returned
// row ID is written back into log.
func (db *DB) AppendStageLog(ctx context.Context, log *types.StageLog) error {
	if log.ProcessedAt.IsZero() {
		log.ProcessedAt = time.Now().UTC()
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO stage_logs (email_id, filename, stage, success, error_message, duration_ms, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		log.EmailID, log.Filename, string(log.Stage), log.Success,
		log.ErrorMessage, log.DurationMs, log.ProcessedAt,
	).Scan(&log.ID)
	if err != nil {
		return &PersistenceError{Op: "append_stage_log", Message: "insert failed", Cause: err}
	}
	return nil
}

// StageLogHistory retrieves every stage row ever recorded for a document,
// oldest first. Callers derive attempt boundaries and status from this
// history rather than from any stored aggregate.
func (db *DB) StageLogHistory(ctx context.Context, emailID, filename string) ([]types.StageLog, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, email_id, filename, stage, success, error_message, duration_ms, processed_at
		 FROM stage_logs
		 WHERE email_id = $1 AND filename = $2
		 ORDER BY processed_at ASC, id ASC`,
		emailID, filename,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "stage_log_history", Message: "query failed", Cause: err}
	}
	defer rows.Close()

	logs, err := scanStageLogs(rows)
	if err != nil {
		return nil, &PersistenceError{Op: "stage_log_history", Message: "scan failed", Cause: err}
	}
	return logs, nil
}

// ListStageLogsOptions contains filters for querying the stage log audit trail
type ListStageLogsOptions struct {
	EmailID  string      // Filter by source email
	Filename string      // Filter by document filename
	Stage    types.Stage // Filter by pipeline stage
	Success  *bool       // Filter by outcome
	Limit    int         // Pagination limit
	Offset   int         // Pagination offset
}

// ListStageLogs queries stage rows with optional filters and pagination,
// newest first. Returns the page of rows plus the total match count.
func (db *DB) ListStageLogs(ctx context.Context, opts ListStageLogsOptions) ([]types.StageLog, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if opts.EmailID != "" {
		conditions = append(conditions, fmt.Sprintf("email_id = $%d", argIndex))
		args = append(args, opts.EmailID)
		argIndex++
	}

	if opts.Filename != "" {
		conditions = append(conditions, fmt.Sprintf("filename = $%d", argIndex))
		args = append(args, opts.Filename)
		argIndex++
	}

	if opts.Stage != "" {
		conditions = append(conditions, fmt.Sprintf("stage = $%d", argIndex))
		args = append(args, string(opts.Stage))
		argIndex++
	}

	if opts.Success != nil {
		conditions = append(conditions, fmt.Sprintf("success = $%d", argIndex))
		args = append(args, *opts.Success)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM stage_logs %s", whereClause)
	var total int
	if err := db.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, &PersistenceError{Op: "list_stage_logs", Message: "count failed", Cause: err}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT id, email_id, filename, stage, success, error_message, duration_ms, processed_at
		 FROM stage_logs %s
		 ORDER BY processed_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list_stage_logs", Message: "query failed", Cause: err}
	}
	defer rows.Close()

	logs, err := scanStageLogs(rows)
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list_stage_logs", Message: "scan failed", Cause: err}
	}
	return logs, total, nil
}

// ListDocuments returns the distinct documents present in the stage log,
// most recently processed first.
func (db *DB) ListDocuments(ctx context.Context, limit int) ([]types.DocumentRef, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.pool.Query(ctx,
		`SELECT email_id, filename, MAX(processed_at) AS last_processed
		 FROM stage_logs
		 GROUP BY email_id, filename
		 ORDER BY last_processed DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list_documents", Message: "query failed", Cause: err}
	}
	defer rows.Close()

	var refs []types.DocumentRef
	for rows.Next() {
		var ref types.DocumentRef
		var last time.Time
		if err := rows.Scan(&ref.EmailID, &ref.Filename, &last); err != nil {
			return nil, &PersistenceError{Op: "list_documents", Message: "scan failed", Cause: err}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
}

func scanStageLogs(rows pgxRows) ([]types.StageLog, error) {
	var logs []types.StageLog
	for rows.Next() {
		var log types.StageLog
		var stage string
		if err := rows.Scan(&log.ID, &log.EmailID, &log.Filename, &stage,
			&log.Success, &log.ErrorMessage, &log.DurationMs, &log.ProcessedAt); err != nil {
			return nil, err
		}
		log.Stage = types.Stage(stage)
		logs = append(logs, log)
	}
	return logs, nil
}
