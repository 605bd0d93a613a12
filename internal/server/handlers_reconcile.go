package server

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yatharthk2/EmailDemo-sub001/internal/db"
	"github.com/yatharthk2/EmailDemo-sub001/internal/reconcile"
	"github.com/yatharthk2/EmailDemo-sub001/internal/statement"
)

// maxStatementBytes bounds the in-memory size of an uploaded statement.
const maxStatementBytes = 32 << 20

// ReconcileResponse represents the response for a reconciliation run
type ReconcileResponse struct {
	Report       *reconcile.Report    `json:"report"`
	RowErrors    []statement.RowError `json:"row_errors,omitempty"`
	Receipts     int                  `json:"receipts"`
	Transactions int                  `json:"transactions"`
}

// handleReconcile matches the uploaded bank statement against stored
// receipts. The statement arrives as a multipart file; from/to bound the
// receipt period and tolerance form values override the configured matching
// defaults for this run.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxStatementBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("statement")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "statement file is required")
		return
	}
	defer file.Close()

	from, err := parseFormDate(r, "from")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := parseFormDate(r, "to")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
		return
	}

	cfg := s.matching
	if daysStr := r.FormValue("date_tolerance_days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid date_tolerance_days")
			return
		}
		cfg.DateToleranceDays = days
	}
	if epsStr := r.FormValue("amount_epsilon"); epsStr != "" {
		eps, err := decimal.NewFromString(epsStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid amount_epsilon")
			return
		}
		cfg.AmountEpsilon = eps
	}
	if err := cfg.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid matching config: "+err.Error())
		return
	}

	var result *statement.Result
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".txt":
		result, err = statement.Parse(file)
	case ".xlsx":
		result, err = statement.ParseXLSX(file)
	default:
		s.errorResponse(w, http.StatusBadRequest, "Unsupported statement type, expected .csv, .txt or .xlsx")
		return
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Failed to parse statement: "+err.Error())
		return
	}

	receipts, err := s.store.ListReceipts(r.Context(), db.ListReceiptsOptions{
		From:  from,
		To:    to,
		Limit: 10000,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	report := reconcile.NewMatcher(&cfg).Match(receipts, result.Transactions)

	s.jsonResponse(w, http.StatusOK, ReconcileResponse{
		Report:       report,
		RowErrors:    result.RowErrors,
		Receipts:     len(receipts),
		Transactions: len(result.Transactions),
	})
}

// parseFormDate parses a YYYY-MM-DD form value. Returns nil when the value
// is absent.
func parseFormDate(r *http.Request, key string) (*time.Time, error) {
	valStr := r.FormValue(key)
	if valStr == "" {
		return nil, nil
	}
	val, err := time.Parse("2006-01-02", valStr)
	if err != nil {
		return nil, err
	}
	val = val.UTC()
	return &val, nil
}
