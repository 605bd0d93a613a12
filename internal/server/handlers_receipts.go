package server

import (
	"net/http"
	"time"

	"github.com/yatharthk2/EmailDemo-sub001/internal/db"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// ListReceiptsResponse represents the response for listing stored receipts
type ListReceiptsResponse struct {
	Receipts []types.ReceiptRecord `json:"receipts"`
	Count    int                   `json:"count"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

// parseQueryDate parses a YYYY-MM-DD query parameter. Returns nil when the
// parameter is absent.
func parseQueryDate(r *http.Request, key string) (*time.Time, error) {
	valStr := r.URL.Query().Get(key)
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

// handleListReceipts lists stored receipts with optional date range and
// pagination
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 100, 500)
	offset := parseQueryInt(r, "offset", 0, 0)

	from, err := parseQueryDate(r, "from")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := parseQueryDate(r, "to")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
		return
	}

	receipts, err := s.store.ListReceipts(r.Context(), db.ListReceiptsOptions{
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if receipts == nil {
		receipts = []types.ReceiptRecord{}
	}

	s.jsonResponse(w, http.StatusOK, ListReceiptsResponse{
		Receipts: receipts,
		Count:    len(receipts),
		Limit:    limit,
		Offset:   offset,
	})
}
