package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

func TestHandleListReceipts(t *testing.T) {
	s := newTestServer()
	s.store.receipts = []types.ReceiptRecord{
		{
			ID:              "r1",
			SourceEmailID:   "e1",
			Filename:        "receipt.pdf",
			MerchantName:    "Coffee Shop",
			TotalAmount:     decimal.RequireFromString("42.50"),
			TransactionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:              "r2",
			SourceEmailID:   "e2",
			Filename:        "body.txt",
			MerchantName:    "Book Store",
			TotalAmount:     decimal.RequireFromString("19.99"),
			TransactionDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/receipts", nil)
	w := httptest.NewRecorder()

	s.handleListReceipts(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ListReceiptsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Receipts, 2)
	assert.Equal(t, "Coffee Shop", resp.Receipts[0].MerchantName)
	assert.Equal(t, 100, resp.Limit)
}

func TestHandleListReceipts_DateRange(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/receipts?from=2024-03-01&to=2024-03-31&limit=25&offset=5", nil)
	w := httptest.NewRecorder()

	s.handleListReceipts(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	opts := s.store.lastReceiptOpts
	require.NotNil(t, opts.From)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *opts.From)
	require.NotNil(t, opts.To)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), *opts.To)
	assert.Equal(t, 25, opts.Limit)
	assert.Equal(t, 5, opts.Offset)
}

func TestHandleListReceipts_Empty(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/receipts", nil)
	w := httptest.NewRecorder()

	s.handleListReceipts(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"receipts":[]`)
}

func TestHandleListReceipts_InvalidFromDate(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/receipts?from=03-01-2024", nil)
	w := httptest.NewRecorder()

	s.handleListReceipts(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid from date")
}

func TestHandleListReceipts_InvalidToDate(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/receipts?to=soon", nil)
	w := httptest.NewRecorder()

	s.handleListReceipts(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid to date")
}

func TestHandleListReceipts_DatabaseError(t *testing.T) {
	s := newTestServer()
	s.store.err = assert.AnError

	req := httptest.NewRequest(http.MethodGet, "/receipts", nil)
	w := httptest.NewRecorder()

	s.handleListReceipts(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Database error")
}
