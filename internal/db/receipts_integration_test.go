//go:build integration
// +build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

func TestSaveReceipt_UpsertReplacesInPlace_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	emailID := "email-" + uuid.New().String()

	first := &types.ReceiptRecord{
		SourceEmailID:   emailID,
		Filename:        "receipt.pdf",
		MerchantName:    "Coffee Shop",
		TotalAmount:     decimal.RequireFromString("42.50"),
		TransactionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.SaveReceipt(ctx, first))
	assert.NotEmpty(t, first.ID)

	// Reprocessing the same document replaces the stored fields
	second := &types.ReceiptRecord{
		SourceEmailID:   emailID,
		Filename:        "receipt.pdf",
		MerchantName:    "Coffee Shop Downtown",
		TotalAmount:     decimal.RequireFromString("43.75"),
		TransactionDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.SaveReceipt(ctx, second))
	assert.Equal(t, first.ID, second.ID, "upsert must keep the existing row")

	stored, err := db.GetReceipt(ctx, emailID, "receipt.pdf")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Coffee Shop Downtown", stored.MerchantName)
	assert.Equal(t, "43.75", stored.TotalAmount.String())
	assert.Equal(t, 2, stored.TransactionDate.Day())
}

func TestGetReceipt_NotFound_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	stored, err := db.GetReceipt(context.Background(), "email-"+uuid.New().String(), "missing.pdf")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestListReceipts_DateRange_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	emailID := "email-" + uuid.New().String()

	dates := []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		r := &types.ReceiptRecord{
			SourceEmailID:   emailID,
			Filename:        "receipt-" + string(rune('a'+i)) + ".pdf",
			MerchantName:    "Merchant",
			TotalAmount:     decimal.RequireFromString("10.00"),
			TransactionDate: d,
		}
		require.NoError(t, db.SaveReceipt(ctx, r))
	}

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	receipts, err := db.ListReceipts(ctx, ListReceiptsOptions{From: &from, To: &to})
	require.NoError(t, err)

	var ours []types.ReceiptRecord
	for _, r := range receipts {
		if r.SourceEmailID == emailID {
			ours = append(ours, r)
		}
	}
	require.Len(t, ours, 1)
	assert.Equal(t, 15, ours[0].TransactionDate.Day())
}
