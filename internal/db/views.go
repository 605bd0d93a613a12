package db

import (
	"context"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// -----------------------------------------------------------------------------
// Processed File Views
// -----------------------------------------------------------------------------

// LatestView assembles the read-only view of a document's latest processing
// attempt: status and stage counts projected from the stage log history,
// enriched with the stored classification verdict and receipt data where the
// attempt got far enough to produce them. Returns nil when the document has
// no recorded attempts.
func (db *DB) LatestView(ctx context.Context, emailID, filename string) (*types.ProcessedFileView, error) {
	history, err := db.StageLogHistory(ctx, emailID, filename)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}

	attempt := types.LatestAttempt(history)
	view := &types.ProcessedFileView{
		EmailID:          emailID,
		Filename:         filename,
		ProcessingStatus: attempt.Status,
		SuccessfulStages: attempt.SuccessfulStages,
		Attempts:         len(types.SplitAttempts(history)),
		LastProcessedAt:  attempt.LastProcessedAt,
	}

	// A successful classify always appends a classification row, so whenever
	// the latest attempt got past classify the newest stored verdict belongs
	// to that attempt.
	if attempt.Status != types.StatusUnknown {
		cls, err := db.LatestClassification(ctx, emailID, filename)
		if err != nil {
			return nil, err
		}
		if cls != nil {
			view.IsReceipt = &cls.IsReceipt
			view.Confidence = &cls.Confidence
			view.DocumentType = &cls.DocumentType
		}
	}

	// Receipt fields are only current when the latest attempt completed;
	// after a failed reprocess the stored row may predate the attempt.
	if attempt.Status == types.StatusCompleted {
		receipt, err := db.GetReceipt(ctx, emailID, filename)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			view.MerchantName = &receipt.MerchantName
			amount := receipt.TotalAmount
			view.TotalAmount = &amount
			date := receipt.TransactionDate
			view.TransactionDate = &date
		}
	}

	return view, nil
}

// ListViews assembles views for the most recently processed documents
func (db *DB) ListViews(ctx context.Context, limit int) ([]types.ProcessedFileView, error) {
	refs, err := db.ListDocuments(ctx, limit)
	if err != nil {
		return nil, err
	}

	views := make([]types.ProcessedFileView, 0, len(refs))
	for _, ref := range refs {
		view, err := db.LatestView(ctx, ref.EmailID, ref.Filename)
		if err != nil {
			return nil, err
		}
		if view != nil {
			views = append(views, *view)
		}
	}
	return views, nil
}
