// Package types provides type definitions for structured data used throughout the email-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage identifies one discrete step in the document processing pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageClassify Stage = "classify"
	StageExtract  Stage = "extract"
	StagePersist  Stage = "persist"
)

// Valid reports whether s is a known pipeline stage.
func (s Stage) Valid() bool {
	switch s {
	case StageClassify, StageExtract, StagePersist:
		return true
	}
	return false
}

// ProcessingStatus is the aggregate outcome of a document's latest processing
// attempt. StatusPending is reported for documents with no recorded attempt.
type ProcessingStatus string

// Terminal statuses a processing attempt can reach.
const (
	StatusCompleted      ProcessingStatus = "completed"
	StatusClassifiedOnly ProcessingStatus = "classified_only"
	StatusNotReceipt     ProcessingStatus = "not_receipt"
	StatusUnknown        ProcessingStatus = "unknown"
	StatusPending        ProcessingStatus = "pending"
)

// DocumentJob is the unit of work handed to the processing pipeline: one
// document (an email attachment or inline body) identified by the
// (email_id, filename) pair.
type DocumentJob struct {
	ID           string    `json:"id,omitempty"`
	EmailID      string    `json:"email_id"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mime_type"`
	ContentBytes []byte    `json:"-"`
	ReceivedAt   time.Time `json:"received_at"`
}

// Fingerprint returns the identity key shared by every processing attempt of
// the same logical document.
func (j DocumentJob) Fingerprint() string {
	return j.EmailID + ":" + j.Filename
}

// StageLog is one immutable audit row recording the outcome of a single stage
// attempt. Rows are append-only: reprocessing appends new rows, it never
// updates or deletes prior ones.
type StageLog struct {
	ID           string    `json:"id"`
	EmailID      string    `json:"email_id"`
	Filename     string    `json:"filename"`
	Stage        Stage     `json:"stage"`
	Success      bool      `json:"success"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// Classification is the classifier capability's verdict on a document.
// Confidence is expressed on a 0..100 scale.
type Classification struct {
	IsReceipt    bool    `json:"is_receipt"`
	Confidence   float64 `json:"confidence"`
	DocumentType string  `json:"document_type"`
}

// Extraction holds the structured fields pulled from a receipt document.
type Extraction struct {
	MerchantName    string          `json:"merchant_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// ProcessedFileView is the derived, read-only aggregate over a document's
// latest attempt. It is always recomputable from StageLog history plus the
// persisted classification and receipt rows; it is never stored as a mutable
// record of its own.
type ProcessedFileView struct {
	EmailID          string           `json:"email_id"`
	Filename         string           `json:"filename"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	IsReceipt        *bool            `json:"is_receipt,omitempty"`
	Confidence       *float64         `json:"confidence,omitempty"`
	DocumentType     *string          `json:"document_type,omitempty"`
	SuccessfulStages int              `json:"successful_stages"`
	MerchantName     *string          `json:"merchant_name,omitempty"`
	TotalAmount      *decimal.Decimal `json:"total_amount,omitempty"`
	TransactionDate  *time.Time       `json:"transaction_date,omitempty"`
	Attempts         int              `json:"attempts"`
	LastProcessedAt  time.Time        `json:"last_processed_at"`
}
