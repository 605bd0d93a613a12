// Package types provides type definitions for structured data used throughout the email-agent system.
package types

import (
	"github.com/go-playground/validator/v10"
)

// DocumentRef identifies one document to (re)process.
type DocumentRef struct {
	EmailID  string `json:"email_id" validate:"required,min=1"`
	Filename string `json:"filename" validate:"required,min=1"`
}

// ProcessDocumentsRequest asks the pipeline to run the referenced documents.
// ForceReprocess runs a fresh attempt even for documents whose latest attempt
// already completed.
type ProcessDocumentsRequest struct {
	Documents      []DocumentRef `json:"documents" validate:"required,min=1,dive"`
	ForceReprocess bool          `json:"force_reprocess"`
}

// Validate validates the ProcessDocumentsRequest using the validator.
func (r *ProcessDocumentsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
