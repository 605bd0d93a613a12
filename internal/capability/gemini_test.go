package capability

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	client, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestParseClassification_Valid(t *testing.T) {
	raw := `{"is_receipt": true, "confidence": 92, "document_type": "receipt"}`

	result, err := parseClassification(raw)
	require.NoError(t, err)
	assert.True(t, result.IsReceipt)
	assert.Equal(t, 92.0, result.Confidence)
	assert.Equal(t, "receipt", result.DocumentType)
}

func TestParseClassification_NotReceipt(t *testing.T) {
	raw := `{"is_receipt": false, "confidence": 88, "document_type": "promotional"}`

	result, err := parseClassification(raw)
	require.NoError(t, err)
	assert.False(t, result.IsReceipt)
	assert.Equal(t, "promotional", result.DocumentType)
}

func TestParseClassification_SchemaViolation(t *testing.T) {
	// Confidence above the 0-100 range
	raw := `{"is_receipt": true, "confidence": 150, "document_type": "receipt"}`

	result, err := parseClassification(raw)
	require.Error(t, err)
	assert.Nil(t, result)

	var capErr *CapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "classify", capErr.Op)
	assert.Contains(t, capErr.Error(), "malformed classification response")
}

func TestParseClassification_MalformedJSON(t *testing.T) {
	result, err := parseClassification(`not even json`)
	require.Error(t, err)
	assert.Nil(t, result)

	var capErr *CapabilityError
	assert.True(t, errors.As(err, &capErr))
}

func TestParseExtraction_Valid(t *testing.T) {
	raw := `{"merchant_name": "Blue Bottle Coffee", "total_amount": 42.50, "transaction_date": "2024-03-01"}`

	result, err := parseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "Blue Bottle Coffee", result.MerchantName)
	assert.Equal(t, "42.5", result.TotalAmount.String())
	assert.Equal(t, 2024, result.TransactionDate.Year())
	assert.Equal(t, 1, result.TransactionDate.Day())
}

func TestParseExtraction_RoundsToTwoDecimals(t *testing.T) {
	raw := `{"merchant_name": "Gas Station", "total_amount": 42.505, "transaction_date": "2024-03-01"}`

	result, err := parseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "42.51", result.TotalAmount.String())
}

func TestParseExtraction_MissingField(t *testing.T) {
	raw := `{"merchant_name": "Blue Bottle Coffee", "transaction_date": "2024-03-01"}`

	result, err := parseExtraction(raw)
	require.Error(t, err)
	assert.Nil(t, result)

	var capErr *CapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "extract", capErr.Op)
}

func TestParseExtraction_InvalidCalendarDate(t *testing.T) {
	// Passes the schema's format pattern but names a day that does not exist
	raw := `{"merchant_name": "Coffee", "total_amount": 3.50, "transaction_date": "2024-02-30"}`

	result, err := parseExtraction(raw)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "invalid transaction date")
}

func TestParseExtraction_NegativeAmountRejected(t *testing.T) {
	raw := `{"merchant_name": "Coffee", "total_amount": -3.50, "transaction_date": "2024-03-01"}`

	result, err := parseExtraction(raw)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestDocumentParts_TextContent(t *testing.T) {
	job := types.DocumentJob{
		EmailID:      "email-1",
		Filename:     "receipt.txt",
		MimeType:     "text/plain",
		ContentBytes: []byte("Total: $42.50"),
	}

	parts := documentParts(job)
	require.Len(t, parts, 1)

	text, ok := parts[0].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(text), "Total: $42.50")
}

func TestDocumentParts_ImageContent(t *testing.T) {
	job := types.DocumentJob{
		EmailID:      "email-1",
		Filename:     "receipt.png",
		MimeType:     "image/png",
		ContentBytes: []byte{0x89, 0x50, 0x4e, 0x47},
	}

	parts := documentParts(job)
	require.Len(t, parts, 1)

	blob, ok := parts[0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, job.ContentBytes, blob.Data)
}

func TestDocumentParts_UnparseablePDFFallsBackToBlob(t *testing.T) {
	job := types.DocumentJob{
		EmailID:      "email-1",
		Filename:     "receipt.pdf",
		MimeType:     "application/pdf",
		ContentBytes: []byte("not a real pdf"),
	}

	parts := documentParts(job)
	require.Len(t, parts, 1)

	blob, ok := parts[0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", blob.MIMEType)
}

func TestExtractPDFText_RejectsGarbage(t *testing.T) {
	text, err := ExtractPDFText([]byte("definitely not a pdf"))
	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestCapabilityError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &CapabilityError{Op: "classify", Message: "model call failed", Cause: cause}

	assert.Contains(t, err.Error(), "capability error: classify")
	assert.Equal(t, cause, errors.Unwrap(err))
}
