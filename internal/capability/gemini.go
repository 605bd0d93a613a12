package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"

	"github.com/yatharthk2/EmailDemo-sub001/internal/prompts"
	"github.com/yatharthk2/EmailDemo-sub001/internal/schemas"
	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
	schemadocs "github.com/yatharthk2/EmailDemo-sub001/schemas"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Classify decides whether the document is a receipt
func (c *GeminiClient) Classify(ctx context.Context, job types.DocumentJob) (*types.Classification, error) {
	template := prompts.MustGet("capability.json", "classify-document")
	prompt := prompts.Format(template, map[string]string{
		"Filename": job.Filename,
	})

	raw, err := c.generateJSON(ctx, TierLite, prompt, job)
	if err != nil {
		return nil, &CapabilityError{Op: "classify", Message: "model call failed", Cause: err}
	}

	return parseClassification(raw)
}

// Extract pulls structured receipt fields out of the document
func (c *GeminiClient) Extract(ctx context.Context, job types.DocumentJob) (*types.Extraction, error) {
	prompt := prompts.MustGet("capability.json", "extract-receipt")

	raw, err := c.generateJSON(ctx, TierStandard, prompt, job)
	if err != nil {
		return nil, &CapabilityError{Op: "extract", Message: "model call failed", Cause: err}
	}

	return parseExtraction(raw)
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// generateJSON runs one bounded model call and returns the cleaned JSON text.
func (c *GeminiClient) generateJSON(ctx context.Context, tier ModelTier, prompt string, job types.DocumentJob) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	parts := append([]genai.Part{genai.Text(prompt)}, documentParts(job)...)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// documentParts converts document content into prompt parts. PDF content is
// flattened to text when possible; everything else rides along as an inline
// blob under its declared MIME type.
func documentParts(job types.DocumentJob) []genai.Part {
	switch {
	case job.MimeType == "application/pdf":
		if text, err := ExtractPDFText(job.ContentBytes); err == nil && text != "" {
			return []genai.Part{genai.Text("Document text:\n\n" + text)}
		}
		return []genai.Part{genai.Blob{MIMEType: job.MimeType, Data: job.ContentBytes}}
	case strings.HasPrefix(job.MimeType, "text/"):
		return []genai.Part{genai.Text("Document text:\n\n" + string(job.ContentBytes))}
	default:
		return []genai.Part{genai.Blob{MIMEType: job.MimeType, Data: job.ContentBytes}}
	}
}

// parseClassification validates and decodes a classifier response.
func parseClassification(raw string) (*types.Classification, error) {
	if err := schemas.ValidateJSONString(schemadocs.ClassificationResult, raw); err != nil {
		return nil, &CapabilityError{Op: "classify", Message: "malformed classification response", Cause: err}
	}

	var payload struct {
		IsReceipt    bool    `json:"is_receipt"`
		Confidence   float64 `json:"confidence"`
		DocumentType string  `json:"document_type"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &CapabilityError{Op: "classify", Message: "malformed classification response", Cause: err}
	}

	return &types.Classification{
		IsReceipt:    payload.IsReceipt,
		Confidence:   payload.Confidence,
		DocumentType: payload.DocumentType,
	}, nil
}

// parseExtraction validates and decodes an extractor response. The schema
// guarantees a positive amount and a YYYY-MM-DD date string; the date must
// still name a real calendar day.
func parseExtraction(raw string) (*types.Extraction, error) {
	if err := schemas.ValidateJSONString(schemadocs.ReceiptExtraction, raw); err != nil {
		return nil, &CapabilityError{Op: "extract", Message: "malformed extraction response", Cause: err}
	}

	var payload struct {
		MerchantName    string          `json:"merchant_name"`
		TotalAmount     decimal.Decimal `json:"total_amount"`
		TransactionDate string          `json:"transaction_date"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &CapabilityError{Op: "extract", Message: "malformed extraction response", Cause: err}
	}

	txDate, err := time.Parse("2006-01-02", payload.TransactionDate)
	if err != nil {
		return nil, &CapabilityError{
			Op:      "extract",
			Message: fmt.Sprintf("invalid transaction date %q", payload.TransactionDate),
			Cause:   err,
		}
	}

	return &types.Extraction{
		MerchantName:    payload.MerchantName,
		TotalAmount:     payload.TotalAmount.Round(2),
		TransactionDate: txDate,
	}, nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
