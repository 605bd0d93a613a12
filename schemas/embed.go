// Package schemas embeds the JSON Schema documents that capability responses
// are validated against.
package schemas

import _ "embed"

// ClassificationResult is the schema for classifier verdicts.
//
//go:embed classification_result.schema.json
var ClassificationResult string

// ReceiptExtraction is the schema for extracted receipt fields.
//
//go:embed receipt_extraction.schema.json
var ReceiptExtraction string
