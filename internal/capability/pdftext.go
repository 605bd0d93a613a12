package capability

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText pulls plain text out of a PDF document. The underlying
// library panics on some malformed files, so the call is recover-guarded.
func ExtractPDFText(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
				sb.WriteString(" ")
			}
			sb.WriteString("\n")
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		// Row extraction comes up empty on some files where the plain-text
		// walk still works
		plain, err := reader.GetPlainText()
		if err != nil {
			return "", fmt.Errorf("no extractable text: %w", err)
		}

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(plain); err != nil {
			return "", fmt.Errorf("failed to read pdf text: %w", err)
		}
		result = strings.TrimSpace(buf.String())
	}

	if result == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return result, nil
}
