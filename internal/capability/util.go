// Package capability - util.go provides shared utilities for model response processing.
package capability

import "strings"

// CleanJSONBlock removes markdown code fences and surrounding prose from a
// model response. Models often wrap JSON in ```json ... ``` blocks or add a
// conversational preamble even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if obj := extractJSONObject(text); obj != "" {
		return obj
	}
	if arr := extractJSONArray(text); arr != "" {
		return arr
	}
	return text
}

// extractJSONObject returns the first balanced JSON object in text, or "".
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the first balanced JSON array in text, or "".
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

// extractBalanced scans for the first balanced open..close span, ignoring
// delimiters inside JSON strings.
func extractBalanced(text string, openCh, closeCh byte) string {
	start := strings.IndexByte(text, openCh)
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case openCh:
			if !inString {
				depth++
			}
		case closeCh:
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
