package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_StripsScriptAndStyle(t *testing.T) {
	html := `<html><head><style>.x{color:red}</style></head>
<body><script>track();</script><p>Receipt from Coffee Shop</p><p>Total: $3.50</p></body></html>`

	text, err := ExtractText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Receipt from Coffee Shop")
	assert.Contains(t, text, "Total: $3.50")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "color:red")
}

func TestExtractText_RemovesFooterChrome(t *testing.T) {
	html := `<html><body>
<div class="preheader">View in browser</div>
<p>Your order shipped</p>
<div class="unsubscribe">Unsubscribe here</div>
</body></html>`

	text, err := ExtractText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Your order shipped")
	assert.NotContains(t, text, "View in browser")
	assert.NotContains(t, text, "Unsubscribe here")
}

func TestExtractText_CollapsesWhitespace(t *testing.T) {
	html := "<html><body><table><tr><td>Item</td><td>   Price   </td></tr></table></body></html>"

	text, err := ExtractText(html)
	require.NoError(t, err)

	assert.NotContains(t, text, "  ", "runs of spaces should be collapsed")
	assert.Contains(t, text, "Item")
	assert.Contains(t, text, "Price")
}

func TestExtractText_EmptyDocument(t *testing.T) {
	text, err := ExtractText("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestCleanWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims lines", "  hello  \n  world  ", "hello\nworld"},
		{"drops blank lines", "a\n\n\n\nb", "a\nb"},
		{"collapses tabs and spaces", "a\t\t b", "a b"},
		{"empty input", "   \n   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanWhitespace(tt.input))
		})
	}
}
