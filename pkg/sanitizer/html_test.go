package sanitizer_test

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/rpcgate/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"script injection", `John<script>alert('xss')</script>`, "John"},
		{"formatting", `<b>Jane</b> <i>Doe</i>`, "Jane Doe"},
		{"event handler", `<img src="x" onerror="alert(1)">`, ""},
		{"javascript URL", `<a href="javascript:alert(1)">click</a>`, "click"},
		{"surrounding whitespace", "  plain  ", "plain"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"keeps paragraphs", `<p>Hello</p>`, `<p>Hello</p>`},
		{"drops scripts", `<p>Hello</p><script>alert('xss')</script>`, `<p>Hello</p>`},
		{"nofollow links", `<a href="https://example.com">site</a>`, `<a href="https://example.com" rel="nofollow">site</a>`},
		{"drops javascript links", `<a href="javascript:alert(1)">x</a>`, `x`},
		{"drops style attributes", `<p style="color:red">text</p>`, `<p>text</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.SanitizeHTML(tt.input))
		})
	}
}

func TestSanitizeHTMLCustom(t *testing.T) {
	t.Parallel()

	input := `<p>Hello <strong>world</strong></p>`
	assert.Equal(t, input, sanitizer.SanitizeHTMLCustom(input, nil))
	assert.Equal(t, "Hello world", sanitizer.SanitizeHTMLCustom(input, bluemonday.StrictPolicy()))
}
