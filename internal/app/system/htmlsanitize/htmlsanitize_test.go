package htmlsanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:  "empty string",
			input: "",
		},
		{
			name:     "plain text",
			input:    "Bonjour Helene",
			contains: []string{"Bonjour Helene"},
		},
		{
			name:     "inline formatting preserved",
			input:    "<p>Bonjour <strong>Helene</strong></p>",
			contains: []string{"<p>", "<strong>", "Helene"},
		},
		{
			name:     "script tag removed",
			input:    "<p>Hello</p><script>alert('xss')</script>",
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"<script>", "alert"},
		},
		{
			name:     "event handler removed",
			input:    `<p onclick="alert('xss')">Click</p>`,
			contains: []string{"<p>", "Click"},
			excludes: []string{"onclick"},
		},
		{
			name:     "javascript URL removed",
			input:    `<a href="javascript:alert('xss')">Lien</a>`,
			contains: []string{"Lien"},
			excludes: []string{"javascript:"},
		},
		{
			name:     "safe link gets noreferrer",
			input:    `<a href="https://example.com">Lien</a>`,
			contains: []string{`href="https://example.com"`, "noreferrer"},
		},
		{
			name:     "images dropped",
			input:    `<img src="https://tracker.example/p.gif"><p>Texte</p>`,
			contains: []string{"<p>Texte</p>"},
			excludes: []string{"<img", "tracker"},
		},
		{
			name:     "iframe removed",
			input:    `<iframe src="https://evil.com"></iframe><p>Content</p>`,
			contains: []string{"<p>Content</p>"},
			excludes: []string{"<iframe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestPlainTextToHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Bonjour", "Bonjour"},
		{"ligne 1\nligne 2", "ligne 1<br>ligne 2"},
		{"a\r\nb\rc", "a<br>b<br>c"},
		{"<b>x</b> & y", "&lt;b&gt;x&lt;/b&gt; &amp; y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainTextToHTML(tt.in), "input %q", tt.in)
	}
}

func TestMessageHTML(t *testing.T) {
	got := string(MessageHTML("Bonjour,\n<script>alert(1)</script>"))
	assert.Contains(t, got, "Bonjour,<br")
	assert.Contains(t, got, "&lt;script&gt;", "markup is shown as text")
	assert.NotContains(t, got, "<script>")
}
