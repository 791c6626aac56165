// Package htmlsanitize renders visitor-supplied text as HTML for the owner
// notification mails.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy keeps basic text formatting and plain links. Images are dropped
// so a message cannot embed tracking pixels.
var policy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "b", "i", "u", "s", "mark", "ul", "ol", "li", "blockquote")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoReferrerOnLinks(true)
	return p
})

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy().Sanitize(s)
}

// PlainTextToHTML escapes text and turns each line break (LF, CRLF or CR)
// into <br>.
func PlainTextToHTML(text string) string {
	escaped := html.EscapeString(newlines.Replace(text))
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

// MessageHTML is PlainTextToHTML passed through the policy.
func MessageHTML(text string) template.HTML {
	return template.HTML(Sanitize(PlainTextToHTML(text)))
}
