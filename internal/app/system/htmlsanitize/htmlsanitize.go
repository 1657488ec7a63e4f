// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// editorPolicy allows what the page and newsletter editors produce: the UGC
// baseline plus underline, highlight and styled tables.
func editorPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "mark", "sub", "sup", "hr", "br")
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td", "p", "span")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		p.AllowStyles("width", "text-align", "vertical-align", "background-color", "color").
			OnElements("table", "tr", "th", "td")
		p.AllowAttrs("style").OnElements("table", "tr", "th", "td")
		policy = p
	})
	return policy
}

// Sanitize strips scripts, event handlers and unsafe URLs from editor HTML.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return editorPolicy().Sanitize(s)
}

// SanitizeToHTML sanitizes s and marks it safe for templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and wraps it in a paragraph, turning newlines
// into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay renders stored content: plain text is escaped and
// paragraphed, HTML is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
