package dispatch

import (
	"regexp"
	"strings"
)

// DefaultSignature closes every newsletter message.
const DefaultSignature = "Gouvernement de San Andreas\nNewsletter officielle - Ne pas répondre à ce message"

// MaxMessageLength is the remote service's limit for one message, in characters.
const MaxMessageLength = 2000

var inlineMarkup = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`<strong>(.*?)</strong>`), "**$1**"},
	{regexp.MustCompile(`<em>(.*?)</em>`), "*$1*"},
	{regexp.MustCompile(`<u>(.*?)</u>`), "__${1}__"},
}

// TranslateMarkup rewrites the editor's inline tags into chat markdown:
// strong to **, em to * and u to __. Matches stay within one line and other
// markup passes through untouched.
func TranslateMarkup(s string) string {
	for _, m := range inlineMarkup {
		s = m.re.ReplaceAllString(s, m.repl)
	}
	return s
}

// Newsletter is the input to FormatNewsletter.
type Newsletter struct {
	Title          string
	Image          string
	Content        string
	Signature      string
	UnsubscribeURL string
}

// FormatNewsletter builds the message body sent to every subscriber: the
// title in bold, the image URL on its own line when set, the translated body,
// then the signature block and the unsubscribe link.
func FormatNewsletter(n Newsletter) string {
	sig := n.Signature
	if sig == "" {
		sig = DefaultSignature
	}

	var b strings.Builder
	b.WriteString("**")
	b.WriteString(n.Title)
	b.WriteString("**\n\n")
	if img := strings.TrimSpace(n.Image); img != "" {
		b.WriteString(img)
		b.WriteString("\n\n")
	}
	b.WriteString(TranslateMarkup(n.Content))
	b.WriteString("\n\n---\n")
	b.WriteString(sig)
	if n.UnsubscribeURL != "" {
		b.WriteString("\n\nPour vous désinscrire: ")
		b.WriteString(n.UnsubscribeURL)
	}
	return b.String()
}
