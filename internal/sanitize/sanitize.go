// Package sanitize cleans text that arrives from the authentication service
// (validation messages, profile names) before it is shown to a user. Views
// escape everything they print; this strips markup so it is not shown as
// literal tags either.
package sanitize

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxMessageLen bounds an upstream message shown in a form banner.
const MaxMessageLen = 300

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, which keeps text only.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all HTML from s, collapses runs of whitespace and returns
// plain text. The result is unescaped: the caller's renderer escapes it.
func Text(s string) string {
	if s == "" {
		return ""
	}
	stripped := html.UnescapeString(getPolicy().Sanitize(s))
	return strings.Join(strings.Fields(stripped), " ")
}

// Message is Text truncated to MaxMessageLen runes.
func Message(s string) string {
	t := Text(s)
	if utf8.RuneCountInString(t) <= MaxMessageLen {
		return t
	}
	r := []rune(t)
	return string(r[:MaxMessageLen-1]) + "…"
}
