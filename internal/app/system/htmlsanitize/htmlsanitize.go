// Package htmlsanitize reduces untrusted markup to plain text.
//
// The scheduling backend is reached through a tunnel that may answer with a
// full HTML error page. Before such a body is folded into an error message it
// is stripped to text so the message fits on one line.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// PlainText removes every tag and unescapes entities.
// Content of script and style elements is dropped with the tags.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(policy().Sanitize(s))
}

// SingleLine returns PlainText(s) with runs of whitespace collapsed to a
// single space and the result cut to max runes (an ellipsis marks the cut).
// max <= 0 means no limit.
func SingleLine(s string, max int) string {
	out := strings.Join(strings.Fields(PlainText(s)), " ")
	if max <= 0 || utf8.RuneCountInString(out) <= max {
		return out
	}
	r := []rune(out)
	return string(r[:max]) + "…"
}
