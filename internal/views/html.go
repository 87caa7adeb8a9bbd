package views

import (
	"io"

	"github.com/a-h/templ"
)

// html accumulates writes and remembers the first error, so component
// bodies read top to bottom without an error check per line.
type html struct {
	w   io.Writer
	err error
}

// raw writes trusted markup.
func (h *html) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s escaped for element content and attribute values.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}
