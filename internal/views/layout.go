package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// navLinks are the guarded pages shown in the header once signed in.
var navLinks = []struct{ Path, Label string }{
	{"/", "Dashboard"},
	{"/products", "Products"},
	{"/orders", "Orders"},
}

// Layout wraps body in the page shell: head, header navigation (with a
// logout form when a user is present) and main content.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(` · Storefront</title><link rel="stylesheet" href="/static/css/app.css"></head><body>`)

		h.raw(`<header class="topbar"><a class="brand" href="/">Storefront</a>`)
		if u := UserFrom(ctx); u != nil {
			active := ActivePath(ctx)
			h.raw(`<nav>`)
			for _, l := range navLinks {
				h.raw(`<a href="`)
				h.text(l.Path)
				h.raw(`"`)
				if l.Path == active {
					h.raw(` class="active" aria-current="page"`)
				}
				h.raw(`>`)
				h.text(l.Label)
				h.raw(`</a>`)
			}
			h.raw(`</nav><form method="post" action="/logout" class="logout">`)
			csrfField(ctx, h)
			h.raw(`<span class="user">`)
			h.text(u.Name)
			h.raw(`</span><button type="submit">Log out</button></form>`)
		}
		h.raw(`</header><main>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// csrfField writes the hidden CSRF input every POST form carries.
func csrfField(ctx context.Context, h *html) {
	h.raw(`<input type="hidden" name="csrf_token" value="`)
	h.text(CSRFToken(ctx))
	h.raw(`">`)
}
