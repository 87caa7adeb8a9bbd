package views

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

// LoginPage renders the sign-in form. Submitted email and any error come
// from the Form in context.
func LoginPage() templ.Component {
	return Layout("Sign in", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		f := FormFrom(ctx)
		h := &html{w: w}
		h.raw(`<section class="auth-card"><h1>Sign in</h1>`)
		banners(h, f)
		h.raw(`<form method="post" action="/login">`)
		csrfField(ctx, h)
		h.raw(`<label>Email<input type="email" name="email" required autocomplete="email" value="`)
		h.text(f.Email)
		h.raw(`"></label>`)
		h.raw(`<label>Password<input type="password" name="password" required autocomplete="current-password"></label>`)
		h.raw(`<button type="submit">Sign in</button></form>`)
		h.raw(`<p>No account yet? <a href="/register">Create one</a></p></section>`)
		return h.err
	}))
}

// RegisterPage renders the account creation form.
func RegisterPage() templ.Component {
	return Layout("Create account", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		f := FormFrom(ctx)
		h := &html{w: w}
		h.raw(`<section class="auth-card"><h1>Create account</h1>`)
		banners(h, f)
		h.raw(`<form method="post" action="/register">`)
		csrfField(ctx, h)
		h.raw(`<label>Name<input type="text" name="name" required autocomplete="name" value="`)
		h.text(f.Name)
		h.raw(`"></label>`)
		h.raw(`<label>Email<input type="email" name="email" required autocomplete="email" value="`)
		h.text(f.Email)
		h.raw(`"></label>`)
		h.raw(`<label>Password<input type="password" name="password" required minlength="8" autocomplete="new-password"></label>`)
		h.raw(`<button type="submit">Create account</button></form>`)
		h.raw(`<p>Already registered? <a href="/login">Sign in</a></p></section>`)
		return h.err
	}))
}

// DashboardPage greets the signed-in user.
func DashboardPage() templ.Component {
	return Layout("Dashboard", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<section><h1>Dashboard</h1>`)
		if u := UserFrom(ctx); u != nil {
			h.raw(`<p>Signed in as <strong>`)
			h.text(u.Name)
			h.raw(`</strong> (`)
			h.text(u.Email)
			h.raw(`).</p>`)
		}
		h.raw(`<ul class="tiles"><li><a href="/products">Products</a></li><li><a href="/orders">Orders</a></li></ul></section>`)
		return h.err
	}))
}

// ProductsPage is the shell of the products section.
func ProductsPage() templ.Component {
	return sectionPage("Products", "products")
}

// OrdersPage is the shell of the orders section.
func OrdersPage() templ.Component {
	return sectionPage("Orders", "orders")
}

// sectionPage renders a titled section the client-side catalogue fills in.
func sectionPage(title, id string) templ.Component {
	return Layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<section id="`)
		h.text(id)
		h.raw(`"><h1>`)
		h.text(title)
		h.raw(`</h1><div class="listing" data-source="`)
		h.text(id)
		h.raw(`"></div></section>`)
		return h.err
	}))
}

// ErrorPage renders a status page for errors that reach the error handler.
func ErrorPage(code int, message string) templ.Component {
	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}
	return Layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<section class="error"><h1>`)
		h.text(strconv.Itoa(code))
		h.raw(` `)
		h.text(title)
		h.raw(`</h1><p>`)
		h.text(message)
		h.raw(`</p><p><a href="/">Back to the dashboard</a></p></section>`)
		return h.err
	}))
}

// banners writes the error and info banners of a form, if any.
func banners(h *html, f Form) {
	if f.Error != "" {
		h.raw(`<div class="alert alert-error" role="alert">`)
		h.text(f.Error)
		h.raw(`</div>`)
	}
	if f.Info != "" {
		h.raw(`<div class="alert alert-info">`)
		h.text(f.Info)
		h.raw(`</div>`)
	}
}
