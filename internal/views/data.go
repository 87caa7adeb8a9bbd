// data.go provides typed context helpers for passing layout data from
// handlers and middleware to templ components. Only simple types are
// stored, so this package never imports the session or API packages.
//
// Data flow: Handler/Middleware -> Echo Context -> LayoutInjector -> Go Context -> templ
package views

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey string

const (
	keyUser       ctxKey = "view_user"
	keyCSRFToken  ctxKey = "view_csrf_token"
	keyActivePath ctxKey = "view_active_path"
	keyForm       ctxKey = "view_form"
)

// User is the minimum profile data the layout needs.
type User struct {
	Name  string
	Email string
}

// Form carries a re-rendered form's submitted values and error banner.
// Passwords are never echoed back.
type Form struct {
	Name  string
	Email string
	Error string
	Info  string
}

// WithUser stores the signed-in user for the layout.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, keyUser, u)
}

// UserFrom returns the signed-in user, or nil.
func UserFrom(ctx context.Context) *User {
	u, _ := ctx.Value(keyUser).(*User)
	return u
}

// WithCSRFToken stores the token forms must echo back.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, keyCSRFToken, token)
}

// CSRFToken returns the CSRF token, or "".
func CSRFToken(ctx context.Context) string {
	s, _ := ctx.Value(keyCSRFToken).(string)
	return s
}

// WithActivePath stores the request path for nav highlighting.
func WithActivePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyActivePath, path)
}

// ActivePath returns the request path, or "".
func ActivePath(ctx context.Context) string {
	s, _ := ctx.Value(keyActivePath).(string)
	return s
}

// WithForm stores form state for a re-rendered login or register page.
func WithForm(ctx context.Context, f Form) context.Context {
	return context.WithValue(ctx, keyForm, f)
}

// FormFrom returns the stored form state (zero value if none).
func FormFrom(ctx context.Context) Form {
	f, _ := ctx.Value(keyForm).(Form)
	return f
}
