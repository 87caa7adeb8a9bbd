package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/storefront/internal/apperror"
	"github.com/keyxmakerx/storefront/internal/authapi"
	"github.com/keyxmakerx/storefront/internal/middleware"
	"github.com/keyxmakerx/storefront/internal/router"
	"github.com/keyxmakerx/storefront/internal/sanitize"
	"github.com/keyxmakerx/storefront/internal/views"
)

// homePath is where a successful login or registration lands.
const homePath = "/"

// Handler serves the login, register and logout actions. Handlers are
// thin: they bind the form, call the client's session store and render.
type Handler struct {
	login    router.Route
	register router.Route
}

// NewHandler creates a handler rendering the login and register routes
// from the route table.
func NewHandler(login, register router.Route) *Handler {
	return &Handler{login: login, register: register}
}

// LoginForm renders the login page (GET /login). A client that already
// holds a token is sent home.
func (h *Handler) LoginForm(c echo.Context) error {
	store := GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}
	if store.LoggedIn() {
		return redirect(c, homePath)
	}
	return middleware.Render(c, http.StatusOK, h.login.View())
}

// Login processes the login form (POST /login).
func (h *Handler) Login(c echo.Context) error {
	store := GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	req.normalize()

	if msg := validateLoginRequest(&req); msg != "" {
		return h.renderForm(c, h.login, views.Form{Email: req.Email, Error: msg})
	}

	if err := store.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		return h.renderForm(c, h.login, views.Form{Email: req.Email, Error: failureMessage(err)})
	}
	return redirect(c, homePath)
}

// RegisterForm renders the registration page (GET /register).
func (h *Handler) RegisterForm(c echo.Context) error {
	store := GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}
	if store.LoggedIn() {
		return redirect(c, homePath)
	}
	return middleware.Render(c, http.StatusOK, h.register.View())
}

// Register processes the registration form (POST /register).
func (h *Handler) Register(c echo.Context) error {
	store := GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	req.normalize()

	form := views.Form{Name: req.Name, Email: req.Email}
	if msg := validateRegisterRequest(&req); msg != "" {
		form.Error = msg
		return h.renderForm(c, h.register, form)
	}

	if err := store.Register(c.Request().Context(), req.Name, req.Email, req.Password); err != nil {
		form.Error = failureMessage(err)
		return h.renderForm(c, h.register, form)
	}
	return redirect(c, homePath)
}

// Logout clears the client's session (POST /logout). It never fails.
func (h *Handler) Logout(c echo.Context) error {
	if store := GetStore(c); store != nil {
		store.Logout(c.Request().Context())
	}
	return redirect(c, router.LoginPath)
}

// renderForm re-renders route's form with submitted values and an error.
func (h *Handler) renderForm(c echo.Context, route router.Route, form views.Form) error {
	ctx := views.WithForm(c.Request().Context(), form)
	return middleware.RenderContext(ctx, c, http.StatusOK, route.View())
}

// failureMessage maps a login or register error to a browser-safe message.
func failureMessage(err error) string {
	if apiErr, ok := authapi.AsError(err); ok {
		switch {
		case apiErr.Unauthorized():
			return "Invalid email or password."
		case apiErr.IsValidation():
			if msg := sanitize.Message(apiErr.Message); msg != "" {
				return msg
			}
			return "Please check the form and try again."
		}
	}
	return apperror.SafeMessage(apperror.NewBadGateway(err))
}

// redirect sends the browser to path: HX-Redirect for HTMX requests, a
// 303 See Other otherwise.
func redirect(c echo.Context, path string) error {
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", path)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, path)
}
