// Package router holds Storefront's static route table and the navigation
// guard that runs before every page navigation.
//
// The guard decides from a fixed list of public paths, not from each
// route's RequiresAuth flag. The flag is kept on the table and Lint reports
// any route where the two disagree; until that is settled, the public-path
// list is what decides.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/storefront/internal/views"
)

// Route names.
const (
	NameLogin     = "login"
	NameRegister  = "register"
	NameDashboard = "dashboard"
	NameProducts  = "products"
	NameOrders    = "orders"
)

// LoginPath is where the guard sends visitors without a token.
const LoginPath = "/login"

// Route describes one page.
type Route struct {
	Path         string
	Name         string
	View         views.Loader
	RequiresAuth bool
}

// publicPaths are reachable without a token. Every other path, including
// paths not in the table, requires one.
var publicPaths = map[string]bool{
	"/login":    true,
	"/register": true,
}

// IsPublic reports whether path is reachable without a token.
func IsPublic(path string) bool {
	return publicPaths[path]
}

// table is built once; Table hands out copies.
var table = []Route{
	{Path: "/login", Name: NameLogin, View: views.Eager(views.LoginPage())},
	{Path: "/register", Name: NameRegister, View: views.Lazy(views.RegisterPage)},
	{Path: "/", Name: NameDashboard, View: views.Eager(views.DashboardPage()), RequiresAuth: true},
	{Path: "/products", Name: NameProducts, View: views.Lazy(views.ProductsPage), RequiresAuth: true},
	{Path: "/orders", Name: NameOrders, View: views.Lazy(views.OrdersPage), RequiresAuth: true},
}

// Table returns the route table in declaration order.
func Table() []Route {
	out := make([]Route, len(table))
	copy(out, table)
	return out
}

// ByName returns the route called name.
func ByName(name string) (Route, bool) {
	for _, r := range table {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Register mounts a GET handler for every route in routes whose name has
// an entry in handlers. Routes without a handler are left to whoever owns
// them (the auth plugin mounts its own login and register pages).
func Register(g *echo.Group, routes []Route, handlers map[string]func(Route) echo.HandlerFunc) {
	for _, r := range routes {
		mk, ok := handlers[r.Name]
		if !ok {
			continue
		}
		g.GET(r.Path, mk(r)).Name = r.Name
	}
}
