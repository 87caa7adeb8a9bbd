package views

import (
	"sync"

	"github.com/a-h/templ"
)

// Loader produces a route's view. Views read everything they need from the
// render context, so a loaded component can be reused across requests.
type Loader func() templ.Component

// Eager wraps an already-built component.
func Eager(c templ.Component) Loader {
	return func() templ.Component { return c }
}

// Lazy defers building the component until the route is first rendered
// and memoizes the result.
func Lazy(build func() templ.Component) Loader {
	return sync.OnceValue(build)
}
