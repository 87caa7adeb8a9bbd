package router

import "fmt"

// Mismatch is a route whose RequiresAuth flag disagrees with IsPublic.
type Mismatch struct {
	Route Route
}

func (m Mismatch) String() string {
	if m.Route.RequiresAuth {
		return fmt.Sprintf("route %q (%s) is marked RequiresAuth but is a public path", m.Route.Name, m.Route.Path)
	}
	return fmt.Sprintf("route %q (%s) is not marked RequiresAuth but the guard protects it", m.Route.Name, m.Route.Path)
}

// Lint returns every route in routes whose RequiresAuth flag does not match
// what the guard enforces.
func Lint(routes []Route) []Mismatch {
	var out []Mismatch
	for _, r := range routes {
		guarded := !IsPublic(r.Path)
		if guarded != r.RequiresAuth {
			out = append(out, Mismatch{Route: r})
		}
	}
	return out
}
