package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// RouteGuard redirects requests for protected paths that carry no token
// cookie. It only checks that the cookie is present and non-empty; the
// token itself is never decoded or verified here.
type RouteGuard struct {
	cookieName string
	redirectTo string
	patterns   []string
}

// NewRouteGuard builds a guard for the given doublestar patterns, e.g.
// "/dashboard/**". A trailing "/**" also covers the directory itself.
func NewRouteGuard(cookieName, redirectTo string, patterns []string) (*RouteGuard, error) {
	if cookieName == "" {
		return nil, fmt.Errorf("route guard: cookie name is required")
	}
	if redirectTo == "" {
		redirectTo = "/"
	}

	g := &RouteGuard{cookieName: cookieName, redirectTo: redirectTo}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("route guard: invalid pattern %q", p)
		}
		g.patterns = append(g.patterns, p)
	}

	if g.Protects(redirectTo) {
		return nil, fmt.Errorf("route guard: redirect target %q is itself protected", redirectTo)
	}
	return g, nil
}

// Protects reports whether path matches one of the guard's patterns.
func (g *RouteGuard) Protects(path string) bool {
	for _, p := range g.patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
		if base, found := strings.CutSuffix(p, "/**"); found && base == path {
			return true
		}
	}
	return false
}

// Middleware returns the guard as chi-compatible middleware.
func (g *RouteGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Protects(r.URL.Path) && !g.hasToken(r) {
			slog.Debug("route guard redirect", "path", r.URL.Path, "to", g.redirectTo)
			http.Redirect(w, r, g.redirectTo, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *RouteGuard) hasToken(r *http.Request) bool {
	c, err := r.Cookie(g.cookieName)
	return err == nil && c.Value != ""
}
