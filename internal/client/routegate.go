package client

import (
	"errors"
	"strings"
)

// ErrForbidden rejects navigation by an authenticated user without the needed role.
var ErrForbidden = errors.New("access denied: administrators only")

// Outcome is the decision for one navigation attempt.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "forbidden"
	}
}

// Navigation is the result of RouteGate.Check.
type Navigation struct {
	Outcome  Outcome
	Redirect string
	Err      error
}

// AuthState is the part of Session the route gate reads.
type AuthState interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

// RouteGate decides protected client navigation before the target view is entered.
type RouteGate struct {
	state         AuthState
	loginPath     string
	adminPrefixes []string
}

// NewRouteGate guards navigation with state. Paths under adminPrefixes
// (default "/admin") need the admin role; unauthenticated users go to loginPath.
func NewRouteGate(state AuthState, loginPath string, adminPrefixes ...string) *RouteGate {
	if loginPath == "" {
		loginPath = "/login"
	}
	if len(adminPrefixes) == 0 {
		adminPrefixes = []string{"/admin"}
	}
	return &RouteGate{state: state, loginPath: loginPath, adminPrefixes: adminPrefixes}
}

func (g *RouteGate) Check(path string) Navigation {
	if !g.state.IsAuthenticated() {
		return Navigation{Outcome: Redirect, Redirect: g.loginPath}
	}
	if g.adminOnly(path) && !g.state.IsAdmin() {
		return Navigation{Outcome: Forbidden, Err: ErrForbidden}
	}
	return Navigation{Outcome: Allow}
}

func (g *RouteGate) adminOnly(path string) bool {
	for _, prefix := range g.adminPrefixes {
		prefix = strings.TrimRight(prefix, "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
