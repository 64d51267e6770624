package middleware

import (
	"net/http"
	"strings"
)

// Principal is the gate's view of an authenticated session.
type Principal struct {
	UserID          string
	ProfileComplete bool
	SetupStep       int
}

// Decision is the outcome of a gate check.
type Decision struct {
	Redirect bool
	Step     int
}

var (
	Continue = Decision{}
	// Incomplete profiles always restart at step 1; the last reached step is
	// not resumed.
	RedirectToStep1 = Decision{Redirect: true, Step: 1}
)

// ProfileGate blocks authenticated users with incomplete profiles from
// everything except the setup routes.
type ProfileGate struct {
	setupPrefix  string
	redirectPath string
}

func NewProfileGate(setupPrefix, redirectPath string) *ProfileGate {
	return &ProfileGate{
		setupPrefix:  setupPrefix,
		redirectPath: redirectPath,
	}
}

// Authorize is a pure decision; the middleware performs the redirect.
func (g *ProfileGate) Authorize(p *Principal, route string) Decision {
	if p == nil {
		// Anonymous requests are outside the gate's concern.
		return Continue
	}
	if strings.HasPrefix(route, g.setupPrefix) {
		// Setup routes always pass, otherwise the redirect would loop.
		return Continue
	}
	if !p.ProfileComplete {
		return RedirectToStep1
	}
	return Continue
}

func (g *ProfileGate) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.Authorize(PrincipalFromContext(r.Context()), r.URL.Path)
		if decision.Redirect {
			http.Redirect(w, r, g.redirectPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
