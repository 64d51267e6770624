package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate() *ProfileGate {
	return NewProfileGate("/api/v1/setup", "/api/v1/setup/step/1")
}

func TestAuthorizeAnonymousPasses(t *testing.T) {
	gate := newGate()

	assert.Equal(t, Continue, gate.Authorize(nil, "/api/v1/search/partners"))
}

func TestAuthorizeIncompleteRedirects(t *testing.T) {
	gate := newGate()
	p := &Principal{UserID: "u1", ProfileComplete: false, SetupStep: 2}

	for _, route := range []string{
		"/api/v1/search/partners",
		"/api/v1/friends/requests",
		"/api/v1/ws",
	} {
		decision := gate.Authorize(p, route)
		assert.Equal(t, RedirectToStep1, decision, route)
	}
}

// The redirect always points at step 1, regardless of how far the user got.
func TestAuthorizeRedirectIgnoresCurrentStep(t *testing.T) {
	gate := newGate()

	for step := 1; step <= 4; step++ {
		p := &Principal{UserID: "u1", ProfileComplete: false, SetupStep: step}
		decision := gate.Authorize(p, "/api/v1/profile/me")
		require.True(t, decision.Redirect)
		assert.Equal(t, 1, decision.Step)
	}
}

func TestAuthorizeSetupRoutesExempt(t *testing.T) {
	gate := newGate()
	p := &Principal{UserID: "u1", ProfileComplete: false, SetupStep: 1}

	assert.Equal(t, Continue, gate.Authorize(p, "/api/v1/setup/status"))
	assert.Equal(t, Continue, gate.Authorize(p, "/api/v1/setup/step/3"))
}

func TestAuthorizeCompletePasses(t *testing.T) {
	gate := newGate()
	p := &Principal{UserID: "u1", ProfileComplete: true, SetupStep: 4}

	assert.Equal(t, Continue, gate.Authorize(p, "/api/v1/search/partners"))
	assert.Equal(t, Continue, gate.Authorize(p, "/api/v1/setup/step/2"))
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	ctx := context.WithValue(r.Context(), ContextUserID, p.UserID)
	ctx = context.WithValue(ctx, ContextProfileComplete, p.ProfileComplete)
	ctx = context.WithValue(ctx, ContextSetupStep, p.SetupStep)
	return r.WithContext(ctx)
}

func TestGateRedirectsIncompleteProfile(t *testing.T) {
	gate := newGate()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run for incomplete profiles")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile/me", nil)
	req = withPrincipal(req, &Principal{UserID: "u1", SetupStep: 3})
	rec := httptest.NewRecorder()

	gate.Gate(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/api/v1/setup/step/1", rec.Header().Get("Location"))
}

func TestGatePassesCompleteProfile(t *testing.T) {
	gate := newGate()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile/me", nil)
	req = withPrincipal(req, &Principal{UserID: "u1", ProfileComplete: true, SetupStep: 4})
	rec := httptest.NewRecorder()

	gate.Gate(next).ServeHTTP(rec, req)

	assert.True(t, called)
}
