package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeState struct{ authenticated, admin bool }

func (f fakeState) IsAuthenticated() bool { return f.authenticated }
func (f fakeState) IsAdmin() bool         { return f.authenticated && f.admin }

func TestRouteGate_Check(t *testing.T) {
	tests := []struct {
		name  string
		state fakeState
		path  string
		want  Outcome
	}{
		{"anonymous to dashboard", fakeState{}, "/dashboard", Redirect},
		{"anonymous to admin", fakeState{}, "/admin/users", Redirect},
		{"user to dashboard", fakeState{authenticated: true}, "/dashboard", Allow},
		{"user to admin", fakeState{authenticated: true}, "/admin", Forbidden},
		{"user to admin subpage", fakeState{authenticated: true}, "/admin/news/3", Forbidden},
		{"user to lookalike path", fakeState{authenticated: true}, "/administration", Allow},
		{"admin to admin", fakeState{authenticated: true, admin: true}, "/admin/news", Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := NewRouteGate(tt.state, "").Check(tt.path)
			assert.Equal(t, tt.want, nav.Outcome)
			switch tt.want {
			case Redirect:
				assert.Equal(t, "/login", nav.Redirect)
			case Forbidden:
				assert.ErrorIs(t, nav.Err, ErrForbidden)
			default:
				assert.NoError(t, nav.Err)
			}
		})
	}
}

func TestRouteGate_WithSession(t *testing.T) {
	p := startPortal(t)
	s, _ := newTestSession(t, p.url)
	gate := NewRouteGate(s, "/entrar", "/admin", "/staff")

	assert.Equal(t, Navigation{Outcome: Redirect, Redirect: "/entrar"}, gate.Check("/admin"))

	require.True(t, s.Login(context.Background(), "ada", "lovelace").OK)
	assert.Equal(t, Allow, gate.Check("/profile").Outcome)
	assert.Equal(t, Forbidden, gate.Check("/staff/roster").Outcome)

	s.Logout()
	assert.Equal(t, Redirect, gate.Check("/profile").Outcome)
}
