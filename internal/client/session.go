package client

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/lab-portal/internal/models"
)

// DefaultTokenLifetime is assumed for tokens that carry no readable expiry.
const DefaultTokenLifetime = 24 * time.Hour

// LoginResult reports the outcome of Login. Error is a user-facing message when OK is false.
type LoginResult struct {
	OK    bool
	Error string
}

// Session is the client auth state. Every path that learns a token is bad
// clears the authenticated flag and the durable copy together.
//
// Network calls run outside the lock. A login or logout bumps the generation;
// a response that returns under an older generation is discarded, so a slow
// login can never overwrite a newer one.
type Session struct {
	api   *API
	store TokenStore
	now   func() time.Time

	mu            sync.RWMutex
	gen           uint64
	user          *models.User
	token         string
	authenticated bool
}

// NewSession binds a session to api: the api reads its bearer from the
// session and a rejected token logs the session out.
func NewSession(api *API, store TokenStore) *Session {
	s := &Session{api: api, store: store, now: time.Now}
	api.SetTokenSource(s.Token)
	api.OnUnauthorized(s.dropToken)
	return s
}

// dropToken logs out only while token is still the one held; a rejection of
// an older token must not end a newer session.
func (s *Session) dropToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || token != s.token {
		return
	}
	log.Println("session: token rejected by server, logging out")
	s.gen++
	s.clearLocked()
}

// Login authenticates against the portal. On failure the session is left fully logged out.
func (s *Session) Login(ctx context.Context, username, password string) LoginResult {
	gen := s.bump()
	resp, err := s.api.Login(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return LoginResult{Error: "login superseded by a newer attempt"}
	}
	if err != nil {
		s.clearLocked()
		return LoginResult{Error: loginMessage(err)}
	}
	if resp.Token == "" {
		s.clearLocked()
		return LoginResult{Error: "login failed: server returned no token"}
	}
	user := resp.User
	s.user, s.token, s.authenticated = &user, resp.Token, true
	if err := s.store.Save(resp.Token, s.expiryOf(resp.Token)); err != nil {
		log.Printf("session: persist token: %v", err)
	}
	return LoginResult{OK: true}
}

// Verify re-validates the held token. Any failure, including a timeout, logs the session out.
func (s *Session) Verify(ctx context.Context) bool {
	s.mu.RLock()
	gen, token := s.gen, s.token
	s.mu.RUnlock()
	if token == "" {
		s.Logout()
		return false
	}

	user, err := s.api.Verify(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || token != s.token {
		return false
	}
	if err != nil {
		log.Printf("session: token verification failed: %v", err)
		s.clearLocked()
		return false
	}
	s.user, s.authenticated = &user, true
	return true
}

// InitializeAuth restores a persisted token and trusts it only after the server accepts it.
func (s *Session) InitializeAuth(ctx context.Context) bool {
	token, err := s.store.Load()
	if err != nil {
		log.Printf("session: load token: %v", err)
	}
	if token == "" {
		return false
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.Verify(ctx)
}

// Logout clears memory and durable storage. It is safe to call repeatedly.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.clearLocked()
}

func (s *Session) bump() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

func (s *Session) clearLocked() {
	s.user, s.token, s.authenticated = nil, "", false
	if err := s.store.Remove(); err != nil {
		log.Printf("session: remove token: %v", err)
	}
}

// expiryOf mirrors the token's own exp claim. The signature is not checked here;
// the server remains the only judge of validity.
func (s *Session) expiryOf(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return s.now().Add(DefaultTokenLifetime)
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated || s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *Session) IsAdmin() bool {
	return s.role() == models.RoleAdmin
}

func (s *Session) IsEditor() bool {
	return s.role().AtLeast(models.RoleEditor)
}

// Initials are the upper-cased first letters of the user's full name.
func (s *Session) Initials() string {
	u := s.User()
	if u == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Fields(u.FullName) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func loginMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return "invalid username or password"
		case http.StatusTooManyRequests:
			return "too many login attempts, try again later"
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return "login failed: " + err.Error()
}
