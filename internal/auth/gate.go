package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/http/respond"
)

const (
	apiPrefix  = "/api"
	authPrefix = "/api/auth"
)

// Decision is the access requirement computed for a request.
type Decision int

const (
	AllowPublic Decision = iota
	RequireIdentity
)

func (d Decision) String() string {
	if d == AllowPublic {
		return "allow-public"
	}
	return "require-identity"
}

// Policy is the static routing policy of the gate.
type Policy struct {
	publicGET []string
}

// NewPolicy builds a policy whose public read-only prefixes are publicGET.
func NewPolicy(publicGET []string) Policy {
	prefixes := make([]string, 0, len(publicGET))
	for _, p := range publicGET {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return Policy{publicGET: prefixes}
}

// Classify evaluates the policy rules in precedence order.
func (p Policy) Classify(method, path string) Decision {
	if !hasPathPrefix(path, apiPrefix) {
		return AllowPublic
	}
	if hasPathPrefix(path, authPrefix) {
		return AllowPublic
	}
	if method == http.MethodGet || method == http.MethodHead {
		for _, prefix := range p.publicGET {
			if hasPathPrefix(path, prefix) {
				return AllowPublic
			}
		}
	}
	return RequireIdentity
}

// hasPathPrefix matches whole segments: /api/news matches /api/news/1 but not /api/newsletter.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Gate authenticates every protected request before it reaches a handler.
// Authorization by role is left to handlers (see RequireRole).
func Gate(policy Policy, verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.Classify(r.Method, r.URL.Path) == AllowPublic {
				next.ServeHTTP(w, withOptionalIdentity(r, verifier))
				return
			}
			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, apperr.MissingToken, "access token not provided")
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, ErrExpiredToken) {
					log.Printf("gate: expired token for %s %s", r.Method, r.URL.Path)
				} else {
					log.Printf("gate: rejected token for %s %s: %v", r.Method, r.URL.Path, err)
				}
				respond.Error(w, apperr.InvalidOrExpiredToken, "invalid or expired token")
				return
			}
			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// withOptionalIdentity attaches the caller of a public request when it carries a
// valid token, so handlers can widen what they show. Bad tokens are ignored.
func withOptionalIdentity(r *http.Request, verifier Verifier) *http.Request {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return r
	}
	claims, err := verifier.Verify(token)
	if err != nil {
		return r
	}
	return r.WithContext(WithIdentity(r.Context(), Identity{UserID: claims.UserID, Role: claims.Role}))
}
