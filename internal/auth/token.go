package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/lab-portal/internal/models"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 24 * time.Hour

// Token errors. ErrMalformedToken and ErrExpiredToken both wrap ErrInvalidToken.
var (
	ErrMissingSecret  = errors.New("token signing secret is not configured")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = fmt.Errorf("%w: malformed or forged", ErrInvalidToken)
	ErrExpiredToken   = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims is the identity subset embedded in a token.
type Claims struct {
	UserID    int64
	Role      models.Role
	ExpiresAt time.Time
}

// Verifier checks a token and returns the embedded claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

type tokenClaims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 JWTs for authenticated users.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(t *TokenManager) { t.now = now }
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
// An empty secret is refused; a non-positive ttl falls back to DefaultTTL.
func NewTokenManager(secret, issuer string, ttl time.Duration, opts ...Option) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	t := &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL returns the lifetime given to new tokens.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token binding the user's id and current role to an expiry of now+TTL.
func (t *TokenManager) Issue(user models.User) (string, error) {
	if !user.Role.Valid() {
		return "", fmt.Errorf("issue token: %w", models.ErrUnknownRole)
	}
	now := t.now()
	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks signature, issuer and expiry. Failures are ErrExpiredToken or ErrMalformedToken.
func (t *TokenManager) Verify(tokenString string) (Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Claims{}, fmt.Errorf("%w: bad subject", ErrMalformedToken)
	}
	if !claims.Role.Valid() {
		return Claims{}, fmt.Errorf("%w: bad role", ErrMalformedToken)
	}
	return Claims{UserID: id, Role: claims.Role, ExpiresAt: claims.ExpiresAt.Time}, nil
}
