package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lab-portal/internal/models"
)

const testSecret = "token-test-secret-0123456789abcdef"

func newManager(t *testing.T, opts ...Option) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, "lab-portal-test", DefaultTTL, opts...)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_MissingSecret(t *testing.T) {
	_, err := NewTokenManager("", "issuer", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	m, err := NewTokenManager(testSecret, "issuer", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, m.TTL())
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := newManager(t)
	users := []models.User{
		{ID: 1, Role: models.RoleUser},
		{ID: 42, Role: models.RoleEditor},
		{ID: 9001, Role: models.RoleAdmin},
	}
	for _, u := range users {
		token, err := m.Issue(u)
		require.NoError(t, err)

		claims, err := m.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, u.Role, claims.Role)
	}
}

func TestIssue_ExpiryIs24h(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newManager(t, WithClock(func() time.Time { return now }))

	token, err := m.Issue(models.User{ID: 3, Role: models.RoleUser})
	require.NoError(t, err)
	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Equal(now.Add(24*time.Hour)))
}

func TestIssue_RejectsUnknownRole(t *testing.T) {
	m := newManager(t)
	_, err := m.Issue(models.User{ID: 3, Role: "viewer"})
	assert.ErrorIs(t, err, models.ErrUnknownRole)
}

func TestVerify_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	m := newManager(t, WithClock(func() time.Time { return clock }))

	token, err := m.Issue(models.User{ID: 7, Role: models.RoleAdmin})
	require.NoError(t, err)

	clock = issuedAt.Add(24*time.Hour + time.Second)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, errors.Is(err, ErrMalformedToken))
}

func TestVerify_TamperedSignature(t *testing.T) {
	m := newManager(t)
	token, err := m.Issue(models.User{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)

	dot := strings.LastIndex(token, ".")
	sig, err := base64.RawURLEncoding.DecodeString(token[dot+1:])
	require.NoError(t, err)
	for i := range sig {
		mutated := append([]byte(nil), sig...)
		mutated[i] ^= 0x01
		forged := token[:dot+1] + base64.RawURLEncoding.EncodeToString(mutated)
		_, err := m.Verify(forged)
		assert.ErrorIs(t, err, ErrMalformedToken, "mutation at byte %d accepted", i)
	}
}

func TestVerify_Invalid(t *testing.T) {
	m := newManager(t)
	other, err := NewTokenManager("a-completely-different-secret", "lab-portal-test", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	otherIssuer, err := NewTokenManager(testSecret, "someone-else", time.Hour)
	require.NoError(t, err)
	wrongIss, err := otherIssuer.Issue(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "1",
		"role": "admin",
		"iss":  "lab-portal-test",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "1",
		"role": "superuser",
		"iss":  "lab-portal-test",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "1",
		"role": "admin",
		"iss":  "lab-portal-test",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"three segments", "header.payload.signature"},
		{"wrong secret", foreign},
		{"wrong issuer", wrongIss},
		{"alg none", noneAlg},
		{"unknown role", badRole},
		{"no expiry", noExp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}
