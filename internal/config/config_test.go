package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lab")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"PORT", "STORAGE_DRIVER", "JWT_ISSUER", "JWT_TTL_MINUTES", "CORS_ALLOWED_ORIGINS", "PUBLIC_GET_PREFIXES", "UPLOAD_DIR", "UPLOAD_MAX_MB", "LOGIN_RATE_LIMIT", "BCRYPT_COST"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "lab-portal", cfg.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"/api/news", "/api/publications", "/api/equipment", "/api/team"}, cfg.PublicGETPrefixes)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("PUBLIC_GET_PREFIXES", " /api/news , ,/api/team")
	t.Setenv("BCRYPT_COST", "-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddress())
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"/api/news", "/api/team"}, cfg.PublicGETPrefixes)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoad_MissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "  ")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_MissingDatabase(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_MemoryDriverNeedsNoDatabase(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORAGE_DRIVER", "Memory")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
}

func TestLoad_UnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestLoad_BcryptCostOutOfRange(t *testing.T) {
	for _, cost := range []string{"3", "32"} {
		setRequired(t)
		t.Setenv("BCRYPT_COST", cost)
		_, err := Load()
		assert.ErrorContains(t, err, "BCRYPT_COST", cost)
	}
}
