package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lab-portal/internal/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestErrorUsesKindStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.InsufficientRole, "editor role required")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, http.StatusForbidden, env.Code)
	assert.Equal(t, apperr.InsufficientRole, env.Error)
	assert.Equal(t, "editor role required", env.Message)
}

func TestFailHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, errors.New("pq: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, apperr.Internal, env.Error)
	assert.NotContains(t, env.Message, "pq")
}

func TestFailWrappedAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, fmt.Errorf("create: %w", apperr.New(apperr.NotFound, "news not found")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "news not found", env.Message)
}
