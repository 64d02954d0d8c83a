package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/storage/files"
	"github.com/hongminglow/lab-portal/internal/storage/memory"
)

var publicGET = []string{"/api/news", "/api/publications", "/api/equipment", "/api/team"}

type testEnv struct {
	store   *memory.Store
	files   *files.Local
	tokens  *auth.TokenManager
	handler http.Handler
}

func newTestEnv(t *testing.T, authOpts ...AuthOption) *testEnv {
	t.Helper()
	tokens, err := auth.NewTokenManager("handler-test-secret", "lab-portal-test", 0)
	require.NoError(t, err)
	uploads, err := files.NewLocal(t.TempDir(), 1<<20)
	require.NoError(t, err)
	store := memory.New()

	mux := http.NewServeMux()
	opts := append([]AuthOption{WithBcryptCost(bcrypt.MinCost)}, authOpts...)
	NewAuthHandler(store, tokens, opts...).Register(mux)
	NewNewsHandler(store, uploads, 1<<20).Register(mux)
	NewPublicationHandler(store).Register(mux)
	NewEquipmentHandler(store).Register(mux)
	NewTeamHandler(store).Register(mux)
	NewUploadHandler(uploads, 1<<20).Register(mux)

	return &testEnv{
		store:   store,
		files:   uploads,
		tokens:  tokens,
		handler: auth.Gate(auth.NewPolicy(publicGET), tokens)(mux),
	}
}

// seedUser stores a user with the given password and returns it with a fresh token.
func (e *testEnv) seedUser(t *testing.T, username, password string, role models.Role) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := e.store.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@lab.org",
		FullName:     "Test " + username,
		Role:         role,
		PasswordHash: string(hash),
	})
	require.NoError(t, err)
	token, err := e.tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   apperr.Kind     `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		r = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return e.serve(t, req, token)
}

func (e *testEnv) serve(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	}
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
