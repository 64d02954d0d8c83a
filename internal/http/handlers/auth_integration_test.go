package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage/postgres"
)

// TestAuthIntegration exercises register, login and verify against a live Postgres.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_DB_INTEGRATION") != "true" {
		t.Skip("set RUN_DB_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	tokens, err := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), "lab-portal-integration", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	mux := http.NewServeMux()
	NewAuthHandler(store, tokens, WithBcryptCost(bcrypt.MinCost)).Register(mux)
	ts := httptest.NewServer(auth.Gate(auth.NewPolicy(nil), tokens)(mux))
	defer ts.Close()

	username := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	var registered dto.UserResponse
	postJSON(t, ts.URL+"/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
		"fullName": "Integration Test",
	}, http.StatusCreated, &registered)
	if registered.User.Username != username || registered.User.Role != models.RoleUser {
		t.Fatalf("register mismatch: got %+v", registered.User)
	}

	var loggedIn dto.LoginResponse
	postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, http.StatusOK, &loggedIn)
	if loggedIn.User.ID != registered.User.ID {
		t.Fatalf("login returned wrong user id: want %d got %d", registered.User.ID, loggedIn.User.ID)
	}
	if strings.TrimSpace(loggedIn.Token) == "" {
		t.Fatal("login response missing token")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("verify request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d", resp.StatusCode)
	}

	t.Logf("created user %s (id=%d), logged in and verified", username, registered.User.ID)
}

func postJSON(t *testing.T, url string, payload any, wantStatus int, out any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
