// Package client is the portal's client-side auth layer: an HTTP transport,
// a session state holder with durable token storage, and a route gate.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
)

// DefaultTimeout bounds every API round-trip.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the portal.
type APIError struct {
	Status  int
	Kind    apperr.Kind
	Message string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   apperr.Kind     `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// API talks to the portal over HTTP. A token source supplies the bearer for
// ordinary calls. A 401 that rejects the sent token, or any 401 on a write,
// fires the unauthorized hook with the token that was sent.
type API struct {
	baseURL string
	http    *http.Client

	mu             sync.RWMutex
	tokenSource    func() string
	onUnauthorized func(token string)
}

// APIOption customizes an API.
type APIOption func(*API)

// WithHTTPClient replaces the default client, including its timeout.
func WithHTTPClient(c *http.Client) APIOption {
	return func(a *API) { a.http = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) APIOption {
	return func(a *API) { a.http.Timeout = d }
}

func NewAPI(baseURL string, opts ...APIOption) *API {
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetTokenSource installs the function consulted for the bearer token of each call.
func (a *API) SetTokenSource(fn func() string) {
	a.mu.Lock()
	a.tokenSource = fn
	a.mu.Unlock()
}

// OnUnauthorized installs the hook fired when a call is rejected with 401.
// The hook receives the bearer that call carried.
func (a *API) OnUnauthorized(fn func(token string)) {
	a.mu.Lock()
	a.onUnauthorized = fn
	a.mu.Unlock()
}

func (a *API) currentToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.tokenSource == nil {
		return ""
	}
	return a.tokenSource()
}

// Login exchanges credentials for a token. It never sends a bearer.
func (a *API) Login(ctx context.Context, username, password string) (dto.LoginResponse, error) {
	var out dto.LoginResponse
	body := dto.LoginRequest{Username: username, Password: password}
	err := a.send(ctx, http.MethodPost, "/api/auth/login", "", body, &out)
	return out, err
}

// Verify checks token against the server and returns the current user.
func (a *API) Verify(ctx context.Context, token string) (models.User, error) {
	var out dto.UserResponse
	if err := a.send(ctx, http.MethodGet, "/api/auth/verify", token, nil, &out); err != nil {
		return models.User{}, err
	}
	return out.User, nil
}

// ListNews fetches one page of news. status may be empty for the public listing.
func (a *API) ListNews(ctx context.Context, status string, page, limit int) (dto.ListResponse[models.News], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/news"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out dto.ListResponse[models.News]
	err := a.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Do performs an authenticated JSON call and decodes the envelope data into out.
func (a *API) Do(ctx context.Context, method, path string, body, out any) error {
	token := a.currentToken()
	err := a.send(ctx, method, path, token, body, out)
	if rejectsToken(err, method, token) {
		a.mu.RLock()
		hook := a.onUnauthorized
		a.mu.RUnlock()
		if hook != nil {
			hook(token)
		}
	}
	return err
}

// rejectsToken reports whether err means the sent token is no good. A 401
// naming a token kind counts for any method; an unlabelled 401 counts only on writes.
func rejectsToken(err error, method, token string) bool {
	var apiErr *APIError
	if token == "" || !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return false
	}
	switch apiErr.Kind {
	case apperr.InvalidOrExpiredToken, apperr.MissingToken:
		return true
	case "":
		return method != http.MethodGet && method != http.MethodHead
	}
	return false
}

func (a *API) send(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Kind: env.Error, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
