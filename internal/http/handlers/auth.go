package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/lab-portal/internal/apperr"
	"github.com/hongminglow/lab-portal/internal/auth"
	"github.com/hongminglow/lab-portal/internal/http/respond"
	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage"
)

const invalidCredentials = "invalid credentials"

// TokenIssuer mints and checks session tokens.
type TokenIssuer interface {
	auth.Verifier
	Issue(user models.User) (string, error)
}

// AuthHandler owns the register/login/verify endpoints and admin role changes.
type AuthHandler struct {
	store      storage.UserStore
	tokens     TokenIssuer
	cost       int
	limitLogin func(http.Handler) http.Handler
	dummyHash  []byte
}

// AuthOption customizes an AuthHandler.
type AuthOption func(*AuthHandler)

// WithBcryptCost sets the cost used for new password hashes.
func WithBcryptCost(cost int) AuthOption {
	return func(h *AuthHandler) { h.cost = cost }
}

// WithLoginLimiter wraps the login endpoint, typically with a per-IP rate limiter.
func WithLoginLimiter(mw func(http.Handler) http.Handler) AuthOption {
	return func(h *AuthHandler) { h.limitLogin = mw }
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens TokenIssuer, opts ...AuthOption) *AuthHandler {
	h := &AuthHandler{store: store, tokens: tokens, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
		log.Printf("auth: bcrypt cost %d out of range, using %d", h.cost, bcrypt.DefaultCost)
		h.cost = bcrypt.DefaultCost
	}
	// compared against when the user does not exist so both failure paths cost the same
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.cost)
	if err != nil {
		log.Printf("auth: generate dummy hash: %v", err)
	}
	h.dummyHash = hash
	return h
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	var login http.Handler = http.HandlerFunc(h.handleLogin)
	if h.limitLogin != nil {
		login = h.limitLogin(login)
	}
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.Handle("POST /api/auth/login", login)
	mux.HandleFunc("GET /api/auth/verify", h.handleVerify)
	mux.HandleFunc("PUT /api/users/{id}/role", h.handleUpdateRole)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateStruct(req); err != nil {
		respond.Fail(w, err)
		return
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
	if err != nil {
		log.Printf("register: hash password: %v", err)
		respond.Error(w, apperr.Internal, "failed to hash password")
		return
	}

	// self-registration always yields the lowest role; promotion goes through PUT /api/users/{id}/role
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         models.RoleUser,
		PasswordHash: string(passwordHash),
	}
	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, apperr.DuplicateIdentity, "username or email already exists")
			return
		}
		log.Printf("register: create user %s: %v", req.Username, err)
		respond.Error(w, apperr.Internal, "failed to create user")
		return
	}

	respond.JSON(w, http.StatusCreated, "user created", dto.UserResponse{User: created})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		respond.Error(w, apperr.MalformedRequest, "username and password are required")
		return
	}

	user, err := h.store.FindByUsernameOrEmail(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(req.Password))
			respond.Error(w, apperr.InvalidCredentials, invalidCredentials)
			return
		}
		log.Printf("login: fetch user: %v", err)
		respond.Error(w, apperr.Internal, "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, apperr.InvalidCredentials, invalidCredentials)
		return
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Printf("login: issue token for user %d: %v", user.ID, err)
		respond.Error(w, apperr.Internal, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

// handleVerify sits in the public auth namespace, so it checks the header itself.
func (h *AuthHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		respond.Error(w, apperr.MissingToken, "access token not provided")
		return
	}
	claims, err := h.tokens.Verify(token)
	if err != nil {
		respond.Error(w, apperr.InvalidOrExpiredToken, "invalid or expired token")
		return
	}
	user, err := h.store.FindByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperr.InvalidOrExpiredToken, "user no longer exists")
			return
		}
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "token valid", dto.UserResponse{User: user})
}

func (h *AuthHandler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req dto.RoleUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, apperr.MalformedRequest, "role must be one of: user, editor, admin")
		return
	}
	if err := validateStruct(req); err != nil {
		respond.Fail(w, err)
		return
	}
	user, err := h.store.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		storeFailure(w, err, "user not found")
		return
	}
	log.Printf("role change: user %d is now %s", user.ID, user.Role)
	respond.JSON(w, http.StatusOK, "role updated", dto.UserResponse{User: user})
}
