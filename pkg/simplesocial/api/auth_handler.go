package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Routes returns the routes for authentication
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	return r
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is the response body for a successful registration
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// TokenResponse is the response body for a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		badRequest(w, r, "email, username and password are required")
		return
	}

	principal, err := h.auth.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("User registered", "user_id", principal.ID, "username", principal.Username)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, RegisterResponse{Message: "User created", UserID: principal.ID})
}

// Login verifies form credentials (username holds the email) and issues a
// bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w, r, "invalid form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		badRequest(w, r, "username and password are required")
		return
	}

	principal, err := h.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.auth.IssueToken(*principal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("User logged in", "user_id", principal.ID)
	render.JSON(w, r, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}
	render.JSON(w, r, principal)
}
