// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// AuthHandler handles account registration and login
type AuthHandler struct {
	service ports.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service ports.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "auth")),
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(ctx, req.Username, req.Password, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			h.respondError(w, http.StatusConflict, "Username already taken")
			return
		}
		h.logger.ErrorContext(ctx, "failed to register user",
			slog.String("username", req.Username),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.UserID.String()),
		slog.String("username", user.Username))

	// The password hash never leaves the service boundary.
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id":  user.UserID,
		"username": user.Username,
		"role":     user.Role,
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.respondError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.logger.ErrorContext(ctx, "login failed",
			slog.String("username", req.Username),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"token":      token,
		"token_type": "Bearer",
	})
}

// Helper methods

func (h *AuthHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *AuthHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Validate validates the register request
func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
