// internal/core/services/auth.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
	"github.com/sistemastock/stock-be/internal/pkg/security"
)

// AuthService handles account registration and token issuance
type AuthService struct {
	userRepo ports.UserRepository
	tokens   *security.TokenManager
	logger   *slog.Logger
}

// Statically assert that *AuthService implements the AuthService interface.
var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, tokens *security.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With(slog.String("service", "auth")),
	}
}

// Register creates a new account with a bcrypt password hash
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	user.PrepareForStorage()

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and returns a signed JWT. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("username", username))

	return token, nil
}
