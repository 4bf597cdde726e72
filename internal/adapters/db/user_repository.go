// internal/adapters/db/user_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// userRepository implements ports.UserRepository
type userRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *Database, logger *slog.Logger) ports.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "user")),
	}
}

// Save inserts a new account
func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (user_id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		user.UserID, user.Username, user.PasswordHash, user.Role, user.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", user.Username, domain.ErrUserExists)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}

	r.logger.InfoContext(ctx, "user created",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)))

	return nil
}

// FindByUsername retrieves an account by username. Returns nil when not
// found.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT user_id, username, password_hash, role, created_at
		FROM users
		WHERE username = $1`

	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.UserID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
