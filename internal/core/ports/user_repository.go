// internal/core/ports/user_repository.go
package ports

import (
	"context"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

// UserRepository defines the persistence port for API accounts.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
