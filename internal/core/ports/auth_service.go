// internal/core/ports/auth_service.go
package ports

import (
	"context"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

// AuthService defines the application service port for account registration
// and token issuance.
type AuthService interface {
	Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error)
	// Login verifies credentials and returns a signed JWT.
	Login(ctx context.Context, username, password string) (string, error)
}
