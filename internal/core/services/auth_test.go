// internal/core/services/auth_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/services"
	"github.com/sistemastock/stock-be/internal/pkg/security"
	"github.com/sistemastock/stock-be/test/helpers"
	"github.com/sistemastock/stock-be/test/mocks"
)

func newAuthService(t *testing.T) (*services.AuthService, *mocks.MockUserRepository, *security.TokenManager) {
	t.Helper()

	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	tokens := security.NewTokenManager("test-secret-that-is-long-enough!", time.Hour)

	svc := services.NewAuthService(userRepo, tokens, helpers.TestLogger())

	return svc, userRepo, tokens
}

func TestAuthService_Register(t *testing.T) {
	t.Run("stores_bcrypt_hash_not_password", func(t *testing.T) {
		svc, userRepo, _ := newAuthService(t)

		var saved *domain.User
		userRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, u *domain.User) error {
				saved = u
				return nil
			})

		user, err := svc.Register(context.Background(), "maria", "hunter2pass", domain.RoleAdmin)
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.NotEqual(t, uuid.Nil, saved.UserID)
		assert.Equal(t, "maria", saved.Username)
		assert.Equal(t, domain.RoleAdmin, saved.Role)
		assert.NotContains(t, saved.PasswordHash, "hunter2pass")
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(saved.PasswordHash), []byte("hunter2pass")))
		assert.Equal(t, saved, user)
	})

	t.Run("empty_role_defaults_to_user", func(t *testing.T) {
		svc, userRepo, _ := newAuthService(t)

		userRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, u *domain.User) error {
				assert.Equal(t, domain.RoleUser, u.Role)
				return nil
			})

		_, err := svc.Register(context.Background(), "pedro", "somepassword", "")
		require.NoError(t, err)
	})

	t.Run("rejects_empty_password", func(t *testing.T) {
		svc, _, _ := newAuthService(t)

		_, err := svc.Register(context.Background(), "maria", "", domain.RoleUser)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password is required")
	})

	t.Run("rejects_empty_username", func(t *testing.T) {
		svc, _, _ := newAuthService(t)

		_, err := svc.Register(context.Background(), "", "somepassword", domain.RoleUser)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "username is required")
	})

	t.Run("duplicate_username_surfaces_sentinel", func(t *testing.T) {
		svc, userRepo, _ := newAuthService(t)

		userRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(domain.ErrUserExists)

		_, err := svc.Register(context.Background(), "maria", "somepassword", domain.RoleUser)
		assert.ErrorIs(t, err, domain.ErrUserExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	account := &domain.User{
		UserID:       uuid.New(),
		Username:     "maria",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now(),
	}

	t.Run("issues_verifiable_token", func(t *testing.T) {
		svc, userRepo, tokens := newAuthService(t)
		userRepo.EXPECT().FindByUsername(gomock.Any(), "maria").Return(account, nil)

		token, err := svc.Login(context.Background(), "maria", "correct-horse")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := tokens.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, account.UserID, claims.UserID)
		assert.Equal(t, "maria", claims.Username)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("unknown_username_yields_invalid_credentials", func(t *testing.T) {
		svc, userRepo, _ := newAuthService(t)
		userRepo.EXPECT().FindByUsername(gomock.Any(), "nobody").Return(nil, nil)

		_, err := svc.Login(context.Background(), "nobody", "whatever")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("wrong_password_yields_invalid_credentials", func(t *testing.T) {
		svc, userRepo, _ := newAuthService(t)
		userRepo.EXPECT().FindByUsername(gomock.Any(), "maria").Return(account, nil)

		_, err := svc.Login(context.Background(), "maria", "wrong-horse")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
