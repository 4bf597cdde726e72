// internal/handlers/middleware/middleware_test.go
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/handlers/middleware"
	"github.com/sistemastock/stock-be/internal/pkg/logger"
	"github.com/sistemastock/stock-be/internal/pkg/security"
	"github.com/sistemastock/stock-be/test/helpers"
)

func TestRequestID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Context().Value(logger.ContextKeyRequestID)
		assert.NotNil(t, requestID)
		assert.NotEmpty(t, requestID.(string))

		w.WriteHeader(http.StatusOK)
	})

	wrapped := middleware.RequestID(handler)

	tests := []struct {
		name              string
		existingRequestID string
		validateResponse  func(*testing.T, *http.Response)
	}{
		{
			name:              "generates_new_request_id",
			existingRequestID: "",
			validateResponse: func(t *testing.T, resp *http.Response) {
				requestID := resp.Header.Get("X-Request-ID")
				assert.NotEmpty(t, requestID)
				assert.Len(t, requestID, 36) // UUID length
			},
		},
		{
			name:              "uses_existing_request_id",
			existingRequestID: "existing-id-123",
			validateResponse: func(t *testing.T, resp *http.Response) {
				requestID := resp.Header.Get("X-Request-ID")
				assert.Equal(t, "existing-id-123", requestID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.existingRequestID != "" {
				req.Header.Set("X-Request-ID", tt.existingRequestID)
			}
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			resp := w.Result()
			tt.validateResponse(t, resp)
		})
	}
}

func TestLogger(t *testing.T) {
	slogger := helpers.TestLogger()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test response"))
	})

	wrapped := middleware.Logger(slogger)(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test response", w.Body.String())
}

func TestAuthenticate(t *testing.T) {
	tokens := security.NewTokenManager("test-secret-key-for-middleware", time.Hour)
	otherTokens := security.NewTokenManager("a-different-secret-entirely", time.Hour)

	user := &domain.User{
		UserID:   uuid.New(),
		Username: "maria",
		Role:     domain.RoleAdmin,
	}

	validToken, err := tokens.Generate(user)
	require.NoError(t, err)

	foreignToken, err := otherTokens.Generate(user)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectClaims   bool
	}{
		{
			name:           "accepts_valid_token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectClaims:   true,
		},
		{
			name:           "rejects_missing_header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "rejects_non_bearer_scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "rejects_garbage_token",
			authHeader:     "Bearer not.a.token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "rejects_token_signed_with_other_key",
			authHeader:     "Bearer " + foreignToken,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotClaims *security.Claims
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotClaims = middleware.ClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			wrapped := middleware.Authenticate(tokens)(handler)

			req := httptest.NewRequest("GET", "/api/v1/products", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectClaims {
				require.NotNil(t, gotClaims)
				assert.Equal(t, user.UserID, gotClaims.UserID)
				assert.Equal(t, user.Username, gotClaims.Username)
				assert.Equal(t, user.Role, gotClaims.Role)
			} else {
				assert.Nil(t, gotClaims)
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	tokens := security.NewTokenManager("test-secret-key-for-middleware", -time.Minute)

	token, err := tokens.Generate(&domain.User{
		UserID:   uuid.New(),
		Username: "maria",
		Role:     domain.RoleUser,
	})
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.Authenticate(tokens)(handler)

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	tokens := security.NewTokenManager("test-secret-key-for-middleware", time.Hour)

	adminToken, err := tokens.Generate(&domain.User{
		UserID:   uuid.New(),
		Username: "admin",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	userToken, err := tokens.Generate(&domain.User{
		UserID:   uuid.New(),
		Username: "clerk",
		Role:     domain.RoleUser,
	})
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		token          string
		requiredRole   domain.Role
		expectedStatus int
	}{
		{
			name:           "admin_passes_admin_gate",
			token:          adminToken,
			requiredRole:   domain.RoleAdmin,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "user_blocked_from_admin_gate",
			token:          userToken,
			requiredRole:   domain.RoleAdmin,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "user_passes_user_gate",
			token:          userToken,
			requiredRole:   domain.RoleUser,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := middleware.Authenticate(tokens)(middleware.RequireRole(tt.requiredRole)(handler))

			req := httptest.NewRequest("DELETE", "/api/v1/products/123", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireRole_WithoutAuthenticate(t *testing.T) {
	// A chain missing Authenticate must refuse, not crash.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.RequireRole(domain.RoleAdmin)(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecovery(t *testing.T) {
	slogger := helpers.TestLogger()

	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedStatus int
	}{
		{
			name: "recovers_from_panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something broke")
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "passes_through_normal_request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := middleware.Recovery(slogger)(tt.handler)

			req := httptest.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := middleware.RateLimit(2, time.Minute)(handler)

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Contains(t, statuses, http.StatusTooManyRequests)
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := middleware.CORS([]string{"https://app.example.com"})(handler)

	t.Run("allowed_origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight_request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/test", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("disallowed_origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecureHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := middleware.SecureHeaders(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
