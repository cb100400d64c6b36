package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpHandlers "github.com/tasknest/core/internal/adapters/http"
	"github.com/tasknest/core/internal/adapters/repository/memory"
	"github.com/tasknest/core/internal/application/services"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

func newAuthTestRig(t *testing.T, jwtConfig config.JWTConfig) (*echo.Echo, *services.AuthService) {
	t.Helper()

	nop := logger.NewNop()
	store := memory.NewStore()
	authService := services.NewAuthService(store.Users(), store.Categories(), jwtConfig, nop)

	s := &Server{logger: nop}

	e := echo.New()
	e.HTTPErrorHandler = httpHandlers.ErrorHandler(nop)
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, httpHandlers.UserID(c).String())
	}, s.authMiddleware(authService))

	return e, authService
}

func TestAuthMiddleware(t *testing.T) {
	jwtConfig := config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, Issuer: "test"}
	e, authService := newAuthTestRig(t, jwtConfig)

	resp, err := authService.Register(context.Background(), ports.RegisterRequest{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct horse",
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc123", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "Bearer " + resp.Token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, resp.User.ID.String(), rec.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	jwtConfig := config.JWTConfig{Secret: "test-secret", ExpiresIn: -time.Minute, Issuer: "test"}
	e, authService := newAuthTestRig(t, jwtConfig)

	resp, err := authService.Register(context.Background(), ports.RegisterRequest{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct horse",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}
