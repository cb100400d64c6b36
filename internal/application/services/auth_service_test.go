package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/core/internal/adapters/repository/memory"
	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:    "test-secret-not-for-production",
		ExpiresIn: time.Hour,
		Issuer:    "tasknest-test",
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewAuthService(store.Users(), store.Categories(), testJWTConfig(), logger.NewNop())
	return svc, store
}

func register(t *testing.T, svc *AuthService, email, username string) *ports.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), ports.RegisterRequest{
		Email:    email,
		Username: username,
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterSeedsDefaultCategories(t *testing.T) {
	svc, store := newAuthFixture(t)

	resp := register(t, svc, "ada@example.com", "ada")

	categories, err := store.Categories().List(context.Background(), resp.User.ID, ports.CategoryFilter{})
	require.NoError(t, err)
	require.Len(t, categories, len(entities.DefaultCategories))

	for i, c := range categories {
		assert.Equal(t, entities.DefaultCategories[i].Name, c.Name)
		assert.True(t, c.IsDefault)
		assert.True(t, c.IsActive)
		assert.Zero(t, c.TaskCount)
	}
}

func TestRegisterRejectsDuplicateIdentity(t *testing.T) {
	svc, _ := newAuthFixture(t)
	register(t, svc, "ada@example.com", "ada")

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{"same email", "ada@example.com", "other"},
		{"same email different case", "ADA@Example.com", "other"},
		{"same username", "other@example.com", "ada"},
		{"same username different case", "other@example.com", "ADA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), ports.RegisterRequest{
				Email:    tt.email,
				Username: tt.username,
				Password: "correct horse battery",
			})
			assert.ErrorIs(t, err, entities.ErrDuplicateIdentity)
		})
	}
}

func TestRegisterDoesNotExposePasswordHash(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp := register(t, svc, "ada@example.com", "ada")
	assert.Empty(t, resp.User.PasswordHash)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	register(t, svc, "ada@example.com", "ada")

	resp, err := svc.Login(context.Background(), ports.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.User.LastLogin)
	assert.Empty(t, resp.User.PasswordHash)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newAuthFixture(t)
	register(t, svc, "ada@example.com", "ada")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "correct horse battery"},
		{"wrong password", "ada@example.com", "not the password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), ports.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			})
			assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
		})
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp := register(t, svc, "ada@example.com", "ada")

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestValidateTokenExpired(t *testing.T) {
	store := memory.NewStore()
	cfg := testJWTConfig()
	cfg.ExpiresIn = -time.Minute
	svc := NewAuthService(store.Users(), store.Categories(), cfg, logger.NewNop())

	resp := register(t, svc, "ada@example.com", "ada")

	_, err := svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, entities.ErrTokenExpired)
}

func TestValidateTokenRejectsForgery(t *testing.T) {
	svc, _ := newAuthFixture(t)
	resp := register(t, svc, "ada@example.com", "ada")

	otherStore := memory.NewStore()
	otherCfg := testJWTConfig()
	otherCfg.Secret = "a-different-secret-entirely"
	other := NewAuthService(otherStore.Users(), otherStore.Categories(), otherCfg, logger.NewNop())

	_, err := other.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, entities.ErrInvalidToken)

	_, err = svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, entities.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	resp := register(t, svc, "ada@example.com", "ada")

	err := svc.ChangePassword(context.Background(), resp.User.ID, ports.ChangePasswordRequest{
		CurrentPassword: "wrong password",
		NewPassword:     "an even better one",
	})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), resp.User.ID, ports.ChangePasswordRequest{
		CurrentPassword: "correct horse battery",
		NewPassword:     "an even better one",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), ports.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), ports.LoginRequest{
		Email:    "ada@example.com",
		Password: "an even better one",
	})
	assert.NoError(t, err)
}

func TestGetProfile(t *testing.T) {
	svc, _ := newAuthFixture(t)
	resp := register(t, svc, "ada@example.com", "ada")

	user, err := svc.GetProfile(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
}
