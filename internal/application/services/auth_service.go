package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// Claims represents the JWT claims. Subject carries the user id; nothing else
// identifies or describes the user.
type Claims struct {
	jwt.RegisteredClaims
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	userRepo     ports.UserRepository
	categoryRepo ports.CategoryRepository
	jwtConfig    config.JWTConfig
	logger       *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, categoryRepo ports.CategoryRepository, jwtConfig config.JWTConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		jwtConfig:    jwtConfig,
		logger:       logger,
	}
}

// Register creates a new user account and seeds its default categories.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, entities.ErrDuplicateIdentity
	}
	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, entities.ErrDuplicateIdentity
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.SeedDefaults(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to seed default categories: %w", err)
	}

	s.logger.Infow("User registered", "user_id", user.ID, "email", user.Email)

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user.PasswordHash = ""

	return &ports.AuthResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.jwtConfig.ExpiresIn.Seconds()),
	}, nil
}

// Login authenticates a user and issues a signed token.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warnw("Login attempt with unknown email", "email", req.Email)
		return nil, entities.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warnw("Login attempt with inactive account", "email", req.Email, "user_id", user.ID)
		return nil, entities.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warnw("Login attempt with invalid password", "email", req.Email, "user_id", user.ID)
		return nil, entities.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warnw("Failed to update last login time", "error", err, "user_id", user.ID)
	}
	user.LastLogin = &now

	s.logger.Infow("User logged in", "user_id", user.ID, "email", user.Email)

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user.PasswordHash = ""

	return &ports.AuthResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.jwtConfig.ExpiresIn.Seconds()),
	}, nil
}

// GetProfile returns the public profile for a user id.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ports.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return entities.ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return err
	}

	s.logger.Infow("Password changed", "user_id", userID)
	return nil
}

// ValidateToken verifies a bearer token and extracts the acting user id.
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, entities.ErrTokenExpired
		}
		return nil, entities.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, entities.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, entities.ErrInvalidToken
	}

	return &ports.Claims{UserID: userID}, nil
}

func (s *AuthService) generateToken(user *entities.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
