package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return Created(c, resp)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return OK(c, resp)
}

// Logout acknowledges a logout. Tokens are stateless; the client discards its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return Message(c, "logged out")
}

// Me returns the current user's profile
func (h *AuthHandler) Me(c echo.Context) error {
	userID := UserID(c)

	user, err := h.authService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return OK(c, user)
}

// ChangePassword updates the current user's password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID := UserID(c)

	var req ports.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), userID, req); err != nil {
		return err
	}

	return Message(c, "password changed")
}

// userContextKey is where the auth middleware stores the verified actor id.
const userContextKey = "user"

// UserID extracts the authenticated user id bound to the request.
func UserID(c echo.Context) uuid.UUID {
	id, ok := c.Get(userContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// SetUserID binds the authenticated user id to the request context.
func SetUserID(c echo.Context, id uuid.UUID) {
	c.Set(userContextKey, id)
}
