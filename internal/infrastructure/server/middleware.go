package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/tasknest/core/internal/adapters/http"
	"github.com/tasknest/core/internal/application/services"
	"github.com/tasknest/core/internal/domain/entities"
)

// authMiddleware validates the bearer token and stores the caller's
// identity on the request context.
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return entities.ErrUnauthenticated
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return entities.ErrUnauthenticated
			}

			claims, err := authService.ValidateToken(token)
			if err != nil {
				s.logger.LogSecurityEvent("token_rejected", "", c.RealIP(), map[string]interface{}{
					"path":  c.Path(),
					"error": err.Error(),
				})
				return err
			}

			httpHandlers.SetUserID(c, claims.UserID)
			return next(c)
		}
	}
}
