package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portalkit/portal/internal/api/metrics"
	"github.com/portalkit/portal/internal/api/websession"
	"github.com/portalkit/portal/internal/core/domain"
)

// RequireAuth lets only logged-in sessions through.
func RequireAuth() echo.MiddlewareFunc {
	return gate(func(s *domain.Session) error { return s.RequireAuth() })
}

// RequireAdmin answers 401 for anonymous sessions and 403 for logged-in
// users without the admin role.
func RequireAdmin() echo.MiddlewareFunc {
	return gate(func(s *domain.Session) error { return s.RequireAdmin() })
}

func gate(check func(*domain.Session) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := check(websession.FromContext(c))
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, domain.ErrForbidden):
				metrics.GateDenialsTotal.WithLabelValues("forbidden").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
			default:
				metrics.GateDenialsTotal.WithLabelValues("unauthenticated").Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": domain.ErrNotAuthenticated.Error()})
			}
		}
	}
}
