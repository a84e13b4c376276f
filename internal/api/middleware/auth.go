package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
	"github.com/Ovii2/EventSync/internal/pkg/token"
)

// Auth validates the bearer credential and injects the principal into the
// context under "principal" (and its role under "role" for RBAC). The
// store is not consulted; signature and embedded expiry are enough.
func Auth(validator ports.CredentialValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			raw, ok := token.FromAuthorization(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			principal, err := validator.Validate(raw)
			if err != nil {
				if errors.Is(err, domain.ErrExpiredCredential) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("principal", principal)
			c.Set("role", principal.Role)

			return next(c)
		}
	}
}
