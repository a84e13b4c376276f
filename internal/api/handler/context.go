package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware and
// fails fast with 401 when the middleware did not run.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get("principal").(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}
