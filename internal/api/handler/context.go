package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/catattrans/umkm-api/internal/api/middleware"
	"github.com/catattrans/umkm-api/internal/core/domain"
)

// ctxSession extracts the session injected by the Auth middleware and
// performs a fast-fail check before any service call: a missing or
// structurally invalid session proves the middleware did not run.
func ctxSession(c echo.Context) (domain.Session, error) {
	s, ok := middleware.SessionFromContext(c)
	if !ok || !s.Valid() {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return s, nil
}
