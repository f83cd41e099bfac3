package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/catattrans/umkm-api/internal/api/metrics"
	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/session"
)

// CookieName is the HTTP-only cookie carrying the session token.
const CookieName = "token"

// sessionContextKey is where Auth stores the resolved session on the echo
// context for handlers downstream.
const sessionContextKey = "session"

// Auth resolves the session cookie through the cache with a forced
// authoritative verification and injects the session into context. API
// authorization never trusts the cache alone; the cache entry is cleared on
// any failure so page routes stop rendering as that user too.
func Auth(cache *session.Cache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := SessionToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}

			s, ok := cache.CurrentUser(c.Request().Context(), token, true)
			if !ok {
				metrics.SessionVerificationsTotal.WithLabelValues("invalid").Inc()
				cache.Invalidate(token)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}
			metrics.SessionVerificationsTotal.WithLabelValues("valid").Inc()

			c.Set(sessionContextKey, s)
			return next(c)
		}
	}
}

// SessionToken extracts the raw session token from the request cookie.
// Empty when the cookie is absent.
func SessionToken(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionFromContext returns the session injected by Auth.
func SessionFromContext(c echo.Context) (domain.Session, bool) {
	s, ok := c.Get(sessionContextKey).(domain.Session)
	return s, ok
}
