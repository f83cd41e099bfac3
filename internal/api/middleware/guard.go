package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/catattrans/umkm-api/internal/api/metrics"
	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/routeguard"
	"github.com/catattrans/umkm-api/internal/core/session"
)

// Guard applies the route-guard decision to page routes. Unlike Auth it uses
// the cache's optimistic read: a cached session renders the page immediately
// while a background re-check keeps it honest. Server-side identity is always
// resolved by request time, so the loading phase never occurs here.
func Guard(g *routeguard.Guard, cache *session.Cache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sess *domain.Session
			if token := SessionToken(c); token != "" {
				if s, ok := cache.CurrentUser(c.Request().Context(), token, false); ok {
					sess = &s
				}
			}
			if sess != nil {
				metrics.SessionReadsTotal.WithLabelValues("resolved").Inc()
			} else {
				metrics.SessionReadsTotal.WithLabelValues("anonymous").Inc()
			}

			d := g.Decide(c.Request().URL.Path, sess, true)
			switch d.Action {
			case routeguard.ActionRedirect:
				return c.Redirect(http.StatusFound, d.Location)
			default:
				return next(c)
			}
		}
	}
}
