package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/catattrans/umkm-api/internal/api/metrics"
	"github.com/catattrans/umkm-api/internal/api/middleware"
	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
	"github.com/catattrans/umkm-api/internal/core/session"
)

// AuthHandler owns the login/logout flow and the session cookie lifecycle.
type AuthHandler struct {
	cache        *session.Cache
	authService  ports.AuthService
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(cache *session.Cache, authService ports.AuthService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		cache:        cache,
		authService:  authService,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User domain.Session `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8"`
}

// Login authenticates a user and sets the HTTP-only session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s, token, err := h.cache.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrServiceUnavailable):
			metrics.LoginsTotal.WithLabelValues("unavailable").Inc()
		default:
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.SetCookie(h.sessionCookie(token, h.tokenTTL))
	return c.JSON(http.StatusOK, sessionResponse{User: s})
}

// Logout revokes the session and expires the cookie. Always succeeds from the
// client's point of view.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := middleware.SessionToken(c); token != "" {
		h.cache.Logout(c.Request().Context(), token)
	}

	c.SetCookie(h.sessionCookie("", -time.Hour))
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the authenticated identity resolved by the Auth middleware.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{User: s})
}

// ChangePassword rotates the caller's password and lifts the first-login
// restriction. The cached session is cleared so the next read reflects the
// updated PasswordChanged flag.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Password change"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), s.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	if token := middleware.SessionToken(c); token != "" {
		h.cache.Invalidate(token)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// sessionCookie builds the session cookie. A non-positive maxAge expires it.
func (h *AuthHandler) sessionCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
