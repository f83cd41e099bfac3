package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/routeguard"
	"github.com/catattrans/umkm-api/internal/core/session"
)

// memStore is an in-memory session.Store for middleware tests.
type memStore struct {
	entries map[string]domain.Session
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]domain.Session)}
}

func (m *memStore) Get(_ context.Context, key string) (domain.Session, bool, error) {
	s, ok := m.entries[key]
	return s, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, s domain.Session) error {
	m.entries[key] = s
	return nil
}

func (m *memStore) Clear(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

// stubBackend verifies a fixed token → session mapping.
type stubBackend struct {
	sessions map[string]domain.Session
}

func (b *stubBackend) Exchange(context.Context, string, string) (domain.Session, string, error) {
	return domain.Session{}, "", domain.ErrInvalidCredentials
}

func (b *stubBackend) Verify(_ context.Context, key string) (domain.Session, error) {
	s, ok := b.sessions[key]
	if !ok {
		return domain.Session{}, errors.New("unknown token")
	}
	return s, nil
}

func (b *stubBackend) Revoke(context.Context, string) error { return nil }

// syncRunner executes revalidation jobs inline so tests stay deterministic.
type syncRunner struct{}

func (syncRunner) Run(_ string, job func(ctx context.Context)) { job(context.Background()) }

func newTestCache(sessions map[string]domain.Session) (*session.Cache, *memStore) {
	store := newMemStore()
	backend := &stubBackend{sessions: sessions}
	cache := session.New(store, backend, backend, backend, zerolog.Nop(), session.WithRunner(syncRunner{}))
	return cache, store
}

func adminSession() domain.Session {
	return domain.Session{ID: "u1", Username: "owner", Name: "Owner", Role: domain.RoleAdmin, PasswordChanged: true}
}

func withCookie(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	return req
}

func TestAuth_ValidCookie(t *testing.T) {
	cache, _ := newTestCache(map[string]domain.Session{"tok-1": adminSession()})

	e := echo.New()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/", nil), "tok-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got domain.Session
	handler := Auth(cache)(func(c echo.Context) error {
		got, _ = SessionFromContext(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.ID != "u1" || got.Role != domain.RoleAdmin {
		t.Fatalf("session not injected: %+v", got)
	}
}

func TestAuth_MissingCookie(t *testing.T) {
	cache, _ := newTestCache(nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(cache)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_RevokedTokenClearsCache(t *testing.T) {
	// The token was cached earlier but the backend no longer accepts it.
	cache, store := newTestCache(nil)
	_ = store.Set(context.Background(), "tok-stale", adminSession())

	e := echo.New()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/", nil), "tok-stale")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(cache)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if _, ok := store.entries["tok-stale"]; ok {
		t.Fatalf("stale cache entry survived a failed verification")
	}
}

func TestRBAC_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionContextKey, adminSession())

	called := false
	handler := RBAC(domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRBAC_Forbids(t *testing.T) {
	kasir := adminSession()
	kasir.Role = domain.RoleKasir

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionContextKey, kasir)

	handler := RBAC(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestGuard_AnonymousProtectedRedirectsToLogin(t *testing.T) {
	cache, _ := newTestCache(nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/home", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Guard(routeguard.New(nil), cache)(func(c echo.Context) error {
		t.Fatalf("should not render a protected page")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?from=%2Fadmin%2Fhome" {
		t.Fatalf("redirect location = %q", loc)
	}
}

func TestGuard_AuthenticatedOwnSectionRenders(t *testing.T) {
	cache, _ := newTestCache(map[string]domain.Session{"tok-1": adminSession()})

	e := echo.New()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/admin/home", nil), "tok-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Guard(routeguard.New(nil), cache)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("page not rendered for its own role")
	}
}

func TestGuard_AuthenticatedLoginBouncesHome(t *testing.T) {
	cache, _ := newTestCache(map[string]domain.Session{"tok-1": adminSession()})

	e := echo.New()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/login", nil), "tok-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Guard(routeguard.New(nil), cache)(func(c echo.Context) error {
		t.Fatalf("login page should not render for an authenticated visitor")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get("Location"); loc != routeguard.AdminHome {
		t.Fatalf("redirect location = %q", loc)
	}
}

func TestGuard_ServesCachedSessionWhenBackendRejects(t *testing.T) {
	// Optimistic read: the cached entry renders the page even though the
	// backend would reject the token now. The inline revalidation then
	// clears the entry, so the next request redirects.
	cache, store := newTestCache(nil)
	_ = store.Set(context.Background(), "tok-old", adminSession())

	e := echo.New()
	mw := Guard(routeguard.New(nil), cache)

	req := withCookie(httptest.NewRequest(http.MethodGet, "/admin/home", nil), "tok-old")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	rendered := false
	if err := mw(func(c echo.Context) error {
		rendered = true
		return c.NoContent(http.StatusOK)
	})(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !rendered {
		t.Fatalf("cached session should render optimistically")
	}

	req = withCookie(httptest.NewRequest(http.MethodGet, "/admin/home", nil), "tok-old")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := mw(func(c echo.Context) error {
		t.Fatalf("revalidation should have cleared the entry")
		return nil
	})(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect after revalidation, got %d", rec.Code)
	}
}
