package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/catattrans/umkm-api/internal/core/domain"
)

type memStore struct {
	mu       sync.Mutex
	entries  map[string]domain.Session
	getErr   error
	setCalls int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]domain.Session)}
}

func (m *memStore) Get(_ context.Context, key string) (domain.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.Session{}, false, m.getErr
	}
	s, ok := m.entries[key]
	return s, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	m.entries[key] = s
	return nil
}

func (m *memStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memStore) snapshot(key string) (domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.entries[key]
	return s, ok
}

type stubVerifier struct {
	mu      sync.Mutex
	session domain.Session
	err     error
	calls   int
}

func (v *stubVerifier) set(s domain.Session, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.session, v.err = s, err
}

type stubAuthn struct {
	session domain.Session
	key     string
	err     error
}

func (a *stubAuthn) Exchange(context.Context, string, string) (domain.Session, string, error) {
	return a.session, a.key, a.err
}

type stubRevoker struct {
	err    error
	called bool
}

func (r *stubRevoker) Revoke(context.Context, string) error {
	r.called = true
	return r.err
}

// manualRunner queues jobs so tests decide when "background" work completes.
type manualRunner struct {
	jobs []func(ctx context.Context)
}

func (r *manualRunner) Run(_ string, job func(ctx context.Context)) {
	r.jobs = append(r.jobs, job)
}

func (r *manualRunner) drain() {
	for _, job := range r.jobs {
		job(context.Background())
	}
	r.jobs = nil
}

func adminSession() domain.Session {
	return domain.Session{ID: "1", Username: "admin", Name: "Admin", Role: domain.RoleAdmin, PasswordChanged: true}
}

func (v *stubVerifier) verify(_ context.Context, _ string) (domain.Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.session, v.err
}

type verifierFunc func(ctx context.Context, key string) (domain.Session, error)

func (f verifierFunc) Verify(ctx context.Context, key string) (domain.Session, error) {
	return f(ctx, key)
}

func newTestCache(store *memStore, v Verifier, authn Authenticator, revoker Revoker, runner Runner) *Cache {
	opts := []Option{}
	if runner != nil {
		opts = append(opts, WithRunner(runner))
	}
	return New(store, authn, v, revoker, zerolog.Nop(), opts...)
}

func TestCurrentUser_FastPathSchedulesRevalidation(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = adminSession()

	verifier := &stubVerifier{session: adminSession()}
	runner := &manualRunner{}
	c := newTestCache(store, verifierFunc(verifier.verify), nil, nil, runner)

	s, ok := c.CurrentUser(context.Background(), "tok", false)
	if !ok || s.ID != "1" {
		t.Fatalf("expected cached session, got %+v ok=%v", s, ok)
	}
	if verifier.calls != 0 {
		t.Fatalf("fast path must not verify synchronously (calls=%d)", verifier.calls)
	}
	if len(runner.jobs) != 1 {
		t.Fatalf("expected one scheduled background verification, got %d", len(runner.jobs))
	}

	// Background success overwrites the cache with the fresh identity.
	fresh := adminSession()
	fresh.Name = "Admin Baru"
	verifier.set(fresh, nil)
	runner.drain()
	got, _ := store.snapshot("tok")
	if got.Name != "Admin Baru" {
		t.Fatalf("background verification did not refresh cache: %+v", got)
	}
}

func TestCurrentUser_ForceAlwaysVerifies(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = adminSession()

	verifier := &stubVerifier{session: adminSession()}
	c := newTestCache(store, verifierFunc(verifier.verify), nil, nil, &manualRunner{})

	if _, ok := c.CurrentUser(context.Background(), "tok", true); !ok {
		t.Fatalf("force read should succeed")
	}
	if verifier.calls != 1 {
		t.Fatalf("force read must hit the verifier, calls=%d", verifier.calls)
	}

	// On remote failure the cache reflects exactly the remote result: cleared.
	verifier.set(domain.Session{}, errors.New("boom"))
	if _, ok := c.CurrentUser(context.Background(), "tok", true); ok {
		t.Fatalf("force read must fail closed")
	}
	if _, ok := store.snapshot("tok"); ok {
		t.Fatalf("cache must be cleared after failed forced verification")
	}
}

func TestCurrentUser_InvalidCachedShapeTreatedAsAbsent(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = domain.Session{ID: "1", Username: "x", Role: "SUPERVISOR"}

	verifier := &stubVerifier{session: adminSession()}
	c := newTestCache(store, verifierFunc(verifier.verify), nil, nil, &manualRunner{})

	s, ok := c.CurrentUser(context.Background(), "tok", false)
	if !ok || s.Role != domain.RoleAdmin {
		t.Fatalf("structurally invalid cache entry should force verification, got %+v", s)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected synchronous verification, calls=%d", verifier.calls)
	}
}

func TestCurrentUser_StoreErrorFallsBackToVerification(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("redis down")

	verifier := &stubVerifier{session: adminSession()}
	c := newTestCache(store, verifierFunc(verifier.verify), nil, nil, &manualRunner{})

	if _, ok := c.CurrentUser(context.Background(), "tok", false); !ok {
		t.Fatalf("store failure should not block a healthy verifier")
	}
	if verifier.calls != 1 {
		t.Fatalf("expected fallback verification")
	}
}

// A slow background response must never overwrite the result of a newer
// verification: only the latest scheduled token may apply.
func TestRevalidation_StaleResponseDropped(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = adminSession()

	verifier := &stubVerifier{session: adminSession()}
	runner := &manualRunner{}
	c := newTestCache(store, verifierFunc(verifier.verify), nil, nil, runner)

	// First optimistic read schedules job #1; do not run it yet.
	_, _ = c.CurrentUser(context.Background(), "tok", false)
	stale := runner.jobs
	runner.jobs = nil

	// Second read schedules job #2 and completes with fresh data.
	fresh := adminSession()
	fresh.Name = "Terbaru"
	verifier.set(fresh, nil)
	_, _ = c.CurrentUser(context.Background(), "tok", false)
	runner.drain()

	// Now the stale job completes with even older data; it must be a no-op.
	old := adminSession()
	old.Name = "Basi"
	verifier.set(old, nil)
	for _, job := range stale {
		job(context.Background())
	}

	got, _ := store.snapshot("tok")
	if got.Name != "Terbaru" {
		t.Fatalf("stale background result overwrote newer state: %+v", got)
	}
}

// A synchronous verification supersedes every background job scheduled before
// it, not just older scheduled jobs.
func TestRevalidation_StaleResponseLosesToForcedVerification(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = adminSession()

	verifier := &stubVerifier{session: adminSession()}
	runner := &manualRunner{}
	c := newTestCache(store, verifierFunc(verifier.verify), nil, nil, runner)

	// Optimistic read schedules a background job; hold it back.
	_, _ = c.CurrentUser(context.Background(), "tok", false)
	stale := runner.jobs
	runner.jobs = nil

	// Forced read completes synchronously with fresh data.
	fresh := adminSession()
	fresh.Name = "Terbaru"
	verifier.set(fresh, nil)
	if _, ok := c.CurrentUser(context.Background(), "tok", true); !ok {
		t.Fatalf("forced read should succeed")
	}

	// The held-back job now finishes with older data; it must be a no-op.
	old := adminSession()
	old.Name = "Basi"
	verifier.set(old, nil)
	for _, job := range stale {
		job(context.Background())
	}

	got, _ := store.snapshot("tok")
	if got.Name != "Terbaru" {
		t.Fatalf("stale background result overwrote forced verification: %+v", got)
	}
}

// Invalidate clears the entry and no in-flight job may resurrect it.
func TestRevalidation_StaleResponseLosesToInvalidate(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = adminSession()

	verifier := &stubVerifier{session: adminSession()}
	runner := &manualRunner{}
	c := newTestCache(store, verifierFunc(verifier.verify), nil, nil, runner)

	_, _ = c.CurrentUser(context.Background(), "tok", false)
	stale := runner.jobs
	runner.jobs = nil

	c.Invalidate("tok")

	for _, job := range stale {
		job(context.Background())
	}
	if _, ok := store.snapshot("tok"); ok {
		t.Fatalf("background job resurrected an invalidated session")
	}
}

func TestLogin_SuccessWritesCache(t *testing.T) {
	store := newMemStore()
	authn := &stubAuthn{session: adminSession(), key: "tok"}
	c := newTestCache(store, verifierFunc((&stubVerifier{}).verify), authn, nil, &manualRunner{})

	s, key, err := c.Login(context.Background(), "admin", "rahasia")
	if err != nil || key != "tok" || s.Username != "admin" {
		t.Fatalf("login: %+v %q %v", s, key, err)
	}
	if _, ok := store.snapshot("tok"); !ok {
		t.Fatalf("successful login must populate the cache")
	}
}

func TestLogin_FailureLeavesCacheUntouched(t *testing.T) {
	store := newMemStore()
	authn := &stubAuthn{err: domain.ErrInvalidCredentials}
	c := newTestCache(store, verifierFunc((&stubVerifier{}).verify), authn, nil, &manualRunner{})

	_, _, err := c.Login(context.Background(), "admin", "salah")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.setCalls != 0 {
		t.Fatalf("failed login must not write the cache")
	}
}

func TestLogout_ClearsEvenWhenRevokeFails(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = adminSession()
	revoker := &stubRevoker{err: errors.New("network")}
	c := newTestCache(store, verifierFunc((&stubVerifier{}).verify), nil, revoker, &manualRunner{})

	c.Logout(context.Background(), "tok")
	if !revoker.called {
		t.Fatalf("logout must attempt revocation")
	}
	if _, ok := store.snapshot("tok"); ok {
		t.Fatalf("cache must be empty after logout regardless of network outcome")
	}
}

func TestIsAuthenticated_NeverTrustsCacheAlone(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = adminSession()

	verifier := &stubVerifier{err: errors.New("expired")}
	c := newTestCache(store, verifierFunc(verifier.verify), nil, nil, &manualRunner{})

	if c.IsAuthenticated(context.Background(), "tok") {
		t.Fatalf("verification failed; a cached entry must not count")
	}
	if verifier.calls != 1 {
		t.Fatalf("expected an authoritative check")
	}
	if _, ok := store.snapshot("tok"); ok {
		t.Fatalf("failed check must clear the hint")
	}
}

func TestInvalidate_NotifiesSubscribers(t *testing.T) {
	store := newMemStore()
	store.entries["tok"] = adminSession()
	c := newTestCache(store, verifierFunc((&stubVerifier{}).verify), nil, nil, &manualRunner{})

	var cleared bool
	unsubscribe := c.Subscribe(func(key string, _ domain.Session, ok bool) {
		if key == "tok" && !ok {
			cleared = true
		}
	})
	defer unsubscribe()

	c.Invalidate("tok")
	if !cleared {
		t.Fatalf("subscriber not notified of clear")
	}
	if _, ok := store.snapshot("tok"); ok {
		t.Fatalf("invalidate must clear the entry")
	}
}
