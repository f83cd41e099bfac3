// Package session owns the answer to "who is the current user". Reads are
// served from a fast store when possible and reconciled against the
// authoritative verifier, either synchronously (forced reads, explicit
// authentication checks) or through non-blocking background revalidation.
//
// The store entry is a hint: it drives routing and rendering, never server-side
// authorization. The verifier is the source of truth, and any verification
// failure is treated as "not authenticated" (fail-closed).
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/catattrans/umkm-api/internal/core/domain"
)

// Store is the cache slot behind the session cache: one entry per session key.
// Implementations: Redis in production, an in-memory map in tests.
type Store interface {
	Get(ctx context.Context, key string) (domain.Session, bool, error)
	Set(ctx context.Context, key string, s domain.Session) error
	Clear(ctx context.Context, key string) error
}

// Authenticator exchanges credentials for a session and its key (the opaque
// token the browser carries afterwards).
type Authenticator interface {
	Exchange(ctx context.Context, username, password string) (domain.Session, string, error)
}

// Verifier performs the authoritative identity check for a session key.
type Verifier interface {
	Verify(ctx context.Context, key string) (domain.Session, error)
}

// Revoker invalidates a session key server-side. Logout treats failures as
// best-effort: they are logged, never surfaced.
type Revoker interface {
	Revoke(ctx context.Context, key string) error
}

// Runner executes background revalidation jobs. The production implementation
// is the sharded dispatcher in infrastructure/queue; the default spawns a
// goroutine per job.
type Runner interface {
	Run(key string, job func(ctx context.Context))
}

// goRunner is the fallback Runner: fire-and-forget goroutines.
type goRunner struct{}

func (goRunner) Run(_ string, job func(ctx context.Context)) {
	go job(context.Background())
}

// Listener observes cache mutations. ok=false signals the entry was cleared.
type Listener func(key string, s domain.Session, ok bool)

// Cache mediates between the store and the verifier.
type Cache struct {
	store    Store
	authn    Authenticator
	verifier Verifier
	revoker  Revoker
	runner   Runner
	log      zerolog.Logger

	mu        sync.Mutex
	revTokens map[string]uint64
	listeners []Listener
}

// Option customises a Cache at construction time.
type Option func(*Cache)

// WithRunner routes background revalidation through r instead of bare goroutines.
func WithRunner(r Runner) Option {
	return func(c *Cache) { c.runner = r }
}

// New builds a Cache. revoker may be nil when the backend has no server-side
// revocation; logout then only clears the store.
func New(store Store, authn Authenticator, verifier Verifier, revoker Revoker, log zerolog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:     store,
		authn:     authn,
		verifier:  verifier,
		revoker:   revoker,
		runner:    goRunner{},
		log:       log,
		revTokens: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a mutation listener and returns its removal func.
func (c *Cache) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
	idx := len(c.listeners) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.listeners[idx] = nil
	}
}

// Login exchanges credentials and, on success only, stores the session.
// Failures come back as domain.ErrInvalidCredentials (user-correctable) or
// domain.ErrServiceUnavailable (transient backend fault); nothing panics or
// leaks past this boundary.
func (c *Cache) Login(ctx context.Context, username, password string) (domain.Session, string, error) {
	s, key, err := c.authn.Exchange(ctx, username, password)
	if err != nil {
		return domain.Session{}, "", err
	}
	c.set(ctx, key, s)
	return s, key, nil
}

// Logout best-effort revokes the key, then unconditionally clears the cache
// entry. The cache is guaranteed empty on return regardless of the network
// outcome.
func (c *Cache) Logout(ctx context.Context, key string) {
	if c.revoker != nil {
		if err := c.revoker.Revoke(ctx, key); err != nil {
			c.log.Warn().Err(err).Msg("session revoke failed, clearing cache anyway")
		}
	}
	c.clear(ctx, key)
}

// CurrentUser resolves the session for key.
//
// force=false: a structurally valid cached entry is returned immediately and a
// background verification is scheduled to keep it in sync with server-side
// changes. Otherwise the call degrades to a synchronous verification.
//
// force=true: always a synchronous verification; the cache afterwards reflects
// exactly the remote result (set on success, cleared on failure).
func (c *Cache) CurrentUser(ctx context.Context, key string, force bool) (domain.Session, bool) {
	if key == "" {
		return domain.Session{}, false
	}

	if !force {
		s, ok, err := c.store.Get(ctx, key)
		if err != nil {
			c.log.Debug().Err(err).Msg("session store read failed, falling back to verification")
		} else if ok && s.Valid() {
			c.scheduleRevalidation(key)
			return s, true
		}
	}

	return c.verifyAndReconcile(ctx, key)
}

// IsAuthenticated is the explicit authoritative check: true iff verification
// succeeds right now. It never trusts the cache alone.
func (c *Cache) IsAuthenticated(ctx context.Context, key string) bool {
	_, ok := c.verifyAndReconcile(ctx, key)
	return ok
}

// Invalidate is the clearing hook for the surrounding HTTP layer: any 401/403
// from any API call is an implicit logout signal and must empty the cache.
func (c *Cache) Invalidate(key string) {
	c.clear(context.Background(), key)
}

func (c *Cache) verifyAndReconcile(ctx context.Context, key string) (domain.Session, bool) {
	if key == "" {
		return domain.Session{}, false
	}
	s, err := c.verifier.Verify(ctx, key)
	if err != nil || !s.Valid() {
		c.clear(ctx, key)
		return domain.Session{}, false
	}
	c.set(ctx, key, s)
	return s, true
}

// scheduleRevalidation fires one non-blocking identity re-check. Each schedule
// bumps the per-key token; a completing job applies its result only when it is
// still the latest. Synchronous writes and clears bump the same token (see
// advance), so a slow stale response can never overwrite a newer result,
// whether that result came from another schedule or from a forced
// verification.
func (c *Cache) scheduleRevalidation(key string) {
	token := c.advance(key)

	c.runner.Run(key, func(ctx context.Context) {
		s, err := c.verifier.Verify(ctx, key)
		if !c.isLatest(key, token) {
			return
		}
		if err != nil || !s.Valid() {
			// Cleared silently; the next read re-verifies synchronously.
			c.clear(ctx, key)
			return
		}
		c.set(ctx, key, s)
	})
}

// advance bumps the revalidation token for key and returns the new value.
// Anything scheduled under an older token is thereby superseded.
func (c *Cache) advance(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revTokens[key]++
	return c.revTokens[key]
}

func (c *Cache) isLatest(key string, token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revTokens[key] == token
}

func (c *Cache) set(ctx context.Context, key string, s domain.Session) {
	c.advance(key)
	if err := c.store.Set(ctx, key, s); err != nil {
		c.log.Warn().Err(err).Msg("session store write failed")
	}
	c.notify(key, s, true)
}

func (c *Cache) clear(ctx context.Context, key string) {
	if key == "" {
		return
	}
	c.advance(key)
	if err := c.store.Clear(ctx, key); err != nil {
		c.log.Warn().Err(err).Msg("session store clear failed")
	}
	c.notify(key, domain.Session{}, false)
}

func (c *Cache) notify(key string, s domain.Session, ok bool) {
	c.mu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		if l != nil {
			l(key, s, ok)
		}
	}
}
