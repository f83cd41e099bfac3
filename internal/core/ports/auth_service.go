package ports

import (
	"context"
	"time"

	"github.com/catattrans/umkm-api/internal/core/domain"
)

// AuthService implements the credential and identity operations behind the
// session cache: it is the Authenticator, Verifier, and Revoker in one.
type AuthService interface {
	// Exchange validates credentials and mints a session token. Bad
	// credentials map to domain.ErrInvalidCredentials; backend faults to
	// domain.ErrServiceUnavailable.
	Exchange(ctx context.Context, username, password string) (domain.Session, string, error)
	// Verify is the authoritative identity check for a token.
	Verify(ctx context.Context, token string) (domain.Session, error)
	// Revoke blacklists a token for its remaining lifetime.
	Revoke(ctx context.Context, token string) error
	// ChangePassword rotates a user's password and marks the account as no
	// longer requiring the first-login password change.
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// TokenBlacklist stores revoked token IDs until they would have expired anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
