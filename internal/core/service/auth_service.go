package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
)

const minPasswordLen = 8

// AuthService implements credential exchange, token verification, revocation,
// and password changes. Tokens are HS256 JWTs carried in an HTTP-only cookie;
// the jti claim keys the revocation blacklist and the session cache.
type AuthService struct {
	users     ports.UserRepository
	blacklist ports.TokenBlacklist
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users ports.UserRepository, blacklist ports.TokenBlacklist, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, blacklist: blacklist, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Exchange validates credentials and mints a session token. A wrong username
// and a wrong password are indistinguishable to the caller; repository faults
// surface as domain.ErrServiceUnavailable, never as raw transport errors.
func (s *AuthService) Exchange(ctx context.Context, username, password string) (domain.Session, string, error) {
	if username == "" || password == "" {
		return domain.Session{}, "", domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Session{}, "", domain.ErrInvalidCredentials
		}
		return domain.Session{}, "", domain.ErrServiceUnavailable
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.Session{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.mintToken(user)
	if err != nil {
		return domain.Session{}, "", domain.ErrServiceUnavailable
	}

	return domain.SessionFromUser(user), token, nil
}

// Verify parses and validates a token, checks the revocation blacklist, and
// re-reads the account so role/name/password-status changes propagate. Every
// failure mode collapses to domain.ErrUnauthorized.
func (s *AuthService) Verify(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return domain.Session{}, domain.ErrUnauthorized
	}

	if jti, _ := claims["jti"].(string); jti != "" && s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, jti)
		if err == nil && revoked {
			return domain.Session{}, domain.ErrUnauthorized
		}
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return domain.Session{}, domain.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Session{}, domain.ErrUnauthorized
	}

	session := domain.SessionFromUser(user)
	if !session.Valid() {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return session, nil
}

// Revoke blacklists the token's jti for its remaining lifetime. Revoking an
// already-invalid token is not an error: logout must always settle.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if s.blacklist == nil {
		return nil
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil
	}

	ttl := s.tokenTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if remaining := time.Until(exp.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return s.blacklist.Revoke(ctx, jti, ttl)
}

// ChangePassword verifies the current password, stores the new hash, and
// clears the first-login flag.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	user.PasswordChanged = true
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *AuthService) mintToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"jti":  uuid.NewString(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) parseToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
