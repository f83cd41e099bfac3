package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "ADMIN"
	RoleKasir = "KASIR"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnauthorized = errors.New("unauthorized")
var ErrForbidden = errors.New("access forbidden")
var ErrServiceUnavailable = errors.New("service unavailable")

// ValidRole reports whether role is one of the two known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleKasir
}

// User models an account in the system: an admin managing the business, or a
// cashier (kasir) recording transactions.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Username        string    `json:"username"`
	Whatsapp        string    `json:"whatsapp,omitempty"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	PasswordChanged bool      `json:"passwordChanged"`
	IsDeleted       bool      `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Session is the authenticated identity seen by callers of the session cache.
// It is a read-only snapshot; the cache owns the authoritative copy.
type Session struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	PasswordChanged bool   `json:"passwordChanged"`
	Whatsapp        string `json:"whatsapp,omitempty"`
}

// Valid reports whether the session is structurally usable. Cached values
// failing this check are treated as absent.
func (s Session) Valid() bool {
	return s.ID != "" && s.Username != "" && ValidRole(s.Role)
}

// SessionFromUser projects the cacheable identity snapshot out of a user record.
func SessionFromUser(u *User) Session {
	return Session{
		ID:              u.ID,
		Username:        u.Username,
		Name:            u.Name,
		Role:            u.Role,
		PasswordChanged: u.PasswordChanged,
		Whatsapp:        u.Whatsapp,
	}
}
