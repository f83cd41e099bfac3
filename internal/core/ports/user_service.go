package ports

import (
	"context"

	"github.com/catattrans/umkm-api/internal/core/domain"
)

// CreateUserInput carries the admin form for provisioning a cashier account.
// Role defaults to KASIR when empty.
type CreateUserInput struct {
	Name     string
	Username string
	Whatsapp string
	Password string
	Role     string
}

// UpdateUserInput edits an account. An empty Password leaves it unchanged; a
// non-empty one resets it and re-requires the first-login change.
type UpdateUserInput struct {
	ID       string
	Name     string
	Whatsapp string
	Password string
}

// UserService defines the admin-only account management use cases.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, input UpdateUserInput) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
}
