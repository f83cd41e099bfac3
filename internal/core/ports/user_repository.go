package ports

import (
	"context"

	"github.com/catattrans/umkm-api/internal/core/domain"
)

// UserFilter narrows a user listing. Empty fields match everything.
type UserFilter struct {
	Role   string
	Search string
}

// UserRepository persists accounts. Soft-deleted users are invisible to every
// method except Update.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SoftDelete(ctx context.Context, id string) error
}
