package ports

import (
	"context"
	"time"

	"github.com/catattrans/umkm-api/internal/core/domain"
)

// TransactionFilter narrows a transaction listing. Zero time bounds are open.
type TransactionFilter struct {
	CreatedBy string
	Type      domain.TransactionType
	From      time.Time
	To        time.Time
}

// TransactionRepository persists bookkeeping entries. Soft-deleted entries are
// excluded from List and FindByID.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
	SoftDelete(ctx context.Context, id string) error
}
