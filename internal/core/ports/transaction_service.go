package ports

import (
	"context"
	"io"
	"time"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/tabular"
)

// CreateTransactionInput is the cashier's entry form. Attachment is optional.
type CreateTransactionInput struct {
	Type            domain.TransactionType
	Channel         string
	Amount          int64
	TransactionDate time.Time
	Note            string
	CreatedBy       string

	AttachmentName string
	Attachment     io.Reader
}

// ListTransactionsInput runs the tabular query server-side and slices the
// result. Page/Size <= 0 disable slicing. A non-empty CreatedBy scopes the
// listing to one cashier's own entries.
type ListTransactionsInput struct {
	Query     tabular.Query
	Page      int
	Size      int
	CreatedBy string
}

// ListTransactionsResult is the sliced view plus display bookkeeping.
type ListTransactionsResult struct {
	Rows       []tabular.Row
	Fields     []tabular.Field
	Page       int
	Size       int
	TotalItems int
	TotalPages int
}

// TransactionService defines the bookkeeping use cases.
type TransactionService interface {
	Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error)
	Detail(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, input ListTransactionsInput) (*ListTransactionsResult, error)
	Delete(ctx context.Context, id string) error
	// ExportExcel writes the full (unsliced) filtered listing as a
	// spreadsheet and returns the suggested filename.
	ExportExcel(ctx context.Context, input ListTransactionsInput, w io.Writer) (string, error)
}
