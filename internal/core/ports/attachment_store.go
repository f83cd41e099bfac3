package ports

import (
	"context"
	"io"
)

// AttachmentStore persists transaction receipt files. Save returns the stored
// reference recorded on the transaction.
type AttachmentStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
