// Package uploads stores transaction receipt files on a filesystem
// abstraction: the real disk in production, an in-memory filesystem in tests.
package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store is an afero-backed attachment store rooted at a single directory.
type Store struct {
	fs   afero.Fs
	root string
}

// New returns a Store over fs rooted at root, creating root if needed.
func New(fs afero.Fs, root string) (*Store, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{fs: fs, root: root}, nil
}

// NewOnDisk returns a Store over the host filesystem.
func NewOnDisk(root string) (*Store, error) {
	return New(afero.NewOsFs(), root)
}

// Save writes r under name and returns the stored reference. The name is
// flattened to its base so a crafted filename cannot escape the root.
func (s *Store) Save(_ context.Context, name string, r io.Reader) (string, error) {
	ref := filepath.Base(name)
	if ref == "." || ref == string(filepath.Separator) {
		return "", fmt.Errorf("invalid attachment name %q", name)
	}

	f, err := s.fs.OpenFile(filepath.Join(s.root, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(filepath.Join(s.root, ref))
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close attachment: %w", err)
	}
	return ref, nil
}

// Open returns the stored file for ref.
func (s *Store) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	f, err := s.fs.Open(filepath.Join(s.root, filepath.Base(ref)))
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return f, nil
}
