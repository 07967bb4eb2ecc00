// Package attachments stores receipt files (photos, documents) on local
// disk. A stored receipt is referred to by an opaque URI recorded in a
// debt's payment history.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const uriScheme = "comprobante://"

var (
	ErrNotAReceiptURI = errors.New("not a receipt uri")
	ErrReceiptMissing = errors.New("receipt file not found")

	imageExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)$`)
)

// Store writes receipts under a single directory, one file per receipt,
// named by a random UUID plus the original extension.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save persists the receipt content and returns its opaque URI.
// The original filename only contributes its extension.
func (s *Store) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write receipt file: %w", err)
	}

	slog.InfoContext(ctx, "Receipt stored", "name", name, "bytes", n)
	return uriScheme + name, nil
}

// URI builds the opaque reference for a stored file name.
func URI(name string) string {
	return uriScheme + name
}

// Resolve maps a receipt URI back to the stored file path.
func (s *Store) Resolve(uri string) (string, error) {
	name, ok := strings.CutPrefix(uri, uriScheme)
	if !ok || name == "" || name != filepath.Base(name) {
		return "", ErrNotAReceiptURI
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrReceiptMissing
	}
	return path, nil
}

// Remove deletes the stored receipt for a URI. Used to roll back an upload
// whose payment was rejected, so failed attempts leave no orphan files.
func (s *Store) Remove(uri string) error {
	path, err := s.Resolve(uri)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Open returns the stored receipt content for a URI.
func (s *Store) Open(uri string) (io.ReadCloser, error) {
	path, err := s.Resolve(uri)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// IsImage reports whether the receipt reference looks like an image the
// history view can preview. Matches the extension check the payment screen
// always used.
func IsImage(uri string) bool {
	return imageExt.MatchString(uri)
}
