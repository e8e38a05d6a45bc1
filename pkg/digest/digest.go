// Package digest computes the content digests downloads are verified against.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/glorpus-work/modlist/pkg/errors"
)

// SHA256 hashes files with SHA-256.
type SHA256 struct{}

// Digest returns the lowercase hex SHA-256 of the file at path.
func (SHA256) Digest(path string) (string, error) {
	return File(path)
}

// File returns the lowercase hex SHA-256 of the file at path.
// The file is streamed, so memory use does not grow with its size.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w: %w", errors.ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	return Reader(f)
}

// Reader returns the lowercase hex SHA-256 of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing: %w: %w", errors.ErrIO, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
