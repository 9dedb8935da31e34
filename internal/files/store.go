// Package files implements the upload content store. Files are kept on
// disk under a single directory, keyed by their sanitized filename.
// A collision on the sanitized name silently overwrites previous content.
package files

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when the requested file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrUnsafeName is returned when a filename sanitizes to nothing.
	ErrUnsafeName = errors.New("unsafe filename")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Sanitize reduces a client-supplied filename to a safe single path
// element: path separators are stripped, anything outside [A-Za-z0-9_.-]
// becomes an underscore, and leading/trailing dots and underscores are
// trimmed. Returns ErrUnsafeName if nothing survives.
func Sanitize(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "", ErrUnsafeName
	}
	return name, nil
}

// Store persists uploaded file content on disk.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns the store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes data under the already-sanitized name, overwriting any
// existing content with that name.
func (s *Store) Save(name string, data []byte) error {
	if name != filepath.Base(name) {
		return ErrUnsafeName
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Path resolves name to an on-disk path, or ErrNotFound if the file does
// not exist. Names containing path separators never resolve.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", ErrNotFound
	}
	p := filepath.Join(s.dir, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return p, nil
}

// Read returns the content stored under name, or ErrNotFound.
func (s *Store) Read(name string) ([]byte, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}
