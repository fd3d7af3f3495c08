// Package documents writes uploaded identity documents to a directory on
// the local filesystem.
package documents

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AadharSuffix is appended to the register number to name the stored
// Aadhar document: 20230010101-aadhar.pdf
const AadharSuffix = "-aadhar"

// allowedContentTypes is the upload allow-list.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// Allowed reports whether contentType may be uploaded.
func Allowed(contentType string) bool {
	return allowedContentTypes[contentType]
}

// FileName derives the stored filename from the register number and the
// client's original filename. Only the extension of the original name is
// kept ("" when it has none).
func FileName(registerNumber, originalName string) string {
	var ext string
	if originalName != "" {
		ext = filepath.Ext(filepath.Base(originalName))
	}
	return registerNumber + AadharSuffix + ext
}

// LocalStorage saves files under a single root directory.
type LocalStorage struct {
	root string
}

// NewLocalStorage makes sure root exists and returns a store writing into it.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		return nil, errors.New("documents: storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("documents: create root %s: %w", root, err)
	}
	return &LocalStorage{root: root}, nil
}

// Root returns the directory files are written to.
func (ls *LocalStorage) Root() string {
	return ls.root
}

// Remove deletes name from the root. A missing file is not an error.
func (ls *LocalStorage) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(ls.root, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("documents: remove %s: %w", name, err)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("documents: invalid file name %q", name)
	}
	return nil
}

// Save writes r to name under the root. An existing file with the same
// name is replaced. A partially written file is removed on failure.
func (ls *LocalStorage) Save(name string, r io.Reader) error {
	if err := checkName(name); err != nil {
		return err
	}

	dstPath := filepath.Join(ls.root, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("documents: create %s: %w", dstPath, err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		return fmt.Errorf("documents: write %s: %w", dstPath, err)
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return fmt.Errorf("documents: close %s: %w", dstPath, err)
	}

	return nil
}
