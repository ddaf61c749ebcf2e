package mirror

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cascadelog/internal/cascade"
)

// FileSystemMirror stores archived submissions as plain files under a root
// directory, one subdirectory per day:
//
//	<root>/
//	  2026-01-18/
//	    index.html
//	    style.css
//	    script.js
type FileSystemMirror struct {
	name string
	root string
}

var _ cascade.Mirror = (*FileSystemMirror)(nil)

// NewFileSystemMirror creates a filesystem mirror rooted at the given path.
func NewFileSystemMirror(name, root string) (*FileSystemMirror, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror root: %w", err)
	}
	return &FileSystemMirror{name: name, root: root}, nil
}

// PutObject stores an object under key using atomic write (temp file + rename).
func (m *FileSystemMirror) PutObject(key string, r io.Reader, size int64) error {
	destPath := filepath.Join(m.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// GetObject retrieves an object by key and writes it to w.
func (m *FileSystemMirror) GetObject(key string, w io.Writer) error {
	srcPath := filepath.Join(m.root, filepath.FromSlash(key))
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object not found: %s", key)
		}
		return fmt.Errorf("failed to open object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the mirror root is an accessible directory.
func (m *FileSystemMirror) ValidateSetup() error {
	info, err := os.Stat(m.root)
	if err != nil {
		return fmt.Errorf("mirror root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mirror root is not a directory: %s", m.root)
	}
	return nil
}
