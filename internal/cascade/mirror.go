package cascade

import "io"

// Mirror is a storage backend for archived gallery submissions.
// Keys are slash-separated, e.g. "2026-01-18/style.css".
type Mirror interface {
	// PutObject stores an object under key. Overwrites any existing object.
	// size is the number of bytes that will be read from r.
	PutObject(key string, r io.Reader, size int64) error

	// GetObject retrieves an object by key and writes it to w.
	GetObject(key string, w io.Writer) error

	// ValidateSetup verifies that the mirror is accessible and properly
	// configured.
	ValidateSetup() error
}
