package mirror

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"cascadelog/internal/cascade"
)

// MemoryMirror is an in-memory Mirror for tests. Safe for concurrent use.
type MemoryMirror struct {
	name    string
	mu      sync.Mutex
	objects map[string][]byte
}

var _ cascade.Mirror = (*MemoryMirror)(nil)

// NewMemoryMirror creates an empty in-memory mirror.
func NewMemoryMirror(name string) *MemoryMirror {
	return &MemoryMirror{name: name, objects: make(map[string][]byte)}
}

func (m *MemoryMirror) PutObject(key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object data: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *MemoryMirror) GetObject(key string, w io.Writer) error {
	m.mu.Lock()
	data, ok := m.objects[key]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("object not found: %s", key)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write object data: %w", err)
	}
	return nil
}

func (m *MemoryMirror) ValidateSetup() error { return nil }

// Keys returns the stored object keys. Test helper.
func (m *MemoryMirror) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

// Object returns a stored object's bytes. Test helper.
func (m *MemoryMirror) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
