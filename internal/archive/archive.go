// Package archive stores raw provider payloads in object storage.
package archive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNotConfigured is returned by stores that have no backing bucket.
var ErrNotConfigured = errors.New("archive not configured")

// KeyTimeLayout formats the timestamp segment of object keys.
const KeyTimeLayout = "20060102T150405Z"

// Store persists raw payloads.
type Store interface {
	// Put writes the payload under key.
	Put(ctx context.Context, key string, payload []byte) error
}

// Key builds the object key raw/{provider}/{city}/{timestamp}.json.
func Key(provider, city string, at time.Time) string {
	return fmt.Sprintf("raw/%s/%s/%s.json",
		strings.ToLower(provider),
		url.PathEscape(strings.ToLower(strings.TrimSpace(city))),
		at.UTC().Format(KeyTimeLayout))
}

// NoopStore drops every payload.
type NoopStore struct{}

// Put implements Store.
func (NoopStore) Put(context.Context, string, []byte) error { return nil }

// MemoryStore keeps payloads in memory. Used in tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key string, payload []byte) error {
	buf := make([]byte, len(payload))
	copy(buf, payload)

	s.mu.Lock()
	s.objects[key] = buf
	s.mu.Unlock()
	return nil
}

// Get returns a stored payload.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}

// Keys returns every stored key.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

var (
	_ Store = NoopStore{}
	_ Store = (*MemoryStore)(nil)
)
