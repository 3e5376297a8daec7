package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/ngabo-dev/salon-backend/pkg/salon"
)

// Store is an in-memory implementation of salon.BlobStore, for tests and
// local development.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory blob store.
func New() *Store {
	return &Store{
		objects: make(map[string][]byte),
	}
}

func (s *Store) Put(ctx context.Context, localPath, prefix string) (salon.ImageRef, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return salon.ImageRef{}, fmt.Errorf("failed to read staged file: %w", err)
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New(), filepath.Ext(localPath))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data

	return salon.ImageRef{Key: key, URL: "memory://" + key}, nil
}

// Delete removes an object. Deleting a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Has reports whether an object with the given key is stored.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
