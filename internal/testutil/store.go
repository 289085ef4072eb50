package testutil

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory object store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Objects: make(map[string][]byte)}
}

// Put stores data under key and returns "/uploads/<key>".
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := "/uploads/" + key
	s.Objects[ref] = append([]byte(nil), data...)
	return ref, nil
}

// Delete drops ref and records the call.
func (s *MemoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, ref)
	s.Deleted = append(s.Deleted, ref)
	return nil
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}
