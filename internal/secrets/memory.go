package secrets

import (
	"context"
	"sync"
)

// MemorySink is an in-memory Sink for tests.
type MemorySink struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{values: make(map[string]string)}
}

func (s *MemorySink) Put(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

// Get returns a stored value for assertions.
func (s *MemorySink) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of stored secrets.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
