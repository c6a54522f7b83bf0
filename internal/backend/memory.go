package backend

import "github.com/lox/cfrengine/internal/cfr"

// MemoryStore is a flat in-memory map from infoset hash to value vector.
// It implements cfr.Store and is driven by exactly one Owner goroutine,
// so it carries no locking of its own -- the single-writer discipline
// the owner's request channel already enforces makes one unnecessary.
type MemoryStore struct {
	entries map[cfr.InfoSetHash][]float32
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[cfr.InfoSetHash][]float32)}
}

func (s *MemoryStore) Get(key cfr.InfoSetHash) ([]float32, bool) {
	values, ok := s.entries[key]
	return values, ok
}

func (s *MemoryStore) Put(key cfr.InfoSetHash, values []float32) error {
	s.entries[key] = values
	return nil
}

// Close is a no-op: a MemoryStore owns no external resources.
func (s *MemoryStore) Close() error {
	return nil
}

// Len reports how many infosets are populated, for tests and metrics.
func (s *MemoryStore) Len() int {
	return len(s.entries)
}
