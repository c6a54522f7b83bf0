package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/cfrengine/internal/cfr"
)

func TestMemoryStorePutGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	key := cfr.InfoSetHash(42)
	values := []float32{1, 2, 3}

	_, ok := s.Get(key)
	assert.False(t, ok)

	assert.NoError(t, s.Put(key, values))

	got, ok := s.Get(key)
	assert.True(t, ok)
	assert.Equal(t, values, got)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreCloseIsNoOp(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Close())
}
