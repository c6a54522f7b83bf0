package backend

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/lox/cfrengine/internal/cfr"
)

// LevelDBStore persists one player's table as a goleveldb database,
// keyed by the 8-byte little-endian infoset hash with length-prefixed
// f32 values. Grounded on the reservoir-sample LevelDB buffer pattern
// from the retrieved go-cfr framework: open once at construction, one
// handle for the table's lifetime, Close releases it.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDBStore opens (creating if absent) a goleveldb database at
// path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(key cfr.InfoSetHash) ([]float32, bool) {
	raw, err := s.db.Get(EncodeKey(uint64(key)), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false
		}
		panic("backend: leveldb get failed: " + err.Error())
	}
	values, err := DecodeValues(raw)
	if err != nil {
		panic("backend: " + err.Error())
	}
	return values, true
}

func (s *LevelDBStore) Put(key cfr.InfoSetHash, values []float32) error {
	return s.db.Put(EncodeKey(uint64(key)), EncodeValues(values), nil)
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
