// Package backend provides persistence implementations for cfr.Store:
// a flat in-memory map for fast local runs, and a goleveldb-backed
// embedded key-value store for checkpointable, larger-than-memory
// tables. Only the goleveldb store encodes values in the wire format
// below; the in-memory store keeps the []float32 slices as given.
package backend

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeValues renders a regret or strategy vector in the wire format:
// a 4-byte little-endian length n, followed by n little-endian IEEE-754
// float32 values.
func EncodeValues(values []float32) []byte {
	buf := make([]byte, 4+4*len(values))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(values)))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4+4*i:8+4*i], math.Float32bits(v))
	}
	return buf
}

// DecodeValues parses the wire format produced by EncodeValues.
func DecodeValues(buf []byte) ([]float32, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("backend: value too short to contain a length prefix: %d bytes", len(buf))
	}
	n := binary.LittleEndian.Uint32(buf[0:4])
	want := 4 + 4*int(n)
	if len(buf) != want {
		return nil, fmt.Errorf("backend: value length prefix %d does not match buffer of %d bytes", n, len(buf))
	}
	values := make([]float32, n)
	for i := range values {
		bits := binary.LittleEndian.Uint32(buf[4+4*i : 8+4*i])
		values[i] = math.Float32frombits(bits)
	}
	return values, nil
}

// EncodeKey renders an infoset hash as an 8-byte little-endian key.
func EncodeKey(key uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, key)
	return buf
}

// DecodeKey parses the 8-byte little-endian key produced by EncodeKey.
func DecodeKey(buf []byte) (uint64, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("backend: key must be 8 bytes, got %d", len(buf))
	}
	return binary.LittleEndian.Uint64(buf), nil
}
