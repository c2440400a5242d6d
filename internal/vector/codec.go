// Package vector defines the binary encoding used for persisted embeddings
// and the similarity math used by search. The byte layout is part of the
// storage contract: a version byte, the dimension as little-endian uint32,
// then the components as little-endian IEEE 754 float32 values.
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// codecVersion is bumped whenever the byte layout changes.
const codecVersion = 1

// headerSize is the version byte plus the dimension prefix.
const headerSize = 1 + 4

var (
	// ErrCorrupt marks a blob that cannot be decoded into a vector.
	ErrCorrupt = errors.New("corrupt vector encoding")
)

// Encode serializes a vector into the versioned binary layout.
func Encode(vec []float32) []byte {
	buf := make([]byte, headerSize+4*len(vec))
	buf[0] = codecVersion
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[headerSize+4*i:], math.Float32bits(v))
	}
	return buf
}

// Decode parses a blob produced by Encode, validating the version, the
// declared dimension and the exact byte length.
func Decode(blob []byte) ([]float32, error) {
	if len(blob) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(blob))
	}
	if blob[0] != codecVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, blob[0])
	}
	dim := binary.LittleEndian.Uint32(blob[1:5])
	if want := headerSize + 4*int(dim); len(blob) != want {
		return nil, fmt.Errorf("%w: dimension %d requires %d bytes, got %d", ErrCorrupt, dim, want, len(blob))
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[headerSize+4*i:]))
	}
	return vec, nil
}

// Cosine returns the cosine similarity of two vectors. A zero-norm vector or
// a dimension mismatch scores 0 rather than erroring; search treats such
// candidates as simply irrelevant.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
