package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.75, 0, math.MaxFloat32}
	decoded, err := Decode(Encode(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, decoded)
}

func TestEncodeEmptyVector(t *testing.T) {
	decoded, err := Decode(Encode(nil))
	require.NoError(t, err)
	assert.Len(t, decoded, 0)
}

func TestDecodeRejectsTruncatedBlob(t *testing.T) {
	blob := Encode([]float32{1, 2, 3})
	_, err := Decode(blob[:len(blob)-2])
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeRejectsShortHeader(t *testing.T) {
	_, err := Decode([]byte{1, 0})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	blob := Encode([]float32{1})
	blob[0] = 9
	_, err := Decode(blob)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeRejectsDimensionMismatch(t *testing.T) {
	blob := Encode([]float32{1, 2})
	// Claim a larger dimension than the payload carries.
	blob[1] = 5
	_, err := Decode(blob)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineZeroNormAndMismatch(t *testing.T) {
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, Cosine([]float32{1, 1}, []float32{1, 1, 1}))
}
