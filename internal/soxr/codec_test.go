package soxr

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode_IntegerScaling(t *testing.T) {
	ne := binary.NativeEndian

	b16 := make([]byte, 6)
	ne.PutUint16(b16[0:], uint16(0x8000)) // -32768
	ne.PutUint16(b16[2:], uint16(16384))
	ne.PutUint16(b16[4:], uint16(math.MaxInt16))

	got16 := make([]float64, 3)
	decode(got16, b16, Int16I, layout{step: 1})
	assert.InDeltaSlice(t, []float64{-1, 0.5, 32767.0 / 32768}, got16, 1e-12)

	b32 := make([]byte, 8)
	ne.PutUint32(b32[0:], uint32(1<<30))
	ne.PutUint32(b32[4:], 0x80000000)

	got32 := make([]float64, 2)
	decode(got32, b32, Int32S, layout{step: 1})
	assert.InDeltaSlice(t, []float64{0.5, -1}, got32, 1e-12)
}

func TestDecode_InterleavedLayout(t *testing.T) {
	b := make([]byte, 8*6)
	for i := range 6 {
		binary.NativeEndian.PutUint64(b[8*i:], math.Float64bits(float64(i)))
	}

	// Channel 1 of 3.
	got := make([]float32, 2)
	decode(got, b, Float64I, layout{index: 1, step: 3})
	assert.Equal(t, []float32{1, 4}, got)
}

func TestEncode_Int32Clipping(t *testing.T) {
	dst := make([]byte, 12)
	clips := encode(dst, []float64{1.0, -1.0, 0.25}, Int32I, layout{step: 1}, 1)

	ne := binary.NativeEndian
	assert.Equal(t, int32(math.MaxInt32), int32(ne.Uint32(dst[0:])))
	assert.Equal(t, int32(math.MinInt32), int32(ne.Uint32(dst[4:])))
	assert.Equal(t, int32(1<<29), int32(ne.Uint32(dst[8:])))
	assert.Equal(t, int64(1), clips)
}

func TestEncode_FloatGain(t *testing.T) {
	dst := make([]byte, 8)
	clips := encode(dst, []float32{0.25, -2}, Float32S, layout{step: 1}, 2)

	assert.Zero(t, clips)
	assert.Equal(t, []float32{0.5, -4}, bytesFloat32(dst))
}
