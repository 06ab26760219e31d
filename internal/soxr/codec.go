package soxr

import (
	"encoding/binary"
	"math"

	"github.com/tphakala/go-swresample/internal/simdops"
)

const (
	int16Scale = 1 << 15
	int32Scale = 1 << 31
)

// layout locates one channel inside a caller buffer: sample k of the channel
// lives at element k*step+index.
type layout struct {
	index int
	step  int
}

func (l layout) offset(k, bps int) int {
	return (k*l.step + l.index) * bps
}

// decode converts len(dst) samples of one channel from src.
func decode[F simdops.Float](dst []F, src []byte, dt Datatype, l layout) {
	bps := dt.BytesPerSample()
	ne := binary.NativeEndian

	switch dt.encoding() {
	case Float32I:
		for k := range dst {
			dst[k] = F(math.Float32frombits(ne.Uint32(src[l.offset(k, bps):])))
		}
	case Float64I:
		for k := range dst {
			dst[k] = F(math.Float64frombits(ne.Uint64(src[l.offset(k, bps):])))
		}
	case Int32I:
		for k := range dst {
			dst[k] = F(float64(int32(ne.Uint32(src[l.offset(k, bps):]))) / int32Scale)
		}
	case Int16I:
		for k := range dst {
			dst[k] = F(float64(int16(ne.Uint16(src[l.offset(k, bps):]))) / int16Scale)
		}
	}
}

// encode writes src into one channel of dst, applying gain. Integer outputs
// are rounded and clipped; the number of clipped samples is returned.
func encode[F simdops.Float](dst []byte, src []F, dt Datatype, l layout, gain float64) int64 {
	bps := dt.BytesPerSample()
	ne := binary.NativeEndian
	var clips int64

	switch dt.encoding() {
	case Float32I:
		for k, v := range src {
			ne.PutUint32(dst[l.offset(k, bps):], math.Float32bits(float32(float64(v)*gain)))
		}
	case Float64I:
		for k, v := range src {
			ne.PutUint64(dst[l.offset(k, bps):], math.Float64bits(float64(v)*gain))
		}
	case Int32I:
		for k, v := range src {
			s, clipped := quantize(float64(v)*gain*int32Scale, math.MinInt32, math.MaxInt32)
			if clipped {
				clips++
			}
			ne.PutUint32(dst[l.offset(k, bps):], uint32(int32(s)))
		}
	case Int16I:
		for k, v := range src {
			s, clipped := quantize(float64(v)*gain*int16Scale, math.MinInt16, math.MaxInt16)
			if clipped {
				clips++
			}
			ne.PutUint16(dst[l.offset(k, bps):], uint16(int16(s)))
		}
	}
	return clips
}

func quantize(v float64, lo, hi int64) (int64, bool) {
	r := math.Round(v)
	switch {
	case r > float64(hi):
		return hi, true
	case r < float64(lo):
		return lo, true
	}
	return int64(r), false
}
