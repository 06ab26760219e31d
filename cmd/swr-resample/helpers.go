package main

import (
	"encoding/binary"
	"fmt"
	"math"

	swresample "github.com/tphakala/go-swresample"
)

const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	u8Bias   = 128
	s64Scale = 0x1p63
)

// pcmScale returns the full-scale magnitude of a signed PCM word.
func pcmScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

func validBitDepth(bitDepth int) error {
	switch bitDepth {
	case bitsPerSample8, bitsPerSample16, bitsPerSample24, bitsPerSample32:
		return nil
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
}

// pcmToFloat normalizes a WAV sample of bitDepth to [-1, 1). 8-bit WAV data
// is unsigned.
func pcmToFloat(s, bitDepth int) float64 {
	if bitDepth == bitsPerSample8 {
		s -= u8Bias
	}
	return float64(s) / pcmScale(bitDepth)
}

// floatToPCM is the clipping inverse of pcmToFloat.
func floatToPCM(v float64, bitDepth int) int {
	scale := pcmScale(bitDepth)
	s := math.Round(v * scale)
	s = min(max(s, -scale), scale-1)
	if bitDepth == bitsPerSample8 {
		return int(s) + u8Bias
	}
	return int(s)
}

// sampleOffset locates sample i of channel ch inside a.
func sampleOffset(a *swresample.AudioData, ch, i int) (plane, off int) {
	if a.Planar {
		return ch, i * a.BPS
	}
	return 0, (i*a.Channels + ch) * a.BPS
}

// putSample stores a normalized value in a's sample format.
func putSample(a *swresample.AudioData, ch, i int, v float64) {
	plane, off := sampleOffset(a, ch, i)
	b := a.Planes[plane][off : off+a.BPS]
	switch a.Format.Packed() {
	case swresample.SampleFmtU8:
		b[0] = byte(min(max(math.Round(v*u8Bias)+u8Bias, 0), 255))
	case swresample.SampleFmtS16:
		binary.NativeEndian.PutUint16(b, uint16(int16(clampInt(v, bitsPerSample16))))
	case swresample.SampleFmtS32:
		binary.NativeEndian.PutUint32(b, uint32(int32(clampInt(v, bitsPerSample32))))
	case swresample.SampleFmtS64:
		binary.NativeEndian.PutUint64(b, uint64(clampInt64(v)))
	case swresample.SampleFmtFLT:
		binary.NativeEndian.PutUint32(b, math.Float32bits(float32(v)))
	case swresample.SampleFmtDBL:
		binary.NativeEndian.PutUint64(b, math.Float64bits(v))
	}
}

// getSample reads a sample from a, normalized to [-1, 1).
func getSample(a *swresample.AudioData, ch, i int) float64 {
	plane, off := sampleOffset(a, ch, i)
	b := a.Planes[plane][off : off+a.BPS]
	switch a.Format.Packed() {
	case swresample.SampleFmtU8:
		return (float64(b[0]) - u8Bias) / u8Bias
	case swresample.SampleFmtS16:
		return float64(int16(binary.NativeEndian.Uint16(b))) / pcmScale(bitsPerSample16)
	case swresample.SampleFmtS32:
		return float64(int32(binary.NativeEndian.Uint32(b))) / pcmScale(bitsPerSample32)
	case swresample.SampleFmtS64:
		return float64(int64(binary.NativeEndian.Uint64(b))) / s64Scale
	case swresample.SampleFmtFLT:
		return float64(math.Float32frombits(binary.NativeEndian.Uint32(b)))
	case swresample.SampleFmtDBL:
		return math.Float64frombits(binary.NativeEndian.Uint64(b))
	}
	return 0
}

func clampInt(v float64, bits int) int64 {
	scale := pcmScale(bits)
	return int64(min(max(math.Round(v*scale), -scale), scale-1))
}

func clampInt64(v float64) int64 {
	x := math.Round(min(max(v, -1), 1) * s64Scale)
	if x >= s64Scale {
		return math.MaxInt64
	}
	return int64(x)
}

// decodeFrames writes frames interleaved WAV samples into dst.
func decodeFrames(dst *swresample.AudioData, src []int, frames, bitDepth int) {
	for i := range frames {
		for ch := range dst.Channels {
			putSample(dst, ch, i, pcmToFloat(src[i*dst.Channels+ch], bitDepth))
		}
	}
}

// encodeFrames interleaves frames samples of src into dst as WAV words and
// returns the number of values written.
func encodeFrames(dst []int, src *swresample.AudioData, frames, bitDepth int) int {
	for i := range frames {
		for ch := range src.Channels {
			dst[i*src.Channels+ch] = floatToPCM(getSample(src, ch, i), bitDepth)
		}
	}
	return frames * src.Channels
}
