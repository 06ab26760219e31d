// Package testutil provides shared helpers for resampler and filter tests.
package testutil

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Sine returns n samples of a sine at freq Hz sampled at rate Hz.
func Sine(n int, freq, rate, amplitude float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return s
}

// RMS returns the root mean square of s, or 0 for an empty slice.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

// Float32Bytes encodes s as native-endian float32 samples.
func Float32Bytes(s []float64) []byte {
	b := make([]byte, 4*len(s))
	for i, v := range s {
		binary.NativeEndian.PutUint32(b[4*i:], math.Float32bits(float32(v)))
	}
	return b
}

// BytesFloat32 decodes native-endian float32 samples.
func BytesFloat32(b []byte) []float64 {
	s := make([]float64, len(b)/4)
	for i := range s {
		s[i] = float64(math.Float32frombits(binary.NativeEndian.Uint32(b[4*i:])))
	}
	return s
}

// Int16Bytes encodes s in [-1, 1) as native-endian int16 samples.
func Int16Bytes(s []float64) []byte {
	b := make([]byte, 2*len(s))
	for i, v := range s {
		q := max(min(math.Round(v*(1<<15)), math.MaxInt16), math.MinInt16)
		binary.NativeEndian.PutUint16(b[2*i:], uint16(int16(q)))
	}
	return b
}

// BytesInt16 decodes native-endian int16 samples to [-1, 1).
func BytesInt16(b []byte) []float64 {
	s := make([]float64, len(b)/2)
	for i := range s {
		s[i] = float64(int16(binary.NativeEndian.Uint16(b[2*i:]))) / (1 << 15)
	}
	return s
}

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	n := len(s)
	for i := range n / 2 {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertDCGain verifies that the coefficients sum to the expected DC gain.
func AssertDCGain(t *testing.T, coeffs []float64, expectedGain, tolerance float64) bool {
	t.Helper()
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	return assert.InDelta(t, expectedGain, sum, tolerance,
		"DC gain = %f, want %f", sum, expectedGain)
}

// AssertCenterIsMax verifies that the center element is the maximum value.
func AssertCenterIsMax(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice", msgAndArgs...)
	}
	center := len(s) / 2
	for i, v := range s {
		if v > s[center] {
			return assert.Fail(t, "center is not max",
				"s[%d]=%f > center s[%d]=%f", i, v, center, s[center])
		}
	}
	return true
}

// AssertRelativeError verifies |actual-expected|/|expected| <= tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertOddLength verifies that a slice has an odd length.
func AssertOddLength(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	return assert.Equal(t, 1, len(s)%2, "slice length %d is not odd", len(s))
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}
