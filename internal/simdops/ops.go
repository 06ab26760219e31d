// Package simdops binds the vector kernels of github.com/tphakala/simd to a
// single generic table so the resampling stages can run at either float32 or
// float64 precision.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the sample precision a stage runs at.
type Float interface {
	float32 | float64
}

// Ops is the kernel table for one precision.
type Ops[F Float] struct {
	// ConvolveValid writes len(signal)-len(kernel)+1 outputs to dst.
	ConvolveValid func(dst, signal, kernel []F)

	// ConvolveValidMulti runs ConvolveValid for every kernel over one signal.
	ConvolveValidMulti func(dsts [][]F, signal []F, kernels [][]F)

	// Interleave2 merges two phase outputs: dst = a0 b0 a1 b1 ...
	Interleave2 func(dst, a, b []F)

	// CubicInterpDot returns sum(hist[i] * (a[i] + x*(b[i] + x*(c[i] + x*d[i])))).
	CubicInterpDot func(hist, a, b, c, d []F, x F) F

	Sum   func(a []F) F
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		ConvolveValid:      f32.ConvolveValid,
		ConvolveValidMulti: f32.ConvolveValidMulti,
		Interleave2:        f32.Interleave2,
		CubicInterpDot:     f32.CubicInterpDot,
		Sum:                f32.Sum,
		Scale:              f32.Scale,
	}
	ops64 = Ops[float64]{
		ConvolveValid:      f64.ConvolveValid,
		ConvolveValidMulti: f64.ConvolveValidMulti,
		Interleave2:        f64.Interleave2,
		CubicInterpDot:     f64.CubicInterpDot,
		Sum:                f64.Sum,
		Scale:              f64.Scale,
	}
)

// For returns the shared table for F.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		return any(&ops32).(*Ops[F])
	default:
		return any(&ops64).(*Ops[F])
	}
}
