// Package mathutil holds the special functions and Kaiser window formulas
// used by filter design.
package mathutil

import "math"

// Polynomial fits for I0 (Abramowitz & Stegun 9.8.1 and 9.8.2).
var (
	i0Small = [...]float64{1.0, 3.5156229, 3.0899424, 1.2067492, 0.2659732, 0.360768e-1, 0.45813e-2}
	i0Large = [...]float64{
		0.39894228, 0.1328592e-1, 0.225319e-2, -0.157565e-2, 0.916281e-2,
		-0.2057706e-1, 0.2635537e-1, -0.1647633e-1, 0.392377e-2,
	}
)

// i0Split is the argument where the small-x fit hands over to the asymptotic one.
const i0Split = 3.75

// horner evaluates c[0] + c[1]*t + c[2]*t^2 + ...
func horner(c []float64, t float64) float64 {
	var r float64
	for i := len(c) - 1; i >= 0; i-- {
		r = r*t + c[i]
	}
	return r
}

// BesselI0 returns the modified Bessel function of the first kind, order
// zero. Relative error is below 2e-7 over the whole real line.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < i0Split {
		t := ax / i0Split
		return horner(i0Small[:], t*t)
	}
	return math.Exp(ax) * horner(i0Large[:], i0Split/ax) / math.Sqrt(ax)
}
