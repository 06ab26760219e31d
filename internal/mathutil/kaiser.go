package mathutil

import "math"

// Kaiser & Schafer attenuation bands, in dB.
const (
	kaiserAttLinear = 50.0
	kaiserAttMin    = 21.0
	kaiserAttPoly   = 60.0
)

// Filter length limits in taps.
const (
	minFilterLength = 3
	maxFilterLength = 8191
)

// Transition band floors. trBwRealm is the narrowest band covered by the
// first row of kaiserPoly; each following row doubles it.
const (
	defaultTransitionBW = 0.01
	minTransitionBW     = 0.0001
	trBwRealm           = 0.0005
)

// kaiserPoly holds cubic fits beta(att) for increasingly wide transition
// bands, as in libsoxr's lsx_kaiser_beta.
var kaiserPoly = [...][4]float64{
	{-6.784957e-10, 1.02856e-05, 0.1087556, -0.8988365 + .001},
	{-6.897885e-10, 1.027433e-05, 0.10876, -0.8994658 + .002},
	{-1.000683e-09, 1.030092e-05, 0.1087677, -0.9007898 + .003},
	{-3.654474e-10, 1.040631e-05, 0.1087085, -0.8977766 + .006},
	{8.106988e-09, 6.983091e-06, 0.1091387, -0.9172048 + .015},
	{9.519571e-09, 7.272678e-06, 0.1090068, -0.9140768 + .025},
	{-5.626821e-09, 1.342186e-05, 0.1083999, -0.9065452 + .05},
	{-9.965946e-08, 5.073548e-05, 0.1040967, -0.7672778 + .085},
	{1.604808e-07, -5.856462e-05, 0.1185998, -1.34824 + .1},
	{-1.511964e-07, 6.363034e-05, 0.1064627, -0.9876665 + .18},
}

// KaiserBeta returns the Kaiser window beta for a stopband attenuation in dB
// using Kaiser & Schafer's empirical formula.
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttLinear:
		return 0.1102 * (attenuation - 8.7)
	case attenuation >= kaiserAttMin:
		d := attenuation - kaiserAttMin
		return 0.5842*math.Pow(d, 0.4) + 0.07886*d
	default:
		return 0
	}
}

// KaiserBetaWithTrBw refines KaiserBeta for attenuations of 60 dB and more
// by interpolating between fits tuned to the transition bandwidth trBw.
func KaiserBetaWithTrBw(attenuation, trBw float64) float64 {
	if attenuation < kaiserAttPoly {
		return KaiserBeta(attenuation)
	}

	realm := math.Log2(max(trBw, minTransitionBW) / trBwRealm)
	last := len(kaiserPoly) - 1
	i0 := min(max(int(realm), 0), last)
	i1 := min(i0+1, last)

	eval := func(c [4]float64) float64 {
		return ((c[0]*attenuation+c[1])*attenuation+c[2])*attenuation + c[3]
	}
	b0, b1 := eval(kaiserPoly[i0]), eval(kaiserPoly[i1])
	frac := max(realm-float64(int(realm)), 0)
	return b0 + (b1-b0)*frac
}

// KaiserAttenuation approximately inverts KaiserBeta for beta above 0.1.
func KaiserAttenuation(beta float64) float64 {
	if beta < 0.1 {
		return 0
	}
	return 8.7 + beta/0.1102
}

// EstimateFilterLength returns the odd tap count Kaiser's formula gives for
// attenuation dB over a transition band of transitionBW (fraction of the
// sample rate), clamped to [3, 8191].
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}

	taps := int(math.Ceil((attenuation - 8) / (2.285 * 2 * math.Pi * transitionBW)))
	if taps%2 == 0 {
		taps++
	}
	return min(max(taps, minFilterLength), maxFilterLength)
}
