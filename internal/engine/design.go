package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-swresample/internal/filter"
	"github.com/tphakala/go-swresample/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

type polyphaseFilter struct {
	coeffs       []float64 // coeffs[tap*numPhases + phase]
	numPhases    int
	tapsPerPhase int
}

// designPolyphaseFilter builds the Kaiser prototype described by params and
// lays it out as a polyphase bank where each phase has unity DC gain.
func designPolyphaseFilter(params PolyphaseFilterParams) (*polyphaseFilter, error) {
	const minCutoff = 1e-6

	// soxr normalizes Nyquist to 1, the Kaiser designer to 0.5.
	cutoff := params.Fc / soxrToOurNormScale
	cutoff = math.Min(math.Max(cutoff, minCutoff), 0.499)

	prototype, err := filter.DesignLowPassFilter(filter.FilterParams{
		NumTaps:     params.TotalTaps,
		CutoffFreq:  cutoff,
		Attenuation: params.Attenuation,
		Gain:        1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to design prototype filter: %w", err)
	}

	numPhases := params.NumPhases
	if sum := f64.Sum(prototype); sum != 0 {
		f64.Scale(prototype, prototype, float64(numPhases)/sum)
	}

	coeffs := make([]float64, params.TapsPerPhase*numPhases)
	copy(coeffs, prototype)

	return &polyphaseFilter{
		coeffs:       coeffs,
		numPhases:    numPhases,
		tapsPerPhase: params.TapsPerPhase,
	}, nil
}

// findRationalApprox returns a phase count L and integer step with
// step/L close to 1/ratio. 80 phases is soxr's choice for CD to DAT.
func findRationalApprox(ratio float64) (numPhases, step int) {
	const (
		defaultPhases = 80
		minPhases     = 64
		maxPhases     = 256
	)

	inv := 1.0 / ratio
	bestL := defaultPhases
	bestStep := int(math.Round(inv * defaultPhases))
	bestErr := math.Abs(float64(bestStep)/defaultPhases - inv)

	for l := minPhases; l <= maxPhases && bestErr >= rationalApproxTolerance; l++ {
		candidate := int(math.Round(inv * float64(l)))
		if candidate <= 0 {
			continue
		}
		if e := math.Abs(float64(candidate)/float64(l) - inv); e < bestErr {
			bestL, bestStep, bestErr = l, candidate, e
		}
	}
	return bestL, bestStep
}

// InvFResp returns the normalized frequency at which a Kaiser-windowed
// lowpass with stopband attenuation a (dB) has dropped by drop dB.
// It mirrors soxr's lsx_inv_f_resp.
func InvFResp(drop, a float64) float64 {
	a = math.Min(math.Max(a, minAttenuation), maxAttenuation)

	x := ((sinePhiCoeffA3*a+sinePhiCoeffA2)*a+sinePhiCoeffA1)*a + sinePhiConstant
	linear := math.Exp(drop * math.Ln10 * dbToLinearFactor)

	s := linear
	if linear > halfAmplitude {
		s = 1 - linear
	}

	sinVal := math.Max(math.Sin(x*halfAmplitude), sineEpsilon)
	sinePow := math.Log(halfAmplitude) / math.Log(sinVal)
	x = math.Asin(math.Pow(s, 1.0/sinePow)) / x

	if linear > halfAmplitude {
		return x
	}
	return 1 - x
}

// PolyphaseFilterParams holds the derived design parameters for a
// polyphase stage. Frequencies use soxr's normalization (1.0 = input
// Nyquist) unless noted.
type PolyphaseFilterParams struct {
	NumPhases    int
	Ratio        float64 // stage output/input
	TotalIORatio float64 // chain input/output
	Attenuation  float64 // dB
	PassbandEnd  float64
	Rolloff      Rolloff

	Fp1   float64 // passband edge before rolloff compensation
	Fs1   float64 // stopband reference, 0.5
	FpRaw float64
	FsRaw float64

	Fp   float64
	Fs   float64
	TrBw float64 // per phase
	Fc   float64

	TotalTaps    int
	TapsPerPhase int
}

// ComputePolyphaseFilterParams derives cutoff and length for the fractional
// stage that follows the DFT pre-stage when upsampling, following soxr's
// cr.c and filter.c: Fs = 2 - (Fp1 + (Fs1 - Fp1) * 0.7).
//
// The passband edge is Spec.PassbandEnd of the input Nyquist and is pulled
// in by the rolloff compensation unless the spec asks for RolloffNone.
func ComputePolyphaseFilterParams(numPhases int, ratio, totalIORatio float64, spec Spec) PolyphaseFilterParams {
	p := PolyphaseFilterParams{
		NumPhases:    numPhases,
		Ratio:        ratio,
		TotalIORatio: totalIORatio,
		Attenuation:  spec.Attenuation(),
		PassbandEnd:  spec.passband(),
		Rolloff:      spec.Rolloff,
		Fs1:          nyquistFraction,
	}
	phases := float64(numPhases)

	p.Fp1 = totalIORatio * p.PassbandEnd
	p.FsRaw = imageRejectionFactor - (p.Fp1 + (p.Fs1-p.Fp1)*soxrUpsamplingFsCoeff)
	p.FpRaw = p.Fp1

	// Fp = Fs - (Fs - Fp) / (1 - inv_f_resp(drop, att)); a result outside
	// (0, Fs) leaves Fp1 in place.
	if spec.Rolloff != RolloffNone {
		inv := InvFResp(spec.Rolloff.drop(), p.Attenuation)
		if inv < invFRespThreshold {
			adjusted := p.FsRaw - (p.FsRaw-p.FpRaw)/(1.0-inv)
			if adjusted > 0 && adjusted < p.FsRaw {
				p.FpRaw = adjusted
			}
		}
	}

	p.Fp = p.FpRaw
	p.Fs = p.FsRaw

	const minTrBw = 0.001
	p.TrBw = transitionBandwidthHalf * (p.Fs - p.Fp) / phases
	p.TrBw = math.Min(p.TrBw, transitionBandwidthHalf*p.Fs/phases)
	p.TrBw = math.Max(p.TrBw, minTrBw)

	p.Fc = math.Max(p.Fs/phases-p.TrBw, minTrBw)

	p.TapsPerPhase, p.TotalTaps = polyphaseLength(numPhases, p.Attenuation, p.TrBw)
	return p
}

// ComputeDownsamplingFilterParams derives the bank for the polyphase stage of
// a downsampling chain. The stage runs from the input rate to twice the
// output rate and the 2:1 decimator behind it removes everything above the
// output Nyquist, so this filter only keeps the output passband clean:
//   - passband: Spec.PassbandEnd of the output Nyquist, Fp = PassbandEnd*ratio
//   - stopband: where content folds back below the output Nyquist at the
//     intermediate rate (3*ratio) or, when the stage upsamples, where input
//     images reach it (2 - ratio), whichever is lower
//
// ratio is output/input of the whole chain and must be below 1.
func ComputeDownsamplingFilterParams(numPhases int, ratio float64, spec Spec) PolyphaseFilterParams {
	p := PolyphaseFilterParams{
		NumPhases:    numPhases,
		Ratio:        decimationFactor * ratio,
		TotalIORatio: 1 / ratio,
		Attenuation:  spec.Attenuation(),
		PassbandEnd:  spec.passband(),
		Rolloff:      spec.Rolloff,
		Fs1:          nyquistFraction,
	}
	phases := float64(numPhases)

	p.Fp1 = p.PassbandEnd * ratio
	p.FpRaw = p.Fp1
	p.FsRaw = math.Min(foldbackStopFactor*ratio, imageRejectionFactor-ratio)
	p.Fp = p.FpRaw
	p.Fs = p.FsRaw

	p.TrBw = transitionBandwidthHalf * (p.Fs - p.Fp) / phases
	p.Fc = transitionBandwidthHalf * (p.Fs + p.Fp) / phases

	// Kaiser length at the input rate is the length of one phase.
	perPhase := mathutil.EstimateFilterLength(p.Attenuation, transitionBandwidthHalf*(p.Fs-p.Fp))
	p.TapsPerPhase = min(max(perPhase, minTapsPerPhase), (maxBankTaps+1)/numPhases)
	p.TotalTaps = numPhases*p.TapsPerPhase - 1
	return p
}

// polyphaseLength sizes the bank from the Kaiser estimate ceil(att/trBw + 1),
// capped per phase by attenuation band and by the designer's tap limit.
func polyphaseLength(numPhases int, attenuation, trBw float64) (tapsPerPhase, totalTaps int) {
	const designerLimit = 8191 - 1

	var maxTaps int
	switch {
	case attenuation < 110:
		maxTaps = 32
	case attenuation < 130:
		maxTaps = 64
	case attenuation < 160:
		maxTaps = 100
	default:
		maxTaps = (designerLimit + 1) / numPhases
	}

	ideal := int(math.Ceil(attenuation/trBw + 1))
	tapsPerPhase = (ideal + numPhases - 1) / numPhases
	tapsPerPhase = min(max(tapsPerPhase, minTapsPerPhase), maxTaps)

	totalTaps = numPhases*tapsPerPhase - 1
	if totalTaps > designerLimit {
		tapsPerPhase = max((designerLimit+1)/numPhases, minTapsPerPhase)
		totalTaps = numPhases*tapsPerPhase - 1
	}
	return tapsPerPhase, totalTaps
}
