// Package filter designs Kaiser-windowed sinc lowpass filters and measures
// their frequency response.
package filter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-swresample/internal/mathutil"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 1<<16 - 1

	defaultResponsePoints = 512
	sincZeroThreshold     = 1e-10
	minMagnitude          = 1e-10
)

// ErrInvalidParams is returned for filter parameters outside their ranges.
var ErrInvalidParams = errors.New("invalid filter parameters")

// KaiserWindow returns a symmetric Kaiser window with peak 1.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	half := float64(length-1) / 2
	i0Beta := mathutil.BesselI0(beta)
	for n := range window {
		x := (float64(n) - half) / half
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1-x*x)) / i0Beta
	}
	return window
}

// FilterParams describes a lowpass design. Frequencies are fractions of the
// sample rate, so Nyquist is 0.5.
type FilterParams struct {
	NumTaps     int
	CutoffFreq  float64
	Attenuation float64 // stopband, dB

	// TransitionBW, when set, selects the bandwidth-aware beta fit.
	TransitionBW float64

	Gain float64 // DC gain
}

// Validate reports the first parameter out of range.
func (fp *FilterParams) Validate() error {
	switch {
	case fp.NumTaps < minFilterTaps || fp.NumTaps > maxFilterTaps:
		return fmt.Errorf("%w: %d taps, want %d..%d", ErrInvalidParams, fp.NumTaps, minFilterTaps, maxFilterTaps)
	case fp.CutoffFreq <= 0 || fp.CutoffFreq >= 0.5:
		return fmt.Errorf("%w: cutoff %g outside (0, 0.5)", ErrInvalidParams, fp.CutoffFreq)
	case fp.Attenuation < 0:
		return fmt.Errorf("%w: negative attenuation %g dB", ErrInvalidParams, fp.Attenuation)
	case fp.TransitionBW < 0:
		return fmt.Errorf("%w: negative transition band %g", ErrInvalidParams, fp.TransitionBW)
	case fp.Gain <= 0:
		return fmt.Errorf("%w: gain %g must be positive", ErrInvalidParams, fp.Gain)
	}
	return nil
}

func (fp *FilterParams) beta() float64 {
	if fp.TransitionBW > 0 {
		return mathutil.KaiserBetaWithTrBw(fp.Attenuation, fp.TransitionBW)
	}
	return mathutil.KaiserBeta(fp.Attenuation)
}

// DesignLowPassFilter returns the windowed-sinc coefficients for params,
// scaled so they sum to params.Gain. The result is linear phase.
func DesignLowPassFilter(params FilterParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	window := KaiserWindow(params.NumTaps, params.beta())
	coeffs := make([]float64, params.NumTaps)
	center := float64(params.NumTaps-1) / 2
	for n := range coeffs {
		x := float64(n) - center
		sinc := 2 * params.CutoffFreq
		if math.Abs(x) >= sincZeroThreshold {
			sinc = math.Sin(2*math.Pi*params.CutoffFreq*x) / (math.Pi * x)
		}
		coeffs[n] = sinc * window[n]
	}

	if sum := f64.Sum(coeffs); math.Abs(sum) > sincZeroThreshold {
		f64.Scale(coeffs, coeffs, params.Gain/sum)
	}
	return coeffs, nil
}

// DesignLowPassFilterAuto sizes the filter from the attenuation and the
// transition band before designing it.
func DesignLowPassFilterAuto(cutoffFreq, transitionBW, attenuation, gain float64) ([]float64, error) {
	return DesignLowPassFilter(FilterParams{
		NumTaps:      mathutil.EstimateFilterLength(attenuation, transitionBW),
		CutoffFreq:   cutoffFreq,
		Attenuation:  attenuation,
		TransitionBW: transitionBW,
		Gain:         gain,
	})
}

// Response is a filter's frequency response sampled between DC and Nyquist.
type Response struct {
	Frequencies []float64 // fraction of the sample rate
	Magnitude   []float64 // linear
	Phase       []float64 // radians
}

// ComputeFrequencyResponse samples the response of coeffs at numPoints
// evenly spaced frequencies in [0, 0.5). A non-positive numPoints selects 512.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) Response {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}
	n := 2 * numPoints

	// Folding taps modulo n samples the DTFT exactly at the n bins.
	seq := make([]float64, n)
	for i, c := range coeffs {
		seq[i%n] += c
	}
	bins := fourier.NewFFT(n).Coefficients(nil, seq)

	resp := Response{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}
	for k := range numPoints {
		resp.Frequencies[k] = float64(k) / float64(n)
		resp.Magnitude[k] = cmplx.Abs(bins[k])
		resp.Phase[k] = cmplx.Phase(bins[k])
	}
	return resp
}

// PassbandRipple returns the peak-to-peak deviation in dB over [0, edge].
func (r Response) PassbandRipple(edge float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, f := range r.Frequencies {
		if f > edge {
			break
		}
		db := MagnitudeDB(r.Magnitude[i])
		lo, hi = min(lo, db), max(hi, db)
	}
	if lo > hi {
		return 0
	}
	return hi - lo
}

// StopbandAttenuation returns the smallest rejection in dB at or above edge,
// relative to the DC gain.
func (r Response) StopbandAttenuation(edge float64) float64 {
	if len(r.Magnitude) == 0 {
		return 0
	}
	ref := MagnitudeDB(r.Magnitude[0])
	peak := math.Inf(-1)
	for i, f := range r.Frequencies {
		if f >= edge {
			peak = max(peak, MagnitudeDB(r.Magnitude[i]))
		}
	}
	if math.IsInf(peak, -1) {
		return 0
	}
	return ref - peak
}

// MagnitudeDB converts a linear magnitude to dB, flooring at -200 dB.
func MagnitudeDB(magnitude float64) float64 {
	return 20 * math.Log10(max(magnitude, minMagnitude))
}
