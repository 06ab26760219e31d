package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-swresample/internal/testutil"
)

const windowTolerance = 1e-10

func TestKaiserWindow(t *testing.T) {
	assert.Empty(t, KaiserWindow(0, 5))
	assert.Equal(t, []float64{1}, KaiserWindow(1, 5))

	for _, tt := range []struct {
		length int
		beta   float64
	}{
		{11, 5},
		{21, 8.653728},
		{51, 10},
	} {
		window := KaiserWindow(tt.length, tt.beta)
		require.Len(t, window, tt.length)
		testutil.AssertSymmetric(t, window, windowTolerance)
		testutil.AssertCenterIsMax(t, window)
		assert.InDelta(t, 1.0, window[tt.length/2], windowTolerance)
	}

	// Edges fall to 1/I0(beta).
	window := KaiserWindow(11, 5)
	assert.InDelta(t, 1/27.239871823604444, window[0], 1e-6)
}

func TestKaiserWindow_BetaZeroIsRectangular(t *testing.T) {
	for _, v := range KaiserWindow(9, 0) {
		assert.InDelta(t, 1.0, v, windowTolerance)
	}
}

func TestFilterParams_Validate(t *testing.T) {
	valid := FilterParams{NumTaps: 65, CutoffFreq: 0.2, Attenuation: 80, Gain: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(p *FilterParams)
	}{
		{"too short", func(p *FilterParams) { p.NumTaps = 2 }},
		{"too long", func(p *FilterParams) { p.NumTaps = 70000 }},
		{"zero cutoff", func(p *FilterParams) { p.CutoffFreq = 0 }},
		{"nyquist cutoff", func(p *FilterParams) { p.CutoffFreq = 0.5 }},
		{"negative attenuation", func(p *FilterParams) { p.Attenuation = -1 }},
		{"negative transition", func(p *FilterParams) { p.TransitionBW = -0.1 }},
		{"zero gain", func(p *FilterParams) { p.Gain = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			require.ErrorIs(t, p.Validate(), ErrInvalidParams)

			_, err := DesignLowPassFilter(p)
			require.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestDesignLowPassFilter(t *testing.T) {
	for _, gain := range []float64{1, 2.5} {
		coeffs, err := DesignLowPassFilter(FilterParams{
			NumTaps:     101,
			CutoffFreq:  0.25,
			Attenuation: 100,
			Gain:        gain,
		})
		require.NoError(t, err)
		require.Len(t, coeffs, 101)

		testutil.AssertOddLength(t, coeffs)
		testutil.AssertSymmetric(t, coeffs, windowTolerance)
		testutil.AssertCenterIsMax(t, coeffs)
		testutil.AssertDCGain(t, coeffs, gain, 1e-9)
	}
}

func TestDesignLowPassFilterAuto_Response(t *testing.T) {
	const (
		cutoff = 0.25
		tbw    = 0.05
	)
	coeffs, err := DesignLowPassFilterAuto(cutoff, tbw, 100, 1)
	require.NoError(t, err)
	testutil.AssertOddLength(t, coeffs)

	resp := ComputeFrequencyResponse(coeffs, 2048)
	assert.InDelta(t, 1.0, resp.Magnitude[0], 1e-9)
	assert.Less(t, resp.PassbandRipple(cutoff-tbw), 0.1)
	assert.Greater(t, resp.StopbandAttenuation(cutoff+tbw), 85.0)
}

func TestComputeFrequencyResponse(t *testing.T) {
	resp := ComputeFrequencyResponse([]float64{1}, 8)
	require.Len(t, resp.Frequencies, 8)
	for i := range resp.Magnitude {
		assert.InDelta(t, float64(i)/16, resp.Frequencies[i], 1e-12)
		assert.InDelta(t, 1.0, resp.Magnitude[i], 1e-12)
		assert.InDelta(t, 0.0, resp.Phase[i], 1e-12)
	}

	// A one-sample delay rotates phase by -2*pi*f.
	resp = ComputeFrequencyResponse([]float64{0, 1}, 8)
	assert.InDelta(t, -math.Pi/4, resp.Phase[2], 1e-12)

	// Filters longer than the transform still evaluate DC exactly.
	coeffs, err := DesignLowPassFilter(FilterParams{NumTaps: 129, CutoffFreq: 0.1, Attenuation: 80, Gain: 1})
	require.NoError(t, err)
	resp = ComputeFrequencyResponse(coeffs, 16)
	assert.InDelta(t, 1.0, resp.Magnitude[0], 1e-9)

	assert.Len(t, ComputeFrequencyResponse([]float64{1}, 0).Magnitude, defaultResponsePoints)
}

func TestResponse_EmptyBands(t *testing.T) {
	var r Response
	assert.Zero(t, r.PassbandRipple(0.2))
	assert.Zero(t, r.StopbandAttenuation(0.3))

	r = ComputeFrequencyResponse([]float64{1}, 8)
	assert.Zero(t, r.StopbandAttenuation(0.6))
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(1), 1e-12)
	assert.InDelta(t, -20.0, MagnitudeDB(0.1), 1e-12)
	assert.InDelta(t, 6.0206, MagnitudeDB(2), 1e-4)
	assert.InDelta(t, -200.0, MagnitudeDB(0), 1e-9)
}

func BenchmarkDesignLowPassFilterAuto(b *testing.B) {
	for b.Loop() {
		_, _ = DesignLowPassFilterAuto(0.25, 0.02, 120, 1)
	}
}
