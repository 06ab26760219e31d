package swresample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-swresample/internal/testutil"
)

func TestConvertAll(t *testing.T) {
	signal := testutil.Sine(RateDAT, 440, RateDAT, 0.5)
	in, err := WrapAudioData(SampleFmtS16, 1, [][]byte{testutil.Int16Bytes(signal)})
	require.NoError(t, err)

	out, err := ConvertAll(Options{
		InRate:   RateDAT,
		OutRate:  RateVoIP,
		Format:   SampleFmtS16,
		Channels: 1,
	}, in, in.Samples, nil)
	require.NoError(t, err)

	assert.Equal(t, RateVoIP, out.Samples)
	samples := testutil.BytesInt16(out.Planes[0])
	require.Len(t, samples, RateVoIP)
	testutil.AssertRelativeError(t, 0.5/1.4142135623730951, testutil.RMS(samples[4000:12000]), 0.02)
}

func TestConvertAll_GrowsForUpsampling(t *testing.T) {
	in := NewAudioData(SampleFmtDBLP, 2, 1000)

	out, err := ConvertAll(Options{
		InRate:   RateTelephony,
		OutRate:  RateHiRes96,
		Format:   SampleFmtDBLP,
		Channels: 2,
	}, in, in.Samples, nil)
	require.NoError(t, err)
	assert.Equal(t, 12000, out.Samples)
	assert.Len(t, out.Planes[1], 12000*8)
}

func TestConvertAll_Errors(t *testing.T) {
	_, err := ConvertAll(Options{InRate: RateCD, OutRate: RateDAT, Format: SampleFmtFLT, Channels: 1}, nil, 0, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	in := NewAudioData(SampleFmtS64, 1, 16)
	_, err = ConvertAll(Options{InRate: RateCD, OutRate: RateDAT, Format: SampleFmtS64, Channels: 1}, in, 16, nil)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

// toneLevel converts a one-second tone and returns the RMS level of the
// middle of the output relative to the input, in dB.
func toneLevel(t *testing.T, opts Options, freq float64) float64 {
	t.Helper()
	const amplitude = 0.5
	in := monoFLTP(t, testutil.Sine(opts.InRate, freq, float64(opts.InRate), amplitude))

	out, err := ConvertAll(opts, in, in.Samples, nil)
	require.NoError(t, err)
	y := testutil.BytesFloat32(out.Planes[0])
	require.NotEmpty(t, y)

	mid := y[len(y)/4 : 3*len(y)/4]
	return 20 * math.Log10(testutil.RMS(mid)/(amplitude/math.Sqrt2))
}

func TestConvertAll_DownsamplingRejectsAliases(t *testing.T) {
	tests := []struct {
		in, out int
		tone    float64
	}{
		{RateDAT, RateVoIP, 10000},
		{RateCD, RateSpeech, 15000},
		{RateHiRes96, RateDAT, 30000},
		{RateDAT, RateTelephony, 6000},
		{RateDAT, RateCD, 23000},
	}

	for _, tt := range tests {
		opts := Options{InRate: tt.in, OutRate: tt.out, Format: SampleFmtFLTP, Channels: 1, Precision: 24}
		level := toneLevel(t, opts, tt.tone)
		assert.Less(t, level, -100.0, "%d -> %d, %.0f Hz", tt.in, tt.out, tt.tone)
	}
}

func TestConvertAll_CutoffSetsDownsamplingPassband(t *testing.T) {
	opts := Options{InRate: RateDAT, OutRate: RateVoIP, Format: SampleFmtFLTP, Channels: 1, Precision: 24}

	opts.Cutoff = 0.97
	assert.InDelta(t, 0.0, toneLevel(t, opts, 7500), 0.1)

	opts.Cutoff = 0.8
	assert.Less(t, toneLevel(t, opts, 7500), -3.0)
}
