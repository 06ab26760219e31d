package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-swresample/internal/testutil"
)

func sine(n int, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / period)
	}
	return out
}

func TestDFTStage_Factor1Passthrough(t *testing.T) {
	stage, err := NewDFTStage[float64](1, SpecForBits(20))
	require.NoError(t, err)

	input := []float64{1, 2, 3, 4, 5}
	output, err := stage.Process(input)
	require.NoError(t, err)
	assert.Equal(t, input, output)
}

func TestDFTStage_Factor2(t *testing.T) {
	stage, err := NewDFTStage[float64](2, SpecForBits(20))
	require.NoError(t, err)

	require.Len(t, stage.polyCoeffs, 2)
	for phase, coeffs := range stage.polyCoeffs {
		sum := 0.0
		for _, c := range coeffs {
			sum += c
		}
		assert.InDelta(t, 1.0, sum, 0.01, "phase %d DC gain", phase)
	}

	input := make([]float64, 1000)
	for i := range input {
		input[i] = 1
	}
	output, err := stage.Process(input)
	require.NoError(t, err)
	tail, err := stage.Flush()
	require.NoError(t, err)
	output = append(output, tail...)

	assert.InDelta(t, 2.0, float64(len(output))/float64(len(input)), 0.2)
}

func TestDFTStage_Reset(t *testing.T) {
	input := sine(1000, 100)

	stage, err := NewDFTStage[float64](2, SpecForBits(20))
	require.NoError(t, err)
	_, err = stage.Process(input)
	require.NoError(t, err)
	stage.Reset()

	fresh, err := NewDFTStage[float64](2, SpecForBits(20))
	require.NoError(t, err)

	got, err := stage.Process(input)
	require.NoError(t, err)
	want, err := fresh.Process(input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-15)
}

func TestPolyphaseStage_Constructor(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*PolyphaseStage[float64], error)
		wantErr bool
	}{
		{"upsample", func() (*PolyphaseStage[float64], error) {
			return NewPolyphaseStage[float64](1.088435374, 0.459375, SpecForBits(20))
		}, false},
		{"downsample", func() (*PolyphaseStage[float64], error) {
			return NewDownsamplingStage[float64](0.91875, SpecForBits(20))
		}, false},
		{"downsample_third", func() (*PolyphaseStage[float64], error) {
			return NewDownsamplingStage[float64](1.0/3, SpecForBits(20))
		}, false},
		{"zero", func() (*PolyphaseStage[float64], error) {
			return NewPolyphaseStage[float64](0, 1, SpecForBits(20))
		}, true},
		{"negative", func() (*PolyphaseStage[float64], error) {
			return NewPolyphaseStage[float64](-1, 1, SpecForBits(20))
		}, true},
		{"downsample_unity", func() (*PolyphaseStage[float64], error) {
			return NewDownsamplingStage[float64](1, SpecForBits(20))
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := tt.build()
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, stage)
				return
			}
			require.NoError(t, err)
			assert.Positive(t, stage.numPhases)
			assert.Positive(t, stage.tapsPerPhase)
			assert.Positive(t, stage.step)
		})
	}
}

func TestDownsamplingStage_RunsAtTwiceOutputRate(t *testing.T) {
	stage, err := NewDownsamplingStage[float64](1.0/3, SpecForBits(20))
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, stage.ratio, 1e-12)

	out, err := stage.Process(sine(30000, 100))
	require.NoError(t, err)
	assert.InDelta(t, 20000, len(out), 100)
}

func TestPolyphaseStage_DCGain(t *testing.T) {
	stage, err := NewPolyphaseStage[float64](1.088435374, 0.459375, SpecForBits(20))
	require.NoError(t, err)

	input := make([]float64, 5000)
	for i := range input {
		input[i] = 1
	}
	output, err := stage.Process(input)
	require.NoError(t, err)
	require.Greater(t, len(output), 100)

	start, end := len(output)/4, 3*len(output)/4
	sum := 0.0
	for _, v := range output[start:end] {
		sum += v
	}
	assert.InDelta(t, 1.0, sum/float64(end-start), 0.01)
}

func TestPolyphaseStage_Reset(t *testing.T) {
	input := sine(2000, 100)

	stage, err := NewDownsamplingStage[float64](0.91875, SpecForBits(20))
	require.NoError(t, err)
	_, err = stage.Process(input)
	require.NoError(t, err)
	stage.Reset()

	fresh, err := NewDownsamplingStage[float64](0.91875, SpecForBits(20))
	require.NoError(t, err)

	got, err := stage.Process(input)
	require.NoError(t, err)
	want, err := fresh.Process(input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-15)
}

func TestNewResampler_Architecture(t *testing.T) {
	tests := []struct {
		name          string
		in, out       float64
		wantPreStage  bool
		wantPolyphase bool
		wantDecimator bool
	}{
		{"identity", 48000, 48000, true, false, false},
		{"integer_up", 24000, 48000, true, false, false},
		{"fractional_up", 44100, 48000, true, true, false},
		{"down", 48000, 44100, false, true, true},
		{"third", 48000, 16000, false, true, true},
		{"half", 44100, 22050, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResampler[float64](tt.in, tt.out, SpecForBits(20))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPreStage, r.preStage != nil)
			assert.Equal(t, tt.wantPolyphase, r.polyphaseStage != nil)
			assert.Equal(t, tt.wantDecimator, r.decimator != nil)
			assert.InDelta(t, tt.out/tt.in, r.GetRatio(), 1e-12)
		})
	}
}

func TestNewResampler_Errors(t *testing.T) {
	_, err := NewResampler[float64](0, 48000, SpecForBits(20))
	require.Error(t, err)

	_, err = NewResampler[float64](44100, -1, SpecForBits(20))
	require.Error(t, err)

	_, err = NewResampler[float64](44100, 48000, Spec{Precision: 2})
	require.ErrorIs(t, err, ErrInvalidSpec)
}

func TestResampler_IdentityPassthrough(t *testing.T) {
	r, err := NewResampler[float32](48000, 48000, SpecForBits(16))
	require.NoError(t, err)

	input := []float32{0.1, -0.2, 0.3, -0.4}
	output, err := r.Process(input)
	require.NoError(t, err)
	assert.Equal(t, input, output)
	assert.Zero(t, r.Latency())
}

func TestResampler_OutputLength(t *testing.T) {
	tests := []struct {
		in, out float64
	}{
		{44100, 48000},
		{48000, 44100},
		{48000, 16000},
		{44100, 22050},
		{16000, 48000},
	}

	for _, tt := range tests {
		r, err := NewResampler[float64](tt.in, tt.out, SpecForBits(20))
		require.NoError(t, err)

		input := sine(int(tt.in), 100)
		output, err := r.Process(input)
		require.NoError(t, err)
		tail, err := r.Flush()
		require.NoError(t, err)

		total := float64(len(output) + len(tail))
		assert.InDelta(t, tt.out, total, tt.out*0.05, "%v -> %v", tt.in, tt.out)

		stats := r.GetStatistics()
		assert.Equal(t, int64(len(input)), stats["samplesIn"])
		assert.Equal(t, int64(len(output)+len(tail)), stats["samplesOut"])
	}
}

func TestResampler_OutputIsCallerOwned(t *testing.T) {
	r, err := NewResampler[float64](44100, 48000, SpecForBits(20))
	require.NoError(t, err)

	first, err := r.Process(sine(4096, 50))
	require.NoError(t, err)
	snapshot := append([]float64(nil), first...)

	_, err = r.Process(sine(4096, 70))
	require.NoError(t, err)
	assert.Equal(t, snapshot, first)
}

func TestResampler_Reset(t *testing.T) {
	r, err := NewResampler[float64](48000, 44100, SpecForBits(20))
	require.NoError(t, err)

	_, err = r.Process(sine(2000, 64))
	require.NoError(t, err)
	r.Reset()

	stats := r.GetStatistics()
	assert.Zero(t, stats["samplesIn"])
	assert.Zero(t, stats["samplesOut"])
	assert.Zero(t, r.Pending())
}

func TestResampler_LatencyGrowsWithPrecision(t *testing.T) {
	low, err := NewResampler[float64](48000, 44100, SpecForBits(16))
	require.NoError(t, err)
	high, err := NewResampler[float64](48000, 44100, SpecForBits(28))
	require.NoError(t, err)

	assert.Positive(t, low.Latency())
	assert.GreaterOrEqual(t, high.Latency(), low.Latency())
}

// toneLevel converts tone through r and returns the RMS level of the middle
// of the output relative to the input tone, in dB.
func toneLevel(t *testing.T, r *Resampler[float64], freq, amplitude float64) float64 {
	t.Helper()
	input := testutil.Sine(int(r.inputRate)/2, freq, r.inputRate, amplitude)
	output, err := r.Process(input)
	require.NoError(t, err)
	require.Greater(t, len(output), 1000)

	mid := output[len(output)/4 : 3*len(output)/4]
	return 20 * math.Log10(testutil.RMS(mid)/(amplitude/math.Sqrt2))
}

func TestResampler_DownsamplingRejectsAliases(t *testing.T) {
	tests := []struct {
		name    string
		in, out float64
		tone    float64 // above the output Nyquist
	}{
		{"48k_to_16k", 48000, 16000, 10000},
		{"44k1_to_22k05", 44100, 22050, 15000},
		{"96k_to_48k", 96000, 48000, 30000},
		{"48k_to_8k", 48000, 8000, 6000},
		{"48k_to_44k1", 48000, 44100, 23000},
		{"48k_to_32k", 48000, 32000, 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResampler[float64](tt.in, tt.out, Spec{Precision: 20, PassbandEnd: 0.913})
			require.NoError(t, err)
			assert.Less(t, toneLevel(t, r, tt.tone, 0.9), -100.0)
		})
	}
}

func TestResampler_DownsamplingKeepsPassband(t *testing.T) {
	tests := []struct {
		name    string
		in, out float64
		tone    float64
	}{
		{"48k_to_16k", 48000, 16000, 1000},
		{"44k1_to_22k05", 44100, 22050, 5000},
		{"48k_to_44k1", 48000, 44100, 15000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResampler[float64](tt.in, tt.out, Spec{Precision: 20, PassbandEnd: 0.913})
			require.NoError(t, err)
			assert.InDelta(t, 0.0, toneLevel(t, r, tt.tone, 0.5), 0.1)
		})
	}
}

func TestResampler_DownsamplingFollowsPassbandEnd(t *testing.T) {
	// 7.5 kHz is inside a 0.97 passband of the 8 kHz output Nyquist and
	// past the midpoint of a 0.8 passband's transition.
	wide, err := NewResampler[float64](48000, 16000, Spec{Precision: 20, PassbandEnd: 0.97})
	require.NoError(t, err)
	narrow, err := NewResampler[float64](48000, 16000, Spec{Precision: 20, PassbandEnd: 0.8})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, toneLevel(t, wide, 7500, 0.5), 0.1)
	assert.Less(t, toneLevel(t, narrow, 7500, 0.5), -3.0)
}
