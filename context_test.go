package swresample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tphakala/go-swresample/internal/testutil"
)

func stereoOptions(format SampleFormat, inRate, outRate int) Options {
	return Options{
		InRate:   inRate,
		OutRate:  outRate,
		Format:   format,
		Channels: 2,
	}
}

func TestOptions_Validate(t *testing.T) {
	valid := stereoOptions(SampleFmtFLTP, RateCD, RateDAT)

	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{"valid", func(*Options) {}, false},
		{"zero input rate", func(o *Options) { o.InRate = 0 }, true},
		{"negative output rate", func(o *Options) { o.OutRate = -1 }, true},
		{"rate too high", func(o *Options) { o.OutRate = 1_000_000 }, true},
		{"no channels", func(o *Options) { o.Channels = 0 }, true},
		{"too many channels", func(o *Options) { o.Channels = 257 }, true},
		{"invalid format", func(o *Options) { o.Format = SampleFmtNone }, true},
		{"precision too low", func(o *Options) { o.Precision = 8 }, true},
		{"precision too high", func(o *Options) { o.Precision = 40 }, true},
		{"precision in range", func(o *Options) { o.Precision = 28 }, false},
		{"negative cutoff", func(o *Options) { o.Cutoff = -0.1 }, true},
		{"cutoff above one", func(o *Options) { o.Cutoff = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := o.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(stereoOptions(SampleFmtFLTP, RateCD, RateDAT), nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Equal(t, BackendSoxr, c.Options().Backend)
	cfg := c.opts.resampleConfig(nil)
	assert.InDelta(t, float64(DefaultPrecision), cfg.Precision, 0)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(stereoOptions(SampleFmtU8, RateCD, RateDAT), zaptest.NewLogger(t))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	o := stereoOptions(SampleFmtFLT, RateCD, RateDAT)
	o.Backend = "missing"
	_, err = New(o, nil)
	require.ErrorIs(t, err, ErrUnknownBackend)

	_, err = New(Options{}, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

// convertStream feeds in through c in chunks, drains, and returns all output
// samples per channel as float64.
func convertStream(t *testing.T, c *Context, planes [][]float64, chunk int) [][]float64 {
	t.Helper()
	channels := len(planes)
	total := len(planes[0])
	out := make([][]float64, channels)

	dst := NewAudioData(SampleFmtFLTP, channels, 4*chunk+64)
	collect := func(n int) {
		for ch := range channels {
			out[ch] = append(out[ch], testutil.BytesFloat32(dst.Planes[ch][:4*n])...)
		}
	}

	for off := 0; off < total; off += chunk {
		n := min(chunk, total-off)
		src := NewAudioData(SampleFmtFLTP, channels, n)
		for ch := range channels {
			copy(src.Planes[ch], testutil.Float32Bytes(planes[ch][off:off+n]))
		}
		got, err := c.Convert(dst, dst.Samples, src, n)
		require.NoError(t, err)
		collect(got)
	}

	for range 1000 {
		got, err := c.Convert(dst, dst.Samples, nil, 0)
		require.NoError(t, err)
		if got == 0 {
			return out
		}
		collect(got)
	}
	t.Fatal("drain did not terminate")
	return nil
}

func TestContext_StreamLengthAndLevel(t *testing.T) {
	tests := []struct {
		in, out int
		want    int
	}{
		{RateCD, RateDAT, 48000},
		{RateDAT, RateCD, 40425},
		{RateDAT, RateVoIP, 14700},
		{RateVoIP, RateDAT, 132300},
	}

	for _, tt := range tests {
		c, err := New(stereoOptions(SampleFmtFLTP, tt.in, tt.out), nil)
		require.NoError(t, err)

		n := tt.want * tt.in / tt.out
		left := testutil.Sine(n, 440, float64(tt.in), 0.5)
		right := testutil.Sine(n, 1000, float64(tt.in), 0.25)

		out := convertStream(t, c, [][]float64{left, right}, 1024)
		require.NoError(t, c.Close())

		require.Len(t, out[0], tt.want, "%d->%d", tt.in, tt.out)
		require.Len(t, out[1], tt.want, "%d->%d", tt.in, tt.out)

		// Skip the edges where the filter sees the stream start and end.
		mid := out[0][tt.want/4 : 3*tt.want/4]
		testutil.AssertRelativeError(t, 0.5/1.4142135623730951, testutil.RMS(mid), 0.02, "%d->%d left", tt.in, tt.out)
		mid = out[1][tt.want/4 : 3*tt.want/4]
		testutil.AssertRelativeError(t, 0.25/1.4142135623730951, testutil.RMS(mid), 0.02, "%d->%d right", tt.in, tt.out)
	}
}

func TestContext_FlushThenNewStream(t *testing.T) {
	c, err := New(stereoOptions(SampleFmtFLTP, RateDAT, RateCD), nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	signal := testutil.Sine(4800, 440, RateDAT, 0.5)
	first := convertStream(t, c, [][]float64{signal, signal}, 960)
	assert.Equal(t, 0, int(c.Delay(RateCD)))

	second := convertStream(t, c, [][]float64{signal, signal}, 960)
	require.Len(t, first[0], 4410)
	require.Len(t, second[0], 4410)
	assert.InDeltaSlice(t, first[0], second[0], 1e-6)
}

func TestContext_DelayAndOutSamples(t *testing.T) {
	c, err := New(stereoOptions(SampleFmtFLTP, RateDAT, RateCD), nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Zero(t, c.Delay(RateCD))
	assert.Equal(t, int64(4411), c.OutSamples(4800))

	src := NewAudioData(SampleFmtFLTP, 2, 4800)
	got, err := c.Convert(nil, 0, src, 4800)
	require.NoError(t, err)
	assert.Zero(t, got)

	// Nothing was delivered, so everything is still buffered.
	assert.Equal(t, int64(4410), c.Delay(RateCD))
	assert.Equal(t, int64(100_000), c.Delay(1_000_000))
	assert.Equal(t, int64(4410+1), c.OutSamples(0))
}

func TestContext_BufferChecks(t *testing.T) {
	c, err := New(stereoOptions(SampleFmtS16, RateCD, RateDAT), nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	dst := NewAudioData(SampleFmtS16, 2, 128)

	_, err = c.Convert(dst, 128, NewAudioData(SampleFmtFLT, 2, 64), 64)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = c.Convert(dst, 128, NewAudioData(SampleFmtS16, 1, 64), 64)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = c.Convert(dst, 256, NewAudioData(SampleFmtS16, 2, 64), 64)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = c.Convert(nil, 10, NewAudioData(SampleFmtS16, 2, 64), 64)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestContext_SetCompensation(t *testing.T) {
	c, err := New(stereoOptions(SampleFmtDBL, RateCD, RateDAT), nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.ErrorIs(t, c.SetCompensation(1, 100), ErrNotSupported)
}

func TestContext_ReinitAndClose(t *testing.T) {
	c, err := New(stereoOptions(SampleFmtS32P, RateDAT, RateCD), nil)
	require.NoError(t, err)

	src := NewAudioData(SampleFmtS32P, 2, 480)
	dst := NewAudioData(SampleFmtS32P, 2, 1024)
	_, err = c.Convert(dst, dst.Samples, src, 480)
	require.NoError(t, err)
	require.Positive(t, c.Delay(RateCD))

	old := c.r
	require.NoError(t, c.Reinit())
	assert.NotSame(t, old, c.r)
	assert.Zero(t, c.Delay(RateCD))

	// The replaced resampler is released.
	_, _, err = old.Process(dst, 1, src, 1)
	require.ErrorIs(t, err, ErrClosed)

	_, err = c.Convert(dst, dst.Samples, src, 480)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Convert(dst, dst.Samples, src, 480)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, c.Reinit(), ErrClosed)
	require.ErrorIs(t, c.SetCompensation(0, 0), ErrClosed)
	assert.Zero(t, c.Delay(RateCD))
	assert.Zero(t, c.OutSamples(480))
}
