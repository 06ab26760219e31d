package swresample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleFormat_Properties(t *testing.T) {
	tests := []struct {
		format SampleFormat
		name   string
		bytes  int
		planar bool
	}{
		{SampleFmtU8, "u8", 1, false},
		{SampleFmtS16, "s16", 2, false},
		{SampleFmtS32, "s32", 4, false},
		{SampleFmtFLT, "flt", 4, false},
		{SampleFmtDBL, "dbl", 8, false},
		{SampleFmtU8P, "u8p", 1, true},
		{SampleFmtS16P, "s16p", 2, true},
		{SampleFmtS32P, "s32p", 4, true},
		{SampleFmtFLTP, "fltp", 4, true},
		{SampleFmtDBLP, "dblp", 8, true},
		{SampleFmtS64, "s64", 8, false},
		{SampleFmtS64P, "s64p", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.format.Valid())
			assert.Equal(t, tt.name, tt.format.String())
			assert.Equal(t, tt.bytes, tt.format.BytesPerSample())
			assert.Equal(t, tt.planar, tt.format.IsPlanar())

			parsed, err := ParseSampleFormat(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.format, parsed)
		})
	}

	assert.Len(t, SampleFormats(), len(tests))
}

func TestSampleFormat_Invalid(t *testing.T) {
	assert.False(t, SampleFmtNone.Valid())
	assert.Equal(t, "SampleFormat(-1)", SampleFmtNone.String())
	assert.Zero(t, SampleFmtNone.BytesPerSample())
	assert.False(t, SampleFormat(99).IsPlanar())

	_, err := ParseSampleFormat("s24")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = SampleFmtNone.MarshalText()
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSampleFormat_Layout(t *testing.T) {
	assert.Equal(t, SampleFmtS16P, SampleFmtS16.Planar())
	assert.Equal(t, SampleFmtS16, SampleFmtS16P.Packed())
	assert.Equal(t, SampleFmtDBL, SampleFmtDBLP.Packed())
	assert.Equal(t, SampleFmtFLTP, SampleFmtFLTP.Planar())
	assert.Equal(t, SampleFmtS64P, SampleFmtS64.Planar())
}

func TestSampleFormat_Text(t *testing.T) {
	var f SampleFormat
	require.NoError(t, f.UnmarshalText([]byte(" FLTP ")))
	assert.Equal(t, SampleFmtFLTP, f)

	b, err := SampleFmtS32.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "s32", string(b))
}
