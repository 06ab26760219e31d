package swresample

import (
	"fmt"
	"strings"
)

// SampleFormat identifies the sample encoding and channel layout of a buffer.
// Values follow the host's numbering.
type SampleFormat int

// Sample formats.
const (
	SampleFmtNone SampleFormat = iota - 1
	SampleFmtU8                // unsigned 8 bits
	SampleFmtS16               // signed 16 bits
	SampleFmtS32               // signed 32 bits
	SampleFmtFLT               // float
	SampleFmtDBL               // double
	SampleFmtU8P               // unsigned 8 bits, planar
	SampleFmtS16P              // signed 16 bits, planar
	SampleFmtS32P              // signed 32 bits, planar
	SampleFmtFLTP              // float, planar
	SampleFmtDBLP              // double, planar
	SampleFmtS64               // signed 64 bits
	SampleFmtS64P              // signed 64 bits, planar
	sampleFmtCount
)

type formatInfo struct {
	name   string
	bytes  int
	planar bool
}

var formatTable = [sampleFmtCount]formatInfo{
	SampleFmtU8:   {"u8", 1, false},
	SampleFmtS16:  {"s16", 2, false},
	SampleFmtS32:  {"s32", 4, false},
	SampleFmtFLT:  {"flt", 4, false},
	SampleFmtDBL:  {"dbl", 8, false},
	SampleFmtU8P:  {"u8p", 1, true},
	SampleFmtS16P: {"s16p", 2, true},
	SampleFmtS32P: {"s32p", 4, true},
	SampleFmtFLTP: {"fltp", 4, true},
	SampleFmtDBLP: {"dblp", 8, true},
	SampleFmtS64:  {"s64", 8, false},
	SampleFmtS64P: {"s64p", 8, true},
}

// Valid reports whether f is a known format.
func (f SampleFormat) Valid() bool {
	return f >= 0 && f < sampleFmtCount
}

// String returns the short format name, e.g. "s16p".
func (f SampleFormat) String() string {
	if !f.Valid() {
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
	return formatTable[f].name
}

// BytesPerSample returns the size of one sample, or 0 for an invalid format.
func (f SampleFormat) BytesPerSample() int {
	if !f.Valid() {
		return 0
	}
	return formatTable[f].bytes
}

// IsPlanar reports whether f stores each channel in its own plane.
func (f SampleFormat) IsPlanar() bool {
	return f.Valid() && formatTable[f].planar
}

// Packed returns the interleaved variant of f.
func (f SampleFormat) Packed() SampleFormat {
	return f.withLayout(false)
}

// Planar returns the planar variant of f.
func (f SampleFormat) Planar() SampleFormat {
	return f.withLayout(true)
}

func (f SampleFormat) withLayout(planar bool) SampleFormat {
	if !f.Valid() || formatTable[f].planar == planar {
		return f
	}
	base := strings.TrimSuffix(formatTable[f].name, "p")
	for g := range sampleFmtCount {
		if formatTable[g].planar == planar && strings.TrimSuffix(formatTable[g].name, "p") == base {
			return g
		}
	}
	return SampleFmtNone
}

// ParseSampleFormat parses a short format name as returned by String.
func ParseSampleFormat(name string) (SampleFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f := range sampleFmtCount {
		if formatTable[f].name == name {
			return f, nil
		}
	}
	return SampleFmtNone, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// MarshalText implements encoding.TextMarshaler.
func (f SampleFormat) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *SampleFormat) UnmarshalText(text []byte) error {
	v, err := ParseSampleFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// SampleFormats returns every known format in host order.
func SampleFormats() []SampleFormat {
	out := make([]SampleFormat, 0, sampleFmtCount)
	for f := range sampleFmtCount {
		out = append(out, f)
	}
	return out
}
