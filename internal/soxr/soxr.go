// Package soxr is a sample-rate conversion library with an API shaped after
// libsoxr. A Soxr converts a fixed number of channels between two fixed
// rates, accepting and producing any of eight sample datatypes.
//
// Output is time-aligned with input: the filter group delay is removed from
// the start of the stream and, once flushed, the total output is exactly
// round(input * outRate / inRate) samples per channel.
package soxr

import (
	"fmt"
	"math"

	"github.com/tphakala/go-swresample/internal/engine"
)

// Soxr is a conversion handle. It is not safe for concurrent use.
type Soxr struct {
	inRate  float64
	outRate float64
	ratio   float64
	io      IOSpec
	quality QualitySpec
	spec    engine.Spec

	channels int
	streams  []stream

	inTotal  int64 // input frames consumed since create or clear
	outTotal int64 // output frames delivered
	limit    int64 // total output once flushing
	flushing bool
	clips    int64

	err     error
	deleted bool
}

// Create returns a handle converting channels channels from inRate to
// outRate. A nil io selects Float32I in and out; a nil q selects HQ.
// channels may be zero, in which case SetNumChannels must be called before
// processing.
func Create(inRate, outRate float64, channels int, io *IOSpec, q *QualitySpec) (*Soxr, error) {
	if inRate <= 0 || outRate <= 0 || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, fmt.Errorf("%w: %v -> %v", ErrInvalidRate, inRate, outRate)
	}
	if channels < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	ioSpec := NewIOSpec(Float32I, Float32I)
	if io != nil {
		ioSpec = *io
	}
	if err := ioSpec.validate(); err != nil {
		return nil, err
	}

	qSpec := NewQualitySpec(HQ, 0)
	if q != nil {
		qSpec = *q
	}
	if err := qSpec.validate(); err != nil {
		return nil, err
	}

	s := &Soxr{
		inRate:  inRate,
		outRate: outRate,
		ratio:   outRate / inRate,
		io:      ioSpec,
		quality: qSpec,
		spec:    qSpec.engineSpec(),
	}
	if channels > 0 {
		if err := s.build(channels); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Soxr) build(channels int) error {
	streams := make([]stream, channels)
	for i := range streams {
		var (
			st  stream
			err error
		)
		if s.quality.doublePrecision() {
			st, err = newChannelStream[float64](s.inRate, s.outRate, s.spec)
		} else {
			st, err = newChannelStream[float32](s.inRate, s.outRate, s.spec)
		}
		if err != nil {
			return fmt.Errorf("soxr: engine for channel %d: %w", i, err)
		}
		streams[i] = st
	}
	s.streams = streams
	s.channels = channels
	return nil
}

// InRate returns the input sample rate.
func (s *Soxr) InRate() float64 { return s.inRate }

// OutRate returns the output sample rate.
func (s *Soxr) OutRate() float64 { return s.outRate }

// Channels returns the current channel count.
func (s *Soxr) Channels() int { return s.channels }

// IOSpec returns the buffer formats.
func (s *Soxr) IOSpec() IOSpec { return s.io }

// QualitySpec returns the quality spec the handle was created with.
func (s *Soxr) QualitySpec() QualitySpec { return s.quality }

// Error returns the sticky processing error, if any.
func (s *Soxr) Error() error { return s.err }

// Clips returns the number of output samples clipped so far.
func (s *Soxr) Clips() int64 { return s.clips }

// IsFlushing reports whether the handle is draining after end of input.
func (s *Soxr) IsFlushing() bool { return s.flushing }

// Drained reports whether a flushing handle has delivered all its output.
func (s *Soxr) Drained() bool {
	return s.flushing && s.outTotal >= s.limit
}

// SetNumChannels changes the channel count. It is a no-op for the current
// count and fails once processing has started; Clear first to change it.
func (s *Soxr) SetNumChannels(n int) error {
	if s.deleted {
		return ErrDeleted
	}
	if n == s.channels {
		return nil
	}
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, n)
	}
	if s.inTotal > 0 || s.flushing {
		return fmt.Errorf("%w: %d -> %d", ErrChannelsLocked, s.channels, n)
	}
	return s.build(n)
}

// Process converts up to ilen input frames and writes up to olen output
// frames. A nil in starts flushing; a non-nil in with ilen 0 only drains.
// Planar datatypes take one buffer per channel, interleaved ones a single
// buffer.
func (s *Soxr) Process(in [][]byte, ilen int, out [][]byte, olen int) (idone, odone int, err error) {
	if s.deleted {
		return 0, 0, ErrDeleted
	}
	if s.err != nil {
		return 0, 0, s.err
	}
	if s.channels == 0 {
		return 0, 0, fmt.Errorf("%w: channel count not set", ErrInvalidChannels)
	}
	if ilen < 0 || olen < 0 {
		return 0, 0, fmt.Errorf("%w: negative length", ErrShortBuffer)
	}
	if in != nil && ilen > 0 {
		if s.flushing {
			return 0, 0, ErrFlushing
		}
		if err := checkBuffers(in, s.io.Itype, s.channels, ilen); err != nil {
			return 0, 0, fmt.Errorf("input: %w", err)
		}
	}
	if olen > 0 {
		if err := checkBuffers(out, s.io.Otype, s.channels, olen); err != nil {
			return 0, 0, fmt.Errorf("output: %w", err)
		}
	}

	switch {
	case in == nil:
		if err := s.startFlush(); err != nil {
			return 0, 0, err
		}
	case ilen > 0:
		if err := s.consume(in, ilen); err != nil {
			return 0, 0, err
		}
		idone = ilen
	}

	odone = s.deliver(out, olen)
	return idone, odone, nil
}

func (s *Soxr) consume(in [][]byte, n int) error {
	for c, st := range s.streams {
		buf, l := channelBuffer(in, s.io.Itype, s.channels, c)
		if err := st.push(buf, s.io.Itype, l, n); err != nil {
			s.err = fmt.Errorf("soxr: process channel %d: %w", c, err)
			return s.err
		}
	}
	s.inTotal += int64(n)
	return nil
}

func (s *Soxr) startFlush() error {
	if s.flushing {
		return nil
	}
	s.flushing = true
	s.limit = int64(math.Round(float64(s.inTotal) * s.ratio))
	if s.inTotal == 0 {
		return nil
	}

	for c, st := range s.streams {
		if err := st.drain(); err != nil {
			s.err = fmt.Errorf("soxr: flush channel %d: %w", c, err)
			return s.err
		}
	}
	return nil
}

func (s *Soxr) deliver(out [][]byte, olen int) int {
	n := min(olen, s.streams[0].buffered())
	if s.flushing {
		n = min(n, int(max(s.limit-s.outTotal, 0)))
	}
	if n <= 0 {
		return 0
	}
	gain := s.io.gain()
	for c, st := range s.streams {
		buf, l := channelBuffer(out, s.io.Otype, s.channels, c)
		s.clips += st.pull(buf, s.io.Otype, l, n, gain)
	}
	s.outTotal += int64(n)
	return n
}

// Delay returns the number of output-rate samples owed for input already
// consumed but not yet delivered.
func (s *Soxr) Delay() float64 {
	if s.deleted || s.channels == 0 {
		return 0
	}
	if s.flushing {
		return float64(max(s.limit-s.outTotal, 0))
	}
	return max(float64(s.inTotal)*s.ratio-float64(s.outTotal), 0)
}

// Clear resets the handle to its freshly created state, keeping rates,
// formats and channel count.
func (s *Soxr) Clear() error {
	if s.deleted {
		return ErrDeleted
	}
	for c, st := range s.streams {
		if err := st.reset(); err != nil {
			s.err = fmt.Errorf("soxr: clear channel %d: %w", c, err)
			return s.err
		}
	}
	s.inTotal = 0
	s.outTotal = 0
	s.limit = 0
	s.flushing = false
	s.clips = 0
	s.err = nil
	return nil
}

// Delete releases the handle. Further calls return ErrDeleted.
func (s *Soxr) Delete() {
	s.streams = nil
	s.channels = 0
	s.deleted = true
}

func checkBuffers(bufs [][]byte, dt Datatype, channels, frames int) error {
	bps := dt.BytesPerSample()
	if !dt.IsPlanar() {
		if len(bufs) < 1 || len(bufs[0]) < frames*channels*bps {
			return fmt.Errorf("%w: need %d bytes interleaved", ErrShortBuffer, frames*channels*bps)
		}
		return nil
	}
	if len(bufs) < channels {
		return fmt.Errorf("%w: need %d planes, have %d", ErrShortBuffer, channels, len(bufs))
	}
	for c := range channels {
		if len(bufs[c]) < frames*bps {
			return fmt.Errorf("%w: plane %d needs %d bytes", ErrShortBuffer, c, frames*bps)
		}
	}
	return nil
}

func channelBuffer(bufs [][]byte, dt Datatype, channels, c int) ([]byte, layout) {
	if dt.IsPlanar() {
		return bufs[c], layout{index: 0, step: 1}
	}
	return bufs[0], layout{index: c, step: channels}
}
