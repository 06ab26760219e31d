package swresample

import (
	"fmt"

	"go.uber.org/zap"
)

// Common sample rates.
const (
	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is a common speech recognition sample rate.
	RateSpeech = 22050

	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes176 is the very high resolution 4x CD sample rate.
	RateHiRes176 = 176400

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000
)

// drainChunk is the output block size used while draining.
const drainChunk = 4096

// ConvertAll converts the first inCount samples of in in one shot, flushes,
// and returns all produced output. opts.Format and opts.Channels must match in.
//
//	out, err := swresample.ConvertAll(swresample.Options{
//	    InRate: swresample.RateCD, OutRate: swresample.RateDAT,
//	    Format: swresample.SampleFmtS16, Channels: 2,
//	}, in, in.Samples, nil)
func ConvertAll(opts Options, in *AudioData, inCount int, logger *zap.Logger) (*AudioData, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidConfig)
	}
	c, err := New(opts, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	out := NewAudioData(opts.Format, opts.Channels, int(c.OutSamples(inCount)))
	n, err := c.Convert(out, out.Samples, in, inCount)
	if err != nil {
		return nil, err
	}

	for {
		if out.Samples-n < drainChunk {
			out = grow(out, n, drainChunk)
		}
		got, err := c.Convert(out.Window(n, out.Samples-n), out.Samples-n, nil, 0)
		if err != nil {
			return nil, err
		}
		n += got
		if got == 0 {
			break
		}
	}
	return out.Window(0, n), nil
}

// grow returns a buffer with room for extra more samples after the first n.
func grow(a *AudioData, n, extra int) *AudioData {
	g := NewAudioData(a.Format, a.Channels, n+extra)
	for i, p := range a.Bytes(n) {
		copy(g.Planes[i], p)
	}
	return g
}
