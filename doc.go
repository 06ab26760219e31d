// Package swresample is a pluggable audio resampling host with a soxr
// backend, written in pure Go.
//
// The host side mirrors a classic resampler plugin table: a [Backend]
// creates a [Resampler] from a [ResampleConfig], and the [Context] drives
// it with [AudioData] buffers in any of the supported [SampleFormat]s.
// Backends register themselves by name; "soxr" is always available.
//
// # Quick Start
//
// For streaming conversion:
//
//	ctx, err := swresample.New(swresample.Options{
//	    InRate:   44100,
//	    OutRate:  48000,
//	    Format:   swresample.SampleFmtFLTP,
//	    Channels: 2,
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	out := swresample.NewAudioData(swresample.SampleFmtFLTP, 2, 4096)
//	for in := range chunks {
//	    n, err := ctx.Convert(out, out.Samples, in, in.Samples)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    write(out.Window(0, n))
//	}
//
//	// Drain: nil input flushes the filter tail.
//	for {
//	    n, _ := ctx.Convert(out, out.Samples, nil, 0)
//	    if n == 0 {
//	        break
//	    }
//	    write(out.Window(0, n))
//	}
//
// For one-shot conversion of a whole buffer use [ConvertAll].
//
// # Supported Formats
//
// The soxr backend accepts S16, S32, FLT and DBL in both packed and planar
// layouts. U8 and the 64-bit integer formats have no backend mapping and are
// rejected with [ErrUnsupportedFormat].
//
// # Delay
//
// [Context.Delay] reports the samples buffered inside the resampler in the
// requested time base, and [Context.OutSamples] gives an upper bound on the
// output the next call can produce. Both remain consistent across a flush.
//
// # Thread Safety
//
// A [Context] and the [Resampler] it owns are not safe for concurrent use.
// Serialize calls per instance; separate instances are independent.
//
// # Attribution
//
// The rate-conversion core follows libsoxr (https://sourceforge.net/projects/soxr/)
// by Rob Sykes, licensed under LGPL-2.1, and the plugin shape follows FFmpeg's
// libswresample.
package swresample
