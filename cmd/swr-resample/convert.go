package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	swresample "github.com/tphakala/go-swresample"
)

const (
	// wavFormatPCM is the WAVE_FORMAT_PCM audio format tag.
	wavFormatPCM = 1

	// outputMargin pads output buffers beyond the nominal ratio.
	outputMargin = 256
)

func newConvertCommand(a *app) *cobra.Command {
	var cpuProfile string

	cmd := &cobra.Command{
		Use:   "convert <input.wav> <output.wav>",
		Short: "Resample a WAV file",
		Long: `Decode a PCM WAV file, run it through the resampler in the configured
sample format and write the result at the target rate.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cpuProfile != "" {
				stop, err := startCPUProfile(cpuProfile)
				if err != nil {
					return err
				}
				defer stop()
			}

			start := time.Now()
			stats, err := a.convertFile(args[0], args[1])
			if err != nil {
				return err
			}
			stats.print(cmd, args[0], args[1], time.Since(start))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntP("rate", "r", swresample.RateDAT, "Target sample rate in Hz")
	flags.StringP("format", "f", "flt", "Internal sample format: s16, s32, flt, dbl or a planar variant (s16p, s32p, fltp, dblp); support depends on the backend, see formats")
	flags.Float64P("precision", "p", swresample.DefaultPrecision, "Filter precision in bits (15-33)")
	flags.Float64("cutoff", 0, "Passband end as a fraction of Nyquist; 0 keeps the backend default")
	flags.Bool("cheby", false, "Disable passband rolloff")
	flags.String("backend", swresample.BackendSoxr, "Resampler backend")
	flags.Int("bit-depth", 0, "Output bit depth (8, 16, 24, 32); 0 keeps the input depth")
	flags.Int("chunk-size", 4096, "Frames passed to the resampler per call")
	flags.StringVar(&cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")

	bindKey(flags, "rate", "resample.out_rate")
	bindKey(flags, "format", "resample.format")
	bindKey(flags, "precision", "resample.precision")
	bindKey(flags, "cutoff", "resample.cutoff")
	bindKey(flags, "cheby", "resample.cheby")
	bindKey(flags, "backend", "resample.backend")
	bindKey(flags, "bit-depth", "output.bit_depth")
	bindKey(flags, "chunk-size", "output.chunk_size")
	return cmd
}

func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("start CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}

type convertStats struct {
	inRate, outRate int
	channels        int
	inDepth         int
	outDepth        int
	inFrames        int64
	outFrames       int64
}

func (s *convertStats) print(cmd *cobra.Command, in, out string, elapsed time.Duration) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Resampled %s -> %s\n", filepath.Base(in), filepath.Base(out))
	_, _ = fmt.Fprintf(w, "  %d Hz -> %d Hz (%d channels, %d-bit -> %d-bit)\n",
		s.inRate, s.outRate, s.channels, s.inDepth, s.outDepth)
	_, _ = fmt.Fprintf(w, "  %d frames -> %d frames\n", s.inFrames, s.outFrames)
	if secs := elapsed.Seconds(); secs > 0 && s.inRate > 0 {
		_, _ = fmt.Fprintf(w, "  Duration: %.2fs, Speed: %.1fx realtime\n",
			secs, float64(s.inFrames)/float64(s.inRate)/secs)
	}
}

// wavSink writes converted frames to a WAV encoder.
type wavSink struct {
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	bitDepth int
	frames   int64
}

func (s *wavSink) write(src *swresample.AudioData, frames int) error {
	if frames == 0 {
		return nil
	}
	n := encodeFrames(s.buf.Data[:cap(s.buf.Data)], src, frames, s.bitDepth)
	s.buf.Data = s.buf.Data[:n]
	if err := s.enc.Write(s.buf); err != nil {
		return fmt.Errorf("write audio data: %w", err)
	}
	s.buf.Data = s.buf.Data[:cap(s.buf.Data)]
	s.frames += int64(frames)
	return nil
}

func (a *app) convertFile(inPath, outPath string) (stats *convertStats, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = in.Close() }()

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", inPath)
	}
	format := dec.Format()
	inDepth := int(dec.BitDepth)
	if err := validBitDepth(inDepth); err != nil {
		return nil, fmt.Errorf("%s: %w", inPath, err)
	}

	outDepth := a.cfg.Output.BitDepth
	if outDepth == 0 {
		outDepth = inDepth
	}

	opts := a.cfg.Resample
	opts.InRate = format.SampleRate
	opts.Channels = format.NumChannels
	chunk := a.cfg.Output.ChunkSize

	logger := a.logger.With(zap.String("input", inPath))
	logger.Info("converting",
		zap.Int("in_rate", opts.InRate),
		zap.Int("out_rate", opts.OutRate),
		zap.Int("channels", opts.Channels),
		zap.Stringer("format", opts.Format),
		zap.Int("bit_depth", outDepth))

	ctx, err := swresample.New(opts, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ctx.Close() }()

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	enc := wav.NewEncoder(out, opts.OutRate, outDepth, opts.Channels, wavFormatPCM)
	defer func() {
		// The encoder patches the header sizes on close.
		err = errors.Join(err, enc.Close(), out.Close())
		if err != nil {
			stats = nil
		}
	}()

	outCap := chunk*opts.OutRate/opts.InRate + chunk + outputMargin
	inBuf := swresample.NewAudioData(opts.Format, opts.Channels, chunk)
	outBuf := swresample.NewAudioData(opts.Format, opts.Channels, outCap)
	pcm := &audio.IntBuffer{Data: make([]int, chunk*opts.Channels), Format: format}
	sink := &wavSink{
		enc: enc,
		buf: &audio.IntBuffer{
			Data:           make([]int, outCap*opts.Channels),
			Format:         &audio.Format{NumChannels: opts.Channels, SampleRate: opts.OutRate},
			SourceBitDepth: outDepth,
		},
		bitDepth: outDepth,
	}

	stats = &convertStats{
		inRate:   opts.InRate,
		outRate:  opts.OutRate,
		channels: opts.Channels,
		inDepth:  inDepth,
		outDepth: outDepth,
	}

	for {
		n, err := dec.PCMBuffer(pcm)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read audio data: %w", err)
		}
		frames := n / opts.Channels
		if frames == 0 {
			break
		}
		decodeFrames(inBuf, pcm.Data, frames, inDepth)
		stats.inFrames += int64(frames)

		produced, err := ctx.Convert(outBuf, outCap, inBuf, frames)
		if err != nil {
			return nil, err
		}
		if err := sink.write(outBuf, produced); err != nil {
			return nil, err
		}
	}

	for {
		produced, err := ctx.Convert(outBuf, outCap, nil, 0)
		if err != nil {
			return nil, err
		}
		if err := sink.write(outBuf, produced); err != nil {
			return nil, err
		}
		if produced == 0 {
			break
		}
	}
	stats.outFrames = sink.frames

	logger.Info("conversion finished",
		zap.Int64("in_frames", stats.inFrames),
		zap.Int64("out_frames", stats.outFrames))
	return stats, nil
}
