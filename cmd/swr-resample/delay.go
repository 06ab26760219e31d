package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	swresample "github.com/tphakala/go-swresample"
)

const msPerSecond = 1000

func newDelayCommand(a *app) *cobra.Command {
	var (
		inRate int
		frames int
	)

	cmd := &cobra.Command{
		Use:   "delay",
		Short: "Report resampler delay and output size estimates",
		Long: `Feed silence through a resampler built from the current settings and
report the buffered delay and output estimates after each stage of a stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := a.cfg.Resample
			opts.InRate = inRate
			if opts.Channels == 0 {
				opts.Channels = 1
			}
			report, err := measureDelay(opts, frames, a.cfg.Output.ChunkSize, a.logger)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(tw, "stage\tdelay (samples)\tdelay (ms)\tout estimate\tproduced\n")
			for _, r := range report {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", r.stage, r.delay, r.delayMS, r.estimate, r.produced)
			}
			return tw.Flush()
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&inRate, "in-rate", swresample.RateCD, "Input sample rate in Hz")
	flags.IntVarP(&frames, "frames", "n", swresample.RateCD/10, "Frames of silence to feed")
	flags.IntP("rate", "r", swresample.RateDAT, "Output sample rate in Hz")
	flags.Float64P("precision", "p", swresample.DefaultPrecision, "Filter precision in bits (15-33)")
	bindKey(flags, "rate", "resample.out_rate")
	bindKey(flags, "precision", "resample.precision")
	return cmd
}

type delayRow struct {
	stage    string
	delay    int64 // output-rate samples
	delayMS  int64
	estimate int64 // OutSamples for one more chunk
	produced int64 // cumulative
}

// measureDelay streams frames of silence in chunks, then drains, sampling
// Delay and OutSamples at each stage.
func measureDelay(opts swresample.Options, frames, chunk int, logger *zap.Logger) ([]delayRow, error) {
	ctx, err := swresample.New(opts, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ctx.Close() }()

	outCap := chunk*opts.OutRate/opts.InRate + chunk + outputMargin
	in := swresample.NewAudioData(opts.Format, opts.Channels, chunk)
	out := swresample.NewAudioData(opts.Format, opts.Channels, outCap)

	var (
		rows     []delayRow
		produced int64
	)
	sample := func(stage string) {
		rows = append(rows, delayRow{
			stage:    stage,
			delay:    ctx.Delay(int64(opts.OutRate)),
			delayMS:  ctx.Delay(msPerSecond),
			estimate: ctx.OutSamples(chunk),
			produced: produced,
		})
	}

	sample("start")
	for fed := 0; fed < frames; fed += chunk {
		n, err := ctx.Convert(out, outCap, in, min(chunk, frames-fed))
		if err != nil {
			return nil, err
		}
		produced += int64(n)
	}
	sample("fed")

	for {
		n, err := ctx.Convert(out, outCap, nil, 0)
		if err != nil {
			return nil, err
		}
		produced += int64(n)
		if n == 0 {
			break
		}
	}
	sample("drained")
	return rows, nil
}
