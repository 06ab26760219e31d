package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	swresample "github.com/tphakala/go-swresample"
	"github.com/tphakala/go-swresample/internal/engine"
	"github.com/tphakala/go-swresample/internal/filter"
	"github.com/tphakala/go-swresample/internal/mathutil"
)

// The prototype is the 2:1 anti-alias filter: frequencies below are
// fractions of the input rate, so the output Nyquist sits at 0.25.
const decimatorStopEdge = 0.25

func newFilterCommand(a *app) *cobra.Command {
	var (
		points int
		table  bool
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Design the lowpass prototype for the current settings and report its response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := designPrototype(a.cfg.Resample.Precision, a.cfg.Resample.Cutoff, points)
			if err != nil {
				return err
			}
			d.print(cmd.OutOrStdout(), table)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64P("precision", "p", swresample.DefaultPrecision, "Filter precision in bits")
	flags.Float64("cutoff", 0, "Passband end as a fraction of Nyquist; 0 selects the engine default")
	flags.IntVar(&points, "points", 4096, "Frequency points to evaluate")
	flags.BoolVar(&table, "table", false, "Print the magnitude response table")
	bindKey(flags, "precision", "resample.precision")
	bindKey(flags, "cutoff", "resample.cutoff")
	return cmd
}

type prototype struct {
	precision   float64
	attenuation float64
	passEdge    float64
	beta        float64
	taps        int
	resp        filter.Response
}

func designPrototype(precision, cutoff float64, points int) (*prototype, error) {
	if precision == 0 {
		precision = swresample.DefaultPrecision
	}
	if cutoff == 0 {
		cutoff = engine.DefaultPassbandEnd
	}
	spec := engine.SpecForBits(precision)
	spec.PassbandEnd = cutoff
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	att := spec.Attenuation()
	passEdge := cutoff * decimatorStopEdge
	trBw := decimatorStopEdge - passEdge
	coeffs, err := filter.DesignLowPassFilterAuto((passEdge+decimatorStopEdge)/2, trBw, att, 1)
	if err != nil {
		return nil, err
	}

	return &prototype{
		precision:   precision,
		attenuation: att,
		passEdge:    passEdge,
		beta:        mathutil.KaiserBetaWithTrBw(att, trBw),
		taps:        len(coeffs),
		resp:        filter.ComputeFrequencyResponse(coeffs, points),
	}, nil
}

func (p *prototype) print(w io.Writer, table bool) {
	_, _ = fmt.Fprintf(w, "precision:         %.1f bits\n", p.precision)
	_, _ = fmt.Fprintf(w, "attenuation:       %.1f dB\n", p.attenuation)
	_, _ = fmt.Fprintf(w, "taps:              %d\n", p.taps)
	_, _ = fmt.Fprintf(w, "kaiser beta:       %.3f\n", p.beta)
	_, _ = fmt.Fprintf(w, "passband ripple:   %.5f dB (0 to %.4f)\n", p.resp.PassbandRipple(p.passEdge), p.passEdge)
	_, _ = fmt.Fprintf(w, "stopband:          %.1f dB (from %.4f)\n", p.resp.StopbandAttenuation(decimatorStopEdge), decimatorStopEdge)

	if !table {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "freq\tdB\t")
	for i, f := range p.resp.Frequencies {
		_, _ = fmt.Fprintf(tw, "%.5f\t%.2f\t\n", f, filter.MagnitudeDB(p.resp.Magnitude[i]))
	}
	_ = tw.Flush()
}
