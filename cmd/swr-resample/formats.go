package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	swresample "github.com/tphakala/go-swresample"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List sample formats and which backends accept them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printFormats(cmd.OutOrStdout())
		},
	}
}

func printFormats(w io.Writer) error {
	names := swresample.Backends()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "format\tbytes\tlayout\t%s\n", strings.Join(names, "\t"))

	for _, f := range swresample.SampleFormats() {
		layout := "packed"
		if f.IsPlanar() {
			layout = "planar"
		}
		cols := make([]string, len(names))
		for i, name := range names {
			cols[i] = "no"
			if backendAccepts(name, f) {
				cols[i] = "yes"
			}
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", f, f.BytesPerSample(), layout, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

// backendAccepts reports whether a backend creates a throwaway mono handle for f.
func backendAccepts(name string, f swresample.SampleFormat) bool {
	b, err := swresample.Lookup(name)
	if err != nil {
		return false
	}
	r, err := b.Create(nil, swresample.ResampleConfig{
		InRate:    swresample.RateCD,
		OutRate:   swresample.RateDAT,
		Format:    f,
		Channels:  1,
		Precision: swresample.DefaultPrecision,
	})
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}
