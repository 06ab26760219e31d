// Command swr-resample converts WAV files between sample rates through the
// swresample host and inspects resampler settings.
//
// Usage:
//
//	swr-resample convert --rate 48000 input.wav output.wav
//	swr-resample convert --format s16 --precision 28 --bit-depth 24 in.wav out.wav
//	swr-resample delay --in-rate 44100 --rate 48000
//	swr-resample filter --precision 24 --cutoff 0.95
//	swr-resample formats
//
// Settings are read from swr-resample.yaml (current directory or the user
// config directory), SWR_* environment variables and flags, in increasing
// order of precedence.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
