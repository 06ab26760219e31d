// Package engine implements the rate-conversion core: a soxr-style DFT
// pre-stage for integer upsampling, a polyphase FIR stage with cubic
// coefficient interpolation for the fractional part of the ratio, and a 2:1
// decimator that band-limits downsampled output.
package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-swresample/internal/simdops"
)

// Resampler converts a single channel between two fixed sample rates.
//
// Type parameter F must be float32 or float64 and controls the precision of
// internal processing.
//
// Architecture (matching soxr):
//   - Integer upsampling ratios: single DFT stage
//   - Non-integer upsampling: DFT 2x pre-stage + polyphase stage
//   - Downsampling: polyphase stage to twice the output rate + 2:1
//     decimator; the polyphase stage is skipped for exact halving
type Resampler[F simdops.Float] struct {
	inputRate  float64
	outputRate float64
	ratio      float64 // outputRate / inputRate
	spec       Spec

	preStage       *DFTStage[F]
	polyphaseStage *PolyphaseStage[F]
	decimator      *DecimatorStage[F]

	samplesIn  int64
	samplesOut int64
}

// NewResampler creates a resampler for the given sample rates and spec.
func NewResampler[F simdops.Float](inputRate, outputRate float64, spec Spec) (*Resampler[F], error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("sample rates must be positive: input=%f, output=%f", inputRate, outputRate)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	ratio := outputRate / inputRate
	r := &Resampler[F]{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      ratio,
		spec:       spec,
	}

	// A DFT pre-stage only makes sense when upsampling.
	if ratio >= 1.0 {
		if isIntegerRatio(ratio) {
			dftStage, err := NewDFTStage[F](int(math.Round(ratio)), spec)
			if err != nil {
				return nil, fmt.Errorf("failed to create DFT stage: %w", err)
			}
			r.preStage = dftStage
			return r, nil
		}

		const preUpsampleFactor = 2
		dftStage, err := NewDFTStage[F](preUpsampleFactor, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create DFT pre-stage: %w", err)
		}
		r.preStage = dftStage

		// soxr designs the polyphase filter from the total io ratio.
		polyphaseRatio := outputRate / (inputRate * preUpsampleFactor)
		polyStage, err := NewPolyphaseStage[F](polyphaseRatio, inputRate/outputRate, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create polyphase stage: %w", err)
		}
		r.polyphaseStage = polyStage
		return r, nil
	}

	if !isIntegerRatio(decimationFactor * ratio) {
		polyStage, err := NewDownsamplingStage[F](ratio, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create polyphase stage: %w", err)
		}
		r.polyphaseStage = polyStage
	}

	decimator, err := NewDecimatorStage[F](spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create decimation stage: %w", err)
	}
	r.decimator = decimator

	return r, nil
}

// Process resamples the input samples. The returned slice is owned by the
// caller.
func (r *Resampler[F]) Process(input []F) ([]F, error) {
	if len(input) == 0 {
		return []F{}, nil
	}

	r.samplesIn += int64(len(input))

	intermediate := input
	var err error
	if r.preStage != nil {
		intermediate, err = r.preStage.Process(input)
		if err != nil {
			return nil, fmt.Errorf("pre-stage processing failed: %w", err)
		}
	}

	output := intermediate
	if r.polyphaseStage != nil {
		output, err = r.polyphaseStage.Process(intermediate)
		if err != nil {
			return nil, fmt.Errorf("polyphase stage processing failed: %w", err)
		}
	}

	if r.decimator != nil {
		output, err = r.decimator.Process(output)
		if err != nil {
			return nil, fmt.Errorf("decimation stage processing failed: %w", err)
		}
	}

	r.samplesOut += int64(len(output))
	return output, nil
}

// Flush pushes the filter tail through every stage and returns the result.
// Each call appends a fresh block of zeros, so callers should flush once at
// end of stream.
func (r *Resampler[F]) Flush() ([]F, error) {
	var output []F

	if r.preStage != nil {
		intermediate, err := r.preStage.Flush()
		if err != nil {
			return nil, err
		}

		if r.polyphaseStage != nil && len(intermediate) > 0 {
			output, err = r.polyphaseStage.Process(intermediate)
			if err != nil {
				return nil, err
			}
		} else {
			output = intermediate
		}
	}

	if r.polyphaseStage != nil {
		polyFlush, err := r.polyphaseStage.Flush()
		if err != nil {
			return nil, err
		}
		output = append(output, polyFlush...)
	}

	if r.decimator != nil {
		head, err := r.decimator.Process(output)
		if err != nil {
			return nil, err
		}
		tail, err := r.decimator.Flush()
		if err != nil {
			return nil, err
		}
		output = append(head, tail...)
	}

	r.samplesOut += int64(len(output))
	return output, nil
}

// Reset clears internal state so the resampler can start a new stream.
// Filter coefficients are kept.
func (r *Resampler[F]) Reset() {
	if r.preStage != nil {
		r.preStage.Reset()
	}
	if r.polyphaseStage != nil {
		r.polyphaseStage.Reset()
	}
	if r.decimator != nil {
		r.decimator.Reset()
	}
	r.samplesIn = 0
	r.samplesOut = 0
}

// GetRatio returns the resampling ratio (output/input).
func (r *Resampler[F]) GetRatio() float64 {
	return r.ratio
}

// Spec returns the filter spec the resampler was built with.
func (r *Resampler[F]) Spec() Spec {
	return r.spec
}

// Stages convolve over full windows only, so the first output is centered
// half a window into the input. lead returns that offset in input samples.
func (r *Resampler[F]) lead() float64 {
	lead := 0.0
	inter := 1.0
	if r.preStage != nil && r.preStage.factor > 1 {
		lead += float64(r.preStage.tapsPerPhase) / latencyDivisor
		inter = float64(r.preStage.factor)
	}
	if r.polyphaseStage != nil {
		lead += float64(r.polyphaseStage.tapsPerPhase) / latencyDivisor / inter
		inter *= r.polyphaseStage.ratio
	}
	if r.decimator != nil {
		lead += float64(r.decimator.numTaps-1) / latencyDivisor / inter
	}
	return lead
}

// PrimeLength returns the number of leading zeros to feed a fresh resampler
// so that output sample 0 is centered on input sample 0.
func (r *Resampler[F]) PrimeLength() int {
	return int(math.Round(r.lead()))
}

// Latency returns the filter group delay in output samples.
func (r *Resampler[F]) Latency() int {
	return int(math.Round(r.lead() * r.ratio))
}

// Pending returns the number of input-side samples held in stage history.
func (r *Resampler[F]) Pending() int {
	n := 0
	if r.preStage != nil {
		n += len(r.preStage.history)
	}
	if r.polyphaseStage != nil {
		n += len(r.polyphaseStage.history)
	}
	if r.decimator != nil {
		n += len(r.decimator.history)
	}
	return n
}

// GetStatistics returns processing statistics.
func (r *Resampler[F]) GetStatistics() map[string]int64 {
	return map[string]int64{
		"samplesIn":  r.samplesIn,
		"samplesOut": r.samplesOut,
	}
}

// isIntegerRatio checks if the ratio is an integer (within tolerance).
func isIntegerRatio(ratio float64) bool {
	const tolerance = 1e-9
	rounded := math.Round(ratio)
	return math.Abs(ratio-rounded) < tolerance && rounded >= 1.0
}
