package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-swresample/internal/filter"
	"github.com/tphakala/go-swresample/internal/simdops"
)

// DFTStage upsamples by an integer factor using a polyphase decomposition of
// a Kaiser lowpass, so inserted zeros are never multiplied.
type DFTStage[F simdops.Float] struct {
	factor int

	// polyCoeffs[phase][tap], stored reversed for ConvolveValid.
	polyCoeffs   [][]F
	tapsPerPhase int

	// For 2x half-band filters phase 0 reduces to a single scaled tap.
	isHalfBand      bool
	phase0TapOffset int
	phase0TapScale  F

	history   []F
	outputBuf []F
	phaseBufs [][]F

	ops *simdops.Ops[F]
}

// NewDFTStage creates an integer upsampling stage. A factor of 1 is a
// passthrough.
func NewDFTStage[F simdops.Float](factor int, spec Spec) (*DFTStage[F], error) {
	if factor < 1 {
		return nil, fmt.Errorf("upsampling factor must be >= 1: %d", factor)
	}

	ops := simdops.For[F]()
	if factor == 1 {
		return &DFTStage[F]{factor: 1, ops: ops}, nil
	}

	// soxr's DFT stage Fc is 0.4778 of Nyquist; our design normalizes
	// Nyquist to 0.5 and the output rate is factor times higher.
	cutoff := soxrDFTStageFc / float64(factor)
	transitionBW := transitionBWFactor / float64(factor)

	coeffs, err := filter.DesignLowPassFilterAuto(cutoff, transitionBW, spec.Attenuation(), 1.0)
	if err != nil {
		return nil, fmt.Errorf("failed to design DFT filter: %w", err)
	}

	tapsPerPhase := (len(coeffs) + factor - 1) / factor
	polyCoeffs := make([][]F, factor)
	for phase := range factor {
		polyCoeffs[phase] = make([]F, tapsPerPhase)
		for tap := range tapsPerPhase {
			if idx := tap*factor + phase; idx < len(coeffs) {
				polyCoeffs[phase][tapsPerPhase-1-tap] = F(coeffs[idx] * float64(factor))
			}
		}
	}

	s := &DFTStage[F]{
		factor:         factor,
		polyCoeffs:     polyCoeffs,
		tapsPerPhase:   tapsPerPhase,
		phase0TapScale: 1,
		history:        make([]F, 0, tapsPerPhase*historyBufferMultiplier),
		phaseBufs:      make([][]F, factor),
		ops:            ops,
	}
	if factor == halfBandFactor {
		s.detectHalfBand()
	}
	return s, nil
}

func (s *DFTStage[F]) detectHalfBand() {
	const threshold = 1e-8

	significant, idx := 0, 0
	var val F
	for i, c := range s.polyCoeffs[0] {
		if math.Abs(float64(c)) > threshold {
			significant++
			idx = i
			val = c
		}
	}
	if significant == 1 && math.Abs(float64(val)-1.0) < 0.01 {
		s.isHalfBand = true
		s.phase0TapOffset = idx
		s.phase0TapScale = val
	}
}

// Process upsamples input. Output for the last tapsPerPhase-1 input samples
// is held back until more input (or a flush) arrives.
func (s *DFTStage[F]) Process(input []F) ([]F, error) {
	if s.factor == 1 {
		return input, nil
	}
	if len(input) == 0 {
		return []F{}, nil
	}

	s.history = append(s.history, input...)
	numAvailable := len(s.history)
	if numAvailable < s.tapsPerPhase {
		return []F{}, nil
	}

	numProcessable := numAvailable - s.tapsPerPhase + 1
	numOutput := numProcessable * s.factor
	if cap(s.outputBuf) < numOutput {
		s.outputBuf = make([]F, numOutput)
	} else {
		s.outputBuf = s.outputBuf[:numOutput]
	}

	// Chunks keep the working set in L2.
	for start := 0; start < numProcessable; start += l2CacheChunkSize {
		end := min(start+l2CacheChunkSize, numProcessable)
		s.processChunk(s.history[start:end+s.tapsPerPhase-1], s.outputBuf[start*s.factor:end*s.factor], end-start)
	}

	copy(s.history, s.history[numProcessable:])
	s.history = s.history[:numAvailable-numProcessable]

	result := make([]F, numOutput)
	copy(result, s.outputBuf)
	return result, nil
}

func (s *DFTStage[F]) processChunk(hist, out []F, n int) {
	for phase := range s.factor {
		if cap(s.phaseBufs[phase]) < n {
			s.phaseBufs[phase] = make([]F, n)
		}
		s.phaseBufs[phase] = s.phaseBufs[phase][:n]
	}

	if s.isHalfBand {
		p0 := s.phaseBufs[0]
		for i := range n {
			p0[i] = hist[i+s.phase0TapOffset] * s.phase0TapScale
		}
		s.ops.ConvolveValid(s.phaseBufs[1], hist, s.polyCoeffs[1])
	} else {
		s.ops.ConvolveValidMulti(s.phaseBufs, hist, s.polyCoeffs)
	}

	if s.factor == halfBandFactor {
		s.ops.Interleave2(out, s.phaseBufs[0], s.phaseBufs[1])
		return
	}
	for i := range n {
		base := i * s.factor
		for phase := range s.factor {
			out[base+phase] = s.phaseBufs[phase][i]
		}
	}
}

// Flush pads the history with zeros and returns the filter tail.
func (s *DFTStage[F]) Flush() ([]F, error) {
	if s.factor == 1 || len(s.history) == 0 {
		return []F{}, nil
	}
	return s.Process(make([]F, s.tapsPerPhase))
}

// Reset clears the history.
func (s *DFTStage[F]) Reset() {
	s.history = s.history[:0]
}
