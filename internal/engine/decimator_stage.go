package engine

import (
	"fmt"

	"github.com/tphakala/go-swresample/internal/filter"
	"github.com/tphakala/go-swresample/internal/simdops"
)

// DecimatorStage halves the sample rate. Its lowpass carries the full
// stopband attenuation of a downsampling chain: the passband ends at
// Spec.PassbandEnd of the output Nyquist and the stopband starts at the
// output Nyquist.
//
// The filter is split into its even and odd taps so each output costs one
// pass over the taps and the discarded samples are never computed.
type DecimatorStage[F simdops.Float] struct {
	even    []F // h[2j]
	odd     []F // h[2j+1]
	numTaps int

	history []F
	evenBuf []F
	oddBuf  []F
	oddOut  []F

	ops *simdops.Ops[F]
}

// NewDecimatorStage creates a 2:1 decimation stage for spec.
func NewDecimatorStage[F simdops.Float](spec Spec) (*DecimatorStage[F], error) {
	pass := spec.passband() * decimatorStopEdge
	coeffs, err := filter.DesignLowPassFilterAuto((pass+decimatorStopEdge)/2, decimatorStopEdge-pass, spec.Attenuation(), 1.0)
	if err != nil {
		return nil, fmt.Errorf("failed to design decimation filter: %w", err)
	}

	s := &DecimatorStage[F]{
		even:    make([]F, (len(coeffs)+1)/2),
		odd:     make([]F, len(coeffs)/2),
		numTaps: len(coeffs),
		history: make([]F, 0, len(coeffs)*historyBufferMultiplier),
		ops:     simdops.For[F](),
	}
	// The designer returns an odd, symmetric filter, so both halves are
	// symmetric too and need no reversal for ConvolveValid.
	for i, c := range coeffs {
		if i%2 == 0 {
			s.even[i/2] = F(c)
		} else {
			s.odd[i/2] = F(c)
		}
	}
	return s, nil
}

// Process filters and decimates input. The last numTaps-1 samples stay in
// history until more input arrives.
func (s *DecimatorStage[F]) Process(input []F) ([]F, error) {
	if len(input) == 0 {
		return []F{}, nil
	}

	s.history = append(s.history, input...)
	histLen := len(s.history)
	if histLen < s.numTaps {
		return []F{}, nil
	}
	numOut := (histLen-s.numTaps)/2 + 1

	nEven := numOut + len(s.even) - 1
	nOdd := numOut + len(s.odd) - 1
	s.evenBuf = resize(s.evenBuf, nEven)
	s.oddBuf = resize(s.oddBuf, nOdd)
	for i := range nEven {
		s.evenBuf[i] = s.history[2*i]
	}
	for i := range nOdd {
		s.oddBuf[i] = s.history[2*i+1]
	}

	out := make([]F, numOut)
	s.oddOut = resize(s.oddOut, numOut)
	s.ops.ConvolveValid(out, s.evenBuf, s.even)
	s.ops.ConvolveValid(s.oddOut, s.oddBuf, s.odd)
	for i, v := range s.oddOut {
		out[i] += v
	}

	consumed := decimationFactor * numOut
	copy(s.history, s.history[consumed:])
	s.history = s.history[:histLen-consumed]
	return out, nil
}

// Flush pads the history with zeros and returns the filter tail.
func (s *DecimatorStage[F]) Flush() ([]F, error) {
	if len(s.history) == 0 {
		return []F{}, nil
	}
	return s.Process(make([]F, s.numTaps))
}

// Reset clears the history.
func (s *DecimatorStage[F]) Reset() {
	s.history = s.history[:0]
}

func resize[F simdops.Float](buf []F, n int) []F {
	if cap(buf) < n {
		return make([]F, n)
	}
	return buf[:n]
}
