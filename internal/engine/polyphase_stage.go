package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-swresample/internal/simdops"
)

// PolyphaseStage resamples by an arbitrary ratio with a polyphase FIR bank.
//
// The phase accumulator is fixed point: the integer part selects input sample
// and phase, the low phaseFracBits select a point between adjacent phases.
// Coefficients between phases come from a cubic fit,
// coef(x) = a + x*(b + x*(c + x*d)).
type PolyphaseStage[F simdops.Float] struct {
	coeffsA [][]F
	coeffsB [][]F
	coeffsC [][]F
	coeffsD [][]F

	numPhases    int
	tapsPerPhase int
	ratio        float64

	at   int64
	step int64

	history   []F
	outputBuf []F

	ops *simdops.Ops[F]
}

// NewPolyphaseStage creates the fractional stage that follows the DFT
// pre-stage when upsampling.
//
// ratio is output/input for this stage. totalIORatio is input/output for the
// whole chain and drives the passband edge.
func NewPolyphaseStage[F simdops.Float](ratio, totalIORatio float64, spec Spec) (*PolyphaseStage[F], error) {
	if ratio <= 0 {
		return nil, fmt.Errorf("ratio must be positive: %f", ratio)
	}
	numPhases, _ := findRationalApprox(ratio)
	return newPolyphaseStage[F](ComputePolyphaseFilterParams(numPhases, ratio, totalIORatio, spec))
}

// NewDownsamplingStage creates the polyphase stage of a downsampling chain.
// It converts from the input rate to twice the output rate; ratio is
// output/input of the whole chain.
func NewDownsamplingStage[F simdops.Float](ratio float64, spec Spec) (*PolyphaseStage[F], error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, fmt.Errorf("downsampling ratio must be in (0, 1): %f", ratio)
	}
	numPhases, _ := findRationalApprox(decimationFactor * ratio)
	return newPolyphaseStage[F](ComputeDownsamplingFilterParams(numPhases, ratio, spec))
}

func newPolyphaseStage[F simdops.Float](params PolyphaseFilterParams) (*PolyphaseStage[F], error) {
	bank, err := designPolyphaseFilter(params)
	if err != nil {
		return nil, fmt.Errorf("failed to design polyphase filter: %w", err)
	}

	// The step keeps its fractional part; rounding it to an integer phase
	// count would leave the sub-phase interpolation unused.
	numPhases := params.NumPhases
	step := int64(math.Round((1.0 / params.Ratio) * float64(numPhases) * float64(int64(1)<<phaseFracBits)))

	s := &PolyphaseStage[F]{
		numPhases:    numPhases,
		tapsPerPhase: bank.tapsPerPhase,
		ratio:        params.Ratio,
		step:         step,
		history:      make([]F, 0, bank.tapsPerPhase*historyBufferMultiplier),
		ops:          simdops.For[F](),
	}
	s.buildCubicCoeffs(bank)
	return s, nil
}

func (s *PolyphaseStage[F]) buildCubicCoeffs(bank *polyphaseFilter) {
	n, taps := s.numPhases, s.tapsPerPhase

	coeff := func(phase, tap int) float64 {
		phase %= n
		if phase < 0 {
			phase += n
		}
		idx := tap*n + phase
		if idx < 0 || idx >= len(bank.coeffs) {
			return 0
		}
		return bank.coeffs[idx]
	}

	alloc := func() [][]F {
		rows := make([][]F, n)
		for i := range rows {
			rows[i] = make([]F, taps)
		}
		return rows
	}
	s.coeffsA, s.coeffsB, s.coeffsC, s.coeffsD = alloc(), alloc(), alloc(), alloc()

	for phase := range n {
		for tap := range taps {
			f0 := coeff(phase, tap)
			f1 := coeff(phase+1, tap)
			fm1 := coeff(phase-1, tap)
			f2 := coeff(phase+cubicPhaseOffset, tap)

			c := cubicCenterCoeff*(f1+fm1) - f0
			d := (f2 - f1 + fm1 - f0 - cubicCMultiplier*c) / cubicDivisor
			b := f1 - f0 - d - c

			rev := taps - 1 - tap
			s.coeffsA[phase][rev] = F(f0)
			s.coeffsB[phase][rev] = F(b)
			s.coeffsC[phase][rev] = F(c)
			s.coeffsD[phase][rev] = F(d)
		}
	}
}

// Process resamples input and returns a caller-owned slice.
func (s *PolyphaseStage[F]) Process(input []F) ([]F, error) {
	if len(input) == 0 {
		return []F{}, nil
	}

	s.history = append(s.history, input...)
	histLen := len(s.history)
	numIn := histLen - s.tapsPerPhase + 1
	if numIn <= 0 {
		return []F{}, nil
	}

	phases := int64(s.numPhases)
	limit := int64(numIn) * phases << phaseFracBits
	numOut := int((limit - s.at + s.step - 1) / s.step)
	if numOut <= 0 {
		return []F{}, nil
	}
	if cap(s.outputBuf) < numOut {
		s.outputBuf = make([]F, numOut)
	} else {
		s.outputBuf = s.outputBuf[:numOut]
	}

	const fracMask = int64(1)<<phaseFracBits - 1
	fracScale := F(1.0 / float64(int64(1)<<phaseFracBits))

	at := s.at
	n := 0
	for at < limit {
		whole := at >> phaseFracBits
		div := int(whole / phases)
		phase := int(whole % phases)
		if div+s.tapsPerPhase > histLen {
			break
		}
		x := F(at&fracMask) * fracScale

		s.outputBuf[n] = s.ops.CubicInterpDot(s.history[div:div+s.tapsPerPhase],
			s.coeffsA[phase], s.coeffsB[phase], s.coeffsC[phase], s.coeffsD[phase], x)
		n++
		at += s.step
	}

	consumed := int(at>>phaseFracBits) / s.numPhases
	if consumed > 0 && consumed <= histLen {
		copy(s.history, s.history[consumed:])
		s.history = s.history[:histLen-consumed]
	}
	s.at = at - int64(consumed*s.numPhases)<<phaseFracBits

	result := make([]F, n)
	copy(result, s.outputBuf[:n])
	return result, nil
}

// Flush pushes zeros through the bank to drain the filter tail.
func (s *PolyphaseStage[F]) Flush() ([]F, error) {
	return s.Process(make([]F, s.tapsPerPhase*historyBufferMultiplier))
}

// Reset clears history and the phase accumulator.
func (s *PolyphaseStage[F]) Reset() {
	s.at = 0
	s.history = s.history[:0]
}
