package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is returned when a Spec cannot be used for filter design.
var ErrInvalidSpec = errors.New("invalid engine spec")

// Rolloff selects how much passband rolloff the filter design compensates for.
type Rolloff int

const (
	// RolloffSmall keeps passband droop below 0.01 dB.
	RolloffSmall Rolloff = iota

	// RolloffMedium allows up to 0.35 dB of droop for a shorter filter.
	RolloffMedium

	// RolloffNone skips rolloff compensation entirely. The passband edge is
	// used as given, which yields the steep "brick wall" response requested
	// by Chebyshev-style configurations.
	RolloffNone
)

// String returns the rolloff name.
func (r Rolloff) String() string {
	switch r {
	case RolloffSmall:
		return "small"
	case RolloffMedium:
		return "medium"
	case RolloffNone:
		return "none"
	default:
		return fmt.Sprintf("Rolloff(%d)", int(r))
	}
}

// drop returns the response level (dB) at the passband edge for the rolloff.
func (r Rolloff) drop() float64 {
	if r == RolloffMedium {
		return rolloffMediumDrop
	}
	return rolloffSmallDrop
}

// Spec describes the filter the engine designs for one conversion.
type Spec struct {
	// Precision in bits. Stopband attenuation is (Precision+1) * 6.02 dB.
	Precision float64

	// PassbandEnd is the fraction of the lower Nyquist frequency that is
	// preserved. Zero selects DefaultPassbandEnd.
	PassbandEnd float64

	// Rolloff selects passband rolloff compensation.
	Rolloff Rolloff
}

// Validate checks the spec ranges.
func (s Spec) Validate() error {
	if s.Precision < MinPrecision || s.Precision > MaxPrecision {
		return fmt.Errorf("%w: precision %.1f outside [%d, %d] bits", ErrInvalidSpec, s.Precision, MinPrecision, MaxPrecision)
	}
	if s.PassbandEnd < 0 || s.PassbandEnd >= 1 {
		return fmt.Errorf("%w: passband end %.4f outside [0, 1)", ErrInvalidSpec, s.PassbandEnd)
	}
	if s.Rolloff < RolloffSmall || s.Rolloff > RolloffNone {
		return fmt.Errorf("%w: unknown rolloff %d", ErrInvalidSpec, int(s.Rolloff))
	}
	return nil
}

// Attenuation returns the stopband attenuation in dB implied by Precision.
// This matches soxr's formula: att = (bits + 1) * linear_to_dB(2).
func (s Spec) Attenuation() float64 {
	return (s.Precision + 1) * dbPerBit
}

func (s Spec) passband() float64 {
	if s.PassbandEnd == 0 {
		return DefaultPassbandEnd
	}
	return s.PassbandEnd
}

// SpecForBits returns a spec with the given precision and default passband.
func SpecForBits(bits float64) Spec {
	return Spec{Precision: bits}
}
