package soxr

import (
	"fmt"

	"github.com/tphakala/go-swresample/internal/engine"
)

// Recipe selects a quality preset. Numbering follows libsoxr.
type Recipe int

const (
	QQ     Recipe = 0 // quick: 8-bit cubic-grade filter
	LQ     Recipe = 1
	MQ     Recipe = 2
	Bits16 Recipe = 3
	Bits20 Recipe = 4
	Bits24 Recipe = 5
	Bits28 Recipe = 6
	Bits32 Recipe = 7

	HQ  = Bits20
	VHQ = Bits28
)

// MaxRecipe is the highest recipe index.
const MaxRecipe = Bits32

// Flags modify a quality spec.
type Flags uint

const (
	RolloffSmall    Flags = 0 // <= 0.01 dB passband droop
	RolloffMedium   Flags = 1 // <= 0.35 dB
	RolloffNone     Flags = 2 // steep filter for Chebyshev-style configurations
	HIPrecClock     Flags = 8
	DoublePrecision Flags = 16
	VR              Flags = 32 // variable rate, not supported

	rolloffMask Flags = 3
)

// linearPhase is the only phase response the engine produces.
const linearPhase = 50

// QualitySpec controls filter design for a conversion.
type QualitySpec struct {
	// Precision in bits; stopband attenuation is (Precision+1)*6.02 dB.
	Precision float64
	// PhaseResponse: 0 minimum, 50 linear, 100 maximum. Only linear is
	// implemented and other values are accepted but ignored.
	PhaseResponse float64
	// PassbandEnd as a fraction of the lower Nyquist frequency, in (0, 1).
	PassbandEnd float64
	// StopbandBegin as a fraction of the lower Nyquist frequency, >= 1.
	StopbandBegin float64
	Flags         Flags
}

type recipeDefaults struct {
	precision float64
	passband  float64
}

var recipes = [...]recipeDefaults{
	QQ:     {8, 0.875},
	LQ:     {16, 0.875},
	MQ:     {16, 0.891},
	Bits16: {16, 0.913},
	Bits20: {20, 0.913},
	Bits24: {24, 0.913},
	Bits28: {28, 0.913},
	Bits32: {32, 0.913},
}

// NewQualitySpec returns the preset for recipe with flags applied. Recipes
// out of range are clamped.
func NewQualitySpec(recipe Recipe, flags Flags) QualitySpec {
	recipe = min(max(recipe, QQ), MaxRecipe)
	d := recipes[recipe]
	return QualitySpec{
		Precision:     d.precision,
		PhaseResponse: linearPhase,
		PassbandEnd:   d.passband,
		StopbandBegin: 1,
		Flags:         flags,
	}
}

func (q QualitySpec) validate() error {
	if q.Flags&VR != 0 {
		return fmt.Errorf("%w: variable-rate resampling", ErrNotSupported)
	}
	if q.Flags&rolloffMask > RolloffNone {
		return fmt.Errorf("%w: unknown rolloff %d", ErrInvalidQuality, q.Flags&rolloffMask)
	}
	if q.PassbandEnd <= 0 || q.PassbandEnd >= 1 {
		return fmt.Errorf("%w: passband end %.4f outside (0, 1)", ErrInvalidQuality, q.PassbandEnd)
	}
	if q.StopbandBegin != 0 && q.StopbandBegin < 1 {
		return fmt.Errorf("%w: stopband begin %.4f below Nyquist", ErrInvalidQuality, q.StopbandBegin)
	}
	if err := q.engineSpec().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuality, err)
	}
	return nil
}

func (q QualitySpec) engineSpec() engine.Spec {
	var rolloff engine.Rolloff
	switch q.Flags & rolloffMask {
	case RolloffMedium:
		rolloff = engine.RolloffMedium
	case RolloffNone:
		rolloff = engine.RolloffNone
	default:
		rolloff = engine.RolloffSmall
	}
	return engine.Spec{
		Precision:   q.Precision,
		PassbandEnd: q.PassbandEnd,
		Rolloff:     rolloff,
	}
}

// doublePrecision reports whether the engines should run in float64.
func (q QualitySpec) doublePrecision() bool {
	const singlePrecisionBits = 20
	return q.Precision > singlePrecisionBits || q.Flags&DoublePrecision != 0
}

// IOSpec describes the caller's buffer formats.
type IOSpec struct {
	Itype Datatype
	Otype Datatype
	// Scale is a linear gain applied to output samples. Zero means 1.
	Scale float64
}

// NewIOSpec returns an IOSpec with unity gain.
func NewIOSpec(itype, otype Datatype) IOSpec {
	return IOSpec{Itype: itype, Otype: otype, Scale: 1}
}

func (io IOSpec) validate() error {
	if !io.Itype.Valid() {
		return fmt.Errorf("%w: input %s", ErrUnsupportedDatatype, io.Itype)
	}
	if !io.Otype.Valid() {
		return fmt.Errorf("%w: output %s", ErrUnsupportedDatatype, io.Otype)
	}
	return nil
}

func (io IOSpec) gain() float64 {
	if io.Scale == 0 {
		return 1
	}
	return io.Scale
}
