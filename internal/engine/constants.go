package engine

// Spec limits and defaults.
const (
	// MinPrecision is the lowest supported precision (soxr's quick quality).
	MinPrecision = 8

	// MaxPrecision is the highest supported precision.
	MaxPrecision = 33

	// DefaultPassbandEnd is used when Spec.PassbandEnd is zero.
	DefaultPassbandEnd = 0.99

	// Passband edge response levels for the rolloff settings (soxr rolloffs[]).
	rolloffSmallDrop  = -0.01
	rolloffMediumDrop = -0.35
)

// Filter design constants.
const (
	// Stopband attenuation calculation: att = (bits + 1) * 6.02 dB
	dbPerBit = 6.0206 // 20 * log10(2)

	nyquistFraction    = 0.5  // Half the sample rate (Nyquist)
	transitionBWFactor = 0.05 // Transition bandwidth relative to Nyquist

	transitionBandwidthHalf = 0.5   // Half factor for transition bandwidth calculation
	invFRespThreshold       = 0.999 // Guard against division by zero in rolloff compensation

	historyBufferMultiplier = 2 // Extra capacity for history buffers

	// Process in chunks that fit in L2 cache (~256KB).
	l2CacheChunkSize = 4096

	rationalApproxTolerance = 1e-10

	// Loop unrolling mask (factor 4).
	loopUnrollMask = 3

	// Half-band filters are used for 2x upsampling where phase 0 is a passthrough.
	halfBandFactor = 2

	// soxr-derived filter design constants.
	soxrDFTStageFc       = 0.4778321 // soxr's Fc for DFT stage (1.0 = Nyquist)
	imageRejectionFactor = 2.0       // Factor for image rejection frequency calculation
	soxrToOurNormScale   = 2.0       // Scale to convert soxr [0,1] to our [0,0.5] normalization

	soxrUpsamplingFsCoeff = 0.7 // Fs = 2 - (Fp1 + (Fs1 - Fp1) * 0.7)

	// Downsampling runs a polyphase stage to twice the output rate and then
	// a 2:1 decimator that carries the full stopband attenuation.
	decimationFactor   = 2
	foldbackStopFactor = 3.0  // polyphase stopband, 1.5x the output rate
	decimatorStopEdge  = 0.25 // output Nyquist as a fraction of the decimator input rate

	// Polyphase bank sizing.
	minTapsPerPhase = 8
	maxBankTaps     = 1<<16 - 1

	// lsxInvFResp constants (soxr filter.c).
	// sinePhi polynomial: ((a3*a + a2)*a + a1)*a + a0
	sinePhiCoeffA3   = 2.0517e-07
	sinePhiCoeffA2   = -1.1303e-04
	sinePhiCoeffA1   = 0.023154
	sinePhiConstant  = 0.55924
	dbToLinearFactor = 0.05
	halfAmplitude    = 0.5

	// Input guards for lsxInvFResp.
	minAttenuation = 1.0
	maxAttenuation = 300.0
	sineEpsilon    = 1e-10

	// Catmull-Rom style coefficient interpolation between phases.
	// f(x) = a + b*x + c*x² + d*x³
	cubicPhaseOffset = 2
	cubicCenterCoeff = 0.5
	cubicDivisor     = 6.0
	cubicCMultiplier = 4.0

	// Sub-phase precision of the polyphase accumulator.
	phaseFracBits = 16

	// Latency is half the FIR length for symmetric filters.
	latencyDivisor = 2
)
