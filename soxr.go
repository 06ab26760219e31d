package swresample

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tphakala/go-swresample/internal/soxr"
)

// BackendSoxr is the registry name of the soxr backend.
const BackendSoxr = "soxr"

// Cutoff limits accepted by the soxr backend.
const (
	soxrMinCutoff = 0.8
	soxrMaxCutoff = 0.995
)

func init() {
	Register(BackendSoxr, BackendFunc(createSoxr))
}

var soxrDatatypes = map[SampleFormat]soxr.Datatype{
	SampleFmtS16P: soxr.Int16S,
	SampleFmtS16:  soxr.Int16I,
	SampleFmtS32P: soxr.Int32S,
	SampleFmtS32:  soxr.Int32I,
	SampleFmtFLTP: soxr.Float32S,
	SampleFmtFLT:  soxr.Float32I,
	SampleFmtDBLP: soxr.Float64S,
	SampleFmtDBL:  soxr.Float64I,
}

type flushState int

const (
	stateNormal flushState = iota
	stateFlushing
	stateDrained
)

func (s flushState) String() string {
	switch s {
	case stateNormal:
		return "normal"
	case stateFlushing:
		return "flushing"
	case stateDrained:
		return "drained"
	default:
		return fmt.Sprintf("flushState(%d)", int(s))
	}
}

type soxrResampler struct {
	handle  *soxr.Soxr
	inRate  float64
	outRate float64
	format  SampleFormat

	channels int
	state    flushState
	// delayFixup is the backend delay released by Flush; it is added back
	// to Delay and OutSamples so both stay continuous across the flush.
	delayFixup float64

	logger *zap.Logger
}

var _ Resampler = (*soxrResampler)(nil)

// soxrQuality maps the host precision and cutoff onto a backend quality spec.
func soxrQuality(cfg *ResampleConfig) soxr.QualitySpec {
	var flags soxr.Flags
	if cfg.Cheby {
		flags = soxr.HIPrecClock | soxr.RolloffNone
	}
	q := soxr.NewQualitySpec(soxr.Recipe(int(cfg.Precision-2)/4), flags)
	q.Precision = cfg.Precision
	if cfg.Cutoff != 0 {
		q.PassbandEnd = min(max(cfg.Cutoff, soxrMinCutoff), soxrMaxCutoff)
	}
	return q
}

func createSoxr(prev Resampler, cfg ResampleConfig) (Resampler, error) {
	if prev != nil {
		if err := prev.Close(); err != nil {
			return nil, err
		}
	}
	log := cfg.logger().With(zap.String("backend", BackendSoxr))

	dt, ok := soxrDatatypes[cfg.Format]
	if !ok {
		log.Error("unsupported sample format", zap.Stringer("format", cfg.Format))
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, cfg.Format)
	}

	io := soxr.NewIOSpec(dt, dt)
	q := soxrQuality(&cfg)
	handle, err := soxr.Create(float64(cfg.InRate), float64(cfg.OutRate), cfg.Channels, &io, &q)
	if err != nil {
		log.Error("soxr_create failed", zap.Error(err))
		return nil, fmt.Errorf("soxr create: %w", err)
	}

	log.Debug("soxr resampler created",
		zap.Int("in_rate", cfg.InRate),
		zap.Int("out_rate", cfg.OutRate),
		zap.Stringer("format", cfg.Format),
		zap.Int("channels", cfg.Channels),
		zap.Float64("precision", q.Precision),
		zap.Float64("passband_end", q.PassbandEnd))

	return &soxrResampler{
		handle:   handle,
		inRate:   float64(cfg.InRate),
		outRate:  float64(cfg.OutRate),
		format:   cfg.Format,
		channels: cfg.Channels,
		logger:   log,
	}, nil
}

// InRate returns the input rate the backend was created with.
func (r *soxrResampler) InRate() float64 { return r.inRate }

// OutRate returns the output rate the backend was created with.
func (r *soxrResampler) OutRate() float64 { return r.outRate }

func (r *soxrResampler) Process(dst *AudioData, dstSize int, src *AudioData, srcSize int) (int, int, error) {
	if r.handle == nil {
		return -1, 0, ErrClosed
	}

	channels := r.channels
	if src != nil {
		channels = src.Channels
	}

	var in [][]byte
	if srcSize > 0 {
		if src == nil {
			return -1, 0, fmt.Errorf("%w: %d input samples with nil source", ErrProcess, srcSize)
		}
		if r.state != stateNormal {
			if err := r.restart(); err != nil {
				return -1, 0, err
			}
		}
		in = src.Planes
	}

	if err := r.handle.SetNumChannels(channels); err != nil {
		return -1, 0, fmt.Errorf("%w: %w", ErrProcess, err)
	}
	r.channels = channels

	var out [][]byte
	if dst != nil {
		out = dst.Planes
	}

	consumed, produced, err := r.handle.Process(in, srcSize, out, dstSize)
	if err != nil {
		r.logger.Debug("soxr process failed", zap.Error(err))
		return -1, 0, fmt.Errorf("%w: %w", ErrProcess, err)
	}

	if srcSize == 0 {
		switch {
		case produced < dstSize:
			r.state = stateDrained
		case r.state == stateNormal:
			r.state = stateFlushing
		}
	}
	return produced, consumed, nil
}

// restart returns a flushed backend to its initial state so a new stream
// can start on the same handle. The caller reapplies the channel count.
func (r *soxrResampler) restart() error {
	if err := r.handle.Clear(); err != nil {
		return fmt.Errorf("%w: %w", ErrProcess, err)
	}
	r.logger.Debug("soxr restarted after flush", zap.Stringer("state", r.state))
	r.state = stateNormal
	r.delayFixup = 0
	return nil
}

func (r *soxrResampler) Flush() error {
	if r.handle == nil {
		return ErrClosed
	}
	// Already flushing or drained; the fixup from the first flush stands.
	if r.state != stateNormal {
		return nil
	}
	if err := r.handle.SetNumChannels(r.channels); err != nil {
		return fmt.Errorf("%w: %w", ErrProcess, err)
	}

	before := r.handle.Delay()
	if _, _, err := r.handle.Process(nil, 0, nil, 0); err != nil {
		return fmt.Errorf("%w: %w", ErrProcess, err)
	}
	if _, _, err := r.handle.Process([][]byte{}, 0, nil, 0); err != nil {
		return fmt.Errorf("%w: %w", ErrProcess, err)
	}
	r.delayFixup = before - r.handle.Delay()
	r.state = stateFlushing
	return nil
}

func (r *soxrResampler) SetCompensation(int, int) error {
	return fmt.Errorf("%w: soxr has no compensation", ErrNotSupported)
}

func (r *soxrResampler) pending() float64 {
	d := r.handle.Delay()
	if r.state != stateNormal {
		d += r.delayFixup
	}
	// The flush target is rounded to whole samples, so the fixup can be
	// slightly negative once everything has been delivered.
	return max(d, 0)
}

func (r *soxrResampler) Delay(base int64) int64 {
	if r.handle == nil {
		return 0
	}
	return int64(r.pending()/r.outRate*float64(base) + .5)
}

func (r *soxrResampler) InvertInitialBuffer(_, _ *AudioData, _ int) (int, int, error) {
	if r.handle == nil {
		return 0, 0, ErrClosed
	}
	return 0, 0, nil
}

func (r *soxrResampler) OutSamples(inSamples int64) int64 {
	if r.handle == nil {
		return 0
	}
	out := r.outRate/r.inRate*float64(inSamples) + r.pending()
	return int64(out + 1 + .5)
}

func (r *soxrResampler) Close() error {
	if r.handle == nil {
		return nil
	}
	r.handle.Delete()
	r.handle = nil
	return nil
}
