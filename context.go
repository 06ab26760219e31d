package swresample

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultPrecision is the filter precision in bits used when Options leaves it zero.
const DefaultPrecision = 20

// Limits accepted by the host.
const (
	maxChannels  = 256
	maxRate      = 768000
	minPrecision = 15
	maxPrecision = 33
)

// Options configures a Context.
type Options struct {
	// Backend names a registered backend. Empty selects "soxr".
	Backend string `mapstructure:"backend" yaml:"backend"`

	InRate   int          `mapstructure:"in_rate" yaml:"in_rate"`
	OutRate  int          `mapstructure:"out_rate" yaml:"out_rate"`
	Format   SampleFormat `mapstructure:"format" yaml:"format"`
	Channels int          `mapstructure:"channels" yaml:"channels"`

	// Precision in bits (15-33). Zero selects DefaultPrecision.
	Precision float64 `mapstructure:"precision" yaml:"precision"`

	// Cutoff is the passband end relative to Nyquist (0-1). Zero keeps the
	// backend default.
	Cutoff float64 `mapstructure:"cutoff" yaml:"cutoff"`

	// Cheby disables passband rolloff.
	Cheby bool `mapstructure:"cheby" yaml:"cheby"`

	FilterType    FilterType `mapstructure:"filter_type" yaml:"filter_type"`
	FilterSize    int        `mapstructure:"filter_size" yaml:"filter_size"`
	PhaseShift    int        `mapstructure:"phase_shift" yaml:"phase_shift"`
	Linear        bool       `mapstructure:"linear_interp" yaml:"linear_interp"`
	KaiserBeta    float64    `mapstructure:"kaiser_beta" yaml:"kaiser_beta"`
	ExactRational bool       `mapstructure:"exact_rational" yaml:"exact_rational"`
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.InRate <= 0 || o.OutRate <= 0 {
		return fmt.Errorf("%w: sample rates must be positive", ErrInvalidConfig)
	}

	if o.InRate > maxRate || o.OutRate > maxRate {
		return fmt.Errorf("%w: sample rates above %d Hz", ErrInvalidConfig, maxRate)
	}

	if o.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if o.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	if !o.Format.Valid() {
		return fmt.Errorf("%w: unknown sample format %v", ErrInvalidConfig, o.Format)
	}

	if o.Precision != 0 && (o.Precision < minPrecision || o.Precision > maxPrecision) {
		return fmt.Errorf("%w: precision must be %d-%d bits", ErrInvalidConfig, minPrecision, maxPrecision)
	}

	if o.Cutoff < 0 || o.Cutoff > 1 {
		return fmt.Errorf("%w: cutoff must be in [0, 1]", ErrInvalidConfig)
	}

	return nil
}

func (o *Options) resampleConfig(logger *zap.Logger) ResampleConfig {
	precision := o.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}
	return ResampleConfig{
		InRate:        o.InRate,
		OutRate:       o.OutRate,
		Format:        o.Format,
		Channels:      o.Channels,
		Precision:     precision,
		Cutoff:        o.Cutoff,
		FilterType:    o.FilterType,
		FilterSize:    o.FilterSize,
		PhaseShift:    o.PhaseShift,
		Linear:        o.Linear,
		KaiserBeta:    o.KaiserBeta,
		ExactRational: o.ExactRational,
		Cheby:         o.Cheby,
		Logger:        logger,
	}
}

// Context drives one resampler slot: it owns the backend handle and routes
// conversion, flush and delay calls to it. A Context is not safe for
// concurrent use.
type Context struct {
	opts    Options
	backend Backend
	r       Resampler
	logger  *zap.Logger

	flushed bool
	closed  bool
}

// New validates opts and creates the configured backend. A nil logger
// disables logging.
func New(opts Options, logger *zap.Logger) (*Context, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Backend == "" {
		opts.Backend = BackendSoxr
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b, err := Lookup(opts.Backend)
	if err != nil {
		return nil, err
	}

	c := &Context{
		opts:    opts,
		backend: b,
		logger:  logger,
	}
	if err := c.create(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Context) create() error {
	r, err := c.backend.Create(c.r, c.opts.resampleConfig(c.logger))
	c.r = r
	if err != nil {
		return err
	}
	c.flushed = false
	return nil
}

// Options returns the options the context was created with.
func (c *Context) Options() Options {
	return c.opts
}

// Convert writes up to outCount converted samples per channel to out and
// returns how many were written. A nil in flushes: the first such call marks
// end of input, and repeated calls drain the filter tail until 0 is
// returned. Non-nil input after a flush starts a new stream.
func (c *Context) Convert(out *AudioData, outCount int, in *AudioData, inCount int) (int, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	if out != nil {
		if err := out.check(c.opts.Format, outCount); err != nil {
			return 0, err
		}
	} else if outCount > 0 {
		return 0, fmt.Errorf("%w: nil output with count %d", ErrInvalidConfig, outCount)
	}

	if in == nil {
		if !c.flushed {
			if err := c.r.Flush(); err != nil {
				return 0, err
			}
			c.flushed = true
		}
		produced, _, err := c.r.Process(out, outCount, nil, 0)
		if err != nil {
			return 0, err
		}
		return produced, nil
	}

	if err := in.check(c.opts.Format, inCount); err != nil {
		return 0, err
	}
	if in.Channels != c.opts.Channels {
		return 0, fmt.Errorf("%w: input has %d channels, want %d", ErrInvalidConfig, in.Channels, c.opts.Channels)
	}
	if inCount > 0 {
		c.flushed = false
	}

	produced, consumed, err := c.r.Process(out, outCount, in, inCount)
	if err != nil {
		return 0, err
	}
	if consumed != inCount {
		return produced, fmt.Errorf("%w: consumed %d of %d samples", ErrProcess, consumed, inCount)
	}
	return produced, nil
}

// Delay returns the buffered samples in units of 1/base seconds. Pass the
// output rate to get output samples.
func (c *Context) Delay(base int64) int64 {
	if c.usable() != nil {
		return 0
	}
	return c.r.Delay(base)
}

// OutSamples returns an upper bound on the samples the next Convert with
// inCount input samples can produce.
func (c *Context) OutSamples(inCount int) int64 {
	if c.usable() != nil {
		return 0
	}
	return c.r.OutSamples(int64(inCount))
}

// SetCompensation forwards a drift-compensation request to the backend.
func (c *Context) SetCompensation(sampleDelta, compensationDistance int) error {
	if err := c.usable(); err != nil {
		return err
	}
	return c.r.SetCompensation(sampleDelta, compensationDistance)
}

// Reinit destroys the current resampler and creates a fresh one in the
// same slot with the same options.
func (c *Context) Reinit() error {
	if c.closed {
		return ErrClosed
	}
	if c.r != nil {
		if err := c.r.Close(); err != nil {
			return err
		}
	}
	return c.create()
}

// Close releases the resampler. Calling Close twice is safe.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.r == nil {
		return nil
	}
	err := c.r.Close()
	c.r = nil
	return err
}

func (c *Context) usable() error {
	if c.closed || c.r == nil {
		return ErrClosed
	}
	return nil
}
