package swresample

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Resampler is the plugin interface a backend implements. A Resampler is
// bound to one rate pair, format and channel layout for its lifetime.
type Resampler interface {
	// Process converts up to srcSize input samples per channel and writes at
	// most dstSize output samples. srcSize == 0 requests a flush step: the
	// backend drains buffered samples without new input. On failure produced
	// is -1 and consumed is 0.
	Process(dst *AudioData, dstSize int, src *AudioData, srcSize int) (produced, consumed int, err error)

	// Flush marks end of input so the filter tail can be drained by
	// subsequent zero-length Process calls.
	Flush() error

	// SetCompensation stretches or squeezes the stream by sampleDelta samples
	// over compensationDistance samples.
	SetCompensation(sampleDelta, compensationDistance int) error

	// Delay returns the samples buffered inside the resampler, expressed in
	// units of 1/base seconds.
	Delay(base int64) int64

	// InvertInitialBuffer primes the resampler from the start of src.
	// It returns the index and count of samples placed in dst.
	InvertInitialBuffer(dst, src *AudioData, srcSize int) (dstIndex, dstCount int, err error)

	// OutSamples returns an upper bound on the output produced for inSamples
	// more input samples.
	OutSamples(inSamples int64) int64

	// Close releases the backend. Calling Close twice is safe.
	Close() error
}

// FilterType selects the window of the host's built-in filter. Backends
// with their own filter design may ignore it.
type FilterType int

// Filter types.
const (
	FilterCubic FilterType = iota
	FilterBlackmanNuttall
	FilterKaiser
)

// ResampleConfig carries everything a backend needs at creation time. It is
// not consulted afterwards.
type ResampleConfig struct {
	InRate   int
	OutRate  int
	Format   SampleFormat
	Channels int

	// Precision is the target precision in bits.
	Precision float64
	// Cutoff is the passband end as a fraction of Nyquist; 0 keeps the backend default.
	Cutoff float64

	FilterType    FilterType
	FilterSize    int
	PhaseShift    int
	Linear        bool
	KaiserBeta    float64
	ExactRational bool

	// Cheby selects a Chebyshev-like passband: no rolloff and a high
	// precision clock.
	Cheby bool

	// Logger receives backend diagnostics. Nil disables logging.
	Logger *zap.Logger
}

func (c *ResampleConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Backend creates resamplers. prev is the resampler currently occupying the
// slot, or nil; Create releases it before building the replacement.
type Backend interface {
	Create(prev Resampler, cfg ResampleConfig) (Resampler, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(prev Resampler, cfg ResampleConfig) (Resampler, error)

// Create calls f(prev, cfg).
func (f BackendFunc) Create(prev Resampler, cfg ResampleConfig) (Resampler, error) {
	return f(prev, cfg)
}

var registry = struct {
	sync.RWMutex
	backends map[string]Backend
}{backends: make(map[string]Backend)}

// Register makes a backend available under name. It panics if name is
// empty, b is nil, or name is already taken.
func Register(name string, b Backend) {
	if name == "" || b == nil {
		panic("swresample: Register with empty name or nil backend")
	}
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.backends[name]; dup {
		panic(fmt.Sprintf("swresample: backend %q registered twice", name))
	}
	registry.backends[name] = b
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	registry.RLock()
	defer registry.RUnlock()
	b, ok := registry.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return b, nil
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.backends))
	for name := range registry.backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
