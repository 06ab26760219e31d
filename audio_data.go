package swresample

import "fmt"

// AudioData describes a caller-owned audio buffer. Planar formats carry one
// plane per channel; packed formats carry a single interleaved plane.
//
// Samples is the capacity in samples per channel. Neither the host nor the
// backend keeps a reference to the planes after a call returns.
type AudioData struct {
	Format   SampleFormat
	Channels int
	Planar   bool
	BPS      int // bytes per sample
	Samples  int
	Planes   [][]byte
}

// NewAudioData allocates a zeroed buffer holding samples samples for each
// of channels channels.
func NewAudioData(format SampleFormat, channels, samples int) *AudioData {
	a := &AudioData{
		Format:   format,
		Channels: channels,
		Planar:   format.IsPlanar(),
		BPS:      format.BytesPerSample(),
		Samples:  samples,
	}
	n := a.planeCount()
	a.Planes = make([][]byte, n)
	for i := range n {
		a.Planes[i] = make([]byte, a.planeBytes(samples))
	}
	return a
}

// WrapAudioData describes existing planes without copying. The capacity is
// the smallest plane's worth of samples.
func WrapAudioData(format SampleFormat, channels int, planes [][]byte) (*AudioData, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}
	a := &AudioData{
		Format:   format,
		Channels: channels,
		Planar:   format.IsPlanar(),
		BPS:      format.BytesPerSample(),
		Planes:   planes,
	}
	if len(planes) < a.planeCount() {
		return nil, fmt.Errorf("%w: need %d planes, have %d", ErrInvalidConfig, a.planeCount(), len(planes))
	}
	a.Samples = -1
	for _, p := range planes[:a.planeCount()] {
		n := len(p) / a.planeBytes(1)
		if a.Samples < 0 || n < a.Samples {
			a.Samples = n
		}
	}
	return a, nil
}

func (a *AudioData) planeCount() int {
	if a.Planar {
		return a.Channels
	}
	return 1
}

// planeBytes returns the plane size needed for n samples per channel.
func (a *AudioData) planeBytes(n int) int {
	if a.Planar {
		return n * a.BPS
	}
	return n * a.BPS * a.Channels
}

// Window returns a view of samples [offset, offset+n) sharing a's memory.
func (a *AudioData) Window(offset, n int) *AudioData {
	start := a.planeBytes(offset)
	end := a.planeBytes(offset + n)
	w := *a
	w.Samples = n
	w.Planes = make([][]byte, len(a.Planes))
	for i, p := range a.Planes {
		w.Planes[i] = p[start:end:end]
	}
	return &w
}

// Bytes returns the first n samples of every plane.
func (a *AudioData) Bytes(n int) [][]byte {
	return a.Window(0, n).Planes
}

// check verifies that a can hold n samples per channel in format f.
func (a *AudioData) check(f SampleFormat, n int) error {
	if a.Format != f {
		return fmt.Errorf("%w: buffer format %v, want %v", ErrInvalidConfig, a.Format, f)
	}
	if n > a.Samples {
		return fmt.Errorf("%w: %d samples requested, capacity %d", ErrInvalidConfig, n, a.Samples)
	}
	if len(a.Planes) < a.planeCount() {
		return fmt.Errorf("%w: need %d planes, have %d", ErrInvalidConfig, a.planeCount(), len(a.Planes))
	}
	return nil
}
