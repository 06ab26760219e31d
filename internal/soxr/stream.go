package soxr

import (
	"github.com/tphakala/go-swresample/internal/engine"
	"github.com/tphakala/go-swresample/internal/fifo"
	"github.com/tphakala/go-swresample/internal/simdops"
)

// stream is one channel of a conversion: an engine plus the converted
// samples waiting for output space.
type stream interface {
	push(src []byte, dt Datatype, l layout, n int) error
	drain() error
	pull(dst []byte, dt Datatype, l layout, n int, gain float64) int64
	buffered() int
	reset() error
}

type channelStream[F simdops.Float] struct {
	eng     *engine.Resampler[F]
	out     *fifo.Ring[F]
	prime   int // leading zeros that center the filter on the first input
	scratch []F
}

func newChannelStream[F simdops.Float](inRate, outRate float64, spec engine.Spec) (*channelStream[F], error) {
	eng, err := engine.NewResampler[F](inRate, outRate, spec)
	if err != nil {
		return nil, err
	}
	c := &channelStream[F]{
		eng:   eng,
		out:   fifo.New[F](0),
		prime: eng.PrimeLength(),
	}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *channelStream[F]) buf(n int) []F {
	if cap(c.scratch) < n {
		c.scratch = make([]F, n)
	}
	return c.scratch[:n]
}

func (c *channelStream[F]) feed(x []F) error {
	y, err := c.eng.Process(x)
	if err != nil {
		return err
	}
	c.out.Write(y)
	return nil
}

func (c *channelStream[F]) push(src []byte, dt Datatype, l layout, n int) error {
	if n == 0 {
		return nil
	}
	x := c.buf(n)
	decode(x, src, dt, l)
	return c.feed(x)
}

// drain pushes the filter tail out. Zeros matching the priming are fed
// first so the last input sample reaches the center of every stage.
func (c *channelStream[F]) drain() error {
	if c.prime > 0 {
		if err := c.feed(make([]F, c.prime)); err != nil {
			return err
		}
	}
	y, err := c.eng.Flush()
	if err != nil {
		return err
	}
	c.out.Write(y)
	return nil
}

func (c *channelStream[F]) pull(dst []byte, dt Datatype, l layout, n int, gain float64) int64 {
	y := c.buf(n)
	n = c.out.Read(y)
	return encode(dst, y[:n], dt, l, gain)
}

func (c *channelStream[F]) buffered() int {
	return c.out.Len()
}

func (c *channelStream[F]) reset() error {
	c.eng.Reset()
	c.out.Clear()
	if c.prime == 0 {
		return nil
	}
	return c.feed(make([]F, c.prime))
}
