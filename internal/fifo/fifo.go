// Package fifo provides a growable ring buffer for holding converted samples
// until the caller has room for them.
package fifo

import "github.com/tphakala/go-swresample/internal/simdops"

const (
	minCapacity  = 64
	growthFactor = 2
)

// Ring is a FIFO of samples backed by a power-of-two circular buffer.
// It grows on Write and never drops data. A Ring is not safe for concurrent
// use; each channel of a converter owns its own.
type Ring[F simdops.Float] struct {
	data []F
	mask int
	head int // read index, unmasked
	size int
}

// New returns a ring with room for at least capacity samples.
func New[F simdops.Float](capacity int) *Ring[F] {
	n := roundPow2(max(capacity, minCapacity))
	return &Ring[F]{data: make([]F, n), mask: n - 1}
}

func roundPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Len returns the number of buffered samples.
func (r *Ring[F]) Len() int { return r.size }

// Cap returns the current capacity.
func (r *Ring[F]) Cap() int { return len(r.data) }

// Write appends samples, growing the ring if needed.
func (r *Ring[F]) Write(samples []F) {
	if len(samples) == 0 {
		return
	}
	if r.size+len(samples) > len(r.data) {
		r.grow(r.size + len(samples))
	}

	tail := (r.head + r.size) & r.mask
	n := copy(r.data[tail:min(len(r.data), tail+len(samples))], samples)
	copy(r.data, samples[n:])
	r.size += len(samples)
}

// Read moves up to len(dst) samples into dst and returns how many were
// copied.
func (r *Ring[F]) Read(dst []F) int {
	n := r.Peek(dst)
	r.Discard(n)
	return n
}

// Peek copies up to len(dst) samples into dst without consuming them.
func (r *Ring[F]) Peek(dst []F) int {
	n := min(len(dst), r.size)
	if n == 0 {
		return 0
	}
	head := r.head & r.mask
	first := copy(dst[:n], r.data[head:])
	copy(dst[first:n], r.data)
	return n
}

// Discard drops up to n samples from the front and returns how many were
// dropped.
func (r *Ring[F]) Discard(n int) int {
	n = min(max(n, 0), r.size)
	r.head = (r.head + n) & r.mask
	r.size -= n
	return n
}

// Clear empties the ring and keeps its storage.
func (r *Ring[F]) Clear() {
	r.head = 0
	r.size = 0
}

func (r *Ring[F]) grow(need int) {
	n := len(r.data)
	for n < need {
		n *= growthFactor
	}
	data := make([]F, n)
	r.Peek(data)
	r.data = data
	r.mask = n - 1
	r.head = 0
}
