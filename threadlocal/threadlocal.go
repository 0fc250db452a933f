// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package threadlocal implements a per-thread PRNG. Go has no per-OS-thread
// storage analogous to Java's ThreadLocal (goroutines are not pinned to
// OS threads and migrate across them freely), so this package substitutes
// a sync.Pool: each call checks out a private instance, uses it, and
// returns it, giving every concurrent caller an instance no other
// goroutine is using at the same moment without ever sharing algorithmic
// state. This is an approximation of thread affinity, not a reproduction
// of it; see DESIGN.md for the tradeoff.
package threadlocal

import (
	"sync"

	"github.com/sixafter/randcore"
)

// Supplier creates a new Prng instance for a pool slot the first time it
// is needed.
type Supplier func() (randcore.Prng, error)

// ThreadLocalPrng is a per-thread PRNG.
type ThreadLocalPrng struct {
	pool     sync.Pool
	supplier Supplier
	poolErr  error
}

// New constructs a ThreadLocalPrng from supplier. supplier is not called
// until the first Next* operation.
func New(supplier Supplier) *ThreadLocalPrng {
	t := &ThreadLocalPrng{supplier: supplier}
	t.pool.New = func() any {
		p, err := t.supplier()
		if err != nil {
			t.poolErr = err
			return nil
		}
		return p
	}
	return t
}

// checkout returns a pooled Prng instance, or the error supplier last
// produced if construction failed.
func (t *ThreadLocalPrng) checkout() (randcore.Prng, error) {
	v := t.pool.Get()
	if v == nil {
		return nil, t.poolErr
	}
	return v.(randcore.Prng), nil
}

func (t *ThreadLocalPrng) release(p randcore.Prng) {
	t.pool.Put(p)
}

// NextBytes fills out with random bytes using a pooled instance.
func (t *ThreadLocalPrng) NextBytes(out []byte) {
	p, err := t.checkout()
	if err != nil {
		return
	}
	defer t.release(p)
	p.NextBytes(out)
}

// NextInt returns a uniform int32 from a pooled instance.
func (t *ThreadLocalPrng) NextInt() int32 {
	p, err := t.checkout()
	if err != nil {
		return 0
	}
	defer t.release(p)
	return p.NextInt()
}

// NextIntBound returns a uniform int32 in [0, bound) from a pooled instance.
func (t *ThreadLocalPrng) NextIntBound(bound int32) (int32, error) {
	p, err := t.checkout()
	if err != nil {
		return 0, err
	}
	defer t.release(p)
	return p.NextIntBound(bound)
}

// NextIntRange returns a uniform int32 in [origin, bound) from a pooled
// instance.
func (t *ThreadLocalPrng) NextIntRange(origin, bound int32) (int32, error) {
	p, err := t.checkout()
	if err != nil {
		return 0, err
	}
	defer t.release(p)
	return p.NextIntRange(origin, bound)
}

// NextLong returns a uniform int64 from a pooled instance.
func (t *ThreadLocalPrng) NextLong() int64 {
	p, err := t.checkout()
	if err != nil {
		return 0
	}
	defer t.release(p)
	return p.NextLong()
}

// NextLongBound returns a uniform int64 in [0, bound) from a pooled
// instance.
func (t *ThreadLocalPrng) NextLongBound(bound int64) (int64, error) {
	p, err := t.checkout()
	if err != nil {
		return 0, err
	}
	defer t.release(p)
	return p.NextLongBound(bound)
}

// NextLongRange returns a uniform int64 in [origin, bound) from a pooled
// instance.
func (t *ThreadLocalPrng) NextLongRange(origin, bound int64) (int64, error) {
	p, err := t.checkout()
	if err != nil {
		return 0, err
	}
	defer t.release(p)
	return p.NextLongRange(origin, bound)
}

// NextBoolean returns a random bool from a pooled instance.
func (t *ThreadLocalPrng) NextBoolean() bool {
	p, err := t.checkout()
	if err != nil {
		return false
	}
	defer t.release(p)
	return p.NextBoolean()
}

// NextFloat returns a uniform float32 in [0, 1) from a pooled instance.
func (t *ThreadLocalPrng) NextFloat() float32 {
	p, err := t.checkout()
	if err != nil {
		return 0
	}
	defer t.release(p)
	return p.NextFloat()
}

// NextDouble returns a uniform float64 in [0, 1) from a pooled instance.
func (t *ThreadLocalPrng) NextDouble() float64 {
	p, err := t.checkout()
	if err != nil {
		return 0
	}
	defer t.release(p)
	return p.NextDouble()
}

// NextGaussian returns a standard-normal float64 from a pooled instance.
func (t *ThreadLocalPrng) NextGaussian() float64 {
	p, err := t.checkout()
	if err != nil {
		return 0
	}
	defer t.release(p)
	return p.NextGaussian()
}

// WithProbability returns true with probability p, using a pooled instance.
func (t *ThreadLocalPrng) WithProbability(p float64) bool {
	inst, err := t.checkout()
	if err != nil {
		return false
	}
	defer t.release(inst)
	return inst.WithProbability(p)
}

// SetSeed is a no-op: reseeding a ThreadLocalPrng is handled per-instance
// by the reseeder, not by a top-level call.
func (t *ThreadLocalPrng) SetSeed([]byte) error { return nil }

// SetSeedLong is a no-op; see SetSeed.
func (t *ThreadLocalPrng) SetSeedLong(int64) {}

// Seed checks out a pooled instance and returns its seed. Because there is
// no single shared instance, this reflects only whichever instance was
// checked out, not "the" seed of the ThreadLocalPrng as a whole.
func (t *ThreadLocalPrng) Seed() []byte {
	p, err := t.checkout()
	if err != nil {
		return nil
	}
	defer t.release(p)
	return p.Seed()
}

// GetNewSeedLength checks out a pooled instance and returns its reseed
// length; see Seed's caveat.
func (t *ThreadLocalPrng) GetNewSeedLength() int {
	p, err := t.checkout()
	if err != nil {
		return 0
	}
	defer t.release(p)
	return p.GetNewSeedLength()
}

// EntropyBits checks out a pooled instance and returns its entropy count;
// see Seed's caveat.
func (t *ThreadLocalPrng) EntropyBits() int64 {
	p, err := t.checkout()
	if err != nil {
		return 0
	}
	defer t.release(p)
	return p.EntropyBits()
}

// RegisterWithReseeder is a no-op on ThreadLocalPrng itself: per-instance
// registration, if any, is the Supplier's responsibility (see
// ReseedingThreadLocalPrng, which wires this automatically).
func (t *ThreadLocalPrng) RegisterWithReseeder(randcore.Reseeder) {}

// Dump checks out a pooled instance and returns its debug string; see
// Seed's caveat.
func (t *ThreadLocalPrng) Dump() string {
	p, err := t.checkout()
	if err != nil {
		return "threadlocal.ThreadLocalPrng{unavailable}"
	}
	defer t.release(p)
	return p.Dump()
}

var _ randcore.Prng = (*ThreadLocalPrng)(nil)
