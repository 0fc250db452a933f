// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package randcore

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/bits"
	"sync"
)

// Ops wires a concrete algorithm's primitive operations into Base. Go has no
// abstract base class to override; each concrete PRNG constructs a Base with
// the closures below instead, which Base's promoted methods call while
// holding its lock.
type Ops struct {
	// ClassName is used verbatim in Dump's output.
	ClassName string

	// NextBits returns k (1..32) pseudo-random bits, uniformly distributed.
	// Called only while Base's lock is held; must not itself lock or debit.
	NextBits func(k int) uint32

	// SetSeed installs seed as the new algorithmic state. Called only while
	// Base's lock is held.
	SetSeed func(seed []byte) error

	// Seed returns a defensive copy of the seed bytes last installed.
	// Called only while Base's lock is held.
	Seed func() []byte

	// NewSeedLength returns the seed length the reseeder should request for
	// this algorithm's next reseed.
	NewSeedLength func() int

	// DumpFields renders algorithm-specific state for Dump. Optional.
	DumpFields func() string
}

// Base implements the full Prng contract in terms of an Ops value
// supplied by a concrete algorithm. Concrete PRNGs embed *Base so that
// Base's methods are promoted and satisfy Prng without re-implementation.
type Base struct {
	ops     Ops
	entropy Entropy
	mu      sync.Mutex
	self    Prng
}

// NewBase constructs a Base wired to the given Ops. seed is consumed via
// ops.SetSeed to establish the initial state and entropy count. self should
// be the outer concrete PRNG embedding this Base (see BindSelf); until
// BindSelf is called, Base uses itself as the identity passed to a
// registered Reseeder.
func NewBase(ops Ops, seed []byte) (*Base, error) {
	b := &Base{ops: ops, entropy: newEntropy()}
	b.self = b
	if err := b.SetSeed(seed); err != nil {
		return nil, err
	}
	return b, nil
}

// BindSelf records the outer concrete PRNG that embeds this Base. Reseed
// notifications (Entropy.Debit) use self as the Prng identity handed to a
// registered Reseeder, so that the object enqueued for reseeding is the
// same one the caller registered, not the embedded *Base. Concrete
// constructors must call BindSelf once, immediately after embedding.
func (b *Base) BindSelf(self Prng) {
	b.self = self
}

// lockedNextBits returns k pseudo-random bits. Caller must hold b.mu.
func (b *Base) lockedNextBits(k int) uint32 {
	return b.ops.NextBits(k)
}

// NextBytes fills out with random bytes, debiting 8*len(out) bits.
func (b *Base) NextBytes(out []byte) {
	if len(out) == 0 {
		return
	}
	b.mu.Lock()
	i := 0
	for i+4 <= len(out) {
		w := b.lockedNextBits(32)
		out[i] = byte(w >> 24)
		out[i+1] = byte(w >> 16)
		out[i+2] = byte(w >> 8)
		out[i+3] = byte(w)
		i += 4
	}
	if rem := len(out) - i; rem > 0 {
		w := b.lockedNextBits(rem * 8)
		for j := 0; j < rem; j++ {
			out[i+j] = byte(w >> uint(8*(rem-1-j)))
		}
	}
	b.mu.Unlock()
	b.entropy.Debit(b.self, int64(len(out))*8)
}

// NextInt returns a uniform int32, debiting 32 bits.
func (b *Base) NextInt() int32 {
	b.mu.Lock()
	w := b.lockedNextBits(32)
	b.mu.Unlock()
	b.entropy.Debit(b.self, 32)
	return int32(w)
}

// ceilLog2 returns the number of bits needed to represent values in
// [0, n), i.e. ceil(log2(n)) for n > 0.
func ceilLog2(n int64) int64 {
	if n <= 1 {
		return 1
	}
	return int64(bits.Len64(uint64(n - 1)))
}

// lockedBoundedInt32 returns a uniform value in [0, bound) for bound > 0,
// using the classic rejection-sampling algorithm. Caller must hold b.mu.
func (b *Base) lockedBoundedInt32(bound int32) int32 {
	if bound&(bound-1) == 0 {
		return int32((int64(bound) * int64(b.lockedNextBits(31))) >> 31)
	}
	for {
		bits31 := int32(b.lockedNextBits(31))
		val := bits31 % bound
		if bits31-val+(bound-1) >= 0 {
			return val
		}
	}
}

// NextIntBound returns a uniform int32 in [0, bound).
func (b *Base) NextIntBound(bound int32) (int32, error) {
	return b.NextIntRange(0, bound)
}

// NextIntRange returns a uniform int32 in [origin, bound). When the range
// fits in a signed int32 it is sampled directly via NextIntBound(range);
// on overflow a full 32-bit value is sampled and rejected until it falls
// in range.
func (b *Base) NextIntRange(origin, bound int32) (int32, error) {
	if bound <= origin {
		return 0, fmt.Errorf("%w: bound %d must be greater than origin %d", ErrInvalidBound, bound, origin)
	}
	rng := bound - origin
	if rng > 0 {
		b.mu.Lock()
		v := b.lockedBoundedInt32(rng)
		b.mu.Unlock()
		b.entropy.Debit(b.self, ceilLog2(int64(rng)))
		return v + origin, nil
	}
	// Mathematical range exceeds int32: sample and reject.
	b.mu.Lock()
	var v int32
	for {
		v = int32(b.lockedNextBits(32))
		if v >= origin && v < bound {
			break
		}
	}
	b.mu.Unlock()
	b.entropy.Debit(b.self, 32)
	return v, nil
}

// NextLong returns a uniform int64, debiting 64 bits.
func (b *Base) NextLong() int64 {
	b.mu.Lock()
	hi := b.lockedNextBits(32)
	lo := b.lockedNextBits(32)
	b.mu.Unlock()
	b.entropy.Debit(b.self, 64)
	return int64(uint64(hi)<<32 | uint64(lo))
}

// lockedBoundedInt64 returns a uniform value in [0, bound) for bound > 0.
// Caller must hold b.mu.
func (b *Base) lockedBoundedInt64(bound int64) int64 {
	if bound&(bound-1) == 0 {
		hi := uint64(b.lockedNextBits(32))
		lo := uint64(b.lockedNextBits(32))
		full := hi<<32 | lo
		return int64((full >> 1) & uint64(bound-1))
	}
	for {
		hi := uint64(b.lockedNextBits(32))
		lo := uint64(b.lockedNextBits(32))
		bits63 := int64((hi<<32 | lo) >> 1)
		val := bits63 % bound
		if bits63-val+(bound-1) >= 0 {
			return val
		}
	}
}

// NextLongBound returns a uniform int64 in [0, bound).
func (b *Base) NextLongBound(bound int64) (int64, error) {
	return b.NextLongRange(0, bound)
}

// NextLongRange returns a uniform int64 in [origin, bound). When the needed
// bit width exceeds 32 bits, two NextBits(32) calls are composed.
func (b *Base) NextLongRange(origin, bound int64) (int64, error) {
	if bound <= origin {
		return 0, fmt.Errorf("%w: bound %d must be greater than origin %d", ErrInvalidBound, bound, origin)
	}
	rng := bound - origin
	if rng > 0 {
		b.mu.Lock()
		v := b.lockedBoundedInt64(rng)
		b.mu.Unlock()
		b.entropy.Debit(b.self, ceilLog2(rng))
		return v + origin, nil
	}
	b.mu.Lock()
	var v int64
	for {
		hi := uint64(b.lockedNextBits(32))
		lo := uint64(b.lockedNextBits(32))
		v = int64(hi<<32 | lo)
		if v >= origin && v < bound {
			break
		}
	}
	b.mu.Unlock()
	b.entropy.Debit(b.self, 64)
	return v, nil
}

// NextBoolean debits 1 bit.
func (b *Base) NextBoolean() bool {
	b.mu.Lock()
	w := b.lockedNextBits(1)
	b.mu.Unlock()
	b.entropy.Debit(b.self, 1)
	return w != 0
}

// NextFloat debits 24 bits.
func (b *Base) NextFloat() float32 {
	b.mu.Lock()
	w := b.lockedNextBits(24)
	b.mu.Unlock()
	b.entropy.Debit(b.self, 24)
	return float32(w) / float32(1<<24)
}

// NextDouble debits 53 bits.
func (b *Base) NextDouble() float64 {
	b.mu.Lock()
	hi := uint64(b.lockedNextBits(26))
	lo := uint64(b.lockedNextBits(27))
	b.mu.Unlock()
	b.entropy.Debit(b.self, 53)
	return float64(hi<<27|lo) / float64(uint64(1)<<53)
}

// NextGaussian implements the Marsaglia polar method against the
// lock-free cached-Gaussian slot in Entropy. It debits 53 bits per call,
// including calls served from the cache, regardless of how many rejection
// samples were drawn internally.
func (b *Base) NextGaussian() float64 {
	defer b.entropy.Debit(b.self, 53)
	if v, ok := b.entropy.takeCachedGaussian(); ok {
		return v
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	unit := func() float64 {
		hi := uint64(b.lockedNextBits(26))
		lo := uint64(b.lockedNextBits(27))
		return float64(hi<<27|lo) / float64(uint64(1)<<53)
	}
	for {
		v1 := 2*unit() - 1
		v2 := 2*unit() - 1
		s := v1*v1 + v2*v2
		if s > 0 && s < 1 {
			m := math.Sqrt(-2 * math.Log(s) / s)
			b.entropy.storeCachedGaussian(v2 * m)
			return v1 * m
		}
	}
}

// WithProbability returns true with probability p. It short-circuits
// without debiting entropy when p <= 0 or p >= 1.
func (b *Base) WithProbability(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	b.mu.Lock()
	hi := uint64(b.lockedNextBits(26))
	lo := uint64(b.lockedNextBits(27))
	b.mu.Unlock()
	b.entropy.Debit(b.self, 1)
	return float64(hi<<27|lo)/float64(uint64(1)<<53) < p
}

// SetSeed replaces the algorithmic state and raises entropy to
// min(len(seed), maxAccepted)*8 bits, clamped not to decrease. maxAccepted
// is whatever ops.SetSeed accepted; the new entropy floor is computed from
// the actual seed length supplied.
func (b *Base) SetSeed(seed []byte) error {
	b.mu.Lock()
	err := b.ops.SetSeed(seed)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	b.entropy.Credit(int64(len(seed)) * 8)
	return nil
}

// SetSeedLong is the legacy 64-bit seeding path. Base encodes seed as 8
// big-endian bytes and passes them to SetSeed; an error from SetSeed (as
// for algorithms that do not accept an 8-byte seed) is discarded, so the
// call then leaves the PRNG unchanged.
func (b *Base) SetSeedLong(seed int64) {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(seed >> uint(8*(7-i)))
	}
	_ = b.SetSeed(buf)
}

// Seed returns a defensive copy of the seed bytes last installed.
func (b *Base) Seed() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ops.Seed()
}

// GetNewSeedLength returns the seed length the reseeder should request next.
func (b *Base) GetNewSeedLength() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ops.NewSeedLength()
}

// EntropyBits returns the current entropy counter value.
func (b *Base) EntropyBits() int64 {
	return b.entropy.Bits()
}

// RegisterWithReseeder atomically replaces the PRNG's reseeder association.
func (b *Base) RegisterWithReseeder(r Reseeder) {
	b.entropy.RegisterWithReseeder(r)
}

// ReseedFailed reports whether any background reseed attempt for this PRNG
// has failed; the flag is never cleared. Not part of Prng; observable via a
// type assertion for diagnostics.
func (b *Base) ReseedFailed() bool {
	return b.entropy.ReseedFailed()
}

// MarkReseedFailed records that a background reseed attempt for this PRNG
// has failed. Not part of Prng; called by a reseed.Loop via the
// ReseedFailureMarker type assertion on every failed attempt, including the
// first; the loop keeps retrying afterwards.
func (b *Base) MarkReseedFailed() {
	b.entropy.MarkReseedFailed()
}

// Dump returns a debug string: class name, hex-encoded seed, entropy count,
// and subclass-specific fields. The exact format is debug-only.
func (b *Base) Dump() string {
	seed := b.Seed()
	fields := ""
	if b.ops.DumpFields != nil {
		fields = b.ops.DumpFields()
	}
	return fmt.Sprintf("%s{seed=%s entropy=%d%s}", b.ops.ClassName, hex.EncodeToString(seed), b.EntropyBits(), fields)
}
