// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package blocking implements EntropyBlockingPrng: a decorator that,
// whenever a call would exceed the inner PRNG's entropy balance, first
// reseeds it synchronously via its own SeedSource (not a background
// reseed.Loop). The call then proceeds whether or not that reseed
// succeeded.
package blocking

import (
	"sync"

	"github.com/sixafter/randcore"
)

// EntropyBlockingPrng wraps an inner randcore.Prng, checking its entropy
// balance before every output call and blocking on a synchronous
// SeedSource draw when insufficient. This is the one PRNG variant in this
// module whose output methods may block.
type EntropyBlockingPrng struct {
	inner  randcore.Prng
	source randcore.SeedSource

	mu      sync.Mutex
	lastErr error
}

// New constructs an EntropyBlockingPrng wrapping inner, drawing reseed
// material from source.
func New(inner randcore.Prng, source randcore.SeedSource) *EntropyBlockingPrng {
	return &EntropyBlockingPrng{inner: inner, source: source}
}

// LastReseedError returns the error from the most recent synchronous
// reseed attempt, or nil if the last attempt (if any) succeeded. Not part
// of Prng; a SeedSource failure or timeout surfaces here rather than
// through the blocked output call.
func (e *EntropyBlockingPrng) LastReseedError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ensure performs one synchronous reseed attempt when inner holds fewer
// than required bits of entropy, then returns. It does not retry a failed
// attempt and does not check that the new balance reaches required (a
// seed shorter than required/8 bytes leaves it below). Concurrent
// callers serialize on e.mu so that a burst of calls triggers a single
// reseed rather than one per caller.
func (e *EntropyBlockingPrng) ensure(required int64) {
	if e.inner.EntropyBits() >= required {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inner.EntropyBits() >= required {
		return
	}
	length := e.inner.GetNewSeedLength()
	seed, err := e.source.Generate(length)
	if err != nil {
		e.lastErr = err
		return
	}
	e.lastErr = e.inner.SetSeed(seed)
}

func (e *EntropyBlockingPrng) NextBytes(out []byte) {
	e.ensure(int64(len(out)) * 8)
	e.inner.NextBytes(out)
}

func (e *EntropyBlockingPrng) NextInt() int32 {
	e.ensure(32)
	return e.inner.NextInt()
}

func (e *EntropyBlockingPrng) NextIntBound(bound int32) (int32, error) {
	e.ensure(32)
	return e.inner.NextIntBound(bound)
}

func (e *EntropyBlockingPrng) NextIntRange(origin, bound int32) (int32, error) {
	e.ensure(32)
	return e.inner.NextIntRange(origin, bound)
}

func (e *EntropyBlockingPrng) NextLong() int64 {
	e.ensure(64)
	return e.inner.NextLong()
}

func (e *EntropyBlockingPrng) NextLongBound(bound int64) (int64, error) {
	e.ensure(64)
	return e.inner.NextLongBound(bound)
}

func (e *EntropyBlockingPrng) NextLongRange(origin, bound int64) (int64, error) {
	e.ensure(64)
	return e.inner.NextLongRange(origin, bound)
}

func (e *EntropyBlockingPrng) NextBoolean() bool {
	e.ensure(1)
	return e.inner.NextBoolean()
}

func (e *EntropyBlockingPrng) NextFloat() float32 {
	e.ensure(24)
	return e.inner.NextFloat()
}

func (e *EntropyBlockingPrng) NextDouble() float64 {
	e.ensure(53)
	return e.inner.NextDouble()
}

func (e *EntropyBlockingPrng) NextGaussian() float64 {
	e.ensure(53)
	return e.inner.NextGaussian()
}

func (e *EntropyBlockingPrng) WithProbability(p float64) bool {
	e.ensure(1)
	return e.inner.WithProbability(p)
}

func (e *EntropyBlockingPrng) SetSeed(seed []byte) error { return e.inner.SetSeed(seed) }
func (e *EntropyBlockingPrng) SetSeedLong(seed int64)    { e.inner.SetSeedLong(seed) }
func (e *EntropyBlockingPrng) Seed() []byte              { return e.inner.Seed() }
func (e *EntropyBlockingPrng) GetNewSeedLength() int     { return e.inner.GetNewSeedLength() }
func (e *EntropyBlockingPrng) EntropyBits() int64        { return e.inner.EntropyBits() }
func (e *EntropyBlockingPrng) Dump() string              { return e.inner.Dump() }

// RegisterWithReseeder is a no-op: an EntropyBlockingPrng deliberately
// reseeds synchronously from its own SeedSource rather than participating
// in a background reseed.Loop.
func (e *EntropyBlockingPrng) RegisterWithReseeder(randcore.Reseeder) {}

var _ randcore.Prng = (*EntropyBlockingPrng)(nil)
