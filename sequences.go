// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package randcore

import (
	"context"
	"sync"
)

// Unbounded denotes an effectively unlimited sequence length, the Go analog
// of the source's Long.MAX_VALUE sentinel for ints/longs/doubles/gaussians.
const Unbounded int64 = -1

// sequenceBuffer is the channel buffer depth used by the lazy sequence
// producers below. It is small enough that an abandoned consumer does not
// let entropy debits run far ahead of what was actually read.
const sequenceBuffer = 64

// Ints returns a channel carrying n uniform int32 values in [origin, bound),
// the Go analog of the source's Prng.ints(n, origin, bound) stream. Pass n =
// Unbounded for an effectively unlimited sequence; the caller must then
// cancel ctx to stop production. Closing ctx early always stops production
// promptly; it does not rewind entropy already debited for values generated
// but not yet read.
func Ints(ctx context.Context, p Prng, n int64, origin, bound int32) <-chan int32 {
	out := make(chan int32, sequenceBuffer)
	go func() {
		defer close(out)
		for i := int64(0); n == Unbounded || i < n; i++ {
			v, err := p.NextIntRange(origin, bound)
			if err != nil {
				return
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Longs is the int64 analog of Ints.
func Longs(ctx context.Context, p Prng, n int64, origin, bound int64) <-chan int64 {
	out := make(chan int64, sequenceBuffer)
	go func() {
		defer close(out)
		for i := int64(0); n == Unbounded || i < n; i++ {
			v, err := p.NextLongRange(origin, bound)
			if err != nil {
				return
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Doubles returns a channel carrying n uniform float64 values in [0, 1).
func Doubles(ctx context.Context, p Prng, n int64) <-chan float64 {
	out := make(chan float64, sequenceBuffer)
	go func() {
		defer close(out)
		for i := int64(0); n == Unbounded || i < n; i++ {
			select {
			case out <- p.NextDouble():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Gaussians returns a channel carrying n standard-normal float64 values.
func Gaussians(ctx context.Context, p Prng, n int64) <-chan float64 {
	out := make(chan float64, sequenceBuffer)
	go func() {
		defer close(out)
		for i := int64(0); n == Unbounded || i < n; i++ {
			select {
			case out <- p.NextGaussian():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// IntsParallel fans n int32 values out across workers goroutines, all
// driving the same Prng. This may over-consume entropy if the returned
// channel is truncated by the caller before all workers observe ctx
// cancellation: each worker has already called NextIntRange (and
// therefore debited entropy) for any value still in flight when the
// consumer stops reading. Use Ints for the non-parallel, exactly-accounted
// variant.
func IntsParallel(ctx context.Context, p Prng, n int64, origin, bound int32, workers int) <-chan int32 {
	if workers < 1 {
		workers = 1
	}
	out := make(chan int32, sequenceBuffer)
	var wg sync.WaitGroup
	perWorker := int64(-1)
	if n != Unbounded {
		perWorker = n / int64(workers)
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		share := perWorker
		if n != Unbounded && w == workers-1 {
			share = n - perWorker*int64(workers-1)
		}
		go func(share int64) {
			defer wg.Done()
			for i := int64(0); share == Unbounded || i < share; i++ {
				v, err := p.NextIntRange(origin, bound)
				if err != nil {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}(share)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// NextElement uniformly selects one element of s, debiting one
// NextIntRange(0, len(s)) worth of entropy. It is a package-level function
// rather than a Prng method because Go methods cannot introduce additional
// type parameters.
func NextElement[T any](p Prng, s []T) (T, error) {
	var zero T
	if len(s) == 0 {
		return zero, ErrInvalidBound
	}
	i, err := p.NextIntBound(int32(len(s)))
	if err != nil {
		return zero, err
	}
	return s[i], nil
}

// NextEnum uniformly selects one of variants, the generic-enum analog of
// NextElement for a fixed variant set.
func NextEnum[T any](p Prng, variants ...T) (T, error) {
	return NextElement(p, variants)
}
