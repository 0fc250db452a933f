// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package threadlocal

import "github.com/sixafter/randcore"

// Loop is the subset of reseed.Loop's public surface this package depends
// on, kept narrow to avoid an import cycle between threadlocal and reseed.
type Loop interface {
	Register(p randcore.Prng)
}

// ReseedingThreadLocalPrng composes a ThreadLocalPrng with a background
// reseed.Loop: the first access on each pooled slot instantiates a PRNG
// via the wrapped Supplier and registers it with loop.
// Go has no per-thread teardown hook to deregister on "thread exit", and
// this type never calls Unregister: an instance the pool drops stays in
// the loop's registration set, held by the loop, until the caller
// unregisters it there.
type ReseedingThreadLocalPrng struct {
	*ThreadLocalPrng
}

// NewReseeding constructs a ReseedingThreadLocalPrng. Each new pooled
// instance created by supplier is registered with loop before first use.
func NewReseeding(supplier Supplier, loop Loop) *ReseedingThreadLocalPrng {
	wrapped := func() (randcore.Prng, error) {
		p, err := supplier()
		if err != nil {
			return nil, err
		}
		loop.Register(p)
		return p, nil
	}
	return &ReseedingThreadLocalPrng{ThreadLocalPrng: New(wrapped)}
}
