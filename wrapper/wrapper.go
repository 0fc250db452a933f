// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package wrapper

import (
	"encoding/binary"
	"fmt"

	"github.com/sixafter/randcore"
)

// RandomWrapper adapts any foreign PRNG exposing Uint64Source or
// Uint32Source into the Prng contract, maintaining its own entropy
// counter independently of whatever (if any) accounting the foreign PRNG
// does internally.
type RandomWrapper struct {
	*randcore.Base

	foreign any
	use64   bool

	seed      []byte
	knownSeed bool
}

// Wrap constructs a RandomWrapper around foreign. If seed is non-nil it is
// installed via SetSeed immediately; if seed is nil, the wrapper is
// constructed around an already-initialized foreign instance whose seed
// is not known until the next SetSeed call (see SeedErr).
func Wrap(foreign any, seed []byte) (*RandomWrapper, error) {
	_, is64 := foreign.(Uint64Source)
	_, is32 := foreign.(Uint32Source)
	if !is64 && !is32 {
		return nil, fmt.Errorf("%w: wrapped PRNG exposes neither Uint64() nor Uint32()", randcore.ErrUnsupportedOperation)
	}

	w := &RandomWrapper{foreign: foreign, use64: is64}
	ops := randcore.Ops{
		ClassName:     "wrapper.RandomWrapper",
		NextBits:      w.nextBits,
		SetSeed:       w.setSeed,
		Seed:          w.seedBytes,
		NewSeedLength: func() int { return 8 },
	}
	base, err := randcore.NewBase(ops, seed)
	if err != nil {
		return nil, err
	}
	w.Base = base
	w.Base.BindSelf(w)
	return w, nil
}

// setSeed probes the foreign PRNG's capabilities in order (byte-seedable,
// long-seedable, additive-seedable) and installs seed through the first
// one found. A nil or empty seed is treated as "no seed to install yet"
// and leaves the wrapper unseeded rather than erroring, so that
// Wrap(foreign, nil) can adopt an already-initialized foreign instance.
func (w *RandomWrapper) setSeed(seed []byte) error {
	if len(seed) == 0 {
		return nil
	}

	if bs, ok := w.foreign.(ByteSeedable); ok {
		prefersLong := false
		if p, ok := w.foreign.(PrefersLongSeed); ok {
			prefersLong = p.PrefersLongSeed()
		}
		if !prefersLong {
			if err := bs.Seed(seed); err != nil {
				return fmt.Errorf("%w: %v", randcore.ErrSeedSource, err)
			}
			w.commit(seed)
			return nil
		}
	}

	if ls, ok := w.foreign.(LongSeedable); ok {
		if len(seed) != 8 {
			return fmt.Errorf("%w: long-seeded foreign PRNG requires exactly 8 bytes, got %d",
				randcore.ErrInvalidSeedLength, len(seed))
		}
		ls.Seed(int64(binary.LittleEndian.Uint64(seed)))
		w.commit(seed)
		return nil
	}

	if as, ok := w.foreign.(AdditiveSeedable); ok {
		as.AddSeed(seed)
		w.commit(seed)
		return nil
	}

	return fmt.Errorf("%w: wrapped PRNG exposes no recognized seed API", randcore.ErrInvalidSeedLength)
}

func (w *RandomWrapper) commit(seed []byte) {
	w.seed = append([]byte(nil), seed...)
	w.knownSeed = true
}

// seedBytes backs the promoted Prng.Seed() method. Unlike the other
// concrete PRNGs in this module, a RandomWrapper may not know its seed
// (when constructed around a foreign instance via Wrap(foreign, nil)); in
// that case it returns nil rather than panicking, since Prng.Seed() has no
// error return. Use SeedErr to distinguish "no seed known yet" from a
// genuinely empty seed.
func (w *RandomWrapper) seedBytes() []byte {
	if !w.knownSeed {
		return nil
	}
	return append([]byte(nil), w.seed...)
}

// SeedErr returns the seed last installed via SetSeed, or
// ErrUnsupportedOperation if this wrapper was constructed around a foreign
// PRNG instance whose seed is not yet known, until the next SetSeed call
// installs one.
func (w *RandomWrapper) SeedErr() ([]byte, error) {
	if !w.knownSeed {
		return nil, randcore.ErrUnsupportedOperation
	}
	return append([]byte(nil), w.seed...), nil
}

// nextBits draws one value from the foreign PRNG and returns its top k
// bits. Called by randcore.Base while holding its lock.
func (w *RandomWrapper) nextBits(k int) uint32 {
	if w.use64 {
		return uint32(w.foreign.(Uint64Source).Uint64() >> uint(64-k))
	}
	return w.foreign.(Uint32Source).Uint32() >> uint(32-k)
}
