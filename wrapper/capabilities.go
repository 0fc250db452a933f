// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package wrapper adapts an arbitrary foreign PRNG into the Prng contract,
// probing the wrapped value for the capability interfaces below via type
// assertion rather than requiring it to implement Prng itself.
package wrapper

// Uint64Source is probed first: most native Go PRNGs (math/rand/v2's
// sources, crypto-backed DRBGs) expose a 64-bit draw.
type Uint64Source interface {
	Uint64() uint64
}

// Uint32Source is probed when Uint64Source is absent, for foreign PRNGs
// whose natural unit is 32 bits.
type Uint32Source interface {
	Uint32() uint32
}

// ByteSeedable is probed for foreign PRNGs accepting an arbitrary-length
// byte-array seed.
type ByteSeedable interface {
	Seed(seed []byte) error
}

// LongSeedable is probed for foreign PRNGs accepting only a single int64
// seed (the convention of math/rand.Source64 and similar).
type LongSeedable interface {
	Seed(seed int64)
}

// AdditiveSeedable is probed for "secure" PRNGs (the Go analog of
// java.security.SecureRandom) that mix seed bytes into their existing
// state rather than replacing it.
type AdditiveSeedable interface {
	AddSeed(seed []byte)
}

// PrefersLongSeed lets a foreign PRNG implementing both ByteSeedable and
// LongSeedable declare which one RandomWrapper.SetSeed should prefer. If
// absent, ByteSeedable is preferred whenever present.
type PrefersLongSeed interface {
	PrefersLongSeed() bool
}
