// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package splitmix

import (
	"bytes"
	"fmt"
	"math/rand/v2"

	"github.com/sixafter/randcore"
)

// ReseedingAdapter advances to a fresh split descendant of its current
// state on every NextBits draw (so an output call that draws twice, such
// as NextLong, splits twice), rather than reusing the same PCG draw
// sequence. This is the Go analog of Java's SplittableRandom.split()
// and guards against "rewinding" when a caller re-installs the same seed
// bytes: a split descendant never replays a prior output sequence, even
// when the seed used to reach it is byte-identical to one seen before. A
// background reseed.Loop (registered via RegisterWithReseeder) remains
// the path for installing genuinely fresh external entropy, so that
// per-call splitting here stays non-blocking.
type ReseedingAdapter struct {
	*randcore.Base

	pcg      *rand.PCG
	lastSeed [8]byte
	splitIdx uint64
}

// NewReseeding constructs a ReseedingAdapter. seed must be exactly 8
// bytes.
func NewReseeding(seed []byte) (*ReseedingAdapter, error) {
	r := &ReseedingAdapter{}
	ops := randcore.Ops{
		ClassName:     "splitmix.ReseedingAdapter",
		NextBits:      r.nextBits,
		SetSeed:       r.setSeed,
		Seed:          r.seedBytes,
		NewSeedLength: func() int { return 8 },
	}
	base, err := randcore.NewBase(ops, seed)
	if err != nil {
		return nil, err
	}
	r.Base = base
	r.Base.BindSelf(r)
	return r, nil
}

func (r *ReseedingAdapter) setSeed(seed []byte) error {
	if len(seed) != 8 {
		return fmt.Errorf("%w: splitmix adapter seed must be exactly 8 bytes, got %d",
			randcore.ErrInvalidSeedLength, len(seed))
	}
	if r.pcg != nil && bytes.Equal(seed, r.lastSeed[:]) {
		r.splitIdx++
		s1, s2 := splitDescendant(seed, r.splitIdx)
		r.pcg = rand.NewPCG(s1, s2)
		return nil
	}
	s1, s2 := expandSeed(seed)
	r.pcg = rand.NewPCG(s1, s2)
	copy(r.lastSeed[:], seed)
	r.splitIdx = 0
	return nil
}

func (r *ReseedingAdapter) seedBytes() []byte {
	return append([]byte(nil), r.lastSeed[:]...)
}

// nextBits splits to a fresh descendant before every draw, then returns
// the top k bits of the descendant's first 64-bit output. Called by
// randcore.Base while holding its lock.
func (r *ReseedingAdapter) nextBits(k int) uint32 {
	r.splitIdx++
	s1, s2 := splitDescendant(r.lastSeed[:], r.splitIdx)
	r.pcg = rand.NewPCG(s1, s2)
	return uint32(r.pcg.Uint64() >> uint(64-k))
}
