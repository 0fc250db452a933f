// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package splitmix

import (
	"fmt"
	"math/rand/v2"

	"github.com/sixafter/randcore"
)

// SingleThreadAdapter wraps a single math/rand/v2.PCG instance: one
// underlying generator, reseeded only via explicit SetSeed calls.
type SingleThreadAdapter struct {
	*randcore.Base

	pcg  *rand.PCG
	seed [8]byte
}

// New constructs a SingleThreadAdapter. seed must be exactly 8 bytes.
func New(seed []byte) (*SingleThreadAdapter, error) {
	a := &SingleThreadAdapter{}
	ops := randcore.Ops{
		ClassName:     "splitmix.SingleThreadAdapter",
		NextBits:      a.nextBits,
		SetSeed:       a.setSeed,
		Seed:          a.seedBytes,
		NewSeedLength: func() int { return 8 },
	}
	base, err := randcore.NewBase(ops, seed)
	if err != nil {
		return nil, err
	}
	a.Base = base
	a.Base.BindSelf(a)
	return a, nil
}

func (a *SingleThreadAdapter) setSeed(seed []byte) error {
	if len(seed) != 8 {
		return fmt.Errorf("%w: splitmix adapter seed must be exactly 8 bytes, got %d",
			randcore.ErrInvalidSeedLength, len(seed))
	}
	s1, s2 := expandSeed(seed)
	a.pcg = rand.NewPCG(s1, s2)
	copy(a.seed[:], seed)
	return nil
}

func (a *SingleThreadAdapter) seedBytes() []byte {
	return append([]byte(nil), a.seed[:]...)
}

// nextBits draws one 64-bit value from the PCG and returns its top k
// bits. Called by randcore.Base while holding its lock.
func (a *SingleThreadAdapter) nextBits(k int) uint32 {
	return uint32(a.pcg.Uint64() >> uint(64-k))
}
