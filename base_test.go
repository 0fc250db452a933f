// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package randcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// lcgOps is a minimal deterministic test double: a 48-bit linear
// congruential generator exposed through Ops, used to exercise Base's
// bit-composition and rejection-sampling logic independent of any real
// cipher or cellular-automaton algorithm.
type lcgOps struct {
	state uint64
	seed  []byte
}

const (
	lcgMultiplier = 0x5DEECE66D
	lcgIncrement  = 0xB
	lcgMask       = (1 << 48) - 1
)

func newLCG(seed []byte) *lcgOps {
	l := &lcgOps{}
	_ = l.setSeed(seed)
	return l
}

func (l *lcgOps) setSeed(seed []byte) error {
	if len(seed) == 0 {
		return ErrInvalidSeedLength
	}
	var s uint64
	for _, b := range seed {
		s = s<<8 | uint64(b)
	}
	l.state = (s ^ lcgMultiplier) & lcgMask
	l.seed = append([]byte(nil), seed...)
	return nil
}

func (l *lcgOps) nextBits(k int) uint32 {
	l.state = (l.state*lcgMultiplier + lcgIncrement) & lcgMask
	return uint32(l.state >> uint(48-k))
}

func (l *lcgOps) ops() Ops {
	return Ops{
		ClassName:     "lcgOps",
		NextBits:      l.nextBits,
		SetSeed:       l.setSeed,
		Seed:          func() []byte { return append([]byte(nil), l.seed...) },
		NewSeedLength: func() int { return 8 },
	}
}

func newTestBase(t *testing.T, seed []byte) (*Base, *lcgOps) {
	t.Helper()
	l := &lcgOps{}
	b, err := NewBase(l.ops(), seed)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	return b, l
}

// Test_NewBase_CreditsEntropyFromSeedLength confirms seeding raises the
// entropy counter to len(seed)*8 bits.
func Test_NewBase_CreditsEntropyFromSeedLength(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	is.Equal(int64(64), b.EntropyBits())
}

// Test_Base_NextBytes_DebitsExactBitCount confirms NextBytes debits
// 8*len(out) bits regardless of length, including non-multiples of 4.
func Test_Base_NextBytes_DebitsExactBitCount(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	start := b.EntropyBits()

	buf := make([]byte, 7)
	b.NextBytes(buf)
	is.Equal(start-7*8, b.EntropyBits())
}

// Test_Base_NextIntRange_RespectsBounds confirms every draw lands in
// [origin, bound) across many samples, including a non-power-of-two range.
func Test_Base_NextIntRange_RespectsBounds(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{9, 9, 9, 9, 9, 9, 9, 9})
	for i := 0; i < 2000; i++ {
		v, err := b.NextIntRange(-7, 13)
		is.NoError(err)
		is.GreaterOrEqual(v, int32(-7))
		is.Less(v, int32(13))
	}
}

// Test_Base_NextIntRange_RejectsBadBounds confirms bound <= origin errors.
func Test_Base_NextIntRange_RejectsBadBounds(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	_, err := b.NextIntRange(5, 5)
	is.ErrorIs(err, ErrInvalidBound)
	_, err = b.NextIntRange(5, 2)
	is.ErrorIs(err, ErrInvalidBound)
}

// Test_Base_NextLongRange_RespectsBounds mirrors
// Test_Base_NextIntRange_RespectsBounds for the 64-bit path.
func Test_Base_NextLongRange_RespectsBounds(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{3, 1, 4, 1, 5, 9, 2, 6})
	for i := 0; i < 2000; i++ {
		v, err := b.NextLongRange(-1000, 1000)
		is.NoError(err)
		is.GreaterOrEqual(v, int64(-1000))
		is.Less(v, int64(1000))
	}
}

// Test_Base_NextDouble_IsWithinUnitInterval confirms the 53-bit double is
// always in [0, 1).
func Test_Base_NextDouble_IsWithinUnitInterval(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{1, 1, 1, 1, 1, 1, 1, 1})
	for i := 0; i < 1000; i++ {
		v := b.NextDouble()
		is.GreaterOrEqual(v, 0.0)
		is.Less(v, 1.0)
	}
}

// Test_Base_NextGaussian_ProducesFiniteValues confirms that over many
// draws (alternating fresh and cached Marsaglia polar values) NextGaussian
// never panics and never returns NaN.
func Test_Base_NextGaussian_ProducesFiniteValues(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{5, 5, 5, 5, 5, 5, 5, 5})
	for i := 0; i < 1000; i++ {
		v := b.NextGaussian()
		is.False(v != v, "gaussian output must not be NaN") // NaN check
	}
}

// Test_Base_WithProbability_ShortCircuitsAtExtremes confirms p<=0 and
// p>=1 never consult NextBits and always return the deterministic answer.
func Test_Base_WithProbability_ShortCircuitsAtExtremes(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	entropyBefore := b.EntropyBits()
	is.False(b.WithProbability(0))
	is.True(b.WithProbability(1))
	is.Equal(entropyBefore, b.EntropyBits(), "short-circuit paths must not debit entropy")
}

// Test_Base_SetSeed_RaisesButNeverLowersEntropy confirms Credit's floor
// semantics: seeding raises entropy from zero to len(seed)*8, and a later
// shorter seed never decreases the higher existing count.
func Test_Base_SetSeed_RaisesButNeverLowersEntropy(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}) // 80 bits
	is.Equal(int64(80), b.EntropyBits())

	is.NoError(b.SetSeed([]byte{1, 2, 3, 4})) // would be 32 bits
	is.Equal(int64(80), b.EntropyBits(), "a shorter reseed must not lower entropy below the existing floor")
}

// Test_Base_SetSeedLong_RoutesThroughSetSeed confirms the 8-byte
// big-endian encoding reaches ops.SetSeed.
func Test_Base_SetSeedLong_RoutesThroughSetSeed(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, l := newTestBase(t, []byte{0, 0, 0, 0, 0, 0, 0, 0})
	b.SetSeedLong(0x0102030405060708)
	is.Equal([]byte{1, 2, 3, 4, 5, 6, 7, 8}, l.seed)
}

// Test_Base_Dump_IncludesClassNameAndSeed confirms Dump renders the
// expected fields without panicking.
func Test_Base_Dump_IncludesClassNameAndSeed(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{0xAB, 0xCD})
	dump := b.Dump()
	is.Contains(dump, "lcgOps")
	is.Contains(dump, "abcd")
}

// Test_Base_BindSelf_UsedAsReseederIdentity confirms a reseeder registered
// against Base sees the bound self value, not the embedded *Base pointer.
func Test_Base_BindSelf_UsedAsReseederIdentity(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	b, _ := newTestBase(t, []byte{1, 2, 3, 4})
	outer := &struct{ *Base }{b}
	b.BindSelf(outer)

	var seen Prng
	rec := recorderReseeder{onReseed: func(p Prng) { seen = p }}
	b.RegisterWithReseeder(&rec)

	buf := make([]byte, 8) // 64 bits, more than the 32-bit seed credited
	b.NextBytes(buf)

	is.Same(outer, seen)
}

type recorderReseeder struct {
	onReseed func(p Prng)
}

func (r *recorderReseeder) AsyncReseed(p Prng) { r.onReseed(p) }
