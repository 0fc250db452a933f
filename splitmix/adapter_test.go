// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package splitmix

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sixafter/randcore"
)

// Test_SingleThreadAdapter_Deterministic confirms identical seeds produce
// identical streams.
func Test_SingleThreadAdapter_Deterministic(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	seed := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a, err := New(seed)
	is.NoError(err)
	b, err := New(seed)
	is.NoError(err)

	for i := 0; i < 64; i++ {
		is.Equal(a.NextLong(), b.NextLong())
	}
}

// Test_SingleThreadAdapter_RejectsWrongSeedLength validates the
// exactly-8-bytes contract.
func Test_SingleThreadAdapter_RejectsWrongSeedLength(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	_, err := New(make([]byte, 7))
	is.ErrorIs(err, randcore.ErrInvalidSeedLength)
}

// Test_SingleThreadAdapter_DifferentSeedsDiverge ensures distinct seeds do
// not collide.
func Test_SingleThreadAdapter_DifferentSeedsDiverge(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a, err := New(bytes.Repeat([]byte{0x01}, 8))
	is.NoError(err)
	b, err := New(bytes.Repeat([]byte{0x02}, 8))
	is.NoError(err)
	is.NotEqual(a.NextLong(), b.NextLong())
}

// Test_ReseedingAdapter_NeverRewindsOnReplaySeed confirms that installing
// the same seed bytes twice does not replay the same output sequence.
func Test_ReseedingAdapter_NeverRewindsOnReplaySeed(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	seed := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	r, err := NewReseeding(seed)
	is.NoError(err)

	first := r.NextLong()

	is.NoError(r.SetSeed(seed))
	second := r.NextLong()

	is.NotEqual(first, second, "replaying the same seed must not replay the same output")
}

// Test_ReseedingAdapter_RejectsWrongSeedLength validates the
// exactly-8-bytes contract.
func Test_ReseedingAdapter_RejectsWrongSeedLength(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	_, err := NewReseeding(make([]byte, 9))
	is.ErrorIs(err, randcore.ErrInvalidSeedLength)
}
