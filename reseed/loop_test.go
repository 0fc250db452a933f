// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package reseed

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sixafter/randcore"
	"github.com/sixafter/randcore/caprng"
)

// countingSource generates zero-filled seeds of the requested length,
// counting calls, and fails after a configured number of successes.
type countingSource struct {
	mu       sync.Mutex
	calls    int
	failFrom int // fail once calls (1-indexed) reaches this value; 0 = never
}

func (s *countingSource) Generate(length int) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	if s.failFrom != 0 && n >= s.failFrom {
		return nil, fmt.Errorf("countingSource: induced failure on call %d", n)
	}
	buf := make([]byte, length)
	buf[0] = byte(n)
	return buf, nil
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Test_Loop_ReseedsOnAsyncReseed confirms a registered PRNG whose
// AsyncReseed fires gets a fresh seed installed.
func Test_Loop_ReseedsOnAsyncReseed(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := &countingSource{}
	loop := New(src)
	defer loop.Stop()

	g, err := caprng.New([]byte{0, 0, 0, 0})
	is.NoError(err)
	loop.Register(g)

	loop.AsyncReseed(g)

	is.Eventually(func() bool {
		return src.count() >= 1
	}, time.Second, time.Millisecond)
}

// Test_Loop_IdempotentSignaling confirms repeated AsyncReseed calls before
// the worker drains do not enqueue duplicate reseeds.
func Test_Loop_IdempotentSignaling(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := &countingSource{}
	loop := New(src)
	defer loop.Stop()

	g, err := caprng.New([]byte{1, 1, 1, 1})
	is.NoError(err)
	loop.Register(g)

	for i := 0; i < 10; i++ {
		loop.AsyncReseed(g)
	}

	time.Sleep(50 * time.Millisecond)
	is.LessOrEqual(src.count(), 2, "rapid repeated signals should collapse to very few reseeds")
}

// Test_Loop_UnregisterStopsFutureReseeds confirms an AsyncReseed request
// made after Unregister never reaches the SeedSource. A reseed already
// pending or in flight when Unregister is called is not exercised here.
func Test_Loop_UnregisterStopsFutureReseeds(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := &countingSource{}
	loop := New(src)
	defer loop.Stop()

	g, err := caprng.New([]byte{2, 2, 2, 2})
	is.NoError(err)
	loop.Register(g)
	loop.Unregister(g)

	loop.AsyncReseed(g)
	time.Sleep(30 * time.Millisecond)
	is.Equal(0, src.count())
}

// Test_Loop_MarksReseedFailedAfterPersistentFailure confirms the PRNG's
// reseed-failed flag is set when its SeedSource keeps failing.
func Test_Loop_MarksReseedFailedAfterPersistentFailure(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := &countingSource{failFrom: 1}
	loop := New(src)
	defer loop.Stop()

	g, err := caprng.New([]byte{3, 3, 3, 3})
	is.NoError(err)
	loop.Register(g)
	loop.AsyncReseed(g)

	type failFlagger interface{ ReseedFailed() bool }
	var p randcore.Prng = g
	is.Eventually(func() bool {
		return p.(failFlagger).ReseedFailed()
	}, time.Second, time.Millisecond)
}

// Test_Loop_RegistrationID confirms Register assigns a stable identifier.
func Test_Loop_RegistrationID(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	loop := New(&countingSource{})
	defer loop.Stop()

	g, err := caprng.New([]byte{4, 4, 4, 4})
	is.NoError(err)
	loop.Register(g)

	id1, ok := loop.RegistrationID(g)
	is.True(ok)
	id2, ok := loop.RegistrationID(g)
	is.True(ok)
	is.Equal(id1, id2)
}

// Test_Loop_StopIsIdempotent confirms Stop can be called more than once
// safely.
func Test_Loop_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	loop := New(&countingSource{})
	loop.Stop()
	is.NotPanics(func() { loop.Stop() })
}

var _ randcore.Prng = (*caprng.CellularAutomatonPrng)(nil)
