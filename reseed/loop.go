// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package reseed implements a background reseeder: a single long-lived
// worker goroutine per randcore.SeedSource that drains a signaled pending
// queue and reseeds registered PRNGs without ever holding a PRNG's
// internal lock while waiting on the SeedSource.
package reseed

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sixafter/randcore"
)

// Priority is an adjustable, observable property of a Loop. Go's
// cooperative goroutine scheduler has no OS thread-priority API to back
// this with real preemption; Priority is informational metadata a caller
// can inspect or set, without fabricating scheduling behavior Go cannot
// actually provide.
type Priority int32

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 10 * time.Second
)

// Loop is the background reseeder.
type Loop struct {
	source   randcore.SeedSource
	priority atomicPriority

	mu         sync.Mutex
	registered map[randcore.Prng]uuid.UUID
	pending    map[randcore.Prng]struct{}
	failures   map[randcore.Prng]int
	stopped    bool

	wake chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
}

// New constructs a Loop and starts its background worker goroutine.
func New(source randcore.SeedSource) *Loop {
	l := &Loop{
		source:     source,
		registered: make(map[randcore.Prng]uuid.UUID),
		pending:    make(map[randcore.Prng]struct{}),
		failures:   make(map[randcore.Prng]int),
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// SetPriority adjusts the loop's priority metadata.
func (l *Loop) SetPriority(p Priority) { l.priority.store(p) }

// Priority returns the loop's current priority metadata.
func (l *Loop) Priority() Priority { return l.priority.load() }

// Register adds p to the loop's registration set and binds p to the loop
// as its Reseeder.
func (l *Loop) Register(p randcore.Prng) {
	l.mu.Lock()
	if _, ok := l.registered[p]; !ok {
		l.registered[p] = uuid.New()
	}
	l.mu.Unlock()
	p.RegisterWithReseeder(l)
}

// Unregister removes p from the registration set and clears its Reseeder
// association. A reseed already in flight for p still completes.
func (l *Loop) Unregister(p randcore.Prng) {
	l.mu.Lock()
	delete(l.registered, p)
	delete(l.pending, p)
	delete(l.failures, p)
	l.mu.Unlock()
	p.RegisterWithReseeder(nil)
}

// RegistrationID returns the identifier Loop assigned p at Register time.
func (l *Loop) RegistrationID(p randcore.Prng) (uuid.UUID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.registered[p]
	return id, ok
}

// AsyncReseed implements randcore.Reseeder. It is idempotent: calling it
// again for a PRNG already pending does not enqueue a duplicate entry.
func (l *Loop) AsyncReseed(p randcore.Prng) {
	l.mu.Lock()
	_, stillRegistered := l.registered[p]
	if stillRegistered {
		l.pending[p] = struct{}{}
	}
	l.mu.Unlock()
	if stillRegistered {
		l.signal()
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stop:
			return
		case <-l.wake:
		}
		l.drain()
	}
}

// drain processes every PRNG currently in the pending set. New entries
// added to pending while drain runs are picked up by the next wake signal
// (AsyncReseed always signals), so drain does not need to loop forever
// watching for stragglers.
func (l *Loop) drain() {
	for {
		p, ok := l.popPending()
		if !ok {
			return
		}
		l.reseedOne(p)
	}
}

func (l *Loop) popPending() (randcore.Prng, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for p := range l.pending {
		delete(l.pending, p)
		if _, stillRegistered := l.registered[p]; !stillRegistered {
			continue
		}
		return p, true
	}
	return nil, false
}

// reseedOne acquires the requested length under the PRNG's own lock,
// releases it, calls SeedSource.Generate without holding any PRNG lock,
// then installs the result. randcore.Prng's exported methods already
// acquire and release their internal lock per call, so no additional
// locking is needed here.
func (l *Loop) reseedOne(p randcore.Prng) {
	length := p.GetNewSeedLength()
	seed, err := l.source.Generate(length)
	if err != nil {
		l.onFailure(p)
		return
	}
	if err := p.SetSeed(seed); err != nil {
		l.onFailure(p)
		return
	}
	l.mu.Lock()
	delete(l.failures, p)
	l.mu.Unlock()
}

// onFailure applies exponential backoff (100ms to 10s, with jitter) and
// reseed-failed flagging.
func (l *Loop) onFailure(p randcore.Prng) {
	l.mu.Lock()
	l.failures[p]++
	n := l.failures[p]
	l.mu.Unlock()

	backoff := initialBackoff
	for i := 1; i < n && backoff < maxBackoff; i++ {
		backoff *= 2
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	wait := backoff/2 + time.Duration(rand.Int64N(int64(backoff)/2+1))

	if marker, ok := p.(randcore.ReseedFailureMarker); ok {
		marker.MarkReseedFailed()
	}

	l.wg.Add(1)
	go l.retryAfter(p, wait)
}

func (l *Loop) retryAfter(p randcore.Prng, wait time.Duration) {
	defer l.wg.Done()
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-l.stop:
		return
	}
	l.mu.Lock()
	_, stillRegistered := l.registered[p]
	if stillRegistered {
		l.pending[p] = struct{}{}
	}
	l.mu.Unlock()
	if stillRegistered {
		l.signal()
	}
}

// Stop signals the worker to exit after finishing any in-flight reseed,
// and waits for it (and any pending backoff retries) to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()
	close(l.stop)
	l.wg.Wait()
}

var _ randcore.Reseeder = (*Loop)(nil)
