// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package reseed

import "sync/atomic"

// atomicPriority is a lock-free holder for Priority.
type atomicPriority struct {
	v atomic.Int32
}

func (a *atomicPriority) store(p Priority) { a.v.Store(int32(p)) }
func (a *atomicPriority) load() Priority   { return Priority(a.v.Load()) }
