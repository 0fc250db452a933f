// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package randcore

import "errors"

// Sentinel errors returned by the core PRNG contract. Concrete PRNGs wrap
// these with additional context via fmt.Errorf("%w: ...", ...); callers
// should compare with errors.Is.
var (
	// ErrSeedSource is returned when a SeedSource fails to produce the
	// requested number of bytes, either at construction time or during a
	// SetSeed call.
	ErrSeedSource = errors.New("randcore: seed source failed")

	// ErrInvalidSeedLength is returned when SetSeed is called with a byte
	// slice whose length is not accepted by the concrete algorithm.
	ErrInvalidSeedLength = errors.New("randcore: invalid seed length")

	// ErrUnsupportedOperation is returned by RandomWrapper.SeedErr when the
	// wrapper does not (yet) know the seed of the PRNG it wraps, and by
	// wrapper.Wrap for a foreign value it cannot draw from.
	ErrUnsupportedOperation = errors.New("randcore: unsupported operation")

	// ErrInvalidBound is returned when a bounded range call is given a
	// bound that is not strictly greater than its origin.
	ErrInvalidBound = errors.New("randcore: invalid bound")
)
