// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package ccprng

// counter is a little-endian unsigned integer of fixed width, treated as a
// big integer for increment purposes. Adapted from the counter type used by
// the Fortuna generator in this module's lineage: incrementing carries from
// the low-order byte (index 0) upward, wrapping to all zero on overflow.
type counter []byte

// incr adds 1 to c, carrying from byte 0 upward.
func (c counter) incr() {
	for i := range c {
		c[i]++
		if c[i] != 0 {
			return
		}
	}
}

// set copies src into c starting at index 0, zeroing any remaining
// high-order bytes first.
func (c counter) set(src []byte) {
	for i := range c {
		c[i] = 0
	}
	copy(c, src)
}
