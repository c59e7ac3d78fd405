// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size audio
callback buffers. PortAudio hosts behave best when frames per buffer is a
power of two, so configuration values are validated and rounded here.

All functions are O(1) and allocation free, except PowersOfTwo which
builds a list once for option menus.

Usage:

	// Round a requested buffer size up
	frames := bitint.NextPowerOfTwo(1000) // Returns 1024

	// Reject a configured size
	ok := bitint.IsPowerOfTwo(frames)

NextPowerOfTwo subtracts one before taking the bit length so that exact
powers of two map onto themselves: for 8, bits.Len(7) is 3 and 1<<3 is 8,
while bits.Len(8) would be 4 and double the input.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Zero and negative
// inputs return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of two
// have exactly one bit set, so n&(n-1) clears it to zero.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// PowersOfTwo lists the powers of two in [lo, hi], ascending. lo is rounded
// up to a power of two first.
func PowersOfTwo(lo, hi int) []int {
	var out []int
	for n := NextPowerOfTwo(lo); n <= hi && n > 0; n <<= 1 {
		out = append(out, n)
	}
	return out
}
