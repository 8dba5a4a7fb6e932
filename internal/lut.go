// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package internal holds lookup tables and bit-twiddling primitives
// shared by the store, editor, and codec layers.
//
// For performance reasons, these functions lack strong error checking
// and require that the caller ensure that strict invariants are kept.
package internal

import "github.com/klauspost/cpuid"

// ReverseLUT maps a byte to its bit-reversed value.
var ReverseLUT [256]byte

// ZerosLUT maps a byte to its number of leading zero bits, used by the
// exponential-Golomb decoder to find the first set bit without
// scanning bit-by-bit.
var ZerosLUT [256]uint8

// havePOPCNT records whether the host supports a hardware popcount.
// It is reported through HavePOPCNT only: the LUT-based CountByte below
// is used whatever the probe finds, and no SIMD path is enabled (which
// remains out of scope).
var havePOPCNT = cpuid.CPU.Features&cpuid.POPCNT != 0

func init() {
	for i := range ReverseLUT {
		b := uint8(i)
		b = (b&0xaa)>>1 | (b&0x55)<<1
		b = (b&0xcc)>>2 | (b&0x33)<<2
		b = (b&0xf0)>>4 | (b&0x0f)<<4
		ReverseLUT[i] = b
	}
	for i := range ZerosLUT {
		n := uint8(0)
		for b := uint8(i); b&0x80 == 0 && n < 8; b <<= 1 {
			n++
		}
		ZerosLUT[i] = n
	}
}

// ReverseByte reverses the bits of b.
func ReverseByte(b byte) byte { return ReverseLUT[b] }

// ReverseBytes reverses the bits of every byte in p, in place.
func ReverseBytes(p []byte) {
	for i, b := range p {
		p[i] = ReverseLUT[b]
	}
}

// LeadingZeros8 reports the number of leading zero bits in b, using the
// precomputed LUT. This is the byte-wise scan fallback that the
// exponential-Golomb decoder uses to find the first one bit; on hosts
// with a hardware popcount/bit-scan unit the standard library's
// math/bits already compiles to the intrinsic. Neither this function
// nor CountByte consults HavePOPCNT.
func LeadingZeros8(b byte) int { return int(ZerosLUT[b]) }

// HavePOPCNT reports whether this host advertises a hardware popcount
// unit, as detected by cpuid at process start.
func HavePOPCNT() bool { return havePOPCNT }

// popcountLUT is a nibble popcount table used by the portable CountByte
// fallback below.
var popcountLUT = [16]uint8{0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 4}

// CountByte returns the number of one bits in b.
func CountByte(b byte) int {
	return int(popcountLUT[b>>4] + popcountLUT[b&0xf])
}

// Count returns the number of one bits across p.
func Count(p []byte) int {
	n := 0
	for _, b := range p {
		n += CountByte(b)
	}
	return n
}
