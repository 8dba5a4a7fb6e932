// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

import (
	"math/bits"

	"github.com/dsnet/bitstr/internal"
)

// EncodeUE encodes n using Exp-Golomb order-0 coding: k zero bits,
// a stop bit, then the k low bits of n+1, where k = floor(log2(n+1)).
func EncodeUE(n uint64) *Store {
	v := n + 1
	k := bits.Len64(v) - 1
	st := NewZeroStore(int64(2*k + 1))
	st.SetBit(int64(k)) // the stop bit
	if k > 0 {
		st.SetBits(int64(k)+1, uint(k), v&((uint64(1)<<uint(k))-1))
	}
	return st
}

// DecodeUE decodes a ue-coded value starting at the given Reader
// position, returning the value and the number of bits consumed. The
// leading-zero run is located a byte at a time via the shared
// bit-reversal package's CLZ LUT instead of testing one bit at a time,
// since a run can be many bits long before the stop bit appears.
func DecodeUE(r *Reader) uint64 {
	k := 0
	for {
		remaining := r.Remaining()
		if remaining <= 0 {
			throw(errorf(OutOfRange, "ue code truncated: no stop bit before end of stream"))
		}
		chunk := uint(8)
		if int64(chunk) > remaining {
			chunk = uint(remaining)
		}
		peek, perr := r.PeekUint(int(chunk))
		if perr != nil {
			throw(perr.(*Error))
		}
		lz := internal.LeadingZeros8(byte(peek << (8 - chunk)))
		if lz >= int(chunk) {
			k += int(chunk)
			if k > 63 {
				throw(errorf(InvalidInterpretation, "ue code exceeds 63 leading zero bits"))
			}
			r.Advance(int64(chunk))
			continue
		}
		k += lz
		if k > 63 {
			throw(errorf(InvalidInterpretation, "ue code exceeds 63 leading zero bits"))
		}
		r.Advance(int64(lz) + 1) // zero run plus the stop bit
		break
	}
	if k == 0 {
		return 0
	}
	tail := r.readBitsRaw(uint(k))
	v := (uint64(1) << uint(k)) | tail
	return v - 1
}

// EncodeSE maps a signed value to its unsigned Exp-Golomb counterpart
// using the H.264-style interleaving (0, 1, -1, 2, -2, ...) and
// encodes that with EncodeUE.
func EncodeSE(n int64) *Store {
	var u uint64
	if n > 0 {
		u = uint64(2*n - 1)
	} else {
		u = uint64(-2 * n)
	}
	return EncodeUE(u)
}

// DecodeSE decodes a se-coded value.
func DecodeSE(r *Reader) int64 {
	u := DecodeUE(r)
	if u%2 == 1 {
		return int64(u+1) / 2
	}
	return -int64(u / 2)
}

// EncodeUIE encodes n using Dirac-style interleaved exponential-Golomb:
// for n+1, whose bit length is w, emit (w-1) pairs of "continue"
// (0, followed by a data bit for each bit of n+1 below its leading one),
// then a final stop bit 1. Decoding reads a running value seeded at 1,
// doubling and ORing in a data bit on every 0-continue bit, and the
// value is n+1 once the stop bit is seen.
func EncodeUIE(n uint64) *Store {
	v := n + 1
	w := bits.Len64(v)
	st := NewZeroStore(int64(2*w - 1))
	pos := int64(0)
	for i := w - 2; i >= 0; i-- {
		// continue bit is already zero from NewZeroStore
		pos++
		if v&(uint64(1)<<uint(i)) != 0 {
			st.SetBit(pos)
		}
		pos++
	}
	st.SetBit(pos) // stop bit
	return st
}

// DecodeUIE decodes a uie-coded value.
func DecodeUIE(r *Reader) uint64 {
	v := uint64(1)
	for !r.readBitRaw() {
		bit := r.readBitRaw()
		v <<= 1
		if bit {
			v |= 1
		}
		if v > 1<<62 {
			throw(errorf(InvalidInterpretation, "uie code exceeds representable range"))
		}
	}
	return v - 1
}

// EncodeSIE encodes a signed value as its uie magnitude, followed by
// an explicit sign bit (0 for non-negative) when the magnitude is
// nonzero, matching the Dirac interleaved-signed convention.
func EncodeSIE(n int64) *Store {
	var mag uint64
	if n < 0 {
		mag = uint64(-n)
	} else {
		mag = uint64(n)
	}
	mst := EncodeUIE(mag)
	if mag == 0 {
		return mst
	}
	sign := EncodeBool(n < 0)
	mst.AppendRegion(sign)
	return mst
}

// DecodeSIE decodes a sie-coded value.
func DecodeSIE(r *Reader) int64 {
	mag := DecodeUIE(r)
	if mag == 0 {
		return 0
	}
	if r.readBitRaw() {
		return -int64(mag)
	}
	return int64(mag)
}
