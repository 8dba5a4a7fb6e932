// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

import (
	"math"
	"math/big"
	"testing"

	"github.com/dsnet/bitstr/internal/testutil"
)

func TestUintIntRoundTrip(t *testing.T) {
	vectors := []struct {
		length int
		uval   uint64
		ival   int64
	}{
		{1, 1, -1},
		{8, 0xff, -1},
		{16, 0xbeef, -12},
		{33, 1 << 32, -(1 << 32)},
		{64, math.MaxUint64, math.MinInt64},
	}
	for i, v := range vectors {
		us := EncodeUint(v.uval, v.length)
		if got := DecodeUint(us); got != v.uval&uintMask(v.length) {
			t.Errorf("test %d: uint round-trip: got %#x, want %#x", i, got, v.uval&uintMask(v.length))
		}
		is := EncodeInt(v.ival, v.length)
		if got := DecodeInt(is); got != signExtend(v.ival, v.length) {
			t.Errorf("test %d: int round-trip: got %d, want %d", i, got, signExtend(v.ival, v.length))
		}
	}
}

func signExtend(v int64, n int) int64 {
	u := uint64(v) & uintMask(n)
	shift := uint(64 - n)
	return int64(u<<shift) >> shift
}

func TestUintEndiannessVariants(t *testing.T) {
	be := EncodeUintBE(0x1122, 16)
	le := EncodeUintLE(0x1122, 16)
	if got, want := be.GetBits(0, 16), uint64(0x1122); got != want {
		t.Errorf("EncodeUintBE: got %#x, want %#x", got, want)
	}
	if got, want := le.GetBits(0, 16), uint64(0x2211); got != want {
		t.Errorf("EncodeUintLE: got %#x, want %#x", got, want)
	}
	if got := DecodeUintBE(be); got != 0x1122 {
		t.Errorf("DecodeUintBE: got %#x, want 0x1122", got)
	}
	if got := DecodeUintLE(le); got != 0x1122 {
		t.Errorf("DecodeUintLE: got %#x, want 0x1122", got)
	}
}

func TestUintBigRoundTrip(t *testing.T) {
	want := new(big.Int)
	want.SetString("123456789012345678901234567890", 10)
	region := EncodeUintBig(want, 128)
	got := DecodeUintBig(region)
	if got.Cmp(want) != 0 {
		t.Errorf("big round-trip: got %v, want %v", got, want)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	vectors := []struct {
		length int
		value  float64
	}{
		{32, 3.14159},
		{64, math.Pi},
		{32, 0},
		{32, -1.5},
	}
	for i, v := range vectors {
		want := v.value
		if v.length == 32 {
			want = float64(float32(v.value))
		}
		region := EncodeFloat(v.value, v.length, BE)
		got := DecodeFloat(region, BE)
		if got != want {
			t.Errorf("test %d: float round-trip: got %v, want %v", i, got, want)
		}
	}
}

func TestFloat16RoundTrip(t *testing.T) {
	vectors := []float32{0, 1, -1, 0.5, 65504, -65504, 3.14159}
	for i, want := range vectors {
		bits := float32ToFloat16Bits(want)
		got := float16BitsToFloat32(bits)
		if math.Abs(float64(got-want)) > 0.01 {
			t.Errorf("test %d: float16 round-trip: got %v, want %v", i, got, want)
		}
	}
}

func TestBFloat16RoundTrip(t *testing.T) {
	vectors := []float32{0, 1, -1, 100.5, 3.14159}
	for i, want := range vectors {
		bits := float32ToBFloat16Bits(want)
		got := bfloat16BitsToFloat32(bits)
		if math.Abs(float64(got-want)) > 1.0 {
			t.Errorf("test %d: bfloat16 round-trip: got %v, want %v (too far)", i, got, want)
		}
	}
}

func TestHexOctBinRoundTrip(t *testing.T) {
	region := EncodeHex("dead")
	if got := DecodeHex(region); got != "dead" {
		t.Errorf("hex round-trip: got %q, want %q", got, "dead")
	}
	region2 := EncodeOct("17")
	if got := DecodeOct(region2); got != "17" {
		t.Errorf("oct round-trip: got %q, want %q", got, "17")
	}
	region3 := EncodeBin("1011")
	if got := DecodeBin(region3); got != "1011" {
		t.Errorf("bin round-trip: got %q, want %q", got, "1011")
	}
}

func TestBoolBytes(t *testing.T) {
	if got := DecodeBool(EncodeBool(true)); !got {
		t.Errorf("bool round-trip true: got false")
	}
	if got := DecodeBool(EncodeBool(false)); got {
		t.Errorf("bool round-trip false: got true")
	}
	buf := []byte{0xde, 0xad, 0xbe, 0xef}
	region := EncodeBytes(buf)
	if got := DecodeBytes(region); string(got) != string(buf) {
		t.Errorf("bytes round-trip: got %x, want %x", got, buf)
	}
}

func TestDecodeUintRejectsOutOfRangeLength(t *testing.T) {
	s := NewZeroStore(65)
	err := panicToErr(func() { DecodeUint(s) })
	if err == nil {
		t.Errorf("DecodeUint on 65-bit region: got nil error, want non-nil")
	}
}

func TestUintRoundTripRandomized(t *testing.T) {
	r := testutil.NewRand(1)
	for i := 0; i < 64; i++ {
		n := 1 + r.Intn(64)
		mask := uint64(1)<<uint(n) - 1
		if n == 64 {
			mask = ^uint64(0)
		}
		v := uint64(r.Int()) & mask
		got := DecodeUint(EncodeUint(v, n))
		if got != v {
			t.Fatalf("round trip of %d-bit value %#x: got %#x", n, v, got)
		}
	}
}
