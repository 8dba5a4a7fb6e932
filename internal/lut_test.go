// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package internal

import "testing"

func TestReverseByte(t *testing.T) {
	cases := map[byte]byte{
		0x00: 0x00,
		0xff: 0xff,
		0x01: 0x80,
		0x80: 0x01,
		0b00010000: 0b00001000,
	}
	for in, want := range cases {
		if got := ReverseByte(in); got != want {
			t.Errorf("ReverseByte(%#08b): got %#08b, want %#08b", in, got, want)
		}
	}
}

func TestReverseBytes(t *testing.T) {
	p := []byte{0x01, 0x80, 0x00}
	ReverseBytes(p)
	want := []byte{0x80, 0x01, 0x00}
	for i := range want {
		if p[i] != want[i] {
			t.Errorf("ReverseBytes[%d]: got %#x, want %#x", i, p[i], want[i])
		}
	}
}

func TestLeadingZeros8(t *testing.T) {
	cases := map[byte]int{
		0x00: 8,
		0x01: 7,
		0x80: 0,
		0x0f: 4,
	}
	for in, want := range cases {
		if got := LeadingZeros8(in); got != want {
			t.Errorf("LeadingZeros8(%#08b): got %d, want %d", in, got, want)
		}
	}
}

func TestCountByte(t *testing.T) {
	cases := map[byte]int{
		0x00: 0,
		0xff: 8,
		0x0f: 4,
		0b10110001: 4,
	}
	for in, want := range cases {
		if got := CountByte(in); got != want {
			t.Errorf("CountByte(%#08b): got %d, want %d", in, got, want)
		}
	}
}

func TestCount(t *testing.T) {
	p := []byte{0xff, 0x00, 0x0f}
	if got, want := Count(p), 12; got != want {
		t.Errorf("Count: got %d, want %d", got, want)
	}
}

func TestHavePOPCNT(t *testing.T) {
	// Just verify it runs without panicking; the actual value depends
	// on the host CPU.
	_ = HavePOPCNT()
}
