// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

import "testing"

func TestUERoundTrip(t *testing.T) {
	vectors := []uint64{0, 1, 2, 3, 4, 7, 8, 100, 1 << 20, 1<<32 - 1}
	var st *Store
	for _, n := range vectors {
		code := EncodeUE(n)
		if st == nil {
			st = code
		} else {
			st.AppendRegion(code)
		}
	}
	r := NewReader(st)
	for i, want := range vectors {
		got, err := r.ReadUE()
		if err != nil {
			t.Fatalf("test %d: ReadUE: %v", i, err)
		}
		if got != want {
			t.Errorf("test %d: got %d, want %d", i, got, want)
		}
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining: got %d, want 0", r.Remaining())
	}
}

func TestSERoundTrip(t *testing.T) {
	vectors := []int64{0, 1, -1, 2, -2, 100, -100}
	var st *Store
	for _, n := range vectors {
		code := EncodeSE(n)
		if st == nil {
			st = code
		} else {
			st.AppendRegion(code)
		}
	}
	r := NewReader(st)
	for i, want := range vectors {
		got, err := r.ReadSE()
		if err != nil {
			t.Fatalf("test %d: ReadSE: %v", i, err)
		}
		if got != want {
			t.Errorf("test %d: got %d, want %d", i, got, want)
		}
	}
}

func TestUIERoundTrip(t *testing.T) {
	vectors := []uint64{0, 1, 2, 3, 4, 7, 8, 100, 1 << 20}
	var st *Store
	for _, n := range vectors {
		code := EncodeUIE(n)
		if st == nil {
			st = code
		} else {
			st.AppendRegion(code)
		}
	}
	r := NewReader(st)
	for i, want := range vectors {
		got, err := r.ReadUIE()
		if err != nil {
			t.Fatalf("test %d: ReadUIE: %v", i, err)
		}
		if got != want {
			t.Errorf("test %d: got %d, want %d", i, got, want)
		}
	}
}

func TestSIERoundTrip(t *testing.T) {
	vectors := []int64{0, 1, -1, 2, -2, 100, -100}
	var st *Store
	for _, n := range vectors {
		code := EncodeSIE(n)
		if st == nil {
			st = code
		} else {
			st.AppendRegion(code)
		}
	}
	r := NewReader(st)
	for i, want := range vectors {
		got, err := r.ReadSIE()
		if err != nil {
			t.Fatalf("test %d: ReadSIE: %v", i, err)
		}
		if got != want {
			t.Errorf("test %d: got %d, want %d", i, got, want)
		}
	}
}

func TestReadUERestoresCursorOnFailure(t *testing.T) {
	// A short all-zero stream runs out of bits before a stop bit ever
	// appears; the cursor must be unchanged after the failure.
	st := NewZeroStore(4)
	r := NewReader(st)
	start := r.Pos()
	if _, err := r.ReadUE(); err == nil {
		t.Errorf("ReadUE on exhausted stream: got nil error, want non-nil")
	}
	if r.Pos() != start {
		t.Errorf("Pos after failed ReadUE: got %d, want %d", r.Pos(), start)
	}
}
