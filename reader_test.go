// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

import "testing"

func TestReaderSeekAdvanceAlign(t *testing.T) {
	s := NewZeroStore(24)
	r := NewReader(s)
	r.Advance(5)
	if r.Pos() != 5 {
		t.Fatalf("Pos: got %d, want 5", r.Pos())
	}
	if r.Aligned() {
		t.Errorf("Aligned: got true at pos 5, want false")
	}
	r.ByteAlign()
	if r.Pos() != 8 || !r.Aligned() {
		t.Errorf("ByteAlign: got pos %d aligned=%v, want pos 8 aligned=true", r.Pos(), r.Aligned())
	}
	r.Seek(0)
	if r.Remaining() != 24 {
		t.Errorf("Remaining after Seek(0): got %d, want 24", r.Remaining())
	}
}

func TestReaderViewAdvancesAndRestores(t *testing.T) {
	s := NewZeroStore(16)
	s.SetBits(0, 16, 0xabcd)
	r := NewReader(s)

	v, err := r.PeekView(8)
	if err != nil {
		t.Fatalf("PeekView: %v", err)
	}
	if got := v.GetBits(0, 8); got != 0xab {
		t.Errorf("PeekView content: got %#x, want %#x", got, 0xab)
	}
	if r.Pos() != 0 {
		t.Errorf("Pos after PeekView: got %d, want 0", r.Pos())
	}

	v2, err := r.ReadView(8)
	if err != nil {
		t.Fatalf("ReadView: %v", err)
	}
	if got := v2.GetBits(0, 8); got != 0xab {
		t.Errorf("ReadView content: got %#x, want %#x", got, 0xab)
	}
	if r.Pos() != 8 {
		t.Errorf("Pos after ReadView: got %d, want 8", r.Pos())
	}

	if _, err := r.ReadView(100); err == nil {
		t.Errorf("ReadView past end: got nil error, want non-nil")
	}
	if r.Pos() != 8 {
		t.Errorf("Pos after failed ReadView: got %d, want 8 (unchanged)", r.Pos())
	}
}

func TestReaderTypedReadsRestoreCursorOnFailure(t *testing.T) {
	s := NewZeroStore(4)
	s.SetBits(0, 4, 0xa)
	r := NewReader(s)

	if v, err := r.ReadUint(4); err != nil || v != 0xa {
		t.Fatalf("ReadUint(4): got (%d,%v), want (10,nil)", v, err)
	}
	start := r.Pos()

	if _, err := r.ReadUint(1); err == nil {
		t.Errorf("ReadUint past end: got nil error, want non-nil")
	}
	if r.Pos() != start {
		t.Errorf("Pos after failed ReadUint: got %d, want %d", r.Pos(), start)
	}

	if _, err := r.ReadInt(1); err == nil {
		t.Errorf("ReadInt past end: got nil error, want non-nil")
	}
	if r.Pos() != start {
		t.Errorf("Pos after failed ReadInt: got %d, want %d", r.Pos(), start)
	}

	if _, err := r.ReadBool(); err == nil {
		t.Errorf("ReadBool past end: got nil error, want non-nil")
	}
	if r.Pos() != start {
		t.Errorf("Pos after failed ReadBool: got %d, want %d", r.Pos(), start)
	}
}

func TestReaderReadTo(t *testing.T) {
	s := NewZeroStore(32)
	r := NewReader(s)
	v, err := r.ReadTo(12)
	if err != nil {
		t.Fatalf("ReadTo: %v", err)
	}
	if v.LengthBits() != 12 {
		t.Errorf("ReadTo length: got %d, want 12", v.LengthBits())
	}
	if r.Pos() != 12 {
		t.Errorf("Pos after ReadTo: got %d, want 12", r.Pos())
	}
	if _, err := r.ReadTo(4); err == nil {
		t.Errorf("ReadTo backwards: got nil error, want non-nil")
	}
}
