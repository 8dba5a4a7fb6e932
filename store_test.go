// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

import (
	"hash/crc32"
	"io/ioutil"
	"os"
	"testing"

	"github.com/dsnet/bitstr/internal/testutil"
)

func TestNewMemoryStore(t *testing.T) {
	vectors := []struct {
		buf    []byte
		offset uint8
		length int64
		ok     bool
	}{
		{[]byte{0xff}, 0, 8, true},
		{[]byte{0xff}, 4, 4, true},
		{[]byte{0xff, 0x00}, 0, 9, true},
		{[]byte{0xff}, 0, 9, false}, // buffer too short
		{[]byte{0xff}, 8, 0, false}, // offset out of [0,7]
	}
	for i, v := range vectors {
		err := panicToErr(func() { NewMemoryStore(v.buf, v.offset, v.length, false) })
		if (err == nil) != v.ok {
			t.Errorf("test %d: got err %v, want ok=%v", i, err, v.ok)
		}
	}
}

func panicToErr(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	f()
	return nil
}

func TestStoreGetBit(t *testing.T) {
	buf := testutil.MustDecodeBitGen("11010010")
	s := NewMemoryStore(buf, 0, 8, false)
	want := []bool{true, true, false, true, false, false, true, false}
	for i, w := range want {
		if got := s.GetBit(int64(i)); got != w {
			t.Errorf("bit %d: got %v, want %v", i, got, w)
		}
	}
}

func TestStoreGetBitsRoundTrip(t *testing.T) {
	s := NewZeroStore(40)
	s.SetBits(0, 32, 0xdeadbeef)
	if got, want := s.GetBits(0, 32), uint64(0xdeadbeef); got != want {
		t.Errorf("GetBits: got %#x, want %#x", got, want)
	}
}

func TestStoreOffsetSetBit(t *testing.T) {
	s := NewZeroStore(4)
	s.SetOffset(3)
	s.SetBit(0)
	if !s.GetBit(0) {
		t.Errorf("GetBit(0): got false, want true after SetBit(0)")
	}
	if s.ByteLength() != 1 {
		t.Errorf("ByteLength: got %d, want 1", s.ByteLength())
	}
}

func TestStoreAppendPrependRegion(t *testing.T) {
	a := NewZeroStore(4)
	a.SetBits(0, 4, 0xa) // 1010
	b := NewZeroStore(4)
	b.SetBits(0, 4, 0x5) // 0101

	a.AppendRegion(b)
	if got, want := a.GetBits(0, 8), uint64(0xa5); got != want {
		t.Errorf("AppendRegion: got %#x, want %#x", got, want)
	}

	c := NewZeroStore(4)
	c.SetBits(0, 4, 0x5)
	d := NewZeroStore(4)
	d.SetBits(0, 4, 0xa)
	d.PrependRegion(c)
	if got, want := d.GetBits(0, 8), uint64(0x5a); got != want {
		t.Errorf("PrependRegion: got %#x, want %#x", got, want)
	}
}

func TestStoreSlice(t *testing.T) {
	s := NewZeroStore(16)
	s.SetBits(0, 16, 0xabcd)
	sub := s.Slice(4, 12)
	if got, want := sub.LengthBits(), int64(8); got != want {
		t.Errorf("Slice length: got %d, want %d", got, want)
	}
	if got, want := sub.GetBits(0, 8), uint64(0xbc); got != want {
		t.Errorf("Slice bits: got %#x, want %#x", got, want)
	}
}

func TestStoreEqual(t *testing.T) {
	a := NewZeroStore(12)
	a.SetBits(0, 12, 0x123)
	b := NewMemoryStore([]byte{0x12, 0x30}, 0, 12, false)
	if !a.Equal(b) {
		t.Errorf("Equal: got false, want true for identical bit content in separate buffers")
	}
	c := NewZeroStore(12)
	c.SetBits(0, 12, 0x124)
	if a.Equal(c) {
		t.Errorf("Equal: got true, want false for differing content")
	}
}

func TestStoreCountOnesInvertAll(t *testing.T) {
	s := NewZeroStore(12)
	s.SetBits(0, 12, 0x0f0) // 0000 1111 0000 -> 4 ones
	if got, want := s.CountOnes(), 4; got != want {
		t.Errorf("CountOnes: got %d, want %d", got, want)
	}
	s.InvertAll()
	if got, want := s.CountOnes(), 8; got != want {
		t.Errorf("CountOnes after InvertAll: got %d, want %d", got, want)
	}
}

func TestNewFileStore(t *testing.T) {
	f, err := ioutil.TempFile("", "bitstr-store-test")
	if err != nil {
		t.Fatalf("TempFile: %v", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte{0xde, 0xad, 0xbe, 0xef}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	s, err := NewFileStore(f.Name(), 0, 32)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	if !s.IsFileBacked() {
		t.Errorf("IsFileBacked: got false, want true")
	}
	if got, want := s.GetBits(0, 32), uint64(0xdeadbeef); got != want {
		t.Errorf("GetBits: got %#x, want %#x", got, want)
	}

	if _, err := NewFileStore(f.Name(), 0, 64); err == nil {
		t.Errorf("NewFileStore past end-of-file: got nil error, want non-nil")
	}
}

func TestStoreChecksumCombine(t *testing.T) {
	a := NewMemoryStore([]byte{0x01, 0x02}, 0, 16, false)
	b := NewMemoryStore([]byte{0x03, 0x04}, 0, 16, false)
	ab := NewMemoryStore([]byte{0x01, 0x02, 0x03, 0x04}, 0, 32, false)

	tab := (*[256]uint32)(crc32.IEEETable)
	crc1 := a.Checksum(tab)
	crc2 := b.Checksum(tab)
	want := ab.Checksum(tab)
	if got := CombineChecksums(crc32.IEEE, crc1, crc2, b.ByteLength()); got != want {
		t.Errorf("CombineChecksums: got %#x, want %#x", got, want)
	}
}
