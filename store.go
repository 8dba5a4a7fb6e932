// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/dsnet/bitstr/internal"
	"github.com/dsnet/golib/bits"
	"github.com/dsnet/golib/hashutil"
	"github.com/dsnet/golib/ioutil"
)

// Store owns or references the byte buffer backing a bit region. It
// tracks (offsetBits, lengthBits) as described by the package design
// documentation: offsetBits is the number of leading bits in the first
// referenced byte that are not part of the logical sequence, and
// lengthBits is the number of logical bits that follow.
//
// Bits are always stored big-endian within each byte at the physical
// level (bit 0 of a byte is its most significant bit); this is
// independent of the BitOrder a caller uses to index a BitSequence.
//
// Padding bits — the offsetBits leading bits of the first byte and any
// trailing bits of the last byte beyond lengthBits — are kept zero in
// every Store that owns its buffer. A Store that shares another's
// buffer (a Slice view) or reads through a file sees whatever bits lie
// there; ensureOwned clears them when it materializes a private copy.
// This invariant lets append/prepend merge adjacent byte-aligned
// regions with a plain OR instead of a masked read-modify-write.
type Store struct {
	buf        []byte // memory-backed bytes; nil if file-backed
	file       *fileHandle
	fileOffset int64 // byte offset into the file where buf[0] would start
	offsetBits uint8 // [0,7]
	lengthBits int64
	owned      bool // true: buf is exclusively owned and may be mutated in place
}

// fileHandle is a reference-counted *os.File. Per the package's
// single-threaded concurrency model (documented alongside Reader), the
// count is a plain int: a mutable sequence sharing a handle across
// goroutines must be externally synchronized, same as everything else.
type fileHandle struct {
	f    *os.File
	refs int
}

func (fh *fileHandle) retain() *fileHandle {
	fh.refs++
	return fh
}

func (fh *fileHandle) release() {
	fh.refs--
	if fh.refs <= 0 {
		fh.f.Close()
	}
}

func divCeil(n, m int64) int64 { return (n + m - 1) / m }

// NewMemoryStore constructs a Store over buf, interpreting the logical
// sequence as the lengthBits bits starting at offsetBits within buf. If
// owned is true, buf is assumed to be exclusively held by this Store and
// may be mutated in place; otherwise the first mutating operation
// materializes a private copy (copy-on-write).
func NewMemoryStore(buf []byte, offsetBits uint8, lengthBits int64, owned bool) *Store {
	if offsetBits > 7 {
		throw(errorf(InvalidConstruction, "offset %d not in [0,7]", offsetBits))
	}
	if lengthBits < 0 {
		throw(errorf(InvalidConstruction, "negative length %d", lengthBits))
	}
	need := divCeil(int64(offsetBits)+lengthBits, 8)
	if int64(len(buf)) < need {
		throw(errorf(InvalidConstruction, "buffer of %d bytes too short for %d bits at offset %d", len(buf), lengthBits, offsetBits))
	}
	return &Store{buf: buf[:need], offsetBits: offsetBits, lengthBits: lengthBits, owned: owned}
}

// NewZeroStore returns a freshly allocated, owned Store of n zero bits.
func NewZeroStore(n int64) *Store {
	if n < 0 {
		throw(errorf(InvalidConstruction, "negative length %d", n))
	}
	return &Store{buf: make([]byte, divCeil(n, 8)), lengthBits: n, owned: true}
}

// NewFileStore constructs a read-only Store backed by a window of path
// starting at byteOffset, lengthBits bits long. The returned Store never
// materializes its bytes into memory on its own; reads go straight to
// the file. Any mutating operation first copies the referenced range
// into memory.
func NewFileStore(path string, byteOffset int64, lengthBits int64) (*Store, error) {
	if byteOffset < 0 || lengthBits < 0 {
		return nil, errorf(InvalidConstruction, "negative offset or length")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	need := divCeil(lengthBits, 8)
	if byteOffset > fi.Size() || byteOffset+need > fi.Size() {
		f.Close()
		return nil, errorf(InvalidConstruction, "file %s: range [%d,%d) past end of file (size %d)", path, byteOffset, byteOffset+need, fi.Size())
	}
	return &Store{
		file:       &fileHandle{f: f, refs: 1},
		fileOffset: byteOffset,
		lengthBits: lengthBits,
	}, nil
}

// Close releases the Store's file handle, if any. It is a no-op for
// memory-backed Stores.
func (s *Store) Close() error {
	if s.file != nil {
		s.file.release()
		s.file = nil
	}
	return nil
}

// cloneShared returns a shallow copy of s that shares the same backing
// buffer or file handle, used whenever a read-only derived Store
// (Slice, a search haystack view, ...) is produced. Both s and the copy
// are marked not owned, so whichever is mutated first copies the buffer.
func (s *Store) cloneShared() *Store {
	c := *s
	c.owned = false
	s.owned = false
	if s.file != nil {
		s.file.retain()
	}
	return &c
}

// IsFileBacked reports whether s reads through a file handle rather than
// an in-memory buffer.
func (s *Store) IsFileBacked() bool { return s.file != nil }

// LengthBits returns the number of logical bits in s.
func (s *Store) LengthBits() int64 { return s.lengthBits }

// OffsetBits returns the intra-byte offset of logical bit 0.
func (s *Store) OffsetBits() uint8 { return s.offsetBits }

// ByteLength reports ceil((offsetBits+lengthBits)/8).
func (s *Store) ByteLength() int64 {
	return divCeil(int64(s.offsetBits)+s.lengthBits, 8)
}

// rawByte returns the k'th byte of the backing view (0-indexed, raw,
// not shifted to bit 0).
func (s *Store) rawByte(k int64) byte {
	if s.file != nil {
		var b [1]byte
		_, err := s.file.f.ReadAt(b[:], s.fileOffset+k)
		if err != nil && err != io.EOF {
			throw(errorf(OutOfRange, "file read at byte %d: %v", k, err))
		}
		return b[0]
	}
	return s.buf[k]
}

// GetByte returns the k'th raw byte of the view.
func (s *Store) GetByte(k int64) byte {
	if k < 0 || k >= s.ByteLength() {
		throw(errorf(OutOfRange, "byte index %d out of range [0,%d)", k, s.ByteLength()))
	}
	return s.rawByte(k)
}

// GetByteRange returns the raw bytes [a,b) of the view.
func (s *Store) GetByteRange(a, b int64) []byte {
	if a < 0 || b > s.ByteLength() || a > b {
		throw(errorf(OutOfRange, "byte range [%d,%d) out of range [0,%d)", a, b, s.ByteLength()))
	}
	if s.file != nil {
		sr := io.NewSectionReader(s.file.f, s.fileOffset+a, b-a)
		var bb bytes.Buffer
		if _, err := ioutil.ByteCopyN(&bb, bufio.NewReader(sr), b-a); err != nil && err != io.EOF {
			throw(errorf(OutOfRange, "file read range [%d,%d): %v", a, b, err))
		}
		return bb.Bytes()
	}
	out := make([]byte, b-a)
	copy(out, s.buf[a:b])
	return out
}

// GetBit returns the logical bit at physical MSB0 index i.
func (s *Store) GetBit(i int64) bool {
	if i < 0 || i >= s.lengthBits {
		throw(errorf(OutOfRange, "bit index %d out of range [0,%d)", i, s.lengthBits))
	}
	pos := int64(s.offsetBits) + i
	if s.file != nil {
		return s.rawByte(pos/8)&(0x80>>uint(pos%8)) != 0
	}
	return bits.Get(s.buf, uint(pos))
}

// GetBits returns up to 64 logical bits starting at i, MSB first. It is
// the fast path codecs use instead of looping GetBit, delegating to
// bits.GetN over the backing buffer.
func (s *Store) GetBits(i int64, n uint) uint64 {
	if n > 64 || i < 0 || i+int64(n) > s.lengthBits {
		throw(errorf(OutOfRange, "bit range [%d,%d) out of range [0,%d)", i, i+int64(n), s.lengthBits))
	}
	buf := s.buf
	if s.file != nil {
		buf = s.GetByteRange(0, s.ByteLength())
	}
	return uint64(bits.GetN(buf, n, uint(int64(s.offsetBits)+i)))
}

// ensureOwned materializes a private, in-memory, exclusively-owned
// buffer if s is file-backed or shared. This is the copy-on-write step
// every mutating operation performs before touching bytes.
func (s *Store) ensureOwned() {
	if s.file != nil {
		buf := s.GetByteRange(0, s.ByteLength())
		s.file.release()
		s.file = nil
		s.buf = buf
		s.owned = true
		s.clearPadding()
		return
	}
	if !s.owned {
		buf := make([]byte, len(s.buf))
		copy(buf, s.buf)
		s.buf = buf
		s.owned = true
		s.clearPadding()
	}
}

func setPhysBit(buf []byte, offsetBits uint8, i int64, v bool) {
	bits.Set(buf, v, uint(int64(offsetBits)+i))
}

// SetBit, ClearBit, and InvertBit mutate a single bit, materializing a
// private buffer first if necessary.
func (s *Store) SetBit(i int64) {
	if i < 0 || i >= s.lengthBits {
		throw(errorf(OutOfRange, "bit index %d out of range [0,%d)", i, s.lengthBits))
	}
	s.ensureOwned()
	setPhysBit(s.buf, s.offsetBits, i, true)
}

func (s *Store) ClearBit(i int64) {
	if i < 0 || i >= s.lengthBits {
		throw(errorf(OutOfRange, "bit index %d out of range [0,%d)", i, s.lengthBits))
	}
	s.ensureOwned()
	setPhysBit(s.buf, s.offsetBits, i, false)
}

func (s *Store) InvertBit(i int64) {
	if i < 0 || i >= s.lengthBits {
		throw(errorf(OutOfRange, "bit index %d out of range [0,%d)", i, s.lengthBits))
	}
	s.ensureOwned()
	pos := uint(int64(s.offsetBits) + i)
	bits.Set(s.buf, !bits.Get(s.buf, pos), pos)
}

// SetBits writes the low n bits of val (MSB first) starting at logical
// bit i, materializing a private buffer first if necessary. It is the
// fast path codecs use instead of looping SetBit.
func (s *Store) SetBits(i int64, n uint, val uint64) {
	if n > 64 || i < 0 || i+int64(n) > s.lengthBits {
		throw(errorf(OutOfRange, "bit range [%d,%d) out of range [0,%d)", i, i+int64(n), s.lengthBits))
	}
	s.ensureOwned()
	bits.SetN(s.buf, uint(val), n, uint(int64(s.offsetBits)+i))
}

// clearPadding zeros the offsetBits leading bits of the first byte and
// the trailing unused bits of the last byte, restoring the zero-padding
// invariant after an operation that may have disturbed it (e.g. a
// length change).
func (s *Store) clearPadding() {
	if s.lengthBits == 0 {
		for i := range s.buf {
			s.buf[i] = 0
		}
		return
	}
	leadMask := byte(0xff >> s.offsetBits)
	s.buf[0] &= leadMask
	last := len(s.buf) - 1
	end := (int64(s.offsetBits) + s.lengthBits) % 8
	if end != 0 {
		tailMask := byte(0xff << uint(8-end))
		s.buf[last] &= tailMask
	}
}

// Slice returns a read-only Store over the logical bits [a,b), sharing
// the backing buffer or file handle (copy-on-write: safe because any
// future mutation of the parent or the slice materializes its own copy
// first).
func (s *Store) Slice(a, b int64) *Store {
	if a < 0 || b > s.lengthBits || a > b {
		throw(errorf(OutOfRange, "slice [%d,%d) out of range [0,%d)", a, b, s.lengthBits))
	}
	c := s.cloneShared()
	startBit := int64(s.offsetBits) + a
	c.offsetBits = uint8(startBit % 8)
	c.lengthBits = b - a
	if s.file != nil {
		c.fileOffset = s.fileOffset + startBit/8
	} else {
		c.buf = s.buf[startBit/8 : divCeil(startBit+c.lengthBits, 8)]
	}
	return c
}

// rebase returns a Store holding the same logical bits as s but with a
// new intra-byte offset, always producing an owned, in-memory buffer.
// This is the generic fallback append_region/prepend_region use when the
// byte-splice fast path does not apply, and what SetOffset uses
// directly.
func (s *Store) rebase(newOffset uint8) *Store {
	n := s.lengthBits
	out := &Store{buf: make([]byte, divCeil(int64(newOffset)+n, 8)), offsetBits: newOffset, lengthBits: n, owned: true}
	// Byte-wise shift: walk the destination bytes, pulling bits from the
	// (at most two) source bytes that overlap each one.
	for i := int64(0); i < int64(len(out.buf)); i++ {
		dstBitStart := i * 8
		var v byte
		for b := uint(0); b < 8; b++ {
			bit := dstBitStart + int64(b) - int64(newOffset)
			if bit < 0 || bit >= n {
				continue
			}
			if s.GetBit(bit) {
				v |= 0x80 >> b
			}
		}
		out.buf[i] = v
	}
	return out
}

// SetOffset rebases s in place to a new intra-byte offset in [0,7],
// physically shifting bytes to match. Cost is proportional to the
// number of bytes in the region.
func (s *Store) SetOffset(newOffset uint8) {
	if newOffset > 7 {
		throw(errorf(InvalidConstruction, "offset %d not in [0,7]", newOffset))
	}
	if newOffset == s.offsetBits {
		return
	}
	r := s.rebase(newOffset)
	s.buf, s.offsetBits, s.owned = r.buf, r.offsetBits, true
}

// AppendRegion concatenates other onto the end of s in place. If the
// bit immediately following s's last bit already falls at other's
// offset, this is a byte splice with at most one boundary byte merged
// by OR (safe because of the zero-padding invariant); otherwise other
// is rebased first.
func (s *Store) AppendRegion(other *Store) {
	s.ensureOwned()
	if other.lengthBits == 0 {
		return
	}
	selfEnd := (int64(s.offsetBits) + s.lengthBits) % 8
	if selfEnd != int64(other.offsetBits) {
		other = other.rebase(uint8(selfEnd))
	}
	otherBuf := other.GetByteRange(0, other.ByteLength())
	if selfEnd == 0 {
		s.buf = append(s.buf, otherBuf...)
	} else {
		last := len(s.buf) - 1
		s.buf[last] |= otherBuf[0] & (0xff >> uint(selfEnd))
		s.buf = append(s.buf, otherBuf[1:]...)
	}
	s.lengthBits += other.lengthBits
	s.clearPadding()
}

// PrependRegion concatenates s onto the end of other and stores the
// result in s, the dual of AppendRegion.
func (s *Store) PrependRegion(other *Store) {
	combined := other.cloneShared()
	combined.ensureOwned()
	combined.AppendRegion(s)
	s.buf, s.offsetBits, s.lengthBits, s.owned = combined.buf, combined.offsetBits, combined.lengthBits, true
	s.file = nil
}

// Equal reports whether s and t hold the same logical bits,
// independent of backing buffer identity or intra-byte offset.
func (s *Store) Equal(t *Store) bool {
	if s.lengthBits != t.lengthBits {
		return false
	}
	if s.offsetBits == t.offsetBits && !s.IsFileBacked() && !t.IsFileBacked() && s.owned && t.owned {
		sb, tb := s.GetByteRange(0, s.ByteLength()), t.GetByteRange(0, t.ByteLength())
		return string(sb) == string(tb)
	}
	for i := int64(0); i < s.lengthBits; i++ {
		if s.GetBit(i) != t.GetBit(i) {
			return false
		}
	}
	return true
}

// Checksum returns the CRC-32 (using the given polynomial table) of the
// raw bytes of s (see GetByteRange). When s is itself the concatenation
// of two previously-checksummed regions, callers should prefer combining
// the two CRCs with CombineChecksums rather than rescanning, mirroring
// bzip2's block-level CRC bookkeeping.
func (s *Store) Checksum(tab *[256]uint32) uint32 {
	var crc uint32
	buf := s.GetByteRange(0, s.ByteLength())
	for _, b := range buf {
		crc = tab[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}

// CombineChecksums combines two CRC-32 values computed over adjacent
// byte-aligned regions, the second of which is len2 bytes long,
// avoiding a rescan of either region.
func CombineChecksums(poly uint32, crc1, crc2 uint32, len2 int64) uint32 {
	return hashutil.CombineCRC32(poly, crc1, crc2, len2)
}

// CountOnes returns the number of one bits in s. An owned Store keeps
// its padding bits zero, so a plain bits.Count over its raw buffer
// counts exactly the logical one bits; a shared or file-backed Store is
// first copied with its padding cleared.
func (s *Store) CountOnes() int {
	t := s
	if !s.owned {
		t = s.rebase(s.offsetBits)
	}
	return bits.Count(t.GetByteRange(0, t.ByteLength()))
}

// InvertAll flips every logical bit of s in place.
func (s *Store) InvertAll() {
	s.ensureOwned()
	bits.Invert(s.buf)
	s.clearPadding()
}

// reverseRange reverses the bit order of the logical bits [a,b) in
// place. When [a,b) is physically byte-aligned, whole bytes are
// reversed through the package-wide bit-reversal LUT and then swapped
// end-for-end, which is equivalent to but far cheaper than the
// bit-by-bit fallback used otherwise.
func (s *Store) reverseRange(a, b int64) {
	s.ensureOwned()
	if (int64(s.offsetBits)+a)%8 == 0 && (int64(s.offsetBits)+b)%8 == 0 {
		lo := (int64(s.offsetBits) + a) / 8
		hi := (int64(s.offsetBits) + b) / 8
		for i, j := lo, hi-1; i <= j; i, j = i+1, j-1 {
			ri, rj := internal.ReverseByte(s.buf[i]), internal.ReverseByte(s.buf[j])
			s.buf[i], s.buf[j] = rj, ri
		}
		return
	}
	for lo, hi := a, b-1; lo < hi; lo, hi = lo+1, hi-1 {
		lv, hv := s.GetBit(lo), s.GetBit(hi)
		setPhysBit(s.buf, s.offsetBits, lo, hv)
		setPhysBit(s.buf, s.offsetBits, hi, lv)
	}
}
