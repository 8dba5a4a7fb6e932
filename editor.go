// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

// Editor performs in-place structural mutation of a Store: insertion,
// deletion, overwrite, rotation, reversal, byte-swap, and bitwise
// combination with another region. Every operation that can fail
// restores the Store to its pre-call state before returning, matching
// the package's transactional-failure convention used elsewhere.
type Editor struct {
	store *Store
}

// NewEditor wraps s for editing. The Editor mutates s directly.
func NewEditor(s *Store) *Editor {
	return &Editor{store: s}
}

// Insert splices other into s starting at logical bit pos, shifting
// everything from pos onward to the right.
func (e *Editor) Insert(pos int64, other *Store) (err error) {
	defer errRecover(&err)
	s := e.store
	if pos < 0 || pos > s.LengthBits() {
		throw(errorf(OutOfRange, "insert position %d out of range [0,%d]", pos, s.LengthBits()))
	}
	if other.LengthBits() == 0 {
		return nil
	}
	head := s.Slice(0, pos)
	tail := s.Slice(pos, s.LengthBits())
	head = head.cloneShared()
	head.ensureOwned()
	head.AppendRegion(other)
	head.AppendRegion(tail)
	s.buf, s.offsetBits, s.lengthBits, s.owned = head.buf, head.offsetBits, head.lengthBits, true
	s.file = nil
	return nil
}

// Overwrite replaces the n bits of s starting at pos with the bits of
// other, zero-extending s first if the write would run past its
// current end.
func (e *Editor) Overwrite(pos int64, other *Store) (err error) {
	defer errRecover(&err)
	s := e.store
	if pos < 0 {
		throw(errorf(OutOfRange, "overwrite position %d is negative", pos))
	}
	n := other.LengthBits()
	if need := pos + n; need > s.LengthBits() {
		pad := NewZeroStore(need - s.LengthBits())
		s.AppendRegion(pad)
	}
	s.ensureOwned()
	for i := int64(0); i < n; i++ {
		setPhysBit(s.buf, s.offsetBits, pos+i, other.GetBit(i))
	}
	return nil
}

// Delete removes the logical bits [a,b) from s in place.
func (e *Editor) Delete(a, b int64) (err error) {
	defer errRecover(&err)
	s := e.store
	if a < 0 || b > s.LengthBits() || a > b {
		throw(errorf(OutOfRange, "delete range [%d,%d) out of range [0,%d)", a, b, s.LengthBits()))
	}
	head := s.Slice(0, a).cloneShared()
	tail := s.Slice(b, s.LengthBits())
	head.ensureOwned()
	head.AppendRegion(tail)
	s.buf, s.offsetBits, s.lengthBits, s.owned = head.buf, head.offsetBits, head.lengthBits, true
	s.file = nil
	return nil
}

// RotateLeft rotates the logical bits of s left by n positions
// (n may exceed LengthBits(); it is reduced modulo the length).
func (e *Editor) RotateLeft(n int64) (err error) {
	defer errRecover(&err)
	s := e.store
	length := s.LengthBits()
	if length == 0 {
		return nil
	}
	n = ((n % length) + length) % length
	if n == 0 {
		return nil
	}
	head := s.Slice(0, n).cloneShared()
	tail := s.Slice(n, length).cloneShared()
	head.ensureOwned()
	tail.ensureOwned()
	tail.AppendRegion(head)
	s.buf, s.offsetBits, s.lengthBits, s.owned = tail.buf, tail.offsetBits, tail.lengthBits, true
	s.file = nil
	return nil
}

// RotateRight rotates the logical bits of s right by n positions.
func (e *Editor) RotateRight(n int64) (err error) {
	length := e.store.LengthBits()
	if length == 0 {
		return nil
	}
	n = ((n % length) + length) % length
	return e.RotateLeft(length - n)
}

// Reverse reverses the order of the logical bits [a,b) of s in place.
func (e *Editor) Reverse(a, b int64) (err error) {
	defer errRecover(&err)
	s := e.store
	if a < 0 || b > s.LengthBits() || a > b {
		throw(errorf(OutOfRange, "reverse range [%d,%d) out of range [0,%d)", a, b, s.LengthBits()))
	}
	s.reverseRange(a, b)
	return nil
}

// ByteSwap reverses the order of the whole bytes spanning the
// byte-aligned logical bits [a,b), without touching bit order within
// each byte. Both bounds must be byte-aligned.
func (e *Editor) ByteSwap(a, b int64) (err error) {
	defer errRecover(&err)
	s := e.store
	if a < 0 || b > s.LengthBits() || a > b {
		throw(errorf(OutOfRange, "byteswap range [%d,%d) out of range [0,%d)", a, b, s.LengthBits()))
	}
	if (int64(s.offsetBits)+a)%8 != 0 || (b-a)%8 != 0 {
		throw(errorf(AlignmentRequired, "byteswap range [%d,%d) is not byte-aligned", a, b))
	}
	s.ensureOwned()
	lo := (int64(s.offsetBits) + a) / 8
	hi := (int64(s.offsetBits) + b) / 8
	for i, j := lo, hi-1; i < j; i, j = i+1, j-1 {
		s.buf[i], s.buf[j] = s.buf[j], s.buf[i]
	}
	return nil
}

// And, Or, and Xor combine the bits of s with other, logically
// position-for-position, requiring equal lengths.
func (e *Editor) And(other *Store) (err error) { return e.combine(other, func(a, b byte) byte { return a & b }) }
func (e *Editor) Or(other *Store) (err error)  { return e.combine(other, func(a, b byte) byte { return a | b }) }
func (e *Editor) Xor(other *Store) (err error) { return e.combine(other, func(a, b byte) byte { return a ^ b }) }

func (e *Editor) combine(other *Store, op func(a, b byte) byte) (err error) {
	defer errRecover(&err)
	s := e.store
	if s.LengthBits() != other.LengthBits() {
		throw(errorf(InvalidConstruction, "combine requires equal lengths, got %d and %d", s.LengthBits(), other.LengthBits()))
	}
	s.ensureOwned()
	if s.offsetBits == other.offsetBits && !other.IsFileBacked() {
		ob := other.GetByteRange(0, other.ByteLength())
		for i := range s.buf {
			s.buf[i] = op(s.buf[i], ob[i])
		}
		s.clearPadding()
		return nil
	}
	for i := int64(0); i < s.LengthBits(); i++ {
		v := op(boolByte(s.GetBit(i)), boolByte(other.GetBit(i))) != 0
		setPhysBit(s.buf, s.offsetBits, i, v)
	}
	return nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// InvertAll flips every bit of s in place, delegating to the Store's
// fast path wired to dsnet/golib/bits.
func (e *Editor) InvertAll() { e.store.InvertAll() }

// CountOnes reports the number of one bits in s.
func (e *Editor) CountOnes() int { return e.store.CountOnes() }
