// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

import "hash/crc32"

// BitSequence is the read-only, user-facing facade over a Store: it
// adds BitOrder-aware indexing, Python-style step-stride slicing, and
// the named constructors from the package's external interface. The
// underlying Store is copy-on-write, so BitSequence values are cheap
// to derive from one another.
type BitSequence struct {
	store *Store
	order BitOrder
}

// MutableBitSequence adds in-place editing (Editor) on top of
// BitSequence. Deriving one from an immutable BitSequence always
// materializes a private Store first, so edits never alias the
// original.
type MutableBitSequence struct {
	BitSequence
	editor *Editor
}

// newSequence wraps a Store that is not (yet) shared with any other
// BitSequence.
func newSequence(s *Store, order BitOrder) *BitSequence {
	return &BitSequence{store: s, order: order}
}

// NewFromFormat builds a sequence by packing a format string against a
// positional value list and keyword map (see Pack).
func NewFromFormat(order BitOrder, formatStr string, values []interface{}, keywords map[string]interface{}) (*BitSequence, error) {
	s, err := Pack(formatStr, values, keywords)
	if err != nil {
		return nil, err
	}
	return newSequence(s, order), nil
}

// NewFromBytes builds a sequence over a copy of buf.
func NewFromBytes(order BitOrder, buf []byte) *BitSequence {
	return newSequence(EncodeBytes(buf), order)
}

// NewFromFile builds a sequence backed by a window of a file on disk.
func NewFromFile(order BitOrder, path string, byteOffset, lengthBits int64) (*BitSequence, error) {
	s, err := NewFileStore(path, byteOffset, lengthBits)
	if err != nil {
		return nil, err
	}
	return newSequence(s, order), nil
}

// NewFromBits builds a sequence with one bit per element of bits, in
// the order given (independent of BitOrder, which only affects how
// the result is later indexed).
func NewFromBits(order BitOrder, bits []bool) *BitSequence {
	s := NewZeroStore(int64(len(bits)))
	for i, v := range bits {
		if v {
			s.SetBit(int64(i))
		}
	}
	return newSequence(s, order)
}

// NewZeros builds a sequence of n zero bits.
func NewZeros(order BitOrder, n int64) *BitSequence {
	return newSequence(NewZeroStore(n), order)
}

// NewFromKeyword builds a sequence from a single keyword-typed value,
// mirroring one arm of the duck-typed "auto" constructor the source
// dispatches by runtime type: here each kind gets an explicit,
// statically-typed path instead. offset is only meaningful for the
// "bytes" keyword and is applied after encoding via SetOffset.
func NewFromKeyword(order BitOrder, keyword string, value interface{}, length int64, offset uint8) (seq *BitSequence, err error) {
	defer errRecover(&err)
	var s *Store
	switch keyword {
	case "bytes":
		s = EncodeBytes(value.([]byte))
	case "bin":
		s = EncodeBin(value.(string))
	case "hex":
		s = EncodeHex(value.(string))
	case "oct":
		s = EncodeOct(value.(string))
	case "bool":
		s = EncodeBool(value.(bool))
	case "uint":
		s = EncodeUint(toUint64(value), int(length))
	case "int":
		s = EncodeInt(toInt64Value(value), int(length))
	case "uintbe":
		s = EncodeUintBE(toUint64(value), int(length))
	case "intbe":
		s = EncodeIntBE(toInt64Value(value), int(length))
	case "uintle":
		s = EncodeUintLE(toUint64(value), int(length))
	case "intle":
		s = EncodeIntLE(toInt64Value(value), int(length))
	case "uintne":
		s = EncodeUintNE(toUint64(value), int(length))
	case "intne":
		s = EncodeIntNE(toInt64Value(value), int(length))
	case "float":
		s = EncodeFloat(toFloat64(value), int(length), BE)
	case "floatbe":
		s = EncodeFloat(toFloat64(value), int(length), BE)
	case "floatle":
		s = EncodeFloat(toFloat64(value), int(length), LE)
	case "floatne":
		s = EncodeFloat(toFloat64(value), int(length), NE)
	case "ue":
		s = EncodeUE(toUint64(value))
	case "se":
		s = EncodeSE(toInt64Value(value))
	case "uie":
		s = EncodeUIE(toUint64(value))
	case "sie":
		s = EncodeSIE(toInt64Value(value))
	default:
		throw(errorf(InvalidConstruction, "unknown keyword %q", keyword))
	}
	if offset != 0 {
		if keyword != "bytes" {
			throw(errorf(InvalidConstruction, "offset is only valid with the bytes or file source"))
		}
		s.SetOffset(offset)
	}
	return newSequence(s, order), nil
}

// Order reports the BitOrder this sequence indexes under.
func (b *BitSequence) Order() BitOrder { return b.order }

// Len returns the number of bits in the sequence.
func (b *BitSequence) Len() int64 { return b.store.LengthBits() }

// translate converts a BitOrder-relative index to the underlying
// Store's physical MSB0 index.
func (b *BitSequence) translate(i int64) int64 {
	if b.order == MSB0 {
		return i
	}
	return b.store.LengthBits() - 1 - i
}

// At returns the bit at BitOrder-relative index i.
func (b *BitSequence) At(i int64) bool {
	if i < 0 || i >= b.store.LengthBits() {
		throw(errorf(OutOfRange, "bit index %d out of range [0,%d)", i, b.store.LengthBits()))
	}
	return b.store.GetBit(b.translate(i))
}

// Bool reports whether the sequence is non-empty: truthiness is
// length, not bit value.
func (b *BitSequence) Bool() bool { return b.store.LengthBits() > 0 }

// Bytes returns the byte dump of the sequence: its bytes padded with
// up to 7 trailing zero bits.
func (b *BitSequence) Bytes() []byte {
	s := b.store.rebase(0)
	return s.GetByteRange(0, s.ByteLength())
}

// Hash returns a CRC-32 digest over the sequence's length and byte
// dump, suitable as a hash-map key for an immutable sequence (the dump
// is taken at offset 0 with zeroed padding, so two equal sequences with
// different offsets still hash identically on their logical bits).
func (b *BitSequence) Hash() uint32 {
	h := b.store.rebase(0).Checksum((*[256]uint32)(crc32.IEEETable))
	h = h*31 + uint32(b.store.LengthBits())
	return h
}

// Equal reports whether b and o hold the same logical bits,
// independent of BitOrder or backing representation.
func (b *BitSequence) Equal(o *BitSequence) bool { return b.store.Equal(o.store) }

// clampSliceBound clamps a possibly-negative, possibly-out-of-range
// Python-style slice bound into [0, n], treating negative values as
// counting from the end.
func clampSliceBound(v, n int64) int64 {
	if v < 0 {
		v += n
	}
	if v < 0 {
		v = 0
	}
	if v > n {
		v = n
	}
	return v
}

// Slice returns the BitOrder-relative bits [start:stop:step), with
// Python slice semantics: step may be negative, and start/stop may be
// negative (counting from the end) or out of range (clamped). A single
// out-of-range index (as opposed to a slice bound) fails with
// OutOfRange; this method never fails on bounds, matching Python's
// slice clamp-don't-raise convention.
func (b *BitSequence) Slice(start, stop, step int64) *BitSequence {
	n := b.store.LengthBits()
	if step == 0 {
		throw(errorf(InvalidConstruction, "slice step cannot be 0"))
	}

	var count int64
	if step > 0 {
		start = clampSliceBound(start, n)
		stop = clampSliceBound(stop, n)
		if stop > start {
			count = (stop - start + step - 1) / step
		}
	} else {
		start = clampSliceBoundNeg(start, n)
		stop = clampSliceBoundNeg(stop, n)
		if start > stop {
			count = (start-stop-1)/(-step) + 1
		}
	}

	if step == 1 && b.order == MSB0 && stop >= start {
		return newSequence(b.store.Slice(start, stop), b.order)
	}

	out := NewZeroStore(count)
	idx := start
	for k := int64(0); k < count; k++ {
		if b.At(idx) {
			out.SetBit(k)
		}
		idx += step
	}
	return newSequence(out, b.order)
}

// clampSliceBoundNeg is clampSliceBound's counterpart for a negative
// step, where the sentinel one-past-the-start (-1) is a valid bound
// distinct from clamping to 0.
func clampSliceBoundNeg(v, n int64) int64 {
	if v < 0 {
		v += n
	}
	if v < -1 {
		v = -1
	}
	if v > n-1 {
		v = n - 1
	}
	return v
}

// Index returns the single BitOrder-relative bit at i as a 1-bit
// sequence, mirroring Python's s[i] returning a length-1 slice for
// bit-string types.
func (b *BitSequence) Index(i int64) *BitSequence {
	if i < 0 {
		i += b.store.LengthBits()
	}
	if i < 0 || i >= b.store.LengthBits() {
		throw(errorf(OutOfRange, "index %d out of range [0,%d)", i, b.store.LengthBits()))
	}
	out := NewZeroStore(1)
	if b.At(i) {
		out.SetBit(0)
	}
	return newSequence(out, b.order)
}

// orderedPos converts a physical (MSB0) match position for a match of
// the given length into this sequence's BitOrder coordinate space.
func (b *BitSequence) orderedPos(physPos, matchLen int64) int64 {
	if b.order == MSB0 {
		return physPos
	}
	return b.store.LengthBits() - physPos - matchLen
}

// unorderedRange converts a BitOrder-relative [start,end) bound pair
// into the physical [start,end) the Store search functions expect.
func (b *BitSequence) unorderedRange(start, end int64) (int64, int64) {
	if b.order == MSB0 {
		return start, end
	}
	n := b.store.LengthBits()
	return n - end, n - start
}

// Find returns the lowest BitOrder-relative position of pattern within
// [start,end). Under LSB0 indexing, "lowest position" is the highest
// physical offset, so this dispatches to the Store's RFind.
func (b *BitSequence) Find(pattern *BitSequence, start, end int64, byteAligned bool) (pos int64, found bool, err error) {
	pstart, pend := b.unorderedRange(start, end)
	if b.order == MSB0 {
		p, ok, ferr := Find(b.store, pattern.store, pstart, pend, byteAligned)
		return b.orderedPos(p, pattern.Len()), ok, ferr
	}
	p, ok, ferr := RFind(b.store, pattern.store, pstart, pend, byteAligned)
	return b.orderedPos(p, pattern.Len()), ok, ferr
}

// RFind is the dual of Find: highest BitOrder-relative position.
func (b *BitSequence) RFind(pattern *BitSequence, start, end int64, byteAligned bool) (pos int64, found bool, err error) {
	pstart, pend := b.unorderedRange(start, end)
	if b.order == MSB0 {
		p, ok, ferr := RFind(b.store, pattern.store, pstart, pend, byteAligned)
		return b.orderedPos(p, pattern.Len()), ok, ferr
	}
	p, ok, ferr := Find(b.store, pattern.store, pstart, pend, byteAligned)
	return b.orderedPos(p, pattern.Len()), ok, ferr
}

// FindAll returns up to count BitOrder-relative match positions, in
// ascending BitOrder order.
func (b *BitSequence) FindAll(pattern *BitSequence, start, end int64, count int, byteAligned bool) ([]int64, error) {
	pstart, pend := b.unorderedRange(start, end)
	phys, err := FindAll(b.store, pattern.store, pstart, pend, count, byteAligned)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(phys))
	for i, p := range phys {
		out[i] = b.orderedPos(p, pattern.Len())
	}
	if b.order == LSB0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// Uint, Int, Hex, Oct, BinString, Float, and RawBytes interpret the entire
// sequence with the named codec, independent of BitOrder (per the
// package design, only indexing and Find are BitOrder-aware).
func (b *BitSequence) Uint() uint64        { return DecodeUint(b.store) }
func (b *BitSequence) Int() int64          { return DecodeInt(b.store) }
func (b *BitSequence) Hex() string         { return DecodeHex(b.store) }
func (b *BitSequence) Oct() string         { return DecodeOct(b.store) }
func (b *BitSequence) BinString() string   { return DecodeBin(b.store) }
func (b *BitSequence) Float() float64      { return DecodeFloat(b.store, BE) }
func (b *BitSequence) RawBytes() []byte    { return DecodeBytes(b.store) }
func (b *BitSequence) Reader() *Reader     { return NewReader(b.store) }

// Mutable returns a MutableBitSequence over a private copy of b's
// bits, leaving b itself untouched.
func (b *BitSequence) Mutable() *MutableBitSequence {
	s := b.store.cloneShared()
	s.ensureOwned()
	m := &MutableBitSequence{BitSequence: BitSequence{store: s, order: b.order}}
	m.editor = NewEditor(s)
	return m
}

// Immutable returns a read-only snapshot of m's current bits.
func (m *MutableBitSequence) Immutable() *BitSequence {
	s := m.store.cloneShared()
	return newSequence(s, m.order)
}

// translateBoundary converts a BitOrder-relative insertion point (a
// position between bits, ranging over [0,Len()] rather than a bit
// index) to the underlying Store's physical boundary.
func (b *BitSequence) translateBoundary(pos int64) int64 {
	if b.order == MSB0 {
		return pos
	}
	return b.store.LengthBits() - pos
}

func (m *MutableBitSequence) Insert(pos int64, other *BitSequence) error {
	return m.editor.Insert(m.translateBoundary(pos), other.store)
}

func (m *MutableBitSequence) Overwrite(pos int64, other *BitSequence) error {
	return m.editor.Overwrite(m.translateBoundary(pos), other.store)
}

func (m *MutableBitSequence) Delete(start, end int64) error {
	a, b := m.unorderedRange(start, end)
	return m.editor.Delete(a, b)
}

func (m *MutableBitSequence) RotateLeft(n int64) error  { return m.editor.RotateLeft(n) }
func (m *MutableBitSequence) RotateRight(n int64) error { return m.editor.RotateRight(n) }
func (m *MutableBitSequence) Reverse(start, end int64) error {
	a, b := m.unorderedRange(start, end)
	return m.editor.Reverse(a, b)
}
func (m *MutableBitSequence) ByteSwap(start, end int64) error {
	a, b := m.unorderedRange(start, end)
	return m.editor.ByteSwap(a, b)
}
func (m *MutableBitSequence) And(other *BitSequence) error { return m.editor.And(other.store) }
func (m *MutableBitSequence) Or(other *BitSequence) error  { return m.editor.Or(other.store) }
func (m *MutableBitSequence) Xor(other *BitSequence) error { return m.editor.Xor(other.store) }
func (m *MutableBitSequence) InvertAll()                   { m.editor.InvertAll() }

func (m *MutableBitSequence) SetBitAt(i int64) {
	m.store.SetBit(m.translate(i))
}
func (m *MutableBitSequence) ClearBitAt(i int64) {
	m.store.ClearBit(m.translate(i))
}
func (m *MutableBitSequence) InvertBitAt(i int64) {
	m.store.InvertBit(m.translate(i))
}
