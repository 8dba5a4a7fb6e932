// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

// Reader is a cursor-based stream view over a Store: a single position
// that advances as codec tokens are read, with Peek variants that do
// not advance it. Reader is not safe for concurrent use, matching the
// package's single-threaded model elsewhere (Store, Editor).
type Reader struct {
	store *Store
	pos   int64 // current bit position, in [0, store.LengthBits()]
}

// NewReader returns a Reader positioned at the start of s. The Reader
// does not copy s; it reads through the same Store.
func NewReader(s *Store) *Reader {
	return &Reader{store: s}
}

// Pos returns the current bit position of the cursor.
func (r *Reader) Pos() int64 { return r.pos }

// Len returns the total number of bits in the underlying sequence.
func (r *Reader) Len() int64 { return r.store.LengthBits() }

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int64 { return r.store.LengthBits() - r.pos }

// Seek repositions the cursor to an absolute bit offset.
func (r *Reader) Seek(pos int64) {
	if pos < 0 || pos > r.store.LengthBits() {
		throw(errorf(OutOfRange, "seek position %d out of range [0,%d]", pos, r.store.LengthBits()))
	}
	r.pos = pos
}

// Advance moves the cursor forward by n bits.
func (r *Reader) Advance(n int64) {
	r.Seek(r.pos + n)
}

// ByteAlign advances the cursor to the next byte boundary, a no-op if
// already aligned.
func (r *Reader) ByteAlign() {
	if rem := r.pos % 8; rem != 0 {
		r.Advance(8 - rem)
	}
}

// Aligned reports whether the cursor currently sits on a byte boundary.
func (r *Reader) Aligned() bool { return r.pos%8 == 0 }

// readBitRaw reads and consumes a single bit without bounds-checking
// the happy path through errRecover machinery; callers (the
// exponential-Golomb codecs) rely on the OutOfRange panic from GetBit
// propagating unchanged when the stream is exhausted mid-code.
func (r *Reader) readBitRaw() bool {
	v := r.store.GetBit(r.pos)
	r.pos++
	return v
}

// readBitsRaw reads and consumes n bits (n<=64) without disturbing
// transactional semantics; the caller is responsible for restoring pos
// on failure, same as readBitRaw.
func (r *Reader) readBitsRaw(n uint) uint64 {
	v := r.store.GetBits(r.pos, n)
	r.pos += int64(n)
	return v
}

// ReadView consumes n bits and returns them as a read-only Store,
// restoring the cursor if the read would run past the end.
func (r *Reader) ReadView(n int64) (region *Store, err error) {
	defer errRecover(&err)
	if n < 0 || r.pos+n > r.store.LengthBits() {
		throw(errorf(OutOfRange, "read of %d bits at position %d exceeds length %d", n, r.pos, r.store.LengthBits()))
	}
	region = r.store.Slice(r.pos, r.pos+n)
	r.pos += n
	return region, nil
}

// PeekView returns the next n bits without advancing the cursor.
func (r *Reader) PeekView(n int64) (region *Store, err error) {
	defer errRecover(&err)
	if n < 0 || r.pos+n > r.store.LengthBits() {
		throw(errorf(OutOfRange, "peek of %d bits at position %d exceeds length %d", n, r.pos, r.store.LengthBits()))
	}
	return r.store.Slice(r.pos, r.pos+n), nil
}

// ReadTo consumes bits up to (but not including) the given absolute
// position, returning them as a view. It fails if pos is behind the
// cursor or past the end.
func (r *Reader) ReadTo(pos int64) (region *Store, err error) {
	defer errRecover(&err)
	if pos < r.pos || pos > r.store.LengthBits() {
		throw(errorf(OutOfRange, "read-to position %d invalid from current position %d (length %d)", pos, r.pos, r.store.LengthBits()))
	}
	region = r.store.Slice(r.pos, pos)
	r.pos = pos
	return region, nil
}

// ReadUint reads n bits (n<=64) as an unsigned big-endian integer,
// restoring the cursor if the read fails.
func (r *Reader) ReadUint(n int) (value uint64, err error) {
	start := r.pos
	defer func() {
		if err != nil {
			r.pos = start
		}
	}()
	region, rerr := r.ReadView(int64(n))
	if rerr != nil {
		err = rerr
		return 0, err
	}
	defer errRecover(&err)
	return DecodeUint(region), nil
}

// PeekUint reads n bits as an unsigned integer without advancing.
func (r *Reader) PeekUint(n int) (value uint64, err error) {
	defer errRecover(&err)
	region, rerr := r.PeekView(int64(n))
	if rerr != nil {
		return 0, rerr
	}
	return DecodeUint(region), nil
}

// ReadInt reads n bits (n<=64) as a two's-complement signed integer.
func (r *Reader) ReadInt(n int) (value int64, err error) {
	start := r.pos
	defer func() {
		if err != nil {
			r.pos = start
		}
	}()
	region, rerr := r.ReadView(int64(n))
	if rerr != nil {
		err = rerr
		return 0, err
	}
	defer errRecover(&err)
	return DecodeInt(region), nil
}

// ReadBool reads a single bit as a boolean.
func (r *Reader) ReadBool() (value bool, err error) {
	start := r.pos
	defer func() {
		if err != nil {
			r.pos = start
		}
	}()
	region, rerr := r.ReadView(1)
	if rerr != nil {
		err = rerr
		return false, err
	}
	defer errRecover(&err)
	return DecodeBool(region), nil
}

// ReadUE reads one Exp-Golomb order-0 unsigned code, restoring the
// cursor if the stream is exhausted mid-code.
func (r *Reader) ReadUE() (value uint64, err error) {
	start := r.pos
	defer func() {
		if err != nil {
			r.pos = start
		}
	}()
	defer errRecover(&err)
	return DecodeUE(r), nil
}

// ReadSE reads one Exp-Golomb order-0 signed code.
func (r *Reader) ReadSE() (value int64, err error) {
	start := r.pos
	defer func() {
		if err != nil {
			r.pos = start
		}
	}()
	defer errRecover(&err)
	return DecodeSE(r), nil
}

// ReadUIE reads one Dirac-style interleaved exponential-Golomb
// unsigned code.
func (r *Reader) ReadUIE() (value uint64, err error) {
	start := r.pos
	defer func() {
		if err != nil {
			r.pos = start
		}
	}()
	defer errRecover(&err)
	return DecodeUIE(r), nil
}

// ReadSIE reads one Dirac-style interleaved exponential-Golomb signed
// code.
func (r *Reader) ReadSIE() (value int64, err error) {
	start := r.pos
	defer func() {
		if err != nil {
			r.pos = start
		}
	}()
	defer errRecover(&err)
	return DecodeSIE(r), nil
}
