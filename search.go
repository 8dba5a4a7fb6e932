// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

// searchWindowBytes sets the minimum chunk size the byte-aligned Find
// path scans at a time, amortizing the per-chunk materialization cost
// over many candidate positions instead of re-fetching one byte at a
// time. searchWindowBits is not consulted: the bit-level path compares
// position by position without chunking.
const (
	searchWindowBytes = 1024
	searchWindowBits  = 16 * 1024
)

// Find returns the lowest position p in [start,end-pattern.LengthBits()]
// such that haystack[p:p+len(pattern)] equals pattern, or found=false.
func Find(haystack *Store, pattern *Store, start, end int64, byteAligned bool) (pos int64, found bool, err error) {
	defer errRecover(&err)
	pos, found = find(haystack, pattern, start, end, byteAligned, false)
	return pos, found, nil
}

// RFind is Find but returns the highest matching position.
func RFind(haystack *Store, pattern *Store, start, end int64, byteAligned bool) (pos int64, found bool, err error) {
	defer errRecover(&err)
	pos, found = find(haystack, pattern, start, end, byteAligned, true)
	return pos, found, nil
}

// FindAll returns up to count non-overlapping (byte-aligned, 8-bit
// multiple patterns) or overlap-permitted match positions of pattern
// within [start,end), in ascending order.
func FindAll(haystack *Store, pattern *Store, start, end int64, count int, byteAligned bool) (positions []int64, err error) {
	defer errRecover(&err)
	if pattern.LengthBits() == 0 {
		throw(errorf(InvalidConstruction, "cannot search for an empty pattern"))
	}
	nonOverlap := byteAligned && pattern.LengthBits()%8 == 0
	p := start
	for count < 0 || len(positions) < count {
		pos, found := find(haystack, pattern, p, end, byteAligned, false)
		if !found {
			break
		}
		positions = append(positions, pos)
		if nonOverlap {
			p = pos + pattern.LengthBits()
		} else {
			p = pos + 1
		}
	}
	return positions, nil
}

func find(haystack *Store, pattern *Store, start, end int64, byteAligned bool, reverse bool) (int64, bool) {
	if pattern.LengthBits() == 0 {
		throw(errorf(InvalidConstruction, "cannot search for an empty pattern"))
	}
	if start < 0 {
		start = 0
	}
	if end > haystack.LengthBits() {
		end = haystack.LengthBits()
	}
	plen := pattern.LengthBits()
	last := end - plen
	if last < start {
		return 0, false
	}

	if byteAligned && plen%8 == 0 && haystack.OffsetBits() == 0 && pattern.OffsetBits() == 0 {
		return findByteAligned(haystack, pattern, start, last, reverse)
	}
	return findBitwise(haystack, pattern, start, last, byteAligned, reverse)
}

func findByteAligned(haystack, pattern *Store, start, last int64, reverse bool) (int64, bool) {
	// start/last are bit positions but are guaranteed byte-aligned
	// multiples when this path is taken, save for non-aligned `start`
	// supplied by the caller: round up to the next byte boundary.
	if start%8 != 0 {
		start += 8 - start%8
		if start > last {
			return 0, false
		}
	}
	pbytes := pattern.GetByteRange(0, pattern.ByteLength())
	plen := int64(len(pbytes))
	window := searchWindowBytes
	if w := int(10 * plen); w > window {
		window = w
	}

	// Scan the haystack in overlapping chunks of at least `window`
	// bytes, materializing each chunk with a single GetByteRange call
	// rather than one per candidate position (the fast path for a
	// file-backed haystack, where each GetByteRange is a ReadAt).
	scanChunk := func(byteStart, byteEnd int64) (int64, bool) {
		chunk := haystack.GetByteRange(byteStart, byteEnd)
		for i := 0; i+int(plen) <= len(chunk); i++ {
			if string(chunk[i:i+int(plen)]) == string(pbytes) {
				return byteStart*8 + int64(i)*8, true
			}
		}
		return 0, false
	}

	lastByte := last / 8
	if !reverse {
		for p := start / 8; p <= lastByte; p += int64(window) {
			chunkEnd := p + int64(window) + plen - 1
			if chunkEnd > lastByte+plen {
				chunkEnd = lastByte + plen
			}
			if chunkEnd > haystack.ByteLength() {
				chunkEnd = haystack.ByteLength()
			}
			if pos, ok := scanChunk(p, chunkEnd); ok {
				return pos, true
			}
		}
		return 0, false
	}
	for p := lastByte; p >= start/8; p -= int64(window) {
		chunkStart := p - int64(window) + 1
		if chunkStart < start/8 {
			chunkStart = start / 8
		}
		chunkEnd := p + plen
		if chunkEnd > haystack.ByteLength() {
			chunkEnd = haystack.ByteLength()
		}
		chunk := haystack.GetByteRange(chunkStart, chunkEnd)
		for i := len(chunk) - int(plen); i >= 0; i-- {
			if string(chunk[i:i+int(plen)]) == string(pbytes) {
				return chunkStart*8 + int64(i)*8, true
			}
		}
		if chunkStart == start/8 {
			break
		}
	}
	return 0, false
}

func findBitwise(haystack, pattern *Store, start, last int64, byteAligned bool, reverse bool) (int64, bool) {
	matches := func(p int64) bool {
		for i := int64(0); i < pattern.LengthBits(); i++ {
			if haystack.GetBit(p+i) != pattern.GetBit(i) {
				return false
			}
		}
		return true
	}
	valid := func(p int64) bool { return !byteAligned || p%8 == 0 }

	if !reverse {
		for p := start; p <= last; p++ {
			if valid(p) && matches(p) {
				return p, true
			}
		}
		return 0, false
	}
	for p := last; p >= start; p-- {
		if valid(p) && matches(p) {
			return p, true
		}
	}
	return 0, false
}
