// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bitstr constructs, interprets, slices, edits, searches, and
// streams arbitrary-length bit sequences.
//
// The package is built around a small number of pieces: a Store holding
// the raw bits (with sub-byte offset and length), a set of Codec
// functions mapping typed values to and from bit regions, an Editor
// performing in-place mutation, a format mini-language compiled by the
// format package and driven by Pack/Unpack, a Search engine, and a
// Reader that tracks a bit cursor over a sequence.
package bitstr

import (
	"fmt"

	"github.com/dsnet/golib/errs"
)

// BitOrder selects how bit positions are numbered for indexing, Find
// coordinates, and single-bit Set/Get. It has no effect on the
// underlying byte order or on any wire-format interpretation (uint, int,
// float, hex, ...), which are always big-endian-within-byte regardless
// of BitOrder.
type BitOrder uint8

const (
	// MSB0 numbers bit 0 as the most significant bit of the first byte.
	// This is the default.
	MSB0 BitOrder = iota
	// LSB0 numbers bit 0 as the least significant bit of the last byte
	// of the logical sequence.
	LSB0
)

func (o BitOrder) String() string {
	if o == LSB0 {
		return "LSB0"
	}
	return "MSB0"
}

// Kind classifies a bitstr Error without naming a concrete Go type,
// matching the taxonomy in the package's design documentation.
type Kind uint8

const (
	// InvalidConstruction reports a constructor or Pack argument
	// inconsistent with the declared token or length.
	InvalidConstruction Kind = iota
	// InvalidInterpretation reports a read or view using a codec whose
	// length constraints the region violates.
	InvalidInterpretation
	// OutOfRange reports a read, peek, or index beyond the sequence.
	OutOfRange
	// AlignmentRequired reports a byte-position or byte-length
	// operation invoked on a non-aligned cursor or region.
	AlignmentRequired
	// FormatSyntax reports an unparseable format string.
	FormatSyntax
)

func (k Kind) String() string {
	switch k {
	case InvalidConstruction:
		return "invalid construction"
	case InvalidInterpretation:
		return "invalid interpretation"
	case OutOfRange:
		return "out of range"
	case AlignmentRequired:
		return "alignment required"
	case FormatSyntax:
		return "format syntax"
	default:
		return "unknown"
	}
}

// Error is the wrapper type for errors reported by this package.
type Error struct {
	Kind  Kind
	Token string // offending token or operand, if any
	Msg   string
}

func (e *Error) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("bitstr: %s: %s (%s)", e.Kind, e.Msg, e.Token)
	}
	return fmt.Sprintf("bitstr: %s: %s", e.Kind, e.Msg)
}

// errorf constructs an *Error with a formatted message.
func errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// tokenErrorf constructs an *Error naming the offending token.
func tokenErrorf(kind Kind, token string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Token: token, Msg: fmt.Sprintf(format, args...)}
}

// errRecover is deferred by every exported entry point that internally
// signals failure by panicking with an *Error. It converts that panic
// into a returned error, leaving runtime errors (nil dereference,
// index-out-of-range from an actual bug) to propagate as panics, same
// as xflate/meta's encodeBlock/decodeBlock use errs.Recover around
// their own errs.Assert/errs.Panic calls. It is errs.Recover itself
// rather than a wrapper, since recover only stops a panic when called
// directly by the deferred function.
var errRecover = errs.Recover

// throw panics with an *Error. Internal helpers use this instead of
// threading error returns through deeply recursive codec and format
// code; the nearest errRecover converts it back into a normal error.
func throw(e *Error) { errs.Panic(e) }

// assert panics with e's *Error unless ok holds, the Assert half of
// the errs.Assert/errs.Panic/errs.Recover trio.
func assert(ok bool, e *Error) { errs.Assert(ok, e) }
