// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package format compiles the bit-sequence format mini-language into a
// flat token list that the Packer/Unpacker (in the parent package) can
// drive against the codec layer.
package format

// Token is one resolved element of a parsed format string. A literal
// token (from a "0x"/"0o"/"0b" source) carries its bits directly in
// Bits. A typed token names a codec (uint, hex, ue, pad, ...) along
// with an optional length and an optional literal value.
type Token struct {
	Name string // codec name, e.g. "uint", "hex", "bytes", "pad", ""

	Bits string // literal bit string ('0'/'1') for a literal token

	HasLength     bool
	Length        int64  // fixed length, valid when HasLength && LengthKeyword == ""
	LengthKeyword string // keyword name supplying the length at pack/unpack time

	HasValue bool
	Value    string // literal operand text following "=", codec-specific parse

	// Stretchy reports whether this token has no declared length at
	// all (neither literal nor keyword) and is not a zero-length
	// construct (literal, pad with explicit length). At most one
	// stretchy token is permitted per format.
	Stretchy bool
}

// IsLiteral reports whether t was produced from a "0x"/"0o"/"0b" source
// rather than a named codec.
func (t Token) IsLiteral() bool { return t.Name == "" }
