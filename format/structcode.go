// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package format

import (
	"strconv"
	"strings"
)

// structCodeLetters lists the recognized compact struct-code type
// letters, following the well-known Python struct module convention.
const structCodeLetters = "bBhHlLqQeEfd"

// structCodeEntry describes what a single letter expands to: a codec
// name base ("int"/"uint"/"float"/"bfloat") and a bit length.
type structCodeEntry struct {
	base   string
	length int64
}

var structCodeTable = map[byte]structCodeEntry{
	'b': {"int", 8},
	'B': {"uint", 8},
	'h': {"int", 16},
	'H': {"uint", 16},
	'l': {"int", 32},
	'L': {"uint", 32},
	'q': {"int", 64},
	'Q': {"uint", 64},
	'e': {"float", 16},
	'E': {"bfloat", 16},
	'f': {"float", 32},
	'd': {"float", 64},
}

// isStructCode reports whether s looks like a compact struct code, so
// the tokenizer can dispatch to expandStructCode instead of the
// NAME(":"length)?("="value)? grammar.
func isStructCode(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	switch s[0] {
	case '<', '>', '=', '@':
		i++
	}
	if i >= len(s) {
		return false
	}
	seenLetter := false
	for i < len(s) {
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i >= len(s) || strings.IndexByte(structCodeLetters, s[i]) < 0 {
			return false
		}
		seenLetter = true
		i++
	}
	return seenLetter
}

// expandStructCode expands a compact struct code like "<4h" into a
// sequence of typed tokens, one per repeated letter.
func expandStructCode(s string) ([]Token, error) {
	endian := "ne"
	i := 0
	switch s[0] {
	case '<':
		endian, i = "le", 1
	case '>':
		endian, i = "be", 1
	case '=', '@':
		endian, i = "ne", 1
	}

	var toks []Token
	for i < len(s) {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		count := 1
		if i > start {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return nil, newSyntaxError("invalid repeat count in struct code %q", s)
			}
			count = n
		}
		if i >= len(s) {
			return nil, newSyntaxError("struct code %q ends with a repeat count and no letter", s)
		}
		entry, ok := structCodeTable[s[i]]
		if !ok {
			return nil, newSyntaxError("unknown struct code letter %q in %q", s[i], s)
		}
		i++

		name := entry.base
		switch entry.base {
		case "int", "uint", "float":
			name = entry.base + endian
		case "bfloat":
			// bfloat16 has no distinct endianness variant in this codec set.
		}
		for r := 0; r < count; r++ {
			toks = append(toks, Token{Name: name, HasLength: true, Length: entry.length})
		}
	}
	return toks, nil
}
