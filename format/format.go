// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package format

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// SyntaxError reports a malformed format string. The parent package
// wraps this in its own Error type with Kind FormatSyntax.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return "format: " + e.Msg }

func newSyntaxError(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}

// knownNames lists the typed-token codec names the grammar recognizes,
// excluding the empty name (which defaults to "uint").
var knownNames = map[string]bool{
	"uint": true, "int": true,
	"uintbe": true, "intbe": true,
	"uintle": true, "intle": true,
	"uintne": true, "intne": true,
	"float": true, "floatbe": true, "floatle": true, "floatne": true,
	"bfloat": true,
	"hex":    true, "oct": true, "bin": true,
	"bytes": true, "bits": true, "bool": true,
	"ue": true, "se": true, "uie": true, "sie": true,
	"pad": true,
}

// Format is the compiled result of a format string: a flat token list
// plus whether it contains a stretchy (length-unspecified) token.
type Format struct {
	Tokens      []Token
	HasStretchy bool
}

var parseCache sync.Map // string -> *Format or error

// Parse compiles a format string, memoizing by the exact string text.
// The keyword-name tuple the package design additionally keys on plays
// no role in structural parsing (only in length resolution at
// pack/unpack time), so it is not part of the cache key here.
func Parse(s string) (*Format, error) {
	if v, ok := parseCache.Load(s); ok {
		if f, ok := v.(*Format); ok {
			return f, nil
		}
		return nil, v.(error)
	}
	toks, err := parseFormat(s)
	if err != nil {
		parseCache.Store(s, err)
		return nil, err
	}
	f := &Format{Tokens: toks}
	nstretch := 0
	for _, t := range toks {
		if t.Stretchy {
			nstretch++
		}
	}
	if nstretch > 1 {
		err := newSyntaxError("format %q has %d stretchy tokens, at most 1 is permitted", s, nstretch)
		parseCache.Store(s, err)
		return nil, err
	}
	f.HasStretchy = nstretch == 1
	parseCache.Store(s, f)
	return f, nil
}

// splitTopLevel splits s on commas that are not nested inside
// parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func parseFormat(s string) ([]Token, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var toks []Token
	for _, seg := range splitTopLevel(s) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, newSyntaxError("empty token in format %q", s)
		}
		t, err := parseItem(seg)
		if err != nil {
			return nil, err
		}
		toks = append(toks, t...)
	}
	return toks, nil
}

func parseItem(seg string) ([]Token, error) {
	// factor := INT "*"
	if i := strings.IndexByte(seg, '*'); i > 0 {
		allDigits := true
		for j := 0; j < i; j++ {
			if seg[j] < '0' || seg[j] > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			n, err := strconv.Atoi(seg[:i])
			if err != nil {
				return nil, newSyntaxError("invalid repeat factor in %q", seg)
			}
			rest := seg[i+1:]
			base, err := parseSingleItem(rest)
			if err != nil {
				return nil, err
			}
			var out []Token
			for k := 0; k < n; k++ {
				out = append(out, cloneTokens(base)...)
			}
			return out, nil
		}
	}
	return parseSingleItem(seg)
}

func cloneTokens(toks []Token) []Token {
	out := make([]Token, len(toks))
	copy(out, toks)
	return out
}

func parseSingleItem(seg string) ([]Token, error) {
	seg = strings.TrimSpace(seg)
	if strings.HasPrefix(seg, "(") {
		if !strings.HasSuffix(seg, ")") {
			return nil, newSyntaxError("unbalanced parentheses in %q", seg)
		}
		return parseFormat(seg[1 : len(seg)-1])
	}

	switch {
	case strings.HasPrefix(seg, "0x") || strings.HasPrefix(seg, "0X"):
		return literalToken(seg[2:], 16, 4, seg)
	case strings.HasPrefix(seg, "0o") || strings.HasPrefix(seg, "0O"):
		return literalToken(seg[2:], 8, 3, seg)
	case strings.HasPrefix(seg, "0b") || strings.HasPrefix(seg, "0B"):
		return literalToken(seg[2:], 2, 1, seg)
	}

	if isStructCode(seg) {
		return expandStructCode(seg)
	}
	name, lenPart, hasLen, valPart, hasVal, err := splitTyped(seg)
	if err != nil {
		return nil, err
	}
	if !knownNames[name] {
		return nil, newSyntaxError("unknown format token %q", seg)
	}
	return []Token{buildTypedToken(name, lenPart, hasLen, valPart, hasVal)}, nil
}

// splitTyped splits seg into its NAME, optional length text, and
// optional value text, per the grammar
// "NAME (':' length)? ('=' value)?".
func splitTyped(seg string) (name, lenPart string, hasLen bool, valPart string, hasVal bool, err error) {
	rest := seg
	if i := strings.IndexByte(rest, '='); i >= 0 {
		valPart, hasVal = rest[i+1:], true
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		lenPart, hasLen = rest[i+1:], true
		rest = rest[:i]
	}
	name = rest
	if name == "" {
		name = "uint" // an empty name with a length defaults to uint
	}
	if hasLen && lenPart == "" {
		return "", "", false, "", false, newSyntaxError("empty length in token %q", seg)
	}
	if hasVal && valPart == "" {
		return "", "", false, "", false, newSyntaxError("empty value in token %q", seg)
	}
	return name, lenPart, hasLen, valPart, hasVal, nil
}

func buildTypedToken(name, lenPart string, hasLen bool, valPart string, hasVal bool) Token {
	t := Token{Name: name, HasValue: hasVal, Value: valPart}
	if hasLen {
		if n, err := strconv.ParseInt(lenPart, 10, 64); err == nil {
			t.HasLength = true
			t.Length = n
		} else {
			t.HasLength = true
			t.LengthKeyword = lenPart
		}
	} else if name == "bool" {
		t.HasLength = true
		t.Length = 1
	} else {
		t.Stretchy = true
	}
	return t
}

func literalToken(digits string, base int, bitsPerDigit int, orig string) ([]Token, error) {
	if digits == "" {
		return nil, newSyntaxError("literal %q has no digits", orig)
	}
	var bits strings.Builder
	for _, c := range digits {
		v, ok := digitValue(byte(c), base)
		if !ok {
			return nil, newSyntaxError("invalid digit %q in literal %q", c, orig)
		}
		for b := bitsPerDigit - 1; b >= 0; b-- {
			if v&(1<<uint(b)) != 0 {
				bits.WriteByte('1')
			} else {
				bits.WriteByte('0')
			}
		}
	}
	return []Token{{Bits: bits.String()}}, nil
}

func digitValue(c byte, base int) (int, bool) {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'z':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = int(c-'A') + 10
	default:
		return 0, false
	}
	if v >= base {
		return 0, false
	}
	return v, true
}
