// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitstr

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/dsnet/bitstr/format"
	prefixconv "github.com/dsnet/golib/strconv"
)

// resolveLength returns the bit length a token occupies, consulting
// keywords for a keyword-valued length. ok is false for a stretchy
// token, whose length the caller must compute from context.
func resolveLength(t format.Token, keywords map[string]interface{}) (n int64, ok bool, err error) {
	if t.IsLiteral() {
		return int64(len(t.Bits)), true, nil
	}
	if t.Stretchy {
		return 0, false, nil
	}
	if t.LengthKeyword != "" {
		v, present := keywords[t.LengthKeyword]
		if !present {
			return 0, false, errorf(FormatSyntax, "keyword length %q not supplied", t.LengthKeyword)
		}
		n, kerr := toInt64(v)
		if kerr != nil {
			return 0, false, errorf(FormatSyntax, "keyword length %q: %v", t.LengthKeyword, kerr)
		}
		return n, true, nil
	}
	return t.Length, true, nil
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	default:
		return 0, errorf(InvalidConstruction, "keyword value %v is not an integer", v)
	}
}

// encodeToken produces the Store for a single token given an already
// resolved length (if any) and, for value-bearing tokens, the next
// positional value.
func encodeToken(t format.Token, length int64, hasLength bool, value interface{}) *Store {
	if t.IsLiteral() {
		st := NewZeroStore(int64(len(t.Bits)))
		for i, c := range t.Bits {
			if c == '1' {
				st.SetBit(int64(i))
			}
		}
		return st
	}
	switch t.Name {
	case "pad":
		if !hasLength {
			throw(errorf(InvalidConstruction, "pad token requires a length"))
		}
		return EncodePad(int(length))
	case "bool":
		return EncodeBool(value.(bool))
	case "uint", "uintbe", "uintle", "uintne":
		n := requireLength(t, hasLength, length)
		v := toUint64(value)
		switch t.Name {
		case "uintbe":
			return EncodeUintBE(v, int(n))
		case "uintle":
			return EncodeUintLE(v, int(n))
		case "uintne":
			return EncodeUintNE(v, int(n))
		default:
			return EncodeUint(v, int(n))
		}
	case "int", "intbe", "intle", "intne":
		n := requireLength(t, hasLength, length)
		v := toInt64Value(value)
		switch t.Name {
		case "intbe":
			return EncodeIntBE(v, int(n))
		case "intle":
			return EncodeIntLE(v, int(n))
		case "intne":
			return EncodeIntNE(v, int(n))
		default:
			return EncodeInt(v, int(n))
		}
	case "float", "floatbe", "floatle", "floatne":
		n := requireLength(t, hasLength, length)
		f := toFloat64(value)
		switch t.Name {
		case "floatle":
			return EncodeFloat(f, int(n), LE)
		case "floatbe":
			return EncodeFloat(f, int(n), BE)
		case "floatne":
			return EncodeFloat(f, int(n), NE)
		default:
			return EncodeFloat(f, int(n), BE)
		}
	case "bfloat":
		return EncodeBFloat16(toFloat64(value))
	case "hex":
		return EncodeHex(value.(string))
	case "oct":
		return EncodeOct(value.(string))
	case "bin":
		return EncodeBin(value.(string))
	case "bytes", "bits":
		return EncodeBytes(value.([]byte))
	case "ue":
		return EncodeUE(toUint64(value))
	case "se":
		return EncodeSE(toInt64Value(value))
	case "uie":
		return EncodeUIE(toUint64(value))
	case "sie":
		return EncodeSIE(toInt64Value(value))
	default:
		throw(errorf(FormatSyntax, "unknown token name %q", t.Name))
		panic("unreachable")
	}
}

func requireLength(t format.Token, hasLength bool, length int64) int64 {
	if !hasLength {
		throw(errorf(InvalidConstruction, "token %q requires a known length to pack", t.Name))
	}
	return length
}

func toUint64(v interface{}) uint64 {
	switch x := v.(type) {
	case uint64:
		return x
	case uint:
		return uint64(x)
	case int:
		return uint64(x)
	case int64:
		return uint64(x)
	case *big.Int:
		return x.Uint64()
	default:
		throw(errorf(InvalidConstruction, "value %v is not an unsigned integer", v))
		panic("unreachable")
	}
}

func toInt64Value(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case uint:
		return int64(x)
	case uint64:
		return int64(x)
	default:
		throw(errorf(InvalidConstruction, "value %v is not a signed integer", v))
		panic("unreachable")
	}
}

func toFloat64(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	default:
		throw(errorf(InvalidConstruction, "value %v is not a float", v))
		panic("unreachable")
	}
}

// parseTokenValue parses a typed token's inline "=value" text per its
// codec, for tokens packed without a corresponding positional value.
func parseTokenValue(t format.Token) (interface{}, error) {
	switch t.Name {
	case "bool":
		return parseBoolValue(t)
	case "uint", "uintbe", "uintle", "uintne", "ue", "uie":
		v, perr := strconv.ParseUint(t.Value, 0, 64)
		if perr != nil {
			return nil, errorf(InvalidConstruction, "token %q: invalid unsigned value %q: %v", t.Name, t.Value, perr)
		}
		return v, nil
	case "int", "intbe", "intle", "intne", "se", "sie":
		v, perr := strconv.ParseInt(t.Value, 0, 64)
		if perr != nil {
			return nil, errorf(InvalidConstruction, "token %q: invalid signed value %q: %v", t.Name, t.Value, perr)
		}
		return v, nil
	case "float", "floatbe", "floatle", "floatne", "bfloat":
		v, perr := strconv.ParseFloat(t.Value, 64)
		if perr != nil {
			return nil, errorf(InvalidConstruction, "token %q: invalid float value %q: %v", t.Name, t.Value, perr)
		}
		return v, nil
	case "hex", "oct", "bin":
		return t.Value, nil
	case "bytes", "bits":
		b, perr := hex.DecodeString(t.Value)
		if perr != nil {
			return nil, errorf(InvalidConstruction, "token %q: invalid hex value %q: %v", t.Name, t.Value, perr)
		}
		return b, nil
	default:
		return nil, errorf(FormatSyntax, "token %q does not accept an inline value", t.Name)
	}
}

func parseBoolValue(t format.Token) (bool, error) {
	switch t.Value {
	case "true", "True":
		return true, nil
	case "false", "False":
		return false, nil
	default:
		return false, errorf(InvalidConstruction, "bool value %q must be one of true/True/false/False", t.Value)
	}
}

// inferValueLength computes the bit length a stretchy token occupies
// when packing, from the natural size of its value.
func inferValueLength(t format.Token, value interface{}) int64 {
	switch t.Name {
	case "bytes", "bits":
		return int64(len(value.([]byte))) * 8
	case "hex":
		return int64(len(value.(string))) * 4
	case "oct":
		return int64(len(value.(string))) * 3
	case "bin":
		return int64(len(value.(string)))
	default:
		throw(errorf(InvalidConstruction, "token %q cannot be stretchy when packing", t.Name))
		panic("unreachable")
	}
}

// Pack builds a Store from a format string, a positional value queue,
// and a keyword map supplying keyword-valued lengths. Literal and pad
// tokens draw no value. A token with an inline "=value" draws its
// value from the format string itself instead of values; every other
// non-literal, non-pad token draws from values in order.
func Pack(formatStr string, values []interface{}, keywords map[string]interface{}) (result *Store, err error) {
	defer errRecover(&err)
	f, perr := format.Parse(formatStr)
	if perr != nil {
		throw(errorf(FormatSyntax, "%v", perr))
	}
	out := NewZeroStore(0)
	vi := 0
	next := func() interface{} {
		if vi >= len(values) {
			throw(errorf(InvalidConstruction, "not enough values supplied for format %q", formatStr))
		}
		v := values[vi]
		vi++
		return v
	}
	for _, t := range f.Tokens {
		length, hasLength, lerr := resolveLength(t, keywords)
		if lerr != nil {
			return nil, lerr
		}
		var tokStore *Store
		switch {
		case t.IsLiteral():
			tokStore = encodeToken(t, 0, false, nil)
		case t.Name == "pad":
			tokStore = encodeToken(t, length, hasLength, nil)
		case t.Name == "bool":
			var v interface{}
			if t.HasValue {
				bv, verr := parseBoolValue(t)
				if verr != nil {
					return nil, verr
				}
				v = bv
			} else {
				v = next()
			}
			tokStore = encodeToken(t, 0, false, v)
		default:
			var v interface{}
			if t.HasValue {
				pv, verr := parseTokenValue(t)
				if verr != nil {
					return nil, verr
				}
				v = pv
			} else {
				v = next()
			}
			if !hasLength {
				length = inferValueLength(t, v)
				hasLength = true
			}
			tokStore = encodeToken(t, length, hasLength, v)
		}
		out.AppendRegion(tokStore)
	}
	if vi != len(values) {
		throw(errorf(InvalidConstruction, "%d extra values supplied for format %q", len(values)-vi, formatStr))
	}
	return out, nil
}

// decodeToken interprets the bits of region per t, returning a Go
// value of the codec's natural type.
func decodeToken(t format.Token, region *Store) interface{} {
	switch t.Name {
	case "bool":
		return DecodeBool(region)
	case "uint":
		return DecodeUint(region)
	case "uintbe":
		return DecodeUintBE(region)
	case "uintle":
		return DecodeUintLE(region)
	case "uintne":
		return DecodeUintNE(region)
	case "int":
		return DecodeInt(region)
	case "intbe":
		return DecodeIntBE(region)
	case "intle":
		return DecodeIntLE(region)
	case "intne":
		return DecodeIntNE(region)
	case "float":
		return DecodeFloat(region, BE)
	case "floatbe":
		return DecodeFloat(region, BE)
	case "floatle":
		return DecodeFloat(region, LE)
	case "floatne":
		return DecodeFloat(region, NE)
	case "bfloat":
		return DecodeBFloat16(region)
	case "hex":
		return DecodeHex(region)
	case "oct":
		return DecodeOct(region)
	case "bin":
		return DecodeBin(region)
	case "bytes", "bits":
		return DecodeBytes(region)
	case "pad":
		return nil
	default:
		throw(errorf(FormatSyntax, "unknown token name %q", t.Name))
		panic("unreachable")
	}
}

// Unpack interprets the whole of s per a format string, starting at
// bit 0, returning one value per non-literal, non-pad token. A
// stretchy token's length is the bits remaining after accounting for
// every fixed-length token that follows it.
func Unpack(formatStr string, s *Store, keywords map[string]interface{}) (values []interface{}, err error) {
	defer errRecover(&err)
	r := NewReader(s)
	return readTokens(formatStr, r, keywords, s.LengthBits())
}

// Read interprets tokens starting at r's current cursor, advancing it
// past the consumed bits on success and restoring it on failure.
func Read(r *Reader, formatStr string, keywords map[string]interface{}) (values []interface{}, err error) {
	start := r.Pos()
	defer func() {
		if err != nil {
			r.Seek(start)
		}
	}()
	defer errRecover(&err)
	return readTokens(formatStr, r, keywords, r.Len())
}

// Peek is Read without advancing the cursor.
func Peek(r *Reader, formatStr string, keywords map[string]interface{}) (values []interface{}, err error) {
	defer errRecover(&err)
	start := r.Pos()
	defer r.Seek(start)
	return readTokens(formatStr, r, keywords, r.Len())
}

func readTokens(formatStr string, r *Reader, keywords map[string]interface{}, limit int64) ([]interface{}, error) {
	f, perr := format.Parse(formatStr)
	if perr != nil {
		return nil, errorf(FormatSyntax, "%v", perr)
	}

	// Precompute resolved lengths, find the stretchy index if any.
	lengths := make([]int64, len(f.Tokens))
	haveLength := make([]bool, len(f.Tokens))
	stretchIdx := -1
	var fixedSum int64
	for i, t := range f.Tokens {
		n, ok, lerr := resolveLength(t, keywords)
		if lerr != nil {
			return nil, lerr
		}
		if !ok {
			stretchIdx = i
			continue
		}
		lengths[i] = n
		haveLength[i] = true
		fixedSum += n
	}
	if stretchIdx >= 0 {
		remaining := limit - r.Pos() - fixedSum
		if remaining < 0 {
			avail := limit - r.Pos()
			return nil, errorf(OutOfRange, "format %q needs at least %s bits but only %s remain",
				formatStr,
				prefixconv.FormatPrefix(float64(fixedSum), prefixconv.Base1024, 2),
				prefixconv.FormatPrefix(float64(avail), prefixconv.Base1024, 2))
		}
		lengths[stretchIdx] = remaining
		haveLength[stretchIdx] = true
	}

	var values []interface{}
	for i, t := range f.Tokens {
		region, rerr := r.ReadView(lengths[i])
		if rerr != nil {
			return nil, rerr
		}
		if t.IsLiteral() {
			want := NewZeroStore(int64(len(t.Bits)))
			for k, c := range t.Bits {
				if c == '1' {
					want.SetBit(int64(k))
				}
			}
			if !region.Equal(want) {
				return nil, errorf(InvalidInterpretation, "literal mismatch at bit %d", r.Pos()-lengths[i])
			}
			continue
		}
		if t.Name == "pad" {
			continue
		}
		values = append(values, decodeToken(t, region))
	}
	return values, nil
}
