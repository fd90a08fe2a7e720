// value.go: Kind-tagged argument carrier for log call sites
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"math"
	"strconv"
)

// valueKind tags the wire encoding of one argument.
type valueKind uint8

// Grouped by frequency of use (String/Int most common).
const (
	kindString valueKind = iota + 1
	kindInt64
	kindBool
	kindFloat64
	kindUint64
	kindFloat32
	kindBytes
)

// Value is one serializable log argument. Construct values with the typed
// helpers (Str, Int, Bool, ...); the zero Value renders as nothing.
type Value struct {
	kind valueKind
	num  uint64
	str  string
	b    []byte
}

// Str captures a string argument.
func Str(s string) Value { return Value{kind: kindString, str: s} }

// Bytes captures a raw byte-slice argument. The bytes are copied at
// serialization time, so the caller may reuse the slice afterwards.
func Bytes(b []byte) Value { return Value{kind: kindBytes, b: b} }

// Bool captures a boolean argument.
func Bool(v bool) Value {
	n := uint64(0)
	if v {
		n = 1
	}
	return Value{kind: kindBool, num: n}
}

// Int captures an int argument.
func Int(v int) Value { return Int64(int64(v)) }

// Int64 captures an int64 argument.
func Int64(v int64) Value { return Value{kind: kindInt64, num: uint64(v)} }

// Uint captures a uint argument.
func Uint(v uint) Value { return Uint64(uint64(v)) }

// Uint64 captures a uint64 argument.
func Uint64(v uint64) Value { return Value{kind: kindUint64, num: v} }

// Float32 captures a float32 argument.
func Float32(v float32) Value {
	return Value{kind: kindFloat32, num: uint64(math.Float32bits(v))}
}

// Float64 captures a float64 argument.
func Float64(v float64) Value {
	return Value{kind: kindFloat64, num: math.Float64bits(v)}
}

// Err captures an error argument. The message is extracted eagerly; a nil
// error renders as "<nil>".
func Err(err error) Value {
	if err == nil {
		return Str("<nil>")
	}
	return Str(err.Error())
}

// appendTo renders the value into dst and returns the extended slice.
func (v Value) appendTo(dst []byte) []byte {
	switch v.kind {
	case kindString:
		return append(dst, v.str...)
	case kindBytes:
		return append(dst, v.b...)
	case kindInt64:
		return strconv.AppendInt(dst, int64(v.num), 10)
	case kindUint64:
		return strconv.AppendUint(dst, v.num, 10)
	case kindBool:
		return strconv.AppendBool(dst, v.num != 0)
	case kindFloat64:
		return strconv.AppendFloat(dst, math.Float64frombits(v.num), 'g', -1, 64)
	case kindFloat32:
		f := math.Float32frombits(uint32(v.num))
		return strconv.AppendFloat(dst, float64(f), 'g', -1, 32)
	default:
		return dst
	}
}
