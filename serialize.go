// serialize.go: Argument pack serialization for the ring transfer
//
// The producer packs a heterogeneous argument list into a fixed staging
// buffer: a one-byte argument count, then each argument as a kind tag
// followed by its inline encoding. String-like arguments are copied by
// value as (u16 length, bytes); numerics are fixed-width little-endian.
// Everything is written with plain stores into a preallocated buffer, so
// serialization performs no allocation and no format parsing.
//
// The consumer side decodes the same layout back into a Value sequence and
// renders it through the record's bound FormatString. Numbers are
// byte-for-byte round trips; a single small numeric argument takes a
// direct path that skips the generic loop.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"encoding/binary"
	"errors"
)

// maxSerializedArgs bounds the argument count of one call site. The count
// is carried in a single byte; sixteen matches the widest templates the
// frontend is designed for.
const maxSerializedArgs = 16

var errMalformedArgs = errors.New("malformed serialized argument payload")

// serializeArgs packs vals into dst and returns the number of bytes
// written. It returns 0 when the pack would not fit or the argument list
// is unsupported; the caller treats 0 as "drop this record".
func serializeArgs(dst []byte, vals []Value) int {
	if len(vals) == 0 || len(vals) > maxSerializedArgs {
		return 0
	}
	if len(dst) < 1 {
		return 0
	}
	dst[0] = byte(len(vals))
	pos := 1

	for _, v := range vals {
		switch v.kind {
		case kindString:
			n := len(v.str)
			if n > 0xFFFF || pos+3+n > len(dst) {
				return 0
			}
			dst[pos] = byte(v.kind)
			binary.LittleEndian.PutUint16(dst[pos+1:], uint16(n))
			copy(dst[pos+3:], v.str)
			pos += 3 + n
		case kindBytes:
			n := len(v.b)
			if n > 0xFFFF || pos+3+n > len(dst) {
				return 0
			}
			dst[pos] = byte(v.kind)
			binary.LittleEndian.PutUint16(dst[pos+1:], uint16(n))
			copy(dst[pos+3:], v.b)
			pos += 3 + n
		case kindBool:
			if pos+2 > len(dst) {
				return 0
			}
			dst[pos] = byte(v.kind)
			dst[pos+1] = byte(v.num)
			pos += 2
		case kindFloat32:
			if pos+5 > len(dst) {
				return 0
			}
			dst[pos] = byte(v.kind)
			binary.LittleEndian.PutUint32(dst[pos+1:], uint32(v.num))
			pos += 5
		case kindInt64, kindUint64, kindFloat64:
			if pos+9 > len(dst) {
				return 0
			}
			dst[pos] = byte(v.kind)
			binary.LittleEndian.PutUint64(dst[pos+1:], v.num)
			pos += 9
		default:
			return 0
		}
	}
	return pos
}

// decodeArg reads one argument at payload[pos:] and returns it with the
// next offset.
func decodeArg(payload []byte, pos int) (Value, int, error) {
	if pos >= len(payload) {
		return Value{}, 0, errMalformedArgs
	}
	kind := valueKind(payload[pos])
	pos++

	switch kind {
	case kindString, kindBytes:
		if pos+2 > len(payload) {
			return Value{}, 0, errMalformedArgs
		}
		n := int(binary.LittleEndian.Uint16(payload[pos:]))
		pos += 2
		if pos+n > len(payload) {
			return Value{}, 0, errMalformedArgs
		}
		v := Value{kind: kindString, str: string(payload[pos : pos+n])}
		return v, pos + n, nil
	case kindBool:
		if pos+1 > len(payload) {
			return Value{}, 0, errMalformedArgs
		}
		return Value{kind: kindBool, num: uint64(payload[pos])}, pos + 1, nil
	case kindFloat32:
		if pos+4 > len(payload) {
			return Value{}, 0, errMalformedArgs
		}
		n := uint64(binary.LittleEndian.Uint32(payload[pos:]))
		return Value{kind: kindFloat32, num: n}, pos + 4, nil
	case kindInt64, kindUint64, kindFloat64:
		if pos+8 > len(payload) {
			return Value{}, 0, errMalformedArgs
		}
		n := binary.LittleEndian.Uint64(payload[pos:])
		return Value{kind: kind, num: n}, pos + 8, nil
	default:
		return Value{}, 0, errMalformedArgs
	}
}

// appendDecoded reconstructs the argument pack in payload and renders f
// with it into dst.
func appendDecoded(dst []byte, f *FormatString, payload []byte) ([]byte, error) {
	if len(payload) < 1 {
		return dst, errMalformedArgs
	}
	count := int(payload[0])
	if count == 0 || count > maxSerializedArgs {
		return dst, errMalformedArgs
	}

	// Single fixed-width numeric: decode onto the stack and format
	// directly, skipping the unpacking loop.
	if count == 1 {
		kind := valueKind(payload[1])
		switch kind {
		case kindInt64, kindUint64, kindFloat64, kindFloat32, kindBool:
			v, _, err := decodeArg(payload, 1)
			if err != nil {
				return dst, err
			}
			one := [1]Value{v}
			return f.appendFormat(dst, one[:]), nil
		}
	}

	var vals [maxSerializedArgs]Value
	pos := 1
	for i := 0; i < count; i++ {
		v, next, err := decodeArg(payload, pos)
		if err != nil {
			return dst, err
		}
		vals[i] = v
		pos = next
	}
	return f.appendFormat(dst, vals[:count]), nil
}
