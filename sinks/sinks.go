// sinks.go: Shared helpers for the bundled sinks
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package sinks bundles ready-made destinations for femtolog records:
// stdout with ANSI color, a rotating file sink, a JSON-lines sink, a NATS
// publisher, and a discard sink. Sinks are owned by a logger's backend
// worker and are only ever called from that single goroutine.
package sinks

import (
	"strconv"
	"time"
)

const (
	levelSep    = ": "
	bufCapacity = 4096
)

// appendTimestamp renders "[HH:MM:SS.nnnnnnnnn] " for a wall-clock
// nanosecond timestamp in local time.
func appendTimestamp(dst []byte, ns uint64) []byte {
	t := time.Unix(0, int64(ns))
	dst = append(dst, '[')
	dst = t.AppendFormat(dst, "15:04:05")
	dst = append(dst, '.')
	nanos := uint64(t.Nanosecond())
	// Fixed nine digits, zero padded.
	var digits [9]byte
	for i := 8; i >= 0; i-- {
		digits[i] = byte('0' + nanos%10)
		nanos /= 10
	}
	dst = append(dst, digits[:]...)
	return append(dst, ']', ' ')
}

// appendUint appends the decimal rendering of v.
func appendUint(dst []byte, v uint64) []byte {
	return strconv.AppendUint(dst, v, 10)
}
