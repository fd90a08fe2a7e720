// errors.go: Status sentinels for the SPSC byte ring
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package spsc

import "errors"

var (
	// ErrUninitialized is returned when Reserve has not been called yet.
	ErrUninitialized = errors.New("queue buffer is not initialized")

	// ErrUnderflow is returned when the ring holds fewer bytes than requested.
	ErrUnderflow = errors.New("not enough data in queue")

	// ErrOverflow is returned when the ring lacks space for the payload.
	ErrOverflow = errors.New("not enough space in queue")

	// ErrSizeIsZero is returned for zero-length transfers.
	ErrSizeIsZero = errors.New("transfer size is zero")
)
