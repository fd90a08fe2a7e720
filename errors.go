// errors.go: Error codes for the femtolog core
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"github.com/agilira/go-errors"
)

// Error codes returned by femtolog lifecycle and configuration surfaces.
// The producer-path log methods never return errors; aggregate loss is
// visible through DroppedCount only.
const (
	// ErrCodeInvalidConfig reports an invalid Options value.
	ErrCodeInvalidConfig errors.ErrorCode = "FEMTOLOG_INVALID_CONFIG"

	// ErrCodeWorkerState reports a lifecycle operation in the wrong state,
	// e.g. StartWorker while running or StopWorker while idle.
	ErrCodeWorkerState errors.ErrorCode = "FEMTOLOG_WORKER_STATE"

	// ErrCodeSinkState reports sink registration or removal while the
	// worker is running.
	ErrCodeSinkState errors.ErrorCode = "FEMTOLOG_SINK_STATE"

	// ErrCodeFlushTimeout reports that Flush gave up waiting for the ring
	// to drain.
	ErrCodeFlushTimeout errors.ErrorCode = "FEMTOLOG_FLUSH_TIMEOUT"
)
