// options.go: Configuration for the femtolog frontend and backend
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"github.com/agilira/go-errors"
)

// ColorMode controls when sinks emit ANSI color sequences.
type ColorMode uint8

const (
	// ColorAuto detects whether the destination supports ANSI sequences.
	ColorAuto ColorMode = iota
	// ColorAlways emits ANSI sequences unconditionally.
	ColorAlways
	// ColorNever suppresses ANSI sequences.
	ColorNever
)

// String returns a string representation of the ColorMode.
func (m ColorMode) String() string {
	switch m {
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "unknown"
	}
}

// AffinityDisabled disables backend worker CPU pinning.
const AffinityDisabled = -1

// Options configures a Logger.
type Options struct {
	// SPSCQueueSize is the byte capacity of the ring between the frontend
	// and the backend worker, rounded up to a power of two. A larger queue
	// absorbs longer bursts before records are dropped.
	// Default: 8 KiB.
	SPSCQueueSize int

	// BackendFormatBufferSize is the initial capacity of the worker's
	// formatting scratch buffer.
	// Default: 2 KiB.
	BackendFormatBufferSize int

	// BackendDequeueBufferSize is the size of the worker's record scratch
	// buffer. It is raised as needed so any record that fits the ring also
	// fits the scratch.
	// Default: 4 KiB.
	BackendDequeueBufferSize int

	// BackendWorkerCPUAffinity pins the worker goroutine's thread to the
	// given CPU. AffinityDisabled (the default) leaves scheduling to the
	// OS. Pinning failures are reported to stderr and are not fatal.
	BackendWorkerCPUAffinity int

	// IdleStrategy controls how the backend worker waits when the ring is
	// empty. Nil selects the tiered default, which spins through bursts
	// and escalates to millisecond sleeps when the logger goes quiet.
	IdleStrategy IdleStrategy

	// ColorMode is stored on the Logger and returned by Logger.ColorMode;
	// the core does not pass it to sinks itself.
	ColorMode ColorMode

	// TerminateOnFatal exits the process after a Fatal record has been
	// enqueued and the worker drained.
	TerminateOnFatal bool
}

// DefaultOptions returns the default configuration. New applies its
// size and affinity values for zero fields; TerminateOnFatal is not
// defaulted, since a false value cannot be told apart from an unset one.
func DefaultOptions() Options {
	return Options{
		SPSCQueueSize:            1024 * 8,
		BackendFormatBufferSize:  1024 * 2,
		BackendDequeueBufferSize: 1024 * 4,
		BackendWorkerCPUAffinity: AffinityDisabled,
		ColorMode:                ColorAuto,
		TerminateOnFatal:         true,
	}
}

// FastOptions trades memory for throughput: a 4 MiB queue, 64 KiB scratch
// buffers, and the worker pinned to core 5.
func FastOptions() Options {
	return Options{
		SPSCQueueSize:            1024 * 1024 * 4,
		BackendFormatBufferSize:  1024 * 64,
		BackendDequeueBufferSize: 1024 * 64,
		BackendWorkerCPUAffinity: 5,
		ColorMode:                ColorAuto,
		TerminateOnFatal:         true,
	}
}

// MemorySavingOptions shrinks every buffer to its working minimum.
func MemorySavingOptions() Options {
	return Options{
		SPSCQueueSize:            1024,
		BackendFormatBufferSize:  256,
		BackendDequeueBufferSize: 512,
		BackendWorkerCPUAffinity: AffinityDisabled,
		ColorMode:                ColorAuto,
		TerminateOnFatal:         true,
	}
}

// normalize fills zero fields with defaults and validates the result.
func (o Options) normalize() (Options, error) {
	def := DefaultOptions()
	if o.SPSCQueueSize == 0 {
		o.SPSCQueueSize = def.SPSCQueueSize
	}
	if o.BackendFormatBufferSize == 0 {
		o.BackendFormatBufferSize = def.BackendFormatBufferSize
	}
	if o.BackendDequeueBufferSize == 0 {
		o.BackendDequeueBufferSize = def.BackendDequeueBufferSize
	}
	if o.BackendWorkerCPUAffinity == 0 {
		// The zero value means "unset", so CPU 0 is not addressable as a
		// pin target; pinning starts at core 1.
		o.BackendWorkerCPUAffinity = def.BackendWorkerCPUAffinity
	}

	if o.SPSCQueueSize < 0 {
		return o, errors.New(ErrCodeInvalidConfig, "spsc queue size must be positive")
	}
	if o.BackendFormatBufferSize < 0 || o.BackendDequeueBufferSize < 0 {
		return o, errors.New(ErrCodeInvalidConfig, "backend buffer sizes must be positive")
	}
	if o.BackendWorkerCPUAffinity < AffinityDisabled {
		return o, errors.New(ErrCodeInvalidConfig, "invalid backend worker cpu affinity")
	}
	return o, nil
}
