// doc.go: Package documentation for femtolog
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package femtolog is an asynchronous logging core that moves formatting
// and I/O off the calling goroutine. A log call costs a level check, the
// serialization of its arguments into a preallocated staging buffer, and
// one copy onto a lock-free single-producer single-consumer byte ring; a
// dedicated backend worker dequeues records, rebuilds the arguments,
// renders the template, and fans the formatted bytes out to sinks.
//
// Templates are interned once per call site with F and carry positional
// {} placeholders:
//
//	var fmtReady = femtolog.F("listener ready on {}:{}\n")
//
//	logger, _ := femtolog.New(femtolog.DefaultOptions())
//	_ = logger.RegisterSink(sinks.NewStdout(femtolog.ColorAuto))
//	_ = logger.StartWorker()
//	defer logger.StopWorker()
//
//	logger.Info(fmtReady, femtolog.Str(host), femtolog.Int(port))
//
// The producer path never blocks and never returns errors: records that
// do not fit the staging buffer or the ring are dropped and counted.
// StopWorker drains the ring before returning, so everything accepted
// before shutdown reaches the sinks.
package femtolog
