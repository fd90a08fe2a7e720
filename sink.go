// sink.go: The sink contract consumed by the backend worker
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"io"
)

// Sink receives fully formatted records from the backend worker.
//
// Sinks are owned by the worker and are single-threaded: only the worker
// goroutine calls OnLog, so implementations need no internal locking. The
// content is UTF-8 including any trailing newline the template requested;
// sinks should not append their own newlines. Write failures are the
// sink's own concern (retry, drop, fallback) and are never propagated.
type Sink interface {
	OnLog(entry *LogEntry, content []byte)
}

// WriterSink adapts an io.Writer into a Sink that forwards the raw
// content bytes, discarding the header. Useful for tests and for piping
// records into an existing writer stack.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink wraps w as a Sink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// OnLog implements Sink.
func (s *WriterSink) OnLog(_ *LogEntry, content []byte) {
	_, _ = s.w.Write(content)
}
