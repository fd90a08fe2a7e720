// logger.go: Frontend logger and the producer hot path
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"os"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/agilira/go-errors"

	"github.com/agilira/femtolog/internal/spsc"
)

// flushTimeout bounds how long Flush waits for the worker to drain.
const flushTimeout = 5 * time.Second

// loggerSeq feeds producer ids; see newThreadID.
var loggerSeq atomic.Uint64

// newThreadID derives a non-zero 32-bit producer identity from a global
// sequence, folded through a splitmix step so ids spread across the full
// range, and forced odd.
func newThreadID() uint32 {
	x := loggerSeq.Add(1)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	return uint32(x) | 1
}

// Logger is the frontend of one producer/worker pair.
//
// A Logger owns its ring, its staging buffer, and its backend worker. The
// ring is single-producer: all log calls on one Logger must come from a
// single goroutine (level changes and counter reads are safe from
// anywhere). Give each producing goroutine its own Logger, or serialize
// access externally.
//
// The log methods never block and never return errors. A record that does
// not fit — the serialized arguments exceed the staging capacity, or the
// ring is full — is dropped and counted in DroppedCount.
type Logger struct {
	level    AtomicLevel
	threadID uint32

	enqueued atomic.Uint64
	dropped  atomic.Uint64

	registry *StringRegistry
	queue    spsc.Queue
	worker   backendWorker

	staging [EntryHeaderSize + MaxPayloadSize]byte

	colorMode        ColorMode
	terminateOnFatal bool
}

// New creates a Logger, allocates its ring, and prepares — but does not
// start — its backend worker. Zero size and affinity fields in opts take
// their defaults; TerminateOnFatal is used as given, so a zero value
// leaves it false.
func New(opts Options) (*Logger, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	l := &Logger{
		threadID:         newThreadID(),
		registry:         NewStringRegistry(),
		colorMode:        opts.ColorMode,
		terminateOnFatal: opts.TerminateOnFatal,
	}
	l.level.Set(LevelInfo)
	l.queue.Reserve(opts.SPSCQueueSize)
	l.worker.init(&l.queue, l.registry, opts)
	return l, nil
}

// RegisterSink appends a sink to the worker's fan-out list. Legal only
// while the worker is not running.
func (l *Logger) RegisterSink(s Sink) error {
	return l.worker.registerSink(s)
}

// ClearSinks removes every registered sink. Legal only while the worker is
// not running.
func (l *Logger) ClearSinks() error {
	return l.worker.clearSinks()
}

// StartWorker spawns the backend worker goroutine.
func (l *Logger) StartWorker() error {
	return l.worker.start()
}

// StopWorker requests shutdown and waits for the worker to drain the ring.
// Every record enqueued before the call returns has been delivered.
func (l *Logger) StopWorker() error {
	return l.worker.stop()
}

// SetLevel replaces the level threshold.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level)
}

// Level returns the current level threshold.
func (l *Logger) Level() Level {
	return l.level.Level()
}

// ThreadID returns the producer identity stamped into this logger's
// records.
func (l *Logger) ThreadID() uint32 {
	return l.threadID
}

// ColorMode returns the configured color policy. The core never renders
// color itself and does not pass the mode to sinks; callers hand it to
// sink constructors that take a ColorMode.
func (l *Logger) ColorMode() ColorMode {
	return l.colorMode
}

// EnqueuedCount returns the number of records accepted onto the ring.
func (l *Logger) EnqueuedCount() uint64 {
	return l.enqueued.Load()
}

// DroppedCount returns the number of records lost to staging or ring
// overflow. This counter is the only failure signal of the producer path.
func (l *Logger) DroppedCount() uint64 {
	return l.dropped.Load()
}

// ResetCounts zeroes both counters.
func (l *Logger) ResetCounts() {
	l.enqueued.Store(0)
	l.dropped.Store(0)
}

// Stats returns a snapshot of the pipeline's counters and ring state.
func (l *Logger) Stats() map[string]int64 {
	return map[string]int64{
		"enqueued":       int64(l.enqueued.Load()),
		"dropped":        int64(l.dropped.Load()),
		"queue_capacity": int64(l.queue.Capacity()),
		"queue_used":     int64(l.queue.Size()),
		"worker_running": boolToInt64(l.worker.running()),
	}
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Log is the hot-path entry point: gate on level, serialize, frame,
// enqueue. Calls made while the worker is not running are silent no-ops
// (not counted). The sugar methods fix the level.
func (l *Logger) Log(level Level, f *FormatString, args ...Value) {
	if !level.Enabled(l.level.Level()) {
		return
	}
	if !l.worker.running() {
		return
	}
	if f == nil {
		l.dropped.Add(1)
		return
	}

	if len(args) == 0 {
		// The literal bytes are the payload; no serialization, no
		// registry involvement.
		if len(f.raw) >= MaxPayloadSize {
			l.dropped.Add(1)
			return
		}
		n := copy(l.staging[EntryHeaderSize:], f.raw)
		l.finishRecord(level, LiteralLogStringID, n)
		return
	}

	n := serializeArgs(l.staging[EntryHeaderSize:], args)
	if n <= 0 || n >= MaxPayloadSize {
		l.dropped.Add(1)
		return
	}
	l.registry.RegisterStatic(f.id, f.raw)
	l.finishRecord(level, f.id, n)
}

// LogDynamic logs through a format string built at runtime instead of an
// interned call-site template. The format is interned on first sight via
// its storage address, so the id is only stable while the caller passes
// the same string value; ids of distinct strings may collide, in which
// case the first-seen template wins. Call sites that can know their
// template ahead of time should use F and Log instead.
func (l *Logger) LogDynamic(level Level, format string, args ...Value) {
	if !level.Enabled(l.level.Level()) {
		return
	}
	if !l.worker.running() {
		return
	}

	view := unsafe.Slice(unsafe.StringData(format), len(format))
	if len(args) == 0 {
		if len(format) >= MaxPayloadSize {
			l.dropped.Add(1)
			return
		}
		n := copy(l.staging[EntryHeaderSize:], format)
		l.finishRecord(level, LiteralLogStringID, n)
		return
	}

	n := serializeArgs(l.staging[EntryHeaderSize:], args)
	if n <= 0 || n >= MaxPayloadSize {
		l.dropped.Add(1)
		return
	}
	id := DynamicStringID(view)
	if l.registry.Lookup(id) == "" {
		l.registry.RegisterDynamic(id, view)
	}
	l.finishRecord(level, id, n)
}

// finishRecord frames the staged payload and enqueues it.
func (l *Logger) finishRecord(level Level, formatID StringID, contentLen int) {
	putEntryHeader(l.staging[:], l.threadID, formatID, level, contentLen)
	total := alignUp(EntryHeaderSize + contentLen)
	if err := l.queue.EnqueueBytes(l.staging[:total]); err != nil {
		l.dropped.Add(1)
		return
	}
	l.enqueued.Add(1)
}

// Raw logs with no level prefix.
func (l *Logger) Raw(f *FormatString, args ...Value) {
	l.Log(LevelRaw, f, args...)
}

// Fatal logs at fatal severity. When TerminateOnFatal is set the worker is
// stopped — draining the ring, so the fatal record reaches every sink —
// and the process exits.
func (l *Logger) Fatal(f *FormatString, args ...Value) {
	l.Log(LevelFatal, f, args...)
	if l.terminateOnFatal {
		if l.worker.running() {
			_ = l.worker.stop()
		}
		os.Exit(1)
	}
}

// Error logs at error severity.
func (l *Logger) Error(f *FormatString, args ...Value) {
	l.Log(LevelError, f, args...)
}

// Warn logs at warn severity.
func (l *Logger) Warn(f *FormatString, args ...Value) {
	l.Log(LevelWarn, f, args...)
}

// Info logs at info severity.
func (l *Logger) Info(f *FormatString, args ...Value) {
	l.Log(LevelInfo, f, args...)
}

// Debug logs at debug severity.
func (l *Logger) Debug(f *FormatString, args ...Value) {
	l.Log(LevelDebug, f, args...)
}

// Trace logs at trace severity.
func (l *Logger) Trace(f *FormatString, args ...Value) {
	l.Log(LevelTrace, f, args...)
}

// Flush busy-waits until the worker has drained the ring. The worker must
// be running; the wait is bounded by a timeout so a stalled sink cannot
// hang the caller forever.
func (l *Logger) Flush() error {
	if !l.worker.running() {
		return errors.New(ErrCodeWorkerState, "cannot flush: worker is not running")
	}
	deadline := time.Now().Add(flushTimeout)
	for !l.queue.Empty() {
		if time.Now().After(deadline) {
			return errors.New(ErrCodeFlushTimeout, "flush timed out waiting for ring drain")
		}
		runtime.Gosched()
	}
	return nil
}
