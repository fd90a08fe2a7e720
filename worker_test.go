// worker_test.go: Test suite for backend worker internals
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"testing"

	"github.com/agilira/femtolog/internal/spsc"
)

// newTestWorker wires a worker to a fresh ring and registry without
// spawning its goroutine, so tests can drive readAndProcessOne directly.
func newTestWorker(sink Sink) (*backendWorker, *spsc.Queue, *StringRegistry) {
	queue := &spsc.Queue{}
	queue.Reserve(8 * 1024)
	registry := NewStringRegistry()

	w := &backendWorker{}
	opts, _ := Options{}.normalize()
	w.init(queue, registry, opts)
	if sink != nil {
		_ = w.registerSink(sink)
	}
	return w, queue, registry
}

// enqueueRecord frames a payload the way the frontend does.
func enqueueRecord(t *testing.T, queue *spsc.Queue, formatID StringID, level Level, payload []byte) {
	t.Helper()
	buf := make([]byte, alignUp(EntryHeaderSize+len(payload)))
	putEntryHeader(buf, 1, formatID, level, len(payload))
	copy(buf[EntryHeaderSize:], payload)
	if err := queue.EnqueueBytes(buf); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
}

func TestWorkerEmptyRing(t *testing.T) {
	w, _, _ := newTestWorker(&captureSink{})
	if w.readAndProcessOne() {
		t.Error("expected false on an empty ring")
	}
}

func TestWorkerRegistryFallback(t *testing.T) {
	sink := &captureSink{}
	w, queue, registry := newTestWorker(sink)

	// An id present in the registry but absent from the dispatch table:
	// the worker must parse the literal once and format correctly.
	const id = StringID(0xFEF0)
	registry.RegisterStatic(id, "fallback v={}\n")

	payload := make([]byte, 64)
	n := serializeArgs(payload, []Value{Int(5)})
	enqueueRecord(t, queue, id, LevelInfo, payload[:n])

	if !w.readAndProcessOne() {
		t.Fatal("expected a record to be processed")
	}
	lines := sink.snapshot()
	if len(lines) != 1 || lines[0] != "fallback v=5\n" {
		t.Errorf("unexpected fallback output: %q", lines)
	}
}

func TestWorkerUnknownFormatPlaceholder(t *testing.T) {
	sink := &captureSink{}
	w, queue, _ := newTestWorker(sink)

	payload := make([]byte, 64)
	n := serializeArgs(payload, []Value{Int(5)})
	enqueueRecord(t, queue, StringID(0xFEF1), LevelInfo, payload[:n])

	if !w.readAndProcessOne() {
		t.Fatal("expected a record to be processed")
	}
	lines := sink.snapshot()
	if len(lines) != 1 || lines[0] != string(unknownFormatPlaceholder) {
		t.Errorf("expected the unknown-format placeholder, got %q", lines)
	}
}

func TestWorkerMalformedPayloadPlaceholder(t *testing.T) {
	sink := &captureSink{}
	w, queue, registry := newTestWorker(sink)

	const id = StringID(0xFEF2)
	registry.RegisterStatic(id, "v={}\n")
	enqueueRecord(t, queue, id, LevelInfo, []byte{1, 0xEE})

	if !w.readAndProcessOne() {
		t.Fatal("expected a record to be processed")
	}
	lines := sink.snapshot()
	if len(lines) != 1 || lines[0] != string(malformedRecordPlaceholder) {
		t.Errorf("expected the malformed-record placeholder, got %q", lines)
	}
}

func TestWorkerPartialRecordNotDequeued(t *testing.T) {
	w, queue, _ := newTestWorker(&captureSink{})

	// A bare header claiming more payload than the ring holds: the worker
	// must leave it queued until the rest arrives.
	header := make([]byte, EntryHeaderSize)
	putEntryHeader(header, 1, LiteralLogStringID, LevelInfo, 64)
	if err := queue.EnqueueBytes(header); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if w.readAndProcessOne() {
		t.Error("a partial record must not be processed")
	}
	if queue.Size() != EntryHeaderSize {
		t.Errorf("partial record must stay queued, size = %d", queue.Size())
	}
}

func TestWorkerIdleCounterResets(t *testing.T) {
	sink := &captureSink{}
	w, queue, _ := newTestWorker(sink)

	tiered, ok := w.idle.(*TieredIdleStrategy)
	if !ok {
		t.Fatalf("default idle strategy is %q, expected tiered", w.idle.String())
	}

	// Idle iterations accumulate while the ring is empty...
	for i := 0; i < 10; i++ {
		w.applyPollingStrategy(w.readAndProcessOne())
	}
	if tiered.idleIterations != 10 {
		t.Errorf("idleIterations = %d, expected 10", tiered.idleIterations)
	}

	// ...and reset as soon as a record is processed.
	enqueueRecord(t, queue, LiteralLogStringID, LevelInfo, []byte("wake\n"))
	w.applyPollingStrategy(w.readAndProcessOne())
	if tiered.idleIterations != 0 {
		t.Errorf("idleIterations = %d, expected 0 after work", tiered.idleIterations)
	}
}

func TestWorkerLiteralPassThrough(t *testing.T) {
	sink := &captureSink{}
	w, queue, _ := newTestWorker(sink)

	enqueueRecord(t, queue, LiteralLogStringID, LevelRaw, []byte("as-is {}\n"))
	if !w.readAndProcessOne() {
		t.Fatal("expected a record to be processed")
	}
	lines := sink.snapshot()
	if len(lines) != 1 || lines[0] != "as-is {}\n" {
		t.Errorf("literal payload must not be re-formatted: %q", lines)
	}
}
