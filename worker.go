// worker.go: Backend worker goroutine
//
// The worker is the single consumer of a logger's ring. It peeks the
// fixed-size record header to learn the record length, dequeues the whole
// record into a scratch buffer, stamps the dequeue timestamp, rebuilds the
// arguments, renders the template, and fans the result out to every
// registered sink. When the ring is empty it backs off through monotonic
// tiers, from busy-spinning for bursty workloads down to millisecond
// sleeps when the logger is quiet.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"

	"github.com/agilira/femtolog/internal/spsc"
)

// Worker lifecycle states.
const (
	workerUninitialized uint32 = iota
	workerIdling
	workerRunning
)

// backoff tier boundaries, in consecutive idle iterations.
const (
	idleBusyLimit   = 8192
	idleYieldLimit  = 16384
	idleShortLimit  = 32768
	idleMediumLimit = 65536
	idleLongLimit   = 131072
)

// backendWorker dequeues records and delivers them to sinks.
type backendWorker struct {
	queue    *spsc.Queue
	registry *StringRegistry

	sinks      []Sink
	dequeueBuf []byte
	formatBuf  []byte

	status   atomic.Uint32
	shutdown atomic.Bool
	done     chan struct{}

	idle        IdleStrategy
	cpuAffinity int
}

// init wires the worker to its ring and registry and allocates scratch
// buffers. The dequeue buffer is raised to cover any record the ring can
// hold, so a dequeue can never fail for lack of scratch space.
func (w *backendWorker) init(queue *spsc.Queue, registry *StringRegistry, opts Options) {
	w.queue = queue
	w.registry = registry
	w.cpuAffinity = opts.BackendWorkerCPUAffinity
	w.idle = opts.IdleStrategy
	if w.idle == nil {
		w.idle = NewTieredIdleStrategy()
	}

	dequeueSize := opts.BackendDequeueBufferSize
	if required := min(maxRecordSize, queue.Capacity()); dequeueSize < required {
		dequeueSize = required
	}
	w.dequeueBuf = make([]byte, dequeueSize)
	w.formatBuf = make([]byte, 0, opts.BackendFormatBufferSize)
	w.status.Store(workerIdling)
}

func (w *backendWorker) running() bool {
	return w.status.Load() == workerRunning
}

// registerSink appends a sink. Legal only while the worker is idling.
func (w *backendWorker) registerSink(s Sink) error {
	if w.status.Load() != workerIdling {
		return errors.New(ErrCodeSinkState, "cannot register sink unless worker is idling")
	}
	if s == nil {
		return errors.New(ErrCodeSinkState, "sink must not be nil")
	}
	w.sinks = append(w.sinks, s)
	return nil
}

// clearSinks drops all sinks. Legal only while the worker is idling.
func (w *backendWorker) clearSinks() error {
	if w.status.Load() != workerIdling {
		return errors.New(ErrCodeSinkState, "cannot clear sinks unless worker is idling")
	}
	w.sinks = nil
	return nil
}

// start spawns the worker goroutine.
func (w *backendWorker) start() error {
	if !w.status.CompareAndSwap(workerIdling, workerRunning) {
		return errors.New(ErrCodeWorkerState, "worker is not idling")
	}
	w.shutdown.Store(false)
	w.idle.Reset()
	w.done = make(chan struct{})
	go w.run()
	return nil
}

// stop requests shutdown and waits for the worker to drain the ring and
// exit. Records enqueued before stop returns are delivered to sinks.
func (w *backendWorker) stop() error {
	if w.status.Load() != workerRunning {
		return errors.New(ErrCodeWorkerState, "worker is not running")
	}
	w.shutdown.Store(true)
	<-w.done
	w.status.Store(workerIdling)
	return nil
}

// run is the worker goroutine body.
func (w *backendWorker) run() {
	defer close(w.done)

	if w.cpuAffinity != AffinityDisabled {
		runtime.LockOSThread()
		if err := setCPUAffinity(w.cpuAffinity); err != nil {
			fmt.Fprintf(os.Stderr, "femtolog: failed to pin worker to cpu %d: %v\n", w.cpuAffinity, err)
		}
	}

	for !w.shutdown.Load() {
		processed := w.readAndProcessOne()
		w.applyPollingStrategy(processed)
	}

	// Drain: everything enqueued before shutdown was requested is
	// delivered before the goroutine exits.
	for w.readAndProcessOne() {
	}
}

// readAndProcessOne transfers a single record from the ring to the sinks.
// Returns false when no complete record is available.
func (w *backendWorker) readAndProcessOne() bool {
	header := w.dequeueBuf[:EntryHeaderSize]
	if err := w.queue.PeekBytes(header); err != nil {
		return false
	}

	entry := decodeEntryHeader(header)
	total := entry.AlignedSize()
	if total < EntryHeaderSize || total > len(w.dequeueBuf) {
		// A corrupt frame cannot be skipped reliably; drop the ring
		// contents rather than feed garbage to sinks forever.
		rest := w.queue.Size()
		for rest > 0 {
			n := min(rest, len(w.dequeueBuf))
			if w.queue.DequeueBytes(w.dequeueBuf[:n]) != nil {
				break
			}
			rest -= n
		}
		return false
	}
	if w.queue.Size() < total {
		return false
	}
	if err := w.queue.DequeueBytes(w.dequeueBuf[:total]); err != nil {
		return false
	}
	w.processEntry(w.dequeueBuf[:total])
	return true
}

// processEntry stamps the timestamp, renders the record, and fans it out.
func (w *backendWorker) processEntry(record []byte) {
	ns := uint64(timecache.CachedTimeNano())
	stampTimestamp(record, ns)

	entry := decodeEntryHeader(record)
	end := EntryHeaderSize + int(entry.ContentLen)
	if end > len(record) {
		w.fanOut(&entry, malformedRecordPlaceholder)
		return
	}
	content := record[EntryHeaderSize:end]

	if entry.FormatID == LiteralLogStringID {
		// The payload is the formatted message itself.
		w.fanOut(&entry, content)
		return
	}

	f := lookupFormat(entry.FormatID)
	if f == nil {
		// The dispatch table has not seen this id; fall back to the
		// registry literal, or a placeholder if that slot is empty too.
		if lit := w.registry.Lookup(entry.FormatID); lit != "" {
			f = internFormat(entry.FormatID, lit)
		} else {
			w.fanOut(&entry, unknownFormatPlaceholder)
			return
		}
	}

	w.formatBuf = w.formatBuf[:0]
	out, err := appendDecoded(w.formatBuf, f, content)
	if err != nil {
		w.fanOut(&entry, malformedRecordPlaceholder)
		return
	}
	w.formatBuf = out
	w.fanOut(&entry, out)
}

var (
	unknownFormatPlaceholder   = []byte("<unknown format string>\n")
	malformedRecordPlaceholder = []byte("<malformed log record>\n")
)

func (w *backendWorker) fanOut(entry *LogEntry, content []byte) {
	for _, s := range w.sinks {
		s.OnLog(entry, content)
	}
}

// applyPollingStrategy drives the configured idle strategy. The waits are
// a latency/CPU trade-off only; correctness never depends on the
// durations.
func (w *backendWorker) applyPollingStrategy(processed bool) {
	if processed {
		w.idle.Reset()
		return
	}
	w.idle.Idle()
}
