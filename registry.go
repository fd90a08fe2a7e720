// registry.go: String interning behind 16-bit ids
//
// The registry deduplicates format literals (and, for callers that hand in
// transient byte views, dynamic strings) behind a StringID so that a log
// record carries two bytes instead of the string itself. Slots are
// published atomically and never mutated once set; readers racing with the
// insertion of a different slot are safe, and an unpopulated slot reads as
// the empty string.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// StringID identifies an interned string. Zero is invalid; the all-ones
// value is reserved to mark records whose payload is the formatted message
// itself rather than serialized arguments.
type StringID uint16

// LiteralLogStringID marks a record whose payload is the literal message.
const LiteralLogStringID StringID = 0xFFFF

const (
	registrySlots = int(LiteralLogStringID) + 1
	arenaChunk    = 1024 * 1024
)

// HashString folds an FNV-1a-64 hash of s to 16 bits. The reserved values
// are remapped so the result is always a valid id: all-ones becomes
// all-ones minus one, zero becomes one.
func HashString(s string) StringID {
	hash := uint64(0xcbf29ce484222325)
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= 0x100000001b3
	}
	id := StringID((hash >> 16) ^ (hash & 0xFFFF))
	switch id {
	case LiteralLogStringID:
		return LiteralLogStringID - 1
	case 0:
		return 1
	}
	return id
}

// DynamicStringID derives an id from the address of a byte view. It is an
// identity hash: the same logical string must keep a stable storage
// address across its lifetime for the id to be stable.
func DynamicStringID(b []byte) StringID {
	raw := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	id := StringID((raw >> 3) ^ (raw & 0xFFFF))
	switch id {
	case LiteralLogStringID:
		return LiteralLogStringID - 1
	case 0:
		return 1
	}
	return id
}

// StringRegistry maps StringID to interned bytes.
//
// Static registration stores the string as-is (Go strings are immutable
// and live as long as they are referenced). Dynamic registration copies
// the bytes into an append-only arena so the caller may reuse its buffer
// immediately. Registration is first-write-wins per slot; the hot lookup
// path performs a single atomic load and never touches the arena.
type StringRegistry struct {
	slots []atomic.Pointer[string]

	arenaMu  sync.Mutex
	arena    []byte
	arenaOff int
}

// NewStringRegistry creates an empty registry.
func NewStringRegistry() *StringRegistry {
	return &StringRegistry{
		slots: make([]atomic.Pointer[string], registrySlots),
	}
}

// RegisterStatic stores s under id without copying. The first registration
// for a slot wins; later ones are no-ops. Id zero is ignored.
func (r *StringRegistry) RegisterStatic(id StringID, s string) {
	if id == 0 {
		return
	}
	slot := &r.slots[id]
	if slot.Load() != nil {
		return
	}
	slot.CompareAndSwap(nil, &s)
}

// RegisterDynamic copies b into the registry arena and stores the copy
// under id. The stored bytes remain valid until the registry is garbage
// collected; the caller's buffer may be reused immediately. First write
// wins; id zero is ignored.
func (r *StringRegistry) RegisterDynamic(id StringID, b []byte) {
	if id == 0 || len(b) == 0 {
		return
	}
	slot := &r.slots[id]
	if slot.Load() != nil {
		return
	}

	r.arenaMu.Lock()
	if len(b) > len(r.arena)-r.arenaOff {
		size := arenaChunk
		if len(b) > size {
			size = len(b)
		}
		// New chunk; previously handed-out views keep their old backing.
		r.arena = make([]byte, size)
		r.arenaOff = 0
	}
	dst := r.arena[r.arenaOff : r.arenaOff+len(b)]
	copy(dst, b)
	r.arenaOff += len(b)
	r.arenaMu.Unlock()

	// Arena bytes are write-once, so viewing them as a string is safe.
	s := unsafe.String(unsafe.SliceData(dst), len(dst))
	slot.CompareAndSwap(nil, &s)
}

// Lookup returns the string registered under id. It is total: an
// unpopulated (or racing) slot yields the empty string.
func (r *StringRegistry) Lookup(id StringID) string {
	if p := r.slots[id].Load(); p != nil {
		return *p
	}
	return ""
}
