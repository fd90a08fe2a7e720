// format.go: Call-site format strings and the format dispatch table
//
// A FormatString is the call-site carrier of a log template: the literal,
// its interned id, and the template pre-parsed into literal segments and
// {} placeholder slots. Construct one per call site with F, typically in a
// package-level var, so the producer path never parses and never
// allocates:
//
//	var fmtConnOpen = femtolog.F("connection open: peer={} fd={}\n")
//	...
//	logger.Info(fmtConnOpen, femtolog.Str(peer), femtolog.Int(fd))
//
// Parsed format strings live in a process-wide dispatch table keyed by id,
// which is how the backend worker binds a dequeued record back to its
// template without re-parsing.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"sync/atomic"
)

// segment is one parsed piece of a template: a literal run, optionally
// followed by one {} placeholder.
type segment struct {
	lit string
	arg bool
}

// FormatString is an interned, pre-parsed log template.
type FormatString struct {
	raw   string
	id    StringID
	segs  []segment
	nargs int
}

// formatTable is the process-wide dispatch table. Identical literals from
// different call sites resolve to the same entry (first registration
// wins), so the worker's id lookup is unambiguous per template.
var formatTable [registrySlots]atomic.Pointer[FormatString]

// F interns format and returns its call-site carrier. The template
// mini-language is positional {} placeholders with {{ and }} escaping
// literal braces. F is idempotent per literal and is meant to run once per
// call site, at package initialization.
func F(format string) *FormatString {
	f := &FormatString{
		raw: format,
		id:  HashString(format),
	}
	f.segs, f.nargs = parseTemplate(format)

	slot := &formatTable[f.id]
	if slot.CompareAndSwap(nil, f) {
		return f
	}
	return slot.Load()
}

// ID returns the interned id of the template.
func (f *FormatString) ID() StringID { return f.id }

// String returns the raw template literal.
func (f *FormatString) String() string { return f.raw }

// ArgCount returns the number of {} placeholders in the template.
func (f *FormatString) ArgCount() int { return f.nargs }

// lookupFormat resolves an id from the dispatch table; nil when the id was
// never interned in this process.
func lookupFormat(id StringID) *FormatString {
	return formatTable[id].Load()
}

// internFormat parses literal and registers it under an explicit id.
// Used by the worker's fallback path when a record arrives with an id the
// dispatch table has not seen but the registry can still resolve.
func internFormat(id StringID, literal string) *FormatString {
	f := &FormatString{raw: literal, id: id}
	f.segs, f.nargs = parseTemplate(literal)
	slot := &formatTable[id]
	if slot.CompareAndSwap(nil, f) {
		return f
	}
	return slot.Load()
}

// parseTemplate splits a template into segments. Unterminated or unknown
// brace sequences are kept as literal text.
func parseTemplate(format string) ([]segment, int) {
	var segs []segment
	var lit []byte
	nargs := 0

	for i := 0; i < len(format); {
		c := format[i]
		if c == '{' {
			if i+1 < len(format) && format[i+1] == '{' {
				lit = append(lit, '{')
				i += 2
				continue
			}
			if i+1 < len(format) && format[i+1] == '}' {
				segs = append(segs, segment{lit: string(lit), arg: true})
				lit = lit[:0]
				nargs++
				i += 2
				continue
			}
			lit = append(lit, '{')
			i++
			continue
		}
		if c == '}' {
			if i+1 < len(format) && format[i+1] == '}' {
				lit = append(lit, '}')
				i += 2
				continue
			}
			lit = append(lit, '}')
			i++
			continue
		}
		lit = append(lit, c)
		i++
	}
	if len(lit) > 0 || len(segs) == 0 {
		segs = append(segs, segment{lit: string(lit)})
	}
	return segs, nargs
}

// appendFormat renders the template with vals into dst and returns the
// extended slice. Placeholders beyond the supplied values are rendered
// verbatim as {}; surplus values are ignored.
func (f *FormatString) appendFormat(dst []byte, vals []Value) []byte {
	next := 0
	for _, seg := range f.segs {
		dst = append(dst, seg.lit...)
		if seg.arg {
			if next < len(vals) {
				dst = vals[next].appendTo(dst)
				next++
			} else {
				dst = append(dst, '{', '}')
			}
		}
	}
	return dst
}
