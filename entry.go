// entry.go: Log record header and ring framing
//
// A record on the ring is a fixed 24-byte header followed by the payload
// bytes, padded so that each record starts on an 8-byte boundary. Peeking
// the first 24 bytes of the ring therefore always yields a complete
// header, whose PayloadSize field frames the rest of the record.
//
// Header layout (little-endian, offsets in bytes):
//
//	 0  ThreadID    u32
//	 4  FormatID    u16
//	 6  Level       u8
//	 7  (reserved)
//	 8  PayloadSize u16   header + content, before padding
//	10  ContentLen  u16   payload bytes only
//	12  (reserved)
//	16  TimestampNS u64   stamped by the backend worker at dequeue
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"encoding/binary"
)

const (
	// EntryHeaderSize is the fixed size of the record header on the ring.
	EntryHeaderSize = 24

	// MaxPayloadSize caps the payload of a single record so the whole
	// record fits a 4 KiB frame.
	MaxPayloadSize = 4096 - EntryHeaderSize

	recordAlign = 8

	maxRecordSize = EntryHeaderSize + MaxPayloadSize
)

// LogEntry is the decoded header of one record.
type LogEntry struct {
	ThreadID    uint32
	FormatID    StringID
	Level       Level
	PayloadSize uint16
	ContentLen  uint16
	TimestampNS uint64
}

// TotalSize returns the unpadded record size: header plus content.
func (e *LogEntry) TotalSize() int { return int(e.PayloadSize) }

// AlignedSize returns the number of ring bytes the record occupies.
func (e *LogEntry) AlignedSize() int { return alignUp(int(e.PayloadSize)) }

// alignUp rounds n up to the record alignment.
func alignUp(n int) int {
	return (n + recordAlign - 1) &^ (recordAlign - 1)
}

// putEntryHeader writes the header fields at the start of buf.
func putEntryHeader(buf []byte, threadID uint32, formatID StringID, level Level, contentLen int) {
	binary.LittleEndian.PutUint32(buf[0:], threadID)
	binary.LittleEndian.PutUint16(buf[4:], uint16(formatID))
	buf[6] = byte(level)
	buf[7] = 0
	binary.LittleEndian.PutUint16(buf[8:], uint16(EntryHeaderSize+contentLen))
	binary.LittleEndian.PutUint16(buf[10:], uint16(contentLen))
	binary.LittleEndian.PutUint32(buf[12:], 0)
	binary.LittleEndian.PutUint64(buf[16:], 0)
}

// decodeEntryHeader reads the header fields from the start of buf.
func decodeEntryHeader(buf []byte) LogEntry {
	return LogEntry{
		ThreadID:    binary.LittleEndian.Uint32(buf[0:]),
		FormatID:    StringID(binary.LittleEndian.Uint16(buf[4:])),
		Level:       Level(buf[6]),
		PayloadSize: binary.LittleEndian.Uint16(buf[8:]),
		ContentLen:  binary.LittleEndian.Uint16(buf[10:]),
		TimestampNS: binary.LittleEndian.Uint64(buf[16:]),
	}
}

// stampTimestamp overwrites the timestamp field of an encoded header.
func stampTimestamp(buf []byte, ns uint64) {
	binary.LittleEndian.PutUint64(buf[16:], ns)
}
