// jsonlines.go: Structured JSON-lines sink
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package sinks

import (
	"os"
	"path/filepath"

	"github.com/agilira/go-errors"

	"github.com/agilira/femtolog"
)

const hexDigits = "0123456789abcdef"

// appendJSONEscaped appends content as the body of a JSON string. Quotes,
// backslashes, and control bytes are escaped; everything else is passed
// through as UTF-8.
func appendJSONEscaped(dst, content []byte) []byte {
	for _, c := range content {
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// JSONLines writes one JSON object per record:
//
//	{"timestamp":1736951617000512345,"level":"info","message":"ready\n"}
//
// The file at path is rotated and compressed on open like the File sink.
type JSONLines struct {
	path string
	f    *os.File
	buf  []byte
}

// NewJSONLines opens (and, if needed, rotates) the JSON-lines file at
// path.
func NewJSONLines(path string) (*JSONLines, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, ErrCodeFileOpen, "failed to create log directory")
	}
	if err := rotateExisting(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeFileOpen, "failed to open json lines file")
	}
	return &JSONLines{
		path: path,
		f:    f,
		buf:  make([]byte, 0, bufCapacity),
	}, nil
}

// OnLog implements femtolog.Sink.
func (s *JSONLines) OnLog(entry *femtolog.LogEntry, content []byte) {
	approx := 64 + 2*len(content)
	if len(s.buf)+approx > cap(s.buf) {
		s.Flush()
	}

	s.buf = append(s.buf, `{"timestamp":`...)
	s.buf = appendUint(s.buf, entry.TimestampNS)
	s.buf = append(s.buf, `,"level":"`...)
	s.buf = append(s.buf, entry.Level.String()...)
	s.buf = append(s.buf, `","message":"`...)
	s.buf = appendJSONEscaped(s.buf, content)
	s.buf = append(s.buf, '"', '}', '\n')

	if len(s.buf) > cap(s.buf)-approx {
		s.Flush()
	}
}

// Flush writes buffered lines to the file.
func (s *JSONLines) Flush() {
	if len(s.buf) == 0 || s.f == nil {
		return
	}
	_, _ = s.f.Write(s.buf)
	s.buf = s.buf[:0]
}

// Path returns the live file path.
func (s *JSONLines) Path() string { return s.path }

// Close flushes and closes the file.
func (s *JSONLines) Close() error {
	s.Flush()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
