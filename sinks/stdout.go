// stdout.go: Terminal sink with ANSI level coloring
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package sinks

import (
	"io"
	"os"

	"github.com/agilira/femtolog"
)

// Stdout writes records to standard output with a lower-case level prefix,
// bold-colored when ANSI is enabled. Raw records are forwarded without a
// prefix. With buffering enabled, output is staged in an internal buffer
// and written out when it fills or on Flush/Close.
type Stdout struct {
	out      io.Writer
	color    bool
	buffered bool
	buf      []byte
}

// NewStdout creates an unbuffered stdout sink. ColorAuto enables ANSI
// sequences only when stdout is a terminal.
func NewStdout(mode femtolog.ColorMode) *Stdout {
	return &Stdout{
		out:   os.Stdout,
		color: colorEnabled(mode, os.Stdout),
	}
}

// NewBufferedStdout creates a stdout sink that stages output internally.
// Call Flush (or Close) to push out a partial buffer.
func NewBufferedStdout(mode femtolog.ColorMode) *Stdout {
	s := NewStdout(mode)
	s.buffered = true
	s.buf = make([]byte, 0, bufCapacity)
	return s
}

// colorEnabled resolves a ColorMode against the destination.
func colorEnabled(mode femtolog.ColorMode, f *os.File) bool {
	switch mode {
	case femtolog.ColorAlways:
		return true
	case femtolog.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// OnLog implements femtolog.Sink.
func (s *Stdout) OnLog(entry *femtolog.LogEntry, content []byte) {
	if !s.buffered {
		line := s.renderLine(nil, entry.Level, content)
		_, _ = s.out.Write(line)
		return
	}

	approx := len(content) + 32
	if len(s.buf)+approx > cap(s.buf) {
		s.Flush()
	}
	if approx > cap(s.buf) {
		line := s.renderLine(nil, entry.Level, content)
		_, _ = s.out.Write(line)
		return
	}
	s.buf = s.renderLine(s.buf, entry.Level, content)
}

// renderLine appends the level prefix and content to dst.
func (s *Stdout) renderLine(dst []byte, level femtolog.Level, content []byte) []byte {
	if level != femtolog.LevelRaw {
		if s.color {
			dst = append(dst, femtolog.ANSIBold...)
			dst = append(dst, level.ANSIColor()...)
			dst = append(dst, level.String()...)
			dst = append(dst, femtolog.ANSIReset...)
		} else {
			dst = append(dst, level.String()...)
		}
		dst = append(dst, levelSep...)
	}
	return append(dst, content...)
}

// Flush writes out any buffered output.
func (s *Stdout) Flush() {
	if len(s.buf) == 0 {
		return
	}
	_, _ = s.out.Write(s.buf)
	s.buf = s.buf[:0]
}

// Close flushes buffered output.
func (s *Stdout) Close() error {
	s.Flush()
	return nil
}
