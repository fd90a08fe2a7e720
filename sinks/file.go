// file.go: File sink with rotate-then-compress startup behavior
//
// On open, an existing log file is moved aside under a timestamped name
// and gzip-compressed, so the live path always starts a fresh run. The
// live file is protected by an advisory cross-process lock for the
// lifetime of the sink.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package sinks

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"github.com/gofrs/flock"
	"github.com/klauspost/compress/gzip"

	"github.com/agilira/femtolog"
)

// Error codes for the bundled sinks.
const (
	ErrCodeFileOpen errors.ErrorCode = "FEMTOLOG_FILE_OPEN"
	ErrCodeFileLock errors.ErrorCode = "FEMTOLOG_FILE_LOCK"
	ErrCodeRotation errors.ErrorCode = "FEMTOLOG_FILE_ROTATION"
)

// File writes records to a log file, each line prefixed with the record
// timestamp and level:
//
//	[14:03:21.000512345] info: listener ready
//
// Raw records carry the timestamp but no level prefix. Writes are staged
// in an internal buffer flushed when full and on Close.
type File struct {
	path string
	f    *os.File
	lock *flock.Flock
	buf  []byte
}

// NewFile opens (and, if needed, rotates) the log file at path. Parent
// directories are created.
func NewFile(path string) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, ErrCodeFileOpen, "failed to create log directory")
	}

	if err := rotateExisting(path); err != nil {
		return nil, err
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeFileLock, "failed to acquire log file lock")
	}
	if !locked {
		return nil, errors.New(ErrCodeFileLock, "log file is locked by another process")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, errors.Wrap(err, ErrCodeFileOpen, "failed to open log file")
	}

	return &File{
		path: path,
		f:    f,
		lock: lock,
		buf:  make([]byte, 0, bufCapacity),
	}, nil
}

// rotateExisting moves an existing file at path aside as
// "<name>_<timestamp>[-N].<ext>.gz" and removes the original.
func rotateExisting(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	name := strings.TrimSuffix(base, filepath.Ext(base))
	stamp := timecache.CachedTime().Format("2006-01-02_15-04-05")

	var dest string
	for counter := 0; ; counter++ {
		rotated := name + "_" + stamp
		if counter > 0 {
			rotated += "-" + strconv.Itoa(counter)
		}
		if ext != "" {
			rotated += "." + ext
		}
		rotated += ".gz"
		dest = filepath.Join(dir, rotated)
		if _, err := os.Stat(dest); err != nil {
			break
		}
	}

	if err := compressFile(path, dest); err != nil {
		return errors.Wrap(err, ErrCodeRotation, "failed to compress rotated log file")
	}
	if err := os.Remove(path); err != nil {
		return errors.Wrap(err, ErrCodeRotation, "failed to remove rotated log file")
	}
	return nil
}

// compressFile gzips src into dest.
func compressFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// OnLog implements femtolog.Sink.
func (s *File) OnLog(entry *femtolog.LogEntry, content []byte) {
	approx := 32 + len(content)
	if len(s.buf)+approx > cap(s.buf) {
		s.Flush()
	}

	s.buf = appendTimestamp(s.buf, entry.TimestampNS)
	if entry.Level != femtolog.LevelRaw {
		s.buf = append(s.buf, entry.Level.String()...)
		s.buf = append(s.buf, levelSep...)
	}
	s.buf = append(s.buf, content...)

	if len(s.buf) > cap(s.buf)-approx {
		s.Flush()
	}
}

// Flush writes buffered lines to the file.
func (s *File) Flush() {
	if len(s.buf) == 0 || s.f == nil {
		return
	}
	_, _ = s.f.Write(s.buf)
	s.buf = s.buf[:0]
}

// Path returns the live log file path.
func (s *File) Path() string { return s.path }

// Close flushes, releases the lock, and closes the file.
func (s *File) Close() error {
	s.Flush()
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
