// file_test.go: Test suite for the rotating file sink
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package sinks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agilira/femtolog"
)

func TestFileSinkWritesPrefixedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "latest.log")

	s, err := NewFile(path)
	require.NoError(t, err)

	s.OnLog(entryAt(femtolog.LevelInfo), []byte("started\n"))
	s.OnLog(entryAt(femtolog.LevelRaw), []byte("no prefix\n"))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.True(t, strings.HasPrefix(lines[0], "["), "line must start with a timestamp: %q", lines[0])
	assert.Contains(t, lines[0], "] info: started")
	assert.NotContains(t, lines[1], "raw: ")
	assert.Contains(t, lines[1], "no prefix")
}

func TestFileSinkRotatesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	s, err := NewFile(path)
	require.NoError(t, err)
	s.OnLog(entryAt(femtolog.LevelInfo), []byte("fresh run\n"))
	require.NoError(t, s.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var rotated string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "app_") && strings.HasSuffix(e.Name(), ".log.gz") {
			rotated = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, rotated, "expected a rotated gzip file, got %v", entries)

	// The rotated archive holds the previous contents.
	f, err := os.Open(rotated)
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	var out strings.Builder
	buf := make([]byte, 256)
	for {
		n, rerr := gr.Read(buf)
		out.Write(buf[:n])
		if rerr != nil {
			break
		}
	}
	assert.Equal(t, "previous run\n", out.String())

	// The live file starts fresh.
	live, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(live), "previous run")
	assert.Contains(t, string(live), "fresh run")
}

func TestFileSinkRotationCollisionCounter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	// Two rotations inside one timestamp tick must not clobber each other.
	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(path, []byte("run\n"), 0o644))
		s, err := NewFile(path)
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	archives := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".log.gz") {
			archives++
		}
	}
	assert.Equal(t, 2, archives, "both rotations must be preserved: %v", entries)
}

func TestFileSinkCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "deep.log")
	s, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileSinkFlushOnBufferFill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burst.log")
	s, err := NewFile(path)
	require.NoError(t, err)

	line := []byte(strings.Repeat("x", 512) + "\n")
	for i := 0; i < 32; i++ {
		s.OnLog(entryAt(femtolog.LevelDebug), line)
	}
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 32, strings.Count(string(data), "\n"))
}
