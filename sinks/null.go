// null.go: Discard sink
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package sinks

import (
	"github.com/agilira/femtolog"
)

// Null discards every record. Useful for benchmarks and for exercising
// the pipeline without I/O.
type Null struct{}

// NewNull creates a discard sink.
func NewNull() *Null { return &Null{} }

// OnLog implements femtolog.Sink.
func (*Null) OnLog(*femtolog.LogEntry, []byte) {}
