// nats.go: NATS publish sink
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package sinks

import (
	"sync/atomic"
	"time"

	"github.com/agilira/go-errors"
	"github.com/nats-io/nats.go"

	"github.com/agilira/femtolog"
)

// ErrCodeNATSConnect reports a failed NATS connection at sink creation.
const ErrCodeNATSConnect errors.ErrorCode = "FEMTOLOG_NATS_CONNECT"

// NATS publishes formatted records to a NATS subject. The record level is
// appended to the base subject ("logs" becomes "logs.info"), so consumers
// can subscribe per severity. Publishing is fire-and-forget: failures are
// counted, never retried, and never block the worker.
type NATS struct {
	nc      *nats.Conn
	subject string
	dropped atomic.Uint64
}

// NewNATS connects to the NATS server at url and publishes under the
// given base subject.
func NewNATS(url, subject string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("femtolog"),
		nats.Timeout(2*time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeNATSConnect, "failed to connect to NATS server")
	}
	return &NATS{nc: nc, subject: subject}, nil
}

// OnLog implements femtolog.Sink.
func (s *NATS) OnLog(entry *femtolog.LogEntry, content []byte) {
	if s.nc == nil {
		s.dropped.Add(1)
		return
	}
	subj := s.subject + "." + entry.Level.String()
	if err := s.nc.Publish(subj, content); err != nil {
		s.dropped.Add(1)
	}
}

// Dropped returns the number of records lost to publish failures.
func (s *NATS) Dropped() uint64 {
	return s.dropped.Load()
}

// Close flushes pending publishes and closes the connection.
func (s *NATS) Close() error {
	if s.nc == nil {
		return nil
	}
	err := s.nc.Flush()
	s.nc.Close()
	s.nc = nil
	return err
}
