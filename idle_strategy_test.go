// idle_strategy_test.go: Test suite for worker idle strategies
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package femtolog

import (
	"testing"
	"time"
)

func TestStrategyNames(t *testing.T) {
	testCases := []struct {
		strategy IdleStrategy
		name     string
	}{
		{NewTieredIdleStrategy(), "tiered"},
		{NewSpinningIdleStrategy(), "spinning"},
		{NewYieldingIdleStrategy(100), "yielding"},
		{NewSleepingIdleStrategy(time.Millisecond, 10), "sleeping"},
	}
	for _, tc := range testCases {
		if got := tc.strategy.String(); got != tc.name {
			t.Errorf("String() = %q, expected %q", got, tc.name)
		}
	}
}

func TestTieredStrategyCounter(t *testing.T) {
	s := NewTieredIdleStrategy()
	// The hot band performs no waiting; drive it well inside the band.
	for i := 0; i < 100; i++ {
		s.Idle()
	}
	if s.idleIterations != 100 {
		t.Errorf("idleIterations = %d, expected 100", s.idleIterations)
	}
	s.Reset()
	if s.idleIterations != 0 {
		t.Errorf("idleIterations = %d after Reset, expected 0", s.idleIterations)
	}
}

func TestYieldingStrategySpinWindow(t *testing.T) {
	s := NewYieldingIdleStrategy(4)
	for i := 0; i < 3; i++ {
		s.Idle()
	}
	if s.spins != 3 {
		t.Errorf("spins = %d, expected 3", s.spins)
	}
	s.Idle() // fourth poll yields and wraps the window
	if s.spins != 0 {
		t.Errorf("spins = %d after yield, expected 0", s.spins)
	}
	s.Reset()
	if s.spins != 0 {
		t.Errorf("spins = %d after Reset, expected 0", s.spins)
	}
}

func TestYieldingStrategyDefaultWindow(t *testing.T) {
	s := NewYieldingIdleStrategy(0)
	if s.maxSpins != 1000 {
		t.Errorf("maxSpins = %d, expected the 1000 default", s.maxSpins)
	}
}

func TestSleepingStrategyDefaults(t *testing.T) {
	s := NewSleepingIdleStrategy(0, -3)
	if s.sleepDuration != time.Millisecond {
		t.Errorf("sleepDuration = %v, expected 1ms default", s.sleepDuration)
	}
	if s.maxSpins != 0 {
		t.Errorf("maxSpins = %d, expected 0", s.maxSpins)
	}
}

func TestSleepingStrategySpinsBeforeSleeping(t *testing.T) {
	s := NewSleepingIdleStrategy(time.Microsecond, 5)
	for i := 0; i < 5; i++ {
		s.Idle() // within the spin window, no sleep
	}
	if s.spins != 5 {
		t.Errorf("spins = %d, expected 5", s.spins)
	}
	s.Reset()
	if s.spins != 0 {
		t.Errorf("spins = %d after Reset, expected 0", s.spins)
	}
}

func TestCustomStrategyWiredIntoWorker(t *testing.T) {
	sink := &captureSink{}
	spinning := NewSpinningIdleStrategy()
	l := newTestLogger(t, Options{IdleStrategy: spinning}, sink)
	if l.worker.idle != spinning {
		t.Fatal("configured idle strategy not wired into the worker")
	}
	if err := l.StartWorker(); err != nil {
		t.Fatalf("StartWorker failed: %v", err)
	}
	l.Info(F("spun\n"))
	if err := l.StopWorker(); err != nil {
		t.Fatalf("StopWorker failed: %v", err)
	}
	if len(sink.snapshot()) != 1 {
		t.Error("record lost under a custom idle strategy")
	}
}
