// affinity_linux.go: Worker thread CPU pinning via sched_setaffinity
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

//go:build linux

package femtolog

import (
	"golang.org/x/sys/unix"
)

// setCPUAffinity pins the calling thread to the given CPU. The caller must
// have locked the goroutine to its OS thread first.
func setCPUAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
