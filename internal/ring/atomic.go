// atomic.go: cache-line padded atomic counters for the MPSC ring.
//
// A single-purpose int64 counter with padding on both sides to keep
// independent cursors from sharing a cache line under contention.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ring

import "sync/atomic"

// PaddedInt64 is an atomic int64 padded to avoid false sharing between
// cursors that are written by different goroutines (producers vs. the
// single consumer).
type PaddedInt64 struct {
	_   [64]byte
	val int64
	_   [64]byte
}

func (a *PaddedInt64) Load() int64                  { return atomic.LoadInt64(&a.val) }
func (a *PaddedInt64) Store(v int64)                { atomic.StoreInt64(&a.val, v) }
func (a *PaddedInt64) Add(delta int64) int64         { return atomic.AddInt64(&a.val, delta) }
func (a *PaddedInt64) CompareAndSwap(old, new int64) bool {
	return atomic.CompareAndSwapInt64(&a.val, old, new)
}
