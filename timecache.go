// timecache.go: background-refreshed clock for the hot path.
//
// A ticker updates an atomic nanosecond timestamp so Record timestamps,
// sampler windows, and rotation boundary checks avoid a time.Now()
// syscall per call.
//
// github.com/agilira/go-timecache exposes the same pattern as an
// external package; its exact call surface isn't verifiable here, so
// this stays an in-tree implementation rather than risk importing an
// unverified API (see DESIGN.md).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"sync/atomic"
	"time"
)

type timeCache struct {
	nanos  int64
	ticker *time.Ticker
	stopCh chan struct{}
}

var globalTimeCache = &timeCache{}

func init() {
	globalTimeCache.nanos = time.Now().UnixNano()
	globalTimeCache.ticker = time.NewTicker(500 * time.Microsecond)
	globalTimeCache.stopCh = make(chan struct{})
	go globalTimeCache.updateLoop()
}

func (tc *timeCache) updateLoop() {
	for {
		select {
		case <-tc.ticker.C:
			atomic.StoreInt64(&tc.nanos, time.Now().UnixNano())
		case <-tc.stopCh:
			tc.ticker.Stop()
			return
		}
	}
}

// CachedTimeNano returns the cached wall-clock time in nanoseconds.
func CachedTimeNano() int64 { return atomic.LoadInt64(&globalTimeCache.nanos) }

// CachedTime returns the cached wall-clock time as a time.Time.
func CachedTime() time.Time { return time.Unix(0, CachedTimeNano()) }

// StopTimeCache halts the background ticker. Intended for test teardown.
func StopTimeCache() { close(globalTimeCache.stopCh) }
