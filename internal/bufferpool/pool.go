// pool.go: reusable byte buffers for the encode hot path.
//
// Backs the encode path's zero-allocation goal. Formatters borrow a
// buffer, write an encoded Record into it, hand the bytes to a Writer,
// and return it here.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package bufferpool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

var (
	getCount   int64
	putCount   int64
	allocCount int64
	dropCount  int64
)

const (
	// MaxBufferSize is the capacity above which a returned buffer is
	// discarded instead of pooled, to keep one oversized record from
	// inflating the pool's steady-state memory.
	MaxBufferSize = 1 << 20 // 1 MiB

	// DefaultCapacity is the initial capacity hint for new buffers,
	// sized for a typical single-line structured record.
	DefaultCapacity = 512
)

var pool = sync.Pool{
	New: func() any {
		atomic.AddInt64(&allocCount, 1)
		return bytes.NewBuffer(make([]byte, 0, DefaultCapacity))
	},
}

// Get returns a clean buffer from the pool.
func Get() *bytes.Buffer {
	atomic.AddInt64(&getCount, 1)
	b := pool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// Put returns a buffer to the pool. Buffers that grew past MaxBufferSize
// are replaced rather than retained, so one large record doesn't pin the
// pool's memory footprint.
func Put(b *bytes.Buffer) {
	if b == nil {
		return
	}
	atomic.AddInt64(&putCount, 1)
	if b.Cap() > MaxBufferSize {
		atomic.AddInt64(&dropCount, 1)
		*b = *bytes.NewBuffer(make([]byte, 0, DefaultCapacity))
	}
	b.Reset()
	pool.Put(b)
}

// Stats is a snapshot of pool activity, returned by GetStats.
type Stats struct {
	Gets        int64
	Puts        int64
	Allocations int64
	Drops       int64
}

func GetStats() Stats {
	return Stats{
		Gets:        atomic.LoadInt64(&getCount),
		Puts:        atomic.LoadInt64(&putCount),
		Allocations: atomic.LoadInt64(&allocCount),
		Drops:       atomic.LoadInt64(&dropCount),
	}
}

func ResetStats() {
	atomic.StoreInt64(&getCount, 0)
	atomic.StoreInt64(&putCount, 0)
	atomic.StoreInt64(&allocCount, 0)
	atomic.StoreInt64(&dropCount, 0)
}
