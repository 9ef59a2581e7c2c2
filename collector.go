// collector.go: the worker-owned queue between Logger submitters and
// the installed writer set.
//
// The queue itself is internal/ring.Ring, an in-tree lock-free ring
// buffer. The writer set is owned by the Collector and swapped
// copy-on-write (atomic.Pointer read path, mutex-guarded mutation path
// the worker picks up between batches).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/ember/internal/ring"
)

// CollectorState is the Collector's lifecycle: uninitialized →
// running → draining → stopped, one-way except stopped → running via a
// fresh Start.
type CollectorState int32

const (
	CollectorUninitialized CollectorState = iota
	CollectorRunning
	CollectorDraining
	CollectorStopped
)

// CollectorConfig configures the bounded queue and worker.
type CollectorConfig struct {
	Capacity      int // rounded up to a power of two; default 16384 (next pow2 of 10k)
	BatchSize     int
	OverflowPolicy ring.OverflowPolicy
	TickInterval  time.Duration
}

func (c *CollectorConfig) applyDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = 16384
	}
	c.Capacity = nextPowerOfTwo(c.Capacity)
	if c.BatchSize <= 0 {
		c.BatchSize = 256
	}
	if c.TickInterval <= 0 {
		c.TickInterval = 5 * time.Millisecond
	}
}

// nextPowerOfTwo rounds n up to the nearest power of two; ring.Build
// rejects anything else. A caller asking for the spec's documented
// default of 10k, or any other LOG_MAX_QUEUE_SIZE value, still gets a
// working Collector instead of EMBER_INVALID_CONFIG.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Collector owns the queue, the worker, and the writer set it fans
// records out to.
type Collector struct {
	cfg CollectorConfig

	q     *ring.Ring[Record]
	state int32 // atomic CollectorState

	writersMu sync.Mutex
	writers   atomic.Pointer[[]Writer]

	stop chan struct{}
	wg   sync.WaitGroup

	droppedFull int64
}

// NewCollector builds a Collector in the Uninitialized state; call Start
// to spawn its worker.
func NewCollector(cfg CollectorConfig, writers []Writer) (*Collector, error) {
	cfg.applyDefaults()
	c := &Collector{cfg: cfg, stop: make(chan struct{})}
	ws := append([]Writer(nil), writers...)
	c.writers.Store(&ws)

	q, err := ring.NewBuilder[Record](cfg.Capacity).
		WithBatchSize(cfg.BatchSize).
		WithOverflowPolicy(cfg.OverflowPolicy).
		WithIdleStrategy(ring.NewSleepingIdleStrategy(128, time.Millisecond)).
		WithProcessor(c.fanOut).
		WithOnBarrier(c.flushAll).
		Build()
	if err != nil {
		return nil, WrapError(err, ErrCodeInvalidConfig, "collector: invalid queue configuration")
	}
	c.q = q
	return c, nil
}

func (c *Collector) fanOut(rec *Record) {
	writers := *c.writers.Load()
	for _, w := range writers {
		if err := w.Write(*rec); err != nil {
			handleError(WrapError(err, ErrCodeWriteFailed, "collector: writer failed").
				WithContext("writer", w.Name()))
		}
	}
}

func (c *Collector) flushAll() {
	writers := *c.writers.Load()
	var firstErr error
	failCount := 0
	for _, w := range writers {
		if err := w.Flush(); err != nil {
			failCount++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		handleError(WrapError(&FlushError{First: firstErr, Count: failCount},
			ErrCodeFlushFailed, "collector: one or more writers failed to flush"))
	}
}

// Start transitions Uninitialized/Stopped → Running and spawns the worker.
func (c *Collector) Start() error {
	if !atomic.CompareAndSwapInt32(&c.state, int32(CollectorUninitialized), int32(CollectorRunning)) &&
		!atomic.CompareAndSwapInt32(&c.state, int32(CollectorStopped), int32(CollectorRunning)) {
		return nil
	}
	c.stop = make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.q.LoopProcess(c.stop)
	}()
	return nil
}

// Enqueue submits a record for async dispatch, applying the configured
// overflow policy.
func (c *Collector) Enqueue(r Record) error {
	if CollectorState(atomic.LoadInt32(&c.state)) == CollectorStopped {
		return NewError(ErrCodeQueueClosed, "collector: stopped")
	}
	if !c.q.Push(r) {
		atomic.AddInt64(&c.droppedFull, 1)
		return NewError(ErrCodeQueueFull, "collector: queue full")
	}
	return nil
}

// EnqueueBlocking submits a record for async dispatch, waiting up to
// deadline (0 = apply the configured overflow policy without waiting)
// for room in the queue. A Block-policy queue that is still full at the
// deadline reports SubmissionTimeout; the push already under way is not
// cancelled and will still land once space frees, so no record the
// caller "gave up on" is silently duplicated or lost — it either lands
// late or never left the caller's hands.
func (c *Collector) EnqueueBlocking(r Record, deadline time.Duration) error {
	if CollectorState(atomic.LoadInt32(&c.state)) == CollectorStopped {
		return NewError(ErrCodeQueueClosed, "collector: stopped")
	}
	if deadline <= 0 {
		return c.Enqueue(r)
	}
	done := make(chan bool, 1)
	go func() { done <- c.q.Push(r) }()
	select {
	case ok := <-done:
		if !ok {
			atomic.AddInt64(&c.droppedFull, 1)
			return NewError(ErrCodeQueueFull, "collector: queue full")
		}
		return nil
	case <-time.After(deadline):
		return NewError(ErrCodeSubmissionTimeout, "collector: enqueue deadline exceeded")
	}
}

// Flush posts a barrier and blocks (up to deadline, 0 = indefinite)
// until the worker has drained past it and every writer's Flush has run.
func (c *Collector) Flush(deadline time.Duration) error {
	if err := c.q.Flush(deadline); err != nil {
		return WrapError(err, ErrCodeFlushTimeout, "collector: flush barrier timed out")
	}
	return nil
}

// AddWriter installs a writer via copy-on-write swap, visible to the
// worker starting with its next batch.
func (c *Collector) AddWriter(w Writer) {
	c.writersMu.Lock()
	defer c.writersMu.Unlock()
	cur := *c.writers.Load()
	next := append(append([]Writer(nil), cur...), w)
	c.writers.Store(&next)
}

// RemoveWriter uninstalls a writer by name via copy-on-write swap.
func (c *Collector) RemoveWriter(name string) {
	c.writersMu.Lock()
	defer c.writersMu.Unlock()
	cur := *c.writers.Load()
	next := make([]Writer, 0, len(cur))
	for _, w := range cur {
		if w.Name() != name {
			next = append(next, w)
		}
	}
	c.writers.Store(&next)
}

// Shutdown drains the queue gracefully within grace. Past the deadline it
// reports EMBER_SHUTDOWN_FORCED through the error handler, closes the
// queue to new records and stops the worker; records already queued are
// not dropped: the worker still processes them before Shutdown returns.
func (c *Collector) Shutdown(grace time.Duration) error {
	if !atomic.CompareAndSwapInt32(&c.state, int32(CollectorRunning), int32(CollectorDraining)) {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = c.q.Flush(0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		handleError(NewError(ErrCodeShutdownForce, "collector: grace period expired, forcing shutdown"))
	}

	_ = c.q.Close()
	close(c.stop)
	c.wg.Wait()
	atomic.StoreInt32(&c.state, int32(CollectorStopped))
	return nil
}

// State returns the collector's current lifecycle state.
func (c *Collector) State() CollectorState {
	return CollectorState(atomic.LoadInt32(&c.state))
}

// Stats exposes drop accounting for overflow-policy tests.
// Ring["dropped"] counts drop_newest/drop_oldest evictions inside the
// queue; DroppedFull counts Enqueue/EnqueueBlocking calls whose push the
// ring refused (a drop_newest rejection, also counted in Ring["dropped"],
// or a push onto a closed ring).
type CollectorStats struct {
	DroppedFull int64
	Ring        map[string]int64
}

func (c *Collector) Stats() CollectorStats {
	return CollectorStats{
		DroppedFull: atomic.LoadInt64(&c.droppedFull),
		Ring:        c.q.Stats(),
	}
}
