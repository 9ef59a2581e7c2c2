// decorator_async.go: wrap an inner writer with its own single-consumer
// queue and worker, so some sinks can be async while others stay
// synchronous — a per-writer scope of the same contract Collector
// implements at the Logger scope.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"sync"
	"time"

	"github.com/agilira/ember/internal/ring"
)

// AsyncWriter decouples the caller from inner's latency: Write enqueues
// and returns; a dedicated goroutine drains the queue into inner.
type AsyncWriter struct {
	inner Writer
	q     *ring.Ring[Record]
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewAsyncWriter builds an AsyncWriter with the given queue capacity
// (must be a power of two), batch size, and overflow policy.
func NewAsyncWriter(inner Writer, capacity, batchSize int, policy ring.OverflowPolicy) (*AsyncWriter, error) {
	w := &AsyncWriter{inner: inner, stop: make(chan struct{})}
	q, err := ring.NewBuilder[Record](capacity).
		WithBatchSize(batchSize).
		WithOverflowPolicy(policy).
		WithIdleStrategy(ring.NewSleepingIdleStrategy(64, time.Millisecond)).
		WithProcessor(func(rec *Record) {
			if err := w.inner.Write(*rec); err != nil {
				handleError(WrapError(err, ErrCodeWriteFailed, "async writer: inner write failed").
					WithContext("writer", w.inner.Name()))
			}
		}).
		Build()
	if err != nil {
		return nil, WrapError(err, ErrCodeInvalidConfig, "async writer: invalid queue configuration")
	}
	w.q = q
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.q.LoopProcess(w.stop)
	}()
	return w, nil
}

func (w *AsyncWriter) Write(r Record) error {
	if !w.q.Push(r) {
		return NewError(ErrCodeQueueFull, "async writer: queue full")
	}
	return nil
}

// Flush posts a barrier and waits for the worker to drain past it, then
// flushes inner (D3).
func (w *AsyncWriter) Flush() error {
	if err := w.q.Flush(0); err != nil {
		return WrapError(err, ErrCodeFlushTimeout, "async writer: flush barrier timed out")
	}
	return w.inner.Flush()
}

func (w *AsyncWriter) Healthy() bool { return w.inner.Healthy() }
func (w *AsyncWriter) Name() string  { return "async(" + w.inner.Name() + ")" }

// Close stops the worker after draining whatever is already queued (D4:
// a final flush is attempted even though this path never returns to a
// caller who could observe its error — failures go to the error handler).
func (w *AsyncWriter) Close() error {
	if err := w.Flush(); err != nil {
		handleError(WrapError(err, ErrCodeFlushFailed, "async writer: close-time flush failed"))
	}
	_ = w.q.Close()
	close(w.stop)
	w.wg.Wait()
	return nil
}
