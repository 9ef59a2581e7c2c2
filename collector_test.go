// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"testing"
	"time"

	"github.com/agilira/ember/internal/ring"
)

func newTestCollector(t *testing.T, policy ring.OverflowPolicy, capacity int, w *MemoryWriter) *Collector {
	t.Helper()
	c, err := NewCollector(CollectorConfig{Capacity: capacity, BatchSize: 1, OverflowPolicy: policy}, []Writer{w})
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = c.Shutdown(time.Second) })
	return c
}

func TestCollectorConfigRoundsNonPowerOfTwoCapacityUp(t *testing.T) {
	w := NewMemoryWriter("mem")
	c, err := NewCollector(CollectorConfig{Capacity: 10000, BatchSize: 1}, []Writer{w})
	if err != nil {
		t.Fatalf("NewCollector should round a non-power-of-two capacity up instead of failing: %v", err)
	}
	if c.cfg.Capacity != 16384 {
		t.Errorf("Capacity = %d, want 16384 (next power of two after 10000)", c.cfg.Capacity)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 1000: 1024, 10000: 16384, 16384: 16384}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCollectorPreservesFIFOOrder(t *testing.T) {
	w := NewMemoryWriter("mem")
	c := newTestCollector(t, ring.Block, 16, w)

	for i := 0; i < 10; i++ {
		if err := c.Enqueue(Record{Message: string(rune('a' + i))}); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := c.Flush(time.Second); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	recs := w.Records()
	if len(recs) != 10 {
		t.Fatalf("got %d records, want 10", len(recs))
	}
	for i, r := range recs {
		if r.Message != string(rune('a'+i)) {
			t.Errorf("record %d = %q, want %q", i, r.Message, string(rune('a'+i)))
		}
	}
}

func TestCollectorFlushRunsWriterFlush(t *testing.T) {
	w := NewMemoryWriter("mem")
	c := newTestCollector(t, ring.Block, 16, w)

	if err := c.Enqueue(Record{Message: "x"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := c.Flush(time.Second); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if w.FlushCount() == 0 {
		t.Error("expected Collector.Flush to invoke the writer's Flush at least once")
	}
}

func TestCollectorDropNewestPolicy(t *testing.T) {
	w := NewMemoryWriter("mem")
	c, err := NewCollector(CollectorConfig{Capacity: 2, BatchSize: 1, OverflowPolicy: ring.DropNewest}, []Writer{w})
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	// Deliberately do not Start the worker so the ring stays full and the
	// overflow policy is exercised deterministically instead of racing a
	// consumer that might drain a slot before the next Enqueue.
	t.Cleanup(func() { _ = c.Shutdown(time.Second) })

	for i := 0; i < 2; i++ {
		if err := c.Enqueue(Record{Message: "fill"}); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := c.Enqueue(Record{Message: "overflow"}); err == nil {
		t.Error("expected the third Enqueue into a full 2-slot DropNewest ring to report an error")
	}
	stats := c.Stats()
	if stats.Ring["dropped"] != 1 {
		t.Errorf("Ring[\"dropped\"] = %d, want 1", stats.Ring["dropped"])
	}
}

func TestCollectorEnqueueBlockingTimesOutWhenFull(t *testing.T) {
	w := NewMemoryWriter("mem")
	c, err := NewCollector(CollectorConfig{Capacity: 2, BatchSize: 1, OverflowPolicy: ring.Block}, []Writer{w})
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	t.Cleanup(func() { _ = c.Shutdown(time.Second) })

	for i := 0; i < 2; i++ {
		if err := c.Enqueue(Record{Message: "fill"}); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	err = c.EnqueueBlocking(Record{Message: "late"}, 20*time.Millisecond)
	if err == nil {
		t.Error("expected EnqueueBlocking to time out against a full, undrained Block-policy ring")
	}
}

func TestCollectorEnqueueAfterStoppedIsRejected(t *testing.T) {
	w := NewMemoryWriter("mem")
	c := newTestCollector(t, ring.Block, 16, w)

	if err := c.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := c.Enqueue(Record{Message: "after shutdown"}); err == nil {
		t.Error("expected Enqueue after Shutdown to be rejected")
	}
	if c.State() != CollectorStopped {
		t.Errorf("State() = %v, want CollectorStopped", c.State())
	}
}

func TestCollectorShutdownIsIdempotent(t *testing.T) {
	w := NewMemoryWriter("mem")
	c := newTestCollector(t, ring.Block, 16, w)

	if err := c.Shutdown(time.Second); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := c.Shutdown(time.Second); err != nil {
		t.Fatalf("second Shutdown should be a harmless no-op, got: %v", err)
	}
}

func TestCollectorAddAndRemoveWriter(t *testing.T) {
	w1 := NewMemoryWriter("one")
	c := newTestCollector(t, ring.Block, 16, w1)

	w2 := NewMemoryWriter("two")
	c.AddWriter(w2)

	if err := c.Enqueue(Record{Message: "fanned out"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := c.Flush(time.Second); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(w1.Records()) != 1 || len(w2.Records()) != 1 {
		t.Fatalf("expected both writers to receive the record, got w1=%d w2=%d",
			len(w1.Records()), len(w2.Records()))
	}

	c.RemoveWriter("one")
	if err := c.Enqueue(Record{Message: "only two"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := c.Flush(time.Second); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(w1.Records()) != 1 {
		t.Errorf("removed writer should not receive further records, got %d", len(w1.Records()))
	}
	if len(w2.Records()) != 2 {
		t.Errorf("remaining writer should have 2 records, got %d", len(w2.Records()))
	}
}
