// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"testing"
	"time"

	"github.com/agilira/ember/internal/ring"
)

func TestBufferedWriterDrainsAtN(t *testing.T) {
	mem := NewMemoryWriter("mem")
	w := NewBufferedWriter(mem, 3, 0)

	for i := 0; i < 2; i++ {
		if err := w.Write(Record{Message: "x"}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if len(mem.Records()) != 0 {
		t.Fatal("should not drain before reaching N")
	}
	if err := w.Write(Record{Message: "x"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(mem.Records()) != 3 {
		t.Errorf("expected drain of 3 records at N, got %d", len(mem.Records()))
	}
}

func TestBufferedWriterDrainsAtTick(t *testing.T) {
	mem := NewMemoryWriter("mem")
	w := NewBufferedWriter(mem, 100, 5*time.Millisecond)

	if err := w.Write(Record{Message: "x"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := w.Write(Record{Message: "y"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(mem.Records()) == 0 {
		t.Error("expected a tick-triggered drain once the interval elapsed")
	}
}

func TestBufferedWriterFlushDrainsPendingAndInner(t *testing.T) {
	mem := NewMemoryWriter("mem")
	w := NewBufferedWriter(mem, 100, 0)

	_ = w.Write(Record{Message: "pending"})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(mem.Records()) != 1 {
		t.Errorf("Flush should have drained the pending record, got %d", len(mem.Records()))
	}
	if mem.FlushCount() == 0 {
		t.Error("Flush should forward to inner.Flush")
	}
}

type batchCapableWriter struct {
	MemoryWriter
	batches [][]Record
}

func (b *batchCapableWriter) WriteBatch(records []Record) error {
	b.batches = append(b.batches, records)
	for _, r := range records {
		_ = b.MemoryWriter.Write(r)
	}
	return nil
}

func TestBatchWriterUsesWriteBatchWhenSupported(t *testing.T) {
	inner := &batchCapableWriter{MemoryWriter: *NewMemoryWriter("batchcap")}
	w := NewBatchWriter(inner, 2, 0)

	_ = w.Write(Record{Message: "a"})
	_ = w.Write(Record{Message: "b"})

	if len(inner.batches) != 1 || len(inner.batches[0]) != 2 {
		t.Errorf("expected one WriteBatch call of 2 records, got %+v", inner.batches)
	}
}

func TestBatchWriterFallsBackToPerRecordWrite(t *testing.T) {
	mem := NewMemoryWriter("mem")
	w := NewBatchWriter(mem, 2, 0)

	_ = w.Write(Record{Message: "a"})
	_ = w.Write(Record{Message: "b"})

	if len(mem.Records()) != 2 {
		t.Errorf("expected inner to receive both records individually, got %d", len(mem.Records()))
	}
}

func TestAsyncWriterDecouplesAndFlushDrains(t *testing.T) {
	mem := NewMemoryWriter("mem")
	w, err := NewAsyncWriter(mem, 16, 1, ring.Block)
	if err != nil {
		t.Fatalf("NewAsyncWriter: %v", err)
	}
	defer func() { _ = w.Close() }()

	for i := 0; i < 5; i++ {
		if err := w.Write(Record{Message: "async"}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(mem.Records()) != 5 {
		t.Errorf("got %d records after flush, want 5", len(mem.Records()))
	}
}

func TestFormattedWriterRendersMessageKeepsFields(t *testing.T) {
	mem := NewMemoryWriter("mem")
	formatter := FormatterFunc(func(r Record) []byte { return []byte("rendered:" + r.Message) })
	w := NewFormattedWriter(mem, formatter)

	if err := w.Write(Record{Message: "original", Fields: []Field{Str("k", "v")}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rec := mem.Records()[0]
	if rec.Message != "rendered:original" {
		t.Errorf("Message = %q, want rendered form", rec.Message)
	}
	if _, ok := rec.FieldValue("k"); !ok {
		t.Error("fields should survive formatting")
	}
}

func TestFilteredWriterDropsRejectedRecords(t *testing.T) {
	mem := NewMemoryWriter("mem")
	w := NewFilteredWriter(mem, LevelAtLeast(Error))

	if err := w.Write(Record{Level: Info}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(Record{Level: Error}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(mem.Records()) != 1 {
		t.Fatalf("got %d records, want 1", len(mem.Records()))
	}
	if mem.Records()[0].Level != Error {
		t.Error("the surviving record should be the one that passed the filter")
	}
}

func TestCriticalWriterPassesThroughBelowThreshold(t *testing.T) {
	mem := NewMemoryWriter("mem")
	w := NewCriticalWriter(mem, Error)

	if err := w.Write(Record{Level: Info}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if mem.FlushCount() != 0 {
		t.Error("below-threshold record should not force a flush")
	}
}

func TestCriticalWriterFlushesAtThreshold(t *testing.T) {
	mem := NewMemoryWriter("mem")
	w := NewCriticalWriter(mem, Error)

	if err := w.Write(Record{Level: Error}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if mem.FlushCount() == 0 {
		t.Error("at-or-above-threshold record should force an immediate flush")
	}
	if len(mem.Records()) != 1 {
		t.Errorf("got %d records, want 1", len(mem.Records()))
	}
}

func TestDecoratorNamesReflectComposition(t *testing.T) {
	mem := NewMemoryWriter("mem")
	formatted := NewFormattedWriter(mem, NewJSONFormatter())
	buffered := NewBufferedWriter(formatted, 10, time.Second)
	filtered := NewFilteredWriter(buffered, AllowAll)

	want := "filtered(buffered(formatted(mem)))"
	if got := filtered.Name(); got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}
