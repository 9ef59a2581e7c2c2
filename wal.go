// wal.go: minimal write-ahead log for critical records. Independent of
// the normal writer path: a record written here is durable even if the
// Collector's buffers are lost to a crash mid-flush.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"sync"
)

// WALConfig configures a Logger's optional write-ahead log.
type WALConfig struct {
	Path     string
	MinLevel Level
}

// WAL is a minimal append-only text file, written synchronously (one
// write + one fsync per accepted record) so that a crash immediately
// after the write leaves the record recoverable from disk.
type WAL struct {
	mu       sync.Mutex
	f        *os.File
	minLevel Level
	fmt      Formatter
}

func newWAL(cfg WALConfig) (*WAL, error) {
	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, WrapError(err, ErrCodeFileOpen, "wal: open failed")
	}
	return &WAL{f: f, minLevel: cfg.MinLevel, fmt: NewTextFormatter()}, nil
}

// Write appends r if its level qualifies, fsyncing before returning so
// the caller's "it's on disk" assumption holds even under a crash.
func (w *WAL) Write(r Record) error {
	if r.Level < w.minLevel {
		return nil
	}
	line := w.fmt.Format(r)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.f.Write(line); err != nil {
		return WrapError(err, ErrCodeWALWrite, "wal: write failed")
	}
	return w.f.Sync()
}

// EmergencyFD implements EmergencyReporter: the WAL already fsyncs every
// accepted record synchronously, so the crash handler's job is reduced
// to flushing whatever the OS hasn't yet persisted for this descriptor.
func (w *WAL) EmergencyFD() int {
	if w.f == nil {
		return -1
	}
	return int(w.f.Fd())
}

// EmergencyBuffer is always empty: the WAL has no in-process buffer to
// flush because every Write already synced before returning.
func (w *WAL) EmergencyBuffer() []byte { return nil }

func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}
