// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRotatingWriterRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w, err := NewRotatingWriter(RotationConfig{
		Path:         path,
		Trigger:      RotateBySize,
		MaxSizeBytes: 10,
		MaxFiles:     5,
	})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer w.Flush()

	for i := 0; i < 5; i++ {
		if err := w.Write(Record{Message: "0123456789"}); err != nil {
			t.Fatalf("Write(%d): %v", i, err)
		}
	}

	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) == 0 {
		t.Error("expected at least one archived file after exceeding MaxSizeBytes repeatedly")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("active file should still exist at %s: %v", path, err)
	}
}

func TestRotatingWriterRetentionTrimsOldArchives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w, err := NewRotatingWriter(RotationConfig{
		Path:         path,
		Trigger:      RotateBySize,
		MaxSizeBytes: 1,
		MaxFiles:     2,
	})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer w.Flush()

	for i := 0; i < 10; i++ {
		if err := w.Write(Record{Message: "x"}); err != nil {
			t.Fatalf("Write(%d): %v", i, err)
		}
	}

	// cleanup() runs on a background goroutine after each rotation, so
	// give it a moment to settle before counting archives.
	var matches []string
	for i := 0; i < 20; i++ {
		matches, _ = filepath.Glob(path + ".*")
		if len(matches) <= w.cfg.MaxFiles {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(matches) > w.cfg.MaxFiles {
		t.Errorf("got %d archived files, want at most MaxFiles=%d", len(matches), w.cfg.MaxFiles)
	}
}

func TestRotatingWriterFsyncSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w, err := NewRotatingWriter(RotationConfig{Path: path, Trigger: RotateBySize, MaxSizeBytes: 1 << 20})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}

	if err := w.Write(Record{Message: "hello"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Fsync(); err != nil {
		t.Errorf("Fsync: %v", err)
	}
}

func TestRotatingWriterCombinedArchiveNameTagsByTrigger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	w, err := NewRotatingWriter(RotationConfig{
		Path:         path,
		Trigger:      RotateCombined,
		MaxSizeBytes: 1 << 20,
		MaxFiles:     5,
	})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer w.Flush()

	sizeName := w.archiveNameLocked(false)
	wantSize := path + ".1"
	if sizeName != wantSize {
		t.Errorf("archiveNameLocked(false) = %q, want %q (incrementing integer tag)", sizeName, wantSize)
	}

	timeName := w.archiveNameLocked(true)
	wantPrefix := path + "." + time.Now().Format("20060102_15")
	if timeName != wantPrefix {
		t.Errorf("archiveNameLocked(true) = %q, want %q (YYYYMMDD_HH tag)", timeName, wantPrefix)
	}
}

func TestRotatingWriterNameIncludesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svc.log")

	w, err := NewRotatingWriter(RotationConfig{Path: path, Trigger: RotateBySize, MaxSizeBytes: 1 << 20})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer w.Flush()

	want := "rotating(" + path + ")"
	if got := w.Name(); got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}
