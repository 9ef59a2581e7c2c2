// rotation_lumberjack.go: an alternative Rotating backend for callers
// who already depend on lumberjack's archive naming convention, wired
// through the same Writer contract as RotatingWriter.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import "gopkg.in/natefinch/lumberjack.v2"

// LumberjackWriter adapts *lumberjack.Logger to the Writer contract.
// Unlike RotatingWriter it has no time-boundary trigger — lumberjack
// rotates on size and optional max-age only — so it's offered as a
// drop-in choice, not the default.
type LumberjackWriter struct {
	baseWriter
	name string
	lj   *lumberjack.Logger
}

// LumberjackConfig mirrors the subset of lumberjack.Logger fields ember
// exposes directly.
type LumberjackConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func NewLumberjackWriter(name string, cfg LumberjackConfig) *LumberjackWriter {
	return &LumberjackWriter{
		baseWriter: newBaseWriter(),
		name:       name,
		lj: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		},
	}
}

func (w *LumberjackWriter) Write(r Record) error {
	_, err := w.lj.Write([]byte(r.Message))
	return w.markResult(err)
}

func (w *LumberjackWriter) Flush() error  { return nil }
func (w *LumberjackWriter) Healthy() bool { return w.baseWriter.Healthy() }
func (w *LumberjackWriter) Name() string  { return w.name }

// Close closes the underlying lumberjack logger.
func (w *LumberjackWriter) Close() error { return w.lj.Close() }
