// presets.go: configuration presets for common use cases.
//
// Named constructors return a ready Logger; each also exposes a Config
// builder for callers who want to customize a preset before building.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"time"

	"github.com/agilira/ember/internal/ring"
)

// DevelopmentConfig favors immediate, readable feedback: debug level,
// small buffers, synchronous dispatch.
func DevelopmentConfig() Config {
	cfg := defaultConfig()
	cfg.Level = Debug
	cfg.Writers = []Writer{NewFormattedWriter(NewStreamWriter("stdout", os.Stdout), NewTextFormatter())}
	cfg.Async = false
	return cfg
}

// ProductionConfig favors throughput: info level, async dispatch with a
// generous queue, JSON output.
func ProductionConfig() Config {
	cfg := defaultConfig()
	cfg.Level = Info
	cfg.Writers = []Writer{NewFormattedWriter(NewStreamWriter("stdout", os.Stdout), NewJSONFormatter())}
	cfg.Async = true
	cfg.Collector = CollectorConfig{
		Capacity:       16384,
		BatchSize:      256,
		OverflowPolicy: ring.Block,
		TickInterval:   5 * time.Millisecond,
	}
	return cfg
}

// HighVolumeConfig trades some durability guarantees for maximum
// ingest rate: warning level, drop_oldest overflow, large queue.
func HighVolumeConfig() Config {
	cfg := defaultConfig()
	cfg.Level = Warning
	cfg.Writers = []Writer{NewFormattedWriter(NewStreamWriter("stdout", os.Stdout), NewJSONFormatter())}
	cfg.Async = true
	cfg.Collector = CollectorConfig{
		Capacity:       65536,
		BatchSize:      1024,
		OverflowPolicy: ring.DropOldest,
		TickInterval:   10 * time.Millisecond,
	}
	cfg.Sampler = NewBypassSampler(NewRateLimitSampler(10000, time.Second))
	return cfg
}

// NewDevelopment builds a Logger from DevelopmentConfig.
func NewDevelopment() (*Logger, error) { return NewLogger(DevelopmentConfig()) }

// NewProduction builds a Logger from ProductionConfig.
func NewProduction() (*Logger, error) { return NewLogger(ProductionConfig()) }

// NewHighVolume builds a Logger from HighVolumeConfig.
func NewHighVolume() (*Logger, error) { return NewLogger(HighVolumeConfig()) }
