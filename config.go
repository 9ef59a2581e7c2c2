// config.go: Logger construction configuration.
//
// options.go/presets.go layer the functional-options idiom on top of
// this struct.
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

// Config is the full set of knobs NewLogger accepts. Most callers should
// start from a Preset and layer Options on top rather than building one
// by hand.
type Config struct {
	Name  string
	Level Level

	// Async selects Collector-backed dispatch; false means synchronous
	// fan-out to Writers on the calling goroutine.
	Async      bool
	Collector  CollectorConfig
	Writers    []Writer
	Filter     Filter
	Sampler    Sampler

	// StackTraceLevel captures a stack trace for records at/above this
	// level; Off disables capture entirely.
	StackTraceLevel Level

	// EnableCaller captures Location (file/line/function) at the log
	// call site. Off by default — runtime.Caller has a real cost on the
	// hot path, the same way any reflection-ish runtime introspection does.
	EnableCaller bool
	CallerSkip   int

	// WAL, if non-nil, writes records at/above WAL.MinLevel synchronously
	// to an append-only file before the normal writer path runs.
	WAL *WALConfig

	// EnableCrashGuard registers the Logger's emergency reporter (its WAL,
	// if configured) with the process-wide signal handler.
	EnableCrashGuard bool
}

func defaultConfig() Config {
	return Config{
		Level:           Info,
		Writers:         []Writer{NewStreamWriter("stdout", os.Stdout)},
		Filter:          AllowAll,
		StackTraceLevel: Off,
		Collector: CollectorConfig{
			Capacity:       16384,
			BatchSize:      256,
			OverflowPolicy: ring.Block,
			TickInterval:   5 * time.Millisecond,
		},
	}
}
