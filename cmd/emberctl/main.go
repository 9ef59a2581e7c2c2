// emberctl: small CLI exercising ember's pipeline end to end — parses
// command-line flags (level, file, rotation size/retention, async, tail,
// count; the LOG_* environment variables are not read), builds a Logger
// from them, and tails a rotating log file so the collector,
// writer chain, and rotation can all be watched from one process.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agilira/flash-flags"

	"github.com/agilira/ember"
	"github.com/agilira/ember/internal/ring"
)

const usage = `emberctl - exercise and tail an ember logger from the command line

USAGE:
    emberctl [OPTIONS]

OPTIONS:
`

func main() {
	fs := flashflags.New("emberctl", "exercise and tail an ember logger")

	level := fs.String("level", "info", "minimum level: trace|debug|info|warning|error|critical")
	path := fs.String("file", "emberctl.log", "log file path (rotated)")
	maxSizeMB := fs.Int("max-size-mb", 10, "rotate once the active file reaches this size")
	maxFiles := fs.Int("max-files", 5, "number of rotated files to retain")
	async := fs.Bool("async", true, "dispatch through the Collector instead of synchronously")
	tail := fs.Bool("tail", false, "after emitting a demo burst, tail the log file to stdout")
	count := fs.Int("count", 1000, "number of demo records to emit")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "emberctl: %v\n", err)
		os.Exit(2)
	}

	if err := run(*level, *path, *maxSizeMB, *maxFiles, *async, *tail, *count); err != nil {
		fmt.Fprintf(os.Stderr, "emberctl: %v\n", err)
		os.Exit(1)
	}
}

func run(levelName, path string, maxSizeMB, maxFiles int, async, tail bool, count int) error {
	level, err := ember.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid level %q: %w", levelName, err)
	}

	rotating, err := ember.NewRotatingWriter(ember.RotationConfig{
		Path:         path,
		Trigger:      ember.RotateBySize,
		MaxSizeBytes: int64(maxSizeMB) * 1024 * 1024,
		MaxFiles:     maxFiles,
		Compress:     true,
	})
	if err != nil {
		return fmt.Errorf("open rotating writer: %w", err)
	}

	opts := []ember.Option{
		ember.WithName("emberctl"),
		ember.WithLevel(level),
	}
	if async {
		opts = append(opts, ember.WithAsync(16384, 256, ring.Block))
	}

	cfg := ember.Config{}
	cfg.Writers = []ember.Writer{ember.NewFormattedWriter(rotating, ember.NewJSONFormatter())}
	cfg.Filter = ember.AllowAll
	for _, opt := range opts {
		opt(&cfg)
	}

	logger, err := ember.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Shutdown(5 * time.Second) }()

	for i := 0; i < count; i++ {
		logger.Info("demo record", ember.Int("seq", i), ember.Str("source", "emberctl"))
	}
	if err := logger.Flush(5 * time.Second); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if !tail {
		return nil
	}
	return tailFile(path)
}

// tailFile streams path to stdout from the start; good enough for a demo
// CLI, not a production log-shipper.
func tailFile(path string) error {
	f, err := os.Open(path) // #nosec G304 -- operator-supplied CLI path
	if err != nil {
		return fmt.Errorf("open for tail: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			fmt.Fprint(os.Stdout, line)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
