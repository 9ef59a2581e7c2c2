// options.go: functional options layered on top of Config.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"time"

	"github.com/agilira/ember/internal/ring"
)

// Option mutates a Config during NewLogger construction.
type Option func(*Config)

func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

func WithLevel(l Level) Option {
	return func(c *Config) { c.Level = l }
}

func WithWriter(w Writer) Option {
	return func(c *Config) { c.Writers = append(c.Writers, w) }
}

func WithWriters(ws ...Writer) Option {
	return func(c *Config) { c.Writers = append(c.Writers, ws...) }
}

func WithFilter(f Filter) Option {
	return func(c *Config) { c.Filter = f }
}

func WithSampler(s Sampler) Option {
	return func(c *Config) { c.Sampler = s }
}

func WithAsync(capacity, batchSize int, policy ring.OverflowPolicy) Option {
	return func(c *Config) {
		c.Async = true
		c.Collector.Capacity = capacity
		c.Collector.BatchSize = batchSize
		c.Collector.OverflowPolicy = policy
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(c *Config) { c.Collector.TickInterval = d }
}

func WithStackTraceLevel(l Level) Option {
	return func(c *Config) { c.StackTraceLevel = l }
}

func WithCaller(skip int) Option {
	return func(c *Config) { c.EnableCaller = true; c.CallerSkip = skip }
}

func WithWAL(path string, minLevel Level) Option {
	return func(c *Config) { c.WAL = &WALConfig{Path: path, MinLevel: minLevel} }
}

func WithCrashGuard() Option {
	return func(c *Config) { c.EnableCrashGuard = true }
}
