// level.go: severity levels and their total order.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Level is the severity of a Record, totally ordered Trace < ... < Off.
//
// Level is an int32 so comparisons and atomic swaps on AtomicLevel stay
// branch-free on the hot path.
type Level int32

const (
	Trace Level = iota
	Debug
	Info
	Warning
	Error
	Critical
	// Off disables logging entirely: no level is ever >= Off in practice,
	// but setting a threshold to Off silences every Record.
	Off
)

var levelNames = [...]string{"trace", "debug", "info", "warning", "error", "critical", "off"}

var levelAliases = map[string]Level{
	"trace":    Trace,
	"debug":    Debug,
	"info":     Info,
	"warn":     Warning,
	"warning":  Warning,
	"error":    Error,
	"err":      Error,
	"critical": Critical,
	"crit":     Critical,
	"fatal":    Critical,
	"off":      Off,
	"none":     Off,
	"":         Info,
}

func (l Level) String() string {
	if l >= Trace && l <= Off {
		return levelNames[l]
	}
	return "unknown"
}

// Enabled reports whether l should be logged given a minimum threshold.
func (l Level) Enabled(min Level) bool { return l >= min }

func (l Level) IsTrace() bool    { return l == Trace }
func (l Level) IsDebug() bool    { return l == Debug }
func (l Level) IsInfo() bool     { return l == Info }
func (l Level) IsWarning() bool  { return l == Warning }
func (l Level) IsError() bool    { return l == Error }
func (l Level) IsCritical() bool { return l == Critical }

// ParseLevel parses a level name, case-insensitively, accepting the
// common aliases (warn/warning, err/error, fatal/critical). An empty
// string parses as Info.
func ParseLevel(s string) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if lvl, ok := levelAliases[normalized]; ok {
		return lvl, nil
	}
	return Info, fmt.Errorf("ember: unknown level %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if l < Trace || l > Off {
		return nil, fmt.Errorf("ember: cannot marshal unknown level %d", l)
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// AtomicLevel is a Level that can be read and swapped concurrently,
// backing Logger.SetMinLevel and argus-driven hot reload.
type AtomicLevel struct {
	value int32
}

func NewAtomicLevel(initial Level) *AtomicLevel {
	return &AtomicLevel{value: int32(initial)}
}

func (a *AtomicLevel) Level() Level        { return Level(atomic.LoadInt32(&a.value)) }
func (a *AtomicLevel) SetLevel(l Level)    { atomic.StoreInt32(&a.value, int32(l)) }
func (a *AtomicLevel) Enabled(l Level) bool { return l >= a.Level() }
func (a *AtomicLevel) String() string      { return a.Level().String() }

func AllLevels() []Level {
	return []Level{Trace, Debug, Info, Warning, Error, Critical, Off}
}

func AllLevelNames() []string {
	levels := AllLevels()
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.String()
	}
	return names
}

func IsValidLevel(l Level) bool { return l >= Trace && l <= Off }
