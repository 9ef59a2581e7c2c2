// record.go: the immutable value passed through the logging pipeline.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"encoding/hex"
	"time"
)

// MaxMessageBytes bounds Record.Message; longer messages are truncated
// and a truncation marker is appended.
const MaxMessageBytes = 1 << 20

const truncationMarker = "...[truncated]"

// Location carries the call site of a log statement.
type Location struct {
	File     string
	Line     int
	Function string
}

func (l Location) IsZero() bool { return l.File == "" && l.Line == 0 && l.Function == "" }

// TraceContext correlates a Record with a distributed trace.
type TraceContext struct {
	TraceID string // 32 hex chars
	SpanID  string // 16 hex chars
	Flags   string // 2 hex chars
	State   string
}

// Valid reports whether TraceID and SpanID are hex-valid and the
// correct length.
func (t TraceContext) Valid() bool {
	if !isHexOfLen(t.TraceID, 32) {
		return false
	}
	return isHexOfLen(t.SpanID, 16)
}

func isHexOfLen(s string, n int) bool {
	if len(s) != n {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Record is an immutable logging event. Once constructed by Logger it is
// never mutated: downstream stages (filters, decorators) observe it but
// do not rewrite level, message bytes, timestamp, or fields.
type Record struct {
	Level      Level
	Message    string
	Timestamp  time.Time
	Location   Location
	Fields     []Field
	Trace      TraceContext
	StackTrace string // captured at/above Config.StackTraceLevel; empty otherwise

	// seq is a per-logger monotonic sequence number, used only for
	// order-preservation tests; it carries no external meaning.
	seq uint64
}

// Seq returns the record's submission sequence number (per producing Logger).
func (r Record) Seq() uint64 { return r.seq }

// FieldValue returns the last-write-wins value for key, and whether it
// was present.
func (r Record) FieldValue(key string) (Field, bool) {
	for i := len(r.Fields) - 1; i >= 0; i-- {
		if r.Fields[i].K == key {
			return r.Fields[i], true
		}
	}
	return Field{}, false
}

// mergeFields overlays overlay on base, enforcing key uniqueness with
// last-write-wins (overlay wins on collision), preserving the order in
// which each key was first introduced. Used by Logger.log to merge
// ContextScope's snapshot with call-site fields.
func mergeFields(base, overlay []Field) []Field {
	if len(overlay) == 0 {
		return base
	}
	out := make([]Field, 0, len(base)+len(overlay))
	index := make(map[string]int, len(base)+len(overlay))
	for _, f := range base {
		if i, ok := index[f.K]; ok {
			out[i] = f
			continue
		}
		index[f.K] = len(out)
		out = append(out, f)
	}
	for _, f := range overlay {
		if i, ok := index[f.K]; ok {
			out[i] = f
			continue
		}
		index[f.K] = len(out)
		out = append(out, f)
	}
	return out
}

func truncateMessage(msg string) string {
	if len(msg) <= MaxMessageBytes {
		return msg
	}
	cut := MaxMessageBytes - len(truncationMarker)
	if cut < 0 {
		cut = 0
	}
	return msg[:cut] + truncationMarker
}
