// format_json.go: the NDJSON Formatter alternative layout.
//
// {"ts":"...","level":"...","msg":"...","file":"...","line":N,"fn":"...",
//  "fields":{...},"trace":{...}}
//
// Zero-reflection, pooled buffer, one write per field, manual string
// quoting. Field key order in the output is insertion order.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/agilira/ember/internal/bufferpool"
)

// JSONFormatter renders one JSON object per record, newline-terminated.
type JSONFormatter struct {
	TimeKey  string
	LevelKey string
	MsgKey   string
}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{TimeKey: "ts", LevelKey: "level", MsgKey: "msg"}
}

func (f *JSONFormatter) ensureDefaults() {
	if f.TimeKey == "" {
		f.TimeKey = "ts"
	}
	if f.LevelKey == "" {
		f.LevelKey = "level"
	}
	if f.MsgKey == "" {
		f.MsgKey = "msg"
	}
}

func (f *JSONFormatter) Format(r Record) []byte {
	f.ensureDefaults()

	buf := bufferpool.Get()
	defer bufferpool.Put(buf)

	buf.WriteByte('{')
	writeJSONKey(buf, f.TimeKey, true)
	quoteJSONString(buf, r.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))

	writeJSONKey(buf, f.LevelKey, false)
	quoteJSONString(buf, r.Level.String())

	writeJSONKey(buf, f.MsgKey, false)
	quoteJSONString(buf, r.Message)

	if !r.Location.IsZero() {
		writeJSONKey(buf, "file", false)
		quoteJSONString(buf, r.Location.File)
		writeJSONKey(buf, "line", false)
		buf.WriteString(strconv.Itoa(r.Location.Line))
		writeJSONKey(buf, "fn", false)
		quoteJSONString(buf, r.Location.Function)
	}

	if len(r.Fields) > 0 {
		writeJSONKey(buf, "fields", false)
		buf.WriteByte('{')
		for i, fld := range r.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			quoteJSONString(buf, fld.K)
			buf.WriteByte(':')
			writeJSONValue(buf, fld)
		}
		buf.WriteByte('}')
	}

	if r.Trace.Valid() {
		writeJSONKey(buf, "trace", false)
		buf.WriteByte('{')
		buf.WriteString(`"trace_id":`)
		quoteJSONString(buf, r.Trace.TraceID)
		buf.WriteString(`,"span_id":`)
		quoteJSONString(buf, r.Trace.SpanID)
		if r.Trace.Flags != "" {
			buf.WriteString(`,"flags":`)
			quoteJSONString(buf, r.Trace.Flags)
		}
		if r.Trace.State != "" {
			buf.WriteString(`,"state":`)
			quoteJSONString(buf, r.Trace.State)
		}
		buf.WriteByte('}')
	}

	if r.StackTrace != "" {
		writeJSONKey(buf, "stack", false)
		quoteJSONString(buf, r.StackTrace)
	}

	buf.WriteByte('}')
	buf.WriteByte('\n')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

func writeJSONKey(buf *bytes.Buffer, key string, first bool) {
	if !first {
		buf.WriteByte(',')
	}
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString(`":`)
}

func writeJSONValue(buf *bytes.Buffer, f Field) {
	if f.IsRedacted() {
		quoteJSONString(buf, "[REDACTED]")
		return
	}
	switch f.T {
	case kindString:
		quoteJSONString(buf, f.Str)
	case kindInt64:
		buf.WriteString(strconv.FormatInt(f.I64, 10))
	case kindFloat64:
		buf.WriteString(strconv.FormatFloat(f.F64, 'g', -1, 64))
	case kindBool:
		buf.WriteString(strconv.FormatBool(f.BoolValue()))
	case kindDur:
		buf.WriteString(strconv.FormatInt(int64(f.DurationValue()), 10))
	case kindTime:
		quoteJSONString(buf, f.TimeValue().Format("2006-01-02T15:04:05.000Z07:00"))
	case kindBytes:
		quoteJSONString(buf, string(f.B))
	case kindError:
		if err, ok := f.Obj.(error); ok && err != nil {
			quoteJSONString(buf, err.Error())
		} else {
			buf.WriteString("null")
		}
	default:
		if f.Obj == nil {
			buf.WriteString("null")
		} else {
			quoteJSONString(buf, fmt.Sprint(f.Obj))
		}
	}
}

// quoteJSONString writes s as a JSON string literal, escaping the
// minimal required set (quote, backslash, control characters).
func quoteJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
