// format_text.go: the plain-text Formatter default layout.
//
// [YYYY-MM-DD HH:MM:SS.mmm] [LEVEL] [file:line in function] message | key=value ...
//
// A pooled buffer, manual field-value encoding per kind, and key/value
// sanitization rather than a generic reflection-based formatter.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/ember/internal/bufferpool"
)

// TextFormatter renders the default human-readable layout.
type TextFormatter struct {
	// TimeFormat is passed to time.Time.Format; empty uses "2006-01-02 15:04:05.000".
	TimeFormat string
}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{TimeFormat: "2006-01-02 15:04:05.000"}
}

func (f *TextFormatter) Format(r Record) []byte {
	buf := bufferpool.Get()
	defer bufferpool.Put(buf)

	buf.WriteByte('[')
	tf := f.TimeFormat
	if tf == "" {
		tf = "2006-01-02 15:04:05.000"
	}
	buf.WriteString(r.Timestamp.Format(tf))
	buf.WriteString("] [")
	buf.WriteString(strings.ToUpper(r.Level.String()))
	buf.WriteByte(']')

	if !r.Location.IsZero() {
		buf.WriteString(" [")
		buf.WriteString(r.Location.File)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(r.Location.Line))
		if r.Location.Function != "" {
			buf.WriteString(" in ")
			buf.WriteString(r.Location.Function)
		}
		buf.WriteByte(']')
	}

	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	if len(r.Fields) > 0 {
		buf.WriteString(" |")
		for _, fld := range r.Fields {
			buf.WriteByte(' ')
			buf.WriteString(sanitizeKey(fld.K))
			buf.WriteByte('=')
			writeTextValue(buf, fld)
		}
	}
	if r.StackTrace != "" {
		buf.WriteString("\n")
		buf.WriteString(r.StackTrace)
	}
	buf.WriteByte('\n')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

func writeTextValue(buf *bytes.Buffer, f Field) {
	if f.IsRedacted() {
		buf.WriteString("[REDACTED]")
		return
	}
	switch f.T {
	case kindString:
		writeQuotedIfNeeded(buf, f.Str)
	case kindInt64:
		buf.WriteString(strconv.FormatInt(f.I64, 10))
	case kindFloat64:
		buf.WriteString(strconv.FormatFloat(f.F64, 'g', -1, 64))
	case kindBool:
		buf.WriteString(strconv.FormatBool(f.BoolValue()))
	case kindDur:
		buf.WriteString(f.DurationValue().String())
	case kindTime:
		writeQuotedIfNeeded(buf, f.TimeValue().Format("2006-01-02T15:04:05.000Z07:00"))
	case kindBytes:
		writeQuotedIfNeeded(buf, string(f.B))
	case kindError:
		if err, ok := f.Obj.(error); ok && err != nil {
			writeQuotedIfNeeded(buf, err.Error())
		} else {
			buf.WriteString("null")
		}
	default:
		if f.Obj == nil {
			buf.WriteString("null")
		} else {
			writeQuotedIfNeeded(buf, fmt.Sprint(f.Obj))
		}
	}
}

func writeQuotedIfNeeded(buf *bytes.Buffer, s string) {
	if strings.ContainsAny(s, " \t\n\"=") {
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(s, `"`, `\"`))
		buf.WriteByte('"')
		return
	}
	buf.WriteString(s)
}

func sanitizeKey(k string) string {
	if k == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '=', ' ', '\n':
			return '_'
		default:
			return r
		}
	}, k)
}
