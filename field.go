// field.go: structured key/value pairs attached to a Record.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import "time"

// kind tags which union member of Field holds the value.
type kind uint8

const (
	kindString kind = iota + 1
	kindInt64
	kindFloat64
	kindBool
	kindDur
	kindTime
	kindBytes
	kindSecret
	kindError
	kindObject
)

// Field is a key/value pair. Value storage is unioned across a handful
// of scalar slots to avoid boxing the common cases (string, int64,
// float64, bool) into interface{}.
type Field struct {
	K   string
	T   kind
	I64 int64
	F64 float64
	Str string
	B   []byte
	Obj interface{}
}

func (f Field) Key() string  { return f.K }
func (f Field) Type() kind   { return f.T }

func (f Field) IsString() bool { return f.T == kindString }
func (f Field) IsInt() bool    { return f.T == kindInt64 }
func (f Field) IsFloat() bool  { return f.T == kindFloat64 }
func (f Field) IsBool() bool   { return f.T == kindBool }

// IsRedacted reports whether this field's value must never be rendered
// verbatim by a Formatter (see format_json.go's and format_text.go's
// handling of kindSecret).
func (f Field) IsRedacted() bool { return f.T == kindSecret }

func (f Field) StringValue() string {
	if f.T == kindString || f.T == kindSecret {
		return f.Str
	}
	return ""
}

func (f Field) IntValue() int64 {
	if f.T == kindInt64 {
		return f.I64
	}
	return 0
}

func (f Field) FloatValue() float64 {
	if f.T == kindFloat64 {
		return f.F64
	}
	return 0
}

func (f Field) BoolValue() bool {
	if f.T == kindBool {
		return f.I64 != 0
	}
	return false
}

func (f Field) DurationValue() time.Duration {
	if f.T == kindDur {
		return time.Duration(f.I64)
	}
	return 0
}

func (f Field) TimeValue() time.Time {
	if f.T == kindTime {
		return time.Unix(0, f.I64)
	}
	return time.Time{}
}

// Str creates a string field.
func Str(k, v string) Field { return Field{K: k, T: kindString, Str: v} }

// String is an alias for Str, kept for callers used to that naming.
func String(k, v string) Field { return Str(k, v) }

// Secret creates a field whose value is carried for the writer pipeline
// but rendered as "[REDACTED]" by every built-in Formatter.
func Secret(k, v string) Field { return Field{K: k, T: kindSecret, Str: v} }

// Int creates an integer field from an int, widened to int64 for storage.
func Int(k string, v int) Field { return Field{K: k, T: kindInt64, I64: int64(v)} }

func Int64(k string, v int64) Field { return Field{K: k, T: kindInt64, I64: v} }

func Uint64(k string, v uint64) Field { return Field{K: k, T: kindInt64, I64: int64(v)} }

func Float64(k string, v float64) Field { return Field{K: k, T: kindFloat64, F64: v} }

func Bool(k string, v bool) Field {
	i := int64(0)
	if v {
		i = 1
	}
	return Field{K: k, T: kindBool, I64: i}
}

// Dur creates a duration field, stored as int64 nanoseconds.
func Dur(k string, v time.Duration) Field { return Field{K: k, T: kindDur, I64: int64(v)} }

// TimeField creates a timestamp field, stored as Unix nanoseconds.
func TimeField(k string, v time.Time) Field { return Field{K: k, T: kindTime, I64: v.UnixNano()} }

// Bytes creates a byte-slice field.
func Bytes(k string, v []byte) Field { return Field{K: k, T: kindBytes, B: v} }

// Err creates an error field under the reserved key "error".
func Err(err error) Field {
	if err == nil {
		return Field{K: "error", T: kindError}
	}
	return Field{K: "error", T: kindError, Obj: err}
}

// NamedErr creates an error field under a custom key.
func NamedErr(k string, err error) Field {
	return Field{K: k, T: kindError, Obj: err}
}

// Object creates a field holding an arbitrary value, rendered via
// fmt.Sprint by both built-in Formatters (as a quoted string in JSON).
func Object(k string, v interface{}) Field { return Field{K: k, T: kindObject, Obj: v} }

// reservedCategoryKey is the field key Sampler treats as the record's
// category for per-category rate overrides.
const reservedCategoryKey = "category"

// Category tags a Record with a sampling category.
func Category(name string) Field { return Str(reservedCategoryKey, name) }
