// format.go: the Formatter contract — a pure Record → bytes function.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

// Formatter renders a Record to its wire bytes. Formatters are pure:
// given the same Record they always produce the same bytes, and they
// never mutate the Record.
type Formatter interface {
	Format(r Record) []byte
}

// FormatterFunc adapts a plain function to the Formatter interface.
type FormatterFunc func(r Record) []byte

func (f FormatterFunc) Format(r Record) []byte { return f(r) }
