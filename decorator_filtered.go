// decorator_filtered.go: drop non-matching records before the sink sees them.
//
// Innermost decorator in the canonical order: filtering is the
// cheapest rejection, so it runs before formatting or buffering spend
// any work on a record.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

// FilteredWriter drops records the Filter rejects. A drop is not an
// error — the inner writer never sees the record and Write returns nil.
type FilteredWriter struct {
	inner  Writer
	filter Filter
}

func NewFilteredWriter(inner Writer, filter Filter) *FilteredWriter {
	return &FilteredWriter{inner: inner, filter: filter}
}

func (w *FilteredWriter) Write(r Record) error {
	if !w.filter.Allow(r) {
		return nil
	}
	return w.inner.Write(r)
}

func (w *FilteredWriter) Flush() error   { return w.inner.Flush() }
func (w *FilteredWriter) Healthy() bool  { return w.inner.Healthy() }
func (w *FilteredWriter) Name() string   { return "filtered(" + w.inner.Name() + ")" }
