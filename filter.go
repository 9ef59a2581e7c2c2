// filter.go: pure predicates gating a Record before the sampler.
//
// A single-method interface plus combinator constructors composes small
// stateless predicates directly rather than building a class tree.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import "regexp"

// Filter is a pure predicate over a Record. Filters must not mutate the
// Record or maintain state that depends on evaluation order across
// records; evaluation is short-circuit within combinators.
type Filter interface {
	Allow(r Record) bool
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(r Record) bool

func (f FilterFunc) Allow(r Record) bool { return f(r) }

// LevelAtLeast keeps records whose level is >= min.
func LevelAtLeast(min Level) Filter {
	return FilterFunc(func(r Record) bool { return r.Level >= min })
}

// FieldMatches keeps records whose named field's string value matches
// the given regular expression. A record missing the field is rejected.
func FieldMatches(field string, pattern *regexp.Regexp) Filter {
	return FilterFunc(func(r Record) bool {
		f, ok := r.FieldValue(field)
		if !ok {
			return false
		}
		return pattern.MatchString(f.StringValue())
	})
}

// And keeps a record only if every filter keeps it. Evaluation stops at
// the first rejection.
func And(filters ...Filter) Filter {
	return FilterFunc(func(r Record) bool {
		for _, f := range filters {
			if !f.Allow(r) {
				return false
			}
		}
		return true
	})
}

// Or keeps a record if any filter keeps it. Evaluation stops at the
// first acceptance.
func Or(filters ...Filter) Filter {
	return FilterFunc(func(r Record) bool {
		for _, f := range filters {
			if f.Allow(r) {
				return true
			}
		}
		return false
	})
}

// Not inverts a filter's verdict.
func Not(f Filter) Filter {
	return FilterFunc(func(r Record) bool { return !f.Allow(r) })
}

// AllowAll is the identity filter, used as the default when no filter
// chain is configured.
var AllowAll Filter = FilterFunc(func(Record) bool { return true })
