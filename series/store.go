// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package series

import (
	"regexp"
	"sort"
)

// A Store maps series names to series. Series are created lazily by
// Ensure. Iteration is always in sorted name order so that anything
// built from a Store is reproducible.
//
// A Store is not safe for concurrent use.
type Store struct {
	m map[string]*TimeSeries

	aggregated bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{m: make(map[string]*TimeSeries)}
}

// Len returns the number of series in the store.
func (st *Store) Len() int { return len(st.m) }

// Lookup returns the series called name, if any.
func (st *Store) Lookup(name string) (*TimeSeries, bool) {
	s, ok := st.m[name]
	return s, ok
}

// Has reports whether the store holds a series called name.
func (st *Store) Has(name string) bool {
	_, ok := st.m[name]
	return ok
}

// Ensure returns the series called name, creating an empty one with
// the given unit and direction if it does not exist yet. An existing
// series keeps its original unit and direction.
func (st *Store) Ensure(name, unit string, better Better) *TimeSeries {
	if s, ok := st.m[name]; ok {
		return s
	}
	s := New(unit, better)
	st.m[name] = s
	return s
}

// Set stores s under name, replacing any existing series.
func (st *Store) Set(name string, s *TimeSeries) {
	st.m[name] = s
}

// Delete removes the series called name.
func (st *Store) Delete(name string) {
	delete(st.m, name)
}

// Keys returns all series names in sorted order.
func (st *Store) Keys() []string {
	keys := make([]string, 0, len(st.m))
	for k := range st.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match returns the sorted names that match re.
func (st *Store) Match(re *regexp.Regexp) []string {
	return st.MatchFunc(re.MatchString)
}

// MatchFunc returns the sorted names for which match returns true.
func (st *Store) MatchFunc(match func(name string) bool) []string {
	var keys []string
	for _, k := range st.Keys() {
		if match(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Each calls f for every series in sorted name order.
func (st *Store) Each(f func(name string, s *TimeSeries)) {
	for _, k := range st.Keys() {
		f(k, st.m[k])
	}
}

// All returns a copy of the name to series mapping. The series
// themselves are shared and must be treated as read-only.
func (st *Store) All() map[string]*TimeSeries {
	out := make(map[string]*TimeSeries, len(st.m))
	for k, v := range st.m {
		out[k] = v
	}
	return out
}

// Merge adds every series of other into st, prefixing names with
// prefix and a dot when prefix is non-empty. Existing names are
// replaced.
func (st *Store) Merge(prefix string, other *Store) {
	for k, v := range other.m {
		if prefix != "" {
			k = prefix + "." + k
		}
		st.m[k] = v
	}
}

// MarkAggregated records that derived series have been computed for
// this store. It returns true only on the first call.
func (st *Store) MarkAggregated() bool {
	if st.aggregated {
		return false
	}
	st.aggregated = true
	return true
}

// Aggregated reports whether MarkAggregated has been called.
func (st *Store) Aggregated() bool { return st.aggregated }
